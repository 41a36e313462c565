// Package redisclient 构造 Redis 队列使用的 go-redis 客户端。
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

// ProvideClient 在 queue.driver=redis 时建立连接并 Ping，其他驱动返回 nil。
func ProvideClient(ctx context.Context, cfg configloader.QueueConfig, logger log.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		// BLPOP 会阻塞 BlockTimeout，读超时需留出余量。
		ReadTimeout: cfg.Redis.BlockTimeout + 5*time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}

	log.NewHelper(logger).Infof("redis connected: addr=%s db=%d", cfg.Redis.Addr, cfg.Redis.DB)
	return client, func() { _ = client.Close() }, nil
}
