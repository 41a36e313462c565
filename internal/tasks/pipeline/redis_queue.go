package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const redisRetryDelay = time.Second

// RedisQueue 基于 Redis List 实现：RPUSH 入队，BLPOP 出队。
type RedisQueue struct {
	client *redis.Client
	key    string
	block  time.Duration
	log    *log.Helper
}

// NewRedisQueue 构造 Redis 队列。
func NewRedisQueue(client *redis.Client, key string, block time.Duration, logger log.Logger) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis queue: client is required")
	}
	if key == "" {
		key = "lecture:jobs"
	}
	if block <= 0 {
		block = 5 * time.Second
	}
	return &RedisQueue{client: client, key: key, block: block, log: log.NewHelper(logger)}, nil
}

// Enqueue 序列化任务并 RPUSH。
func (q *RedisQueue) Enqueue(ctx context.Context, job *vo.PipelineJob) error {
	raw, err := vo.EncodeJob(job)
	if err != nil {
		return err
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("redis queue: rpush %s: %w", q.key, err)
	}
	return nil
}

// Receive 循环 BLPOP。连接错误时稍后重试，无法解析的消息记录日志后丢弃。
func (q *RedisQueue) Receive(ctx context.Context, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := q.client.BLPop(ctx, q.block, q.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil
			}
			q.log.WithContext(ctx).Warnw("msg", "redis blpop failed", "key", q.key, "error", err)
			if !sleepCtx(ctx, redisRetryDelay) {
				return ctx.Err()
			}
			continue
		}
		if len(res) != 2 {
			continue
		}
		job, err := vo.DecodeJob([]byte(res[1]))
		if err != nil {
			q.log.WithContext(ctx).Errorw("msg", "drop malformed job", "key", q.key, "error", err)
			continue
		}
		_ = handler(ctx, job)
	}
}

// Close 由 redisclient 负责关闭连接，此处无操作。
func (q *RedisQueue) Close() error { return nil }

// Len 返回列表长度。
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
