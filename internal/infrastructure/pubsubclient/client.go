// Package pubsubclient 构造 Pub/Sub 队列使用的客户端，支持本地 emulator。
package pubsubclient

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"cloud.google.com/go/pubsub/v2"
	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ClientOptions 返回连接参数；配置 emulator 时关闭认证与 TLS。
func ClientOptions(cfg configloader.PubSubConfig) []option.ClientOption {
	if cfg.EmulatorEndpoint == "" {
		return nil
	}
	return []option.ClientOption{
		option.WithEndpoint(cfg.EmulatorEndpoint),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

// NewClient 创建 pubsub.Client。
func NewClient(ctx context.Context, cfg configloader.PubSubConfig) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return client, nil
}

// ProvideClient 在 queue.driver=pubsub 时创建客户端，其他驱动返回 nil。
func ProvideClient(ctx context.Context, cfg configloader.QueueConfig, logger log.Logger) (*pubsub.Client, func(), error) {
	if !cfg.PubSub.Enabled {
		return nil, func() {}, nil
	}
	client, err := NewClient(ctx, cfg.PubSub)
	if err != nil {
		return nil, nil, err
	}
	log.NewHelper(logger).Infof("pubsub client ready: project=%s topic=%s subscription=%s emulator=%t",
		cfg.PubSub.ProjectID, cfg.PubSub.TopicID, cfg.PubSub.SubscriptionID, cfg.PubSub.EmulatorEndpoint != "")
	return client, func() { _ = client.Close() }, nil
}
