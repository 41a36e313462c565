package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"

	"cloud.google.com/go/pubsub/v2"
	"github.com/go-kratos/kratos/v2/log"
)

// PubSubQueue 基于 Google Pub/Sub：任务发布到 topic，worker 通过 subscription 拉取。
// 消息处理后总是 Ack，失败状态已由 Service 层写入数据库。
type PubSubQueue struct {
	publisher  *pubsub.Publisher
	subscriber *pubsub.Subscriber
	log        *log.Helper
}

// NewPubSubQueue 构造 Pub/Sub 队列。
func NewPubSubQueue(client *pubsub.Client, cfg configloader.PubSubConfig, logger log.Logger) (*PubSubQueue, error) {
	if client == nil {
		return nil, errors.New("pubsub queue: client is required")
	}
	if cfg.TopicID == "" || cfg.SubscriptionID == "" {
		return nil, errors.New("pubsub queue: topic and subscription are required")
	}
	sub := client.Subscriber(cfg.SubscriptionID)
	if cfg.NumGoroutines > 0 {
		sub.ReceiveSettings.NumGoroutines = cfg.NumGoroutines
		sub.ReceiveSettings.MaxOutstandingMessages = cfg.NumGoroutines
	}
	return &PubSubQueue{
		publisher:  client.Publisher(cfg.TopicID),
		subscriber: sub,
		log:        log.NewHelper(logger),
	}, nil
}

// Enqueue 发布任务并等待服务端确认。
func (q *PubSubQueue) Enqueue(ctx context.Context, job *vo.PipelineJob) error {
	raw, err := vo.EncodeJob(job)
	if err != nil {
		return err
	}
	res := q.publisher.Publish(ctx, &pubsub.Message{
		Data: raw,
		Attributes: map[string]string{
			"kind":       string(job.Kind),
			"lecture_id": job.LectureID,
		},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("pubsub queue: publish: %w", err)
	}
	return nil
}

// Receive 阻塞拉取消息直到 ctx 取消。
func (q *PubSubQueue) Receive(ctx context.Context, handler Handler) error {
	err := q.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		defer msg.Ack()
		job, err := vo.DecodeJob(msg.Data)
		if err != nil {
			q.log.WithContext(ctx).Errorw("msg", "drop malformed job", "message_id", msg.ID, "error", err)
			return
		}
		_ = handler(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("pubsub queue: receive: %w", err)
	}
	return ctx.Err()
}

// Close 刷出待发送消息。
func (q *PubSubQueue) Close() error {
	q.publisher.Stop()
	return nil
}
