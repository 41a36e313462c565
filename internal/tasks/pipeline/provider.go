package pipeline

import (
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	"cloud.google.com/go/pubsub/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供队列、投递接口与 Runner。
var ProviderSet = wire.NewSet(ProvideQueue, ProvideEnqueuer, ProvideRunner)

// ProvideQueue 按 queue.driver 选择后端。
func ProvideQueue(cfg configloader.QueueConfig, rdb *redis.Client, ps *pubsub.Client, logger log.Logger) (Queue, func(), error) {
	var (
		q   Queue
		err error
	)
	switch cfg.Driver {
	case "", "memory":
		q = NewMemoryQueue(cfg.Buffer)
	case "redis":
		q, err = NewRedisQueue(rdb, cfg.Redis.Key, cfg.Redis.BlockTimeout, logger)
	case "pubsub":
		q, err = NewPubSubQueue(ps, cfg.PubSub, logger)
	default:
		err = fmt.Errorf("pipeline: unknown queue driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, nil, err
	}
	log.NewHelper(logger).Infof("pipeline queue ready: driver=%s", firstNonEmpty(cfg.Driver, "memory"))
	return q, func() { _ = q.Close() }, nil
}

// ProvideEnqueuer 将队列暴露为 Service 层的投递接口。
func ProvideEnqueuer(q Queue) services.JobEnqueuer {
	return q
}

// ProvideRunner 装配 Runner。
func ProvideRunner(q Queue, pipeline *services.PipelineService, translations *services.TranslationService, logger log.Logger) (*Runner, error) {
	return NewRunner(RunnerParams{
		Queue:        q,
		Pipeline:     pipeline,
		Translations: translations,
		Logger:       logger,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
