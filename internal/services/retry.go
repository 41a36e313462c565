package services

import (
	"context"
	"errors"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-kratos/kratos/v2/log"
)

// Retrier 以指数退避重试外部 AI 调用。只有 ErrExternalService 类错误会被重试。
type Retrier struct {
	cfg     configloader.RetryConfig
	log     *log.Helper
	metrics *PipelineMetrics
}

// NewRetrier 构造重试器。
func NewRetrier(cfg configloader.RetryConfig, metrics *PipelineMetrics, logger log.Logger) *Retrier {
	return &Retrier{cfg: cfg, metrics: metrics, log: log.NewHelper(logger)}
}

func (r *Retrier) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.Initial
	b.Multiplier = r.cfg.Multiplier
	b.MaxInterval = r.cfg.Max
	b.MaxElapsedTime = r.cfg.Timeout
	b.RandomizationFactor = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// Do 执行 fn，遇到外部服务错误时按配置退避重试，总时长不超过 Timeout。
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	if r == nil {
		return fn(ctx)
	}
	attempt := 0
	operation := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !errors.Is(err, ErrExternalService) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.metrics.recordRetry(ctx, op)
		r.log.WithContext(ctx).Warnw("msg", "retrying ai call", "op", op, "attempt", attempt, "wait", wait, "error", err)
	}
	return backoff.RetryNotify(operation, r.policy(ctx), notify)
}

// Generate 是 TextGenerator 调用的重试封装。
func (r *Retrier) Generate(ctx context.Context, op string, ai TextGenerator, prompt string) (string, error) {
	var out string
	err := r.Do(ctx, op, func(ctx context.Context) error {
		resp, err := ai.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	return out, err
}
