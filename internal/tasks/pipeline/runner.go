package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
)

var _ transport.Server = (*Runner)(nil)

type processor interface {
	Process(ctx context.Context, job *vo.PipelineJob) error
}

type translationRunner interface {
	RunTranslation(ctx context.Context, job *vo.PipelineJob) error
}

// RunnerParams 注入 Runner 所需依赖。
type RunnerParams struct {
	Queue        Queue
	Pipeline     processor
	Translations translationRunner
	Logger       log.Logger
}

// Runner 从队列消费任务并按类型分发。运行结果已由 Service 层写入状态表，
// 这里只记录日志，任务不会重投。
type Runner struct {
	queue        Queue
	pipeline     processor
	translations translationRunner
	log          *log.Helper

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner 构造 Runner。
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Queue == nil {
		return nil, fmt.Errorf("pipeline runner: queue is required")
	}
	if params.Pipeline == nil {
		return nil, fmt.Errorf("pipeline runner: pipeline service is required")
	}
	if params.Translations == nil {
		return nil, fmt.Errorf("pipeline runner: translation service is required")
	}
	return &Runner{
		queue:        params.Queue,
		pipeline:     params.Pipeline,
		translations: params.Translations,
		log:          log.NewHelper(params.Logger),
	}, nil
}

// Run 阻塞消费直到 ctx 取消。
func (r *Runner) Run(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.queue.Receive(ctx, r.Handle)
}

// Handle 执行单个任务，错误只记录不返回。
func (r *Runner) Handle(ctx context.Context, job *vo.PipelineJob) error {
	if err := job.Validate(); err != nil {
		r.log.WithContext(ctx).Errorw("msg", "skip invalid job", "error", err)
		return nil
	}
	start := time.Now()
	r.log.WithContext(ctx).Infow("msg", "job started", "job_id", job.ID, "kind", job.Kind, "lecture_id", job.LectureID)

	var err error
	switch job.Kind {
	case vo.JobKindProcess:
		err = r.pipeline.Process(ctx, job)
	case vo.JobKindTranslate:
		err = r.translations.RunTranslation(ctx, job)
	}
	if err != nil {
		r.log.WithContext(ctx).Errorw("msg", "job failed", "job_id", job.ID, "kind", job.Kind,
			"lecture_id", job.LectureID, "elapsed", time.Since(start).String(), "error", err)
		return nil
	}
	r.log.WithContext(ctx).Infow("msg", "job finished", "job_id", job.ID, "kind", job.Kind,
		"lecture_id", job.LectureID, "elapsed", time.Since(start).String())
	return nil
}

// Start 实现 transport.Server，随 kratos App 启动。
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	defer close(done)
	r.log.Info("pipeline worker started")
	err := r.Run(runCtx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop 取消消费循环并等待当前任务返回。
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.log.Info("pipeline worker stopped")
	return nil
}
