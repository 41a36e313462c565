package pipeline_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/tasks/pipeline"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	mu        sync.Mutex
	processed []string
	translate []string
	err       error
}

func (s *recordingService) Process(_ context.Context, job *vo.PipelineJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = append(s.processed, job.LectureID)
	return s.err
}

func (s *recordingService) RunTranslation(_ context.Context, job *vo.PipelineJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translate = append(s.translate, job.LectureID+":"+job.Language)
	return s.err
}

func (s *recordingService) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed), len(s.translate)
}

func processJob(id, lecture string) *vo.PipelineJob {
	return &vo.PipelineJob{ID: id, Kind: vo.JobKindProcess, LectureID: lecture, UserID: "u1", MediaKey: "u1/" + lecture + ".mp4", Language: "english"}
}

func translateJob(id, lecture, lang string) *vo.PipelineJob {
	return &vo.PipelineJob{ID: id, Kind: vo.JobKindTranslate, LectureID: lecture, UserID: "u1", Language: lang}
}

func newRunner(t *testing.T, q pipeline.Queue, svc *recordingService) *pipeline.Runner {
	t.Helper()
	r, err := pipeline.NewRunner(pipeline.RunnerParams{
		Queue:        q,
		Pipeline:     svc,
		Translations: svc,
		Logger:       log.NewStdLogger(io.Discard),
	})
	require.NoError(t, err)
	return r
}

func TestRunnerDispatchesByKind(t *testing.T) {
	q := pipeline.NewMemoryQueue(8)
	svc := &recordingService{}
	runner := newRunner(t, q, svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	require.NoError(t, q.Enqueue(ctx, processJob("j1", "lec-1")))
	require.NoError(t, q.Enqueue(ctx, translateJob("j2", "lec-1", "hindi")))
	require.NoError(t, q.Enqueue(ctx, processJob("j3", "lec-2")))

	require.Eventually(t, func() bool {
		p, tr := svc.counts()
		return p == 2 && tr == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"lec-1", "lec-2"}, svc.processed)
	require.Equal(t, []string{"lec-1:hindi"}, svc.translate)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerSwallowsJobErrors(t *testing.T) {
	q := pipeline.NewMemoryQueue(8)
	svc := &recordingService{err: errors.New("stage failed")}
	runner := newRunner(t, q, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = runner.Run(ctx) }()

	require.NoError(t, q.Enqueue(ctx, processJob("j1", "lec-1")))
	require.NoError(t, q.Enqueue(ctx, processJob("j2", "lec-2")))

	// 第一个任务失败后 Runner 继续消费
	require.Eventually(t, func() bool {
		p, _ := svc.counts()
		return p == 2
	}, time.Second, 10*time.Millisecond)
	require.Zero(t, q.Len())
}

func TestRunnerHandleSkipsInvalidJob(t *testing.T) {
	svc := &recordingService{}
	runner := newRunner(t, pipeline.NewMemoryQueue(1), svc)

	require.NoError(t, runner.Handle(context.Background(), &vo.PipelineJob{ID: "x", Kind: "unknown", LectureID: "l", UserID: "u"}))
	p, tr := svc.counts()
	require.Zero(t, p)
	require.Zero(t, tr)
}

func TestRunnerStartStop(t *testing.T) {
	q := pipeline.NewMemoryQueue(4)
	svc := &recordingService{}
	runner := newRunner(t, q, svc)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Start(context.Background()) }()

	require.NoError(t, q.Enqueue(context.Background(), processJob("j1", "lec-1")))
	require.Eventually(t, func() bool {
		p, _ := svc.counts()
		return p == 1
	}, time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, runner.Stop(stopCtx))
	require.NoError(t, <-errCh)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := pipeline.NewRunner(pipeline.RunnerParams{})
	require.Error(t, err)
	_, err = pipeline.NewRunner(pipeline.RunnerParams{Queue: pipeline.NewMemoryQueue(1)})
	require.Error(t, err)
}

func TestMemoryQueueRejectsAfterClose(t *testing.T) {
	q := pipeline.NewMemoryQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	require.ErrorIs(t, q.Enqueue(context.Background(), processJob("j1", "lec")), pipeline.ErrQueueClosed)
	require.NoError(t, q.Receive(context.Background(), func(context.Context, *vo.PipelineJob) error { return nil }))
}

func TestMemoryQueueValidatesJob(t *testing.T) {
	q := pipeline.NewMemoryQueue(1)
	require.Error(t, q.Enqueue(context.Background(), &vo.PipelineJob{ID: "x", Kind: vo.JobKindProcess, LectureID: "l", UserID: "u"}))
}

func TestMemoryQueueEnqueueRespectsContext(t *testing.T) {
	q := pipeline.NewMemoryQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), processJob("j1", "lec")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Enqueue(ctx, processJob("j2", "lec")), context.DeadlineExceeded)
}
