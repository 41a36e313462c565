package pipeline

import (
	"context"
	"sync"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
)

// MemoryQueue 是进程内的带缓冲队列，API 与 worker 同进程运行时使用。进程退出后未处理任务丢失。
type MemoryQueue struct {
	jobs chan *vo.PipelineJob
	done chan struct{}
	once sync.Once
}

// NewMemoryQueue 创建容量为 buffer 的内存队列。
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{
		jobs: make(chan *vo.PipelineJob, buffer),
		done: make(chan struct{}),
	}
}

// Enqueue 写入任务；缓冲满时阻塞直到有空位或 ctx 取消。
func (q *MemoryQueue) Enqueue(ctx context.Context, job *vo.PipelineJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive 顺序消费任务。
func (q *MemoryQueue) Receive(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case job := <-q.jobs:
			_ = handler(ctx, job)
		}
	}
}

// Close 关闭队列，正在执行的任务不受影响。
func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}

// Len 返回待处理任务数。
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
