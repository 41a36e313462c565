// Package pipeline 承载处理任务的投递与消费：上传与翻译请求写入队列，
// worker 从队列取出任务交给 Service 层执行。
package pipeline

import (
	"context"
	"errors"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
)

// ErrQueueClosed 表示队列已关闭，不再接受任务。
var ErrQueueClosed = errors.New("pipeline: queue closed")

// Handler 处理单个任务。返回的错误仅用于日志，队列不会因此重投。
type Handler func(ctx context.Context, job *vo.PipelineJob) error

// Queue 是任务队列的统一抽象。
type Queue interface {
	// Enqueue 投递任务，成功返回即表示任务已持久化到队列后端。
	Enqueue(ctx context.Context, job *vo.PipelineJob) error
	// Receive 阻塞消费任务直到 ctx 取消或队列关闭。
	Receive(ctx context.Context, handler Handler) error
	// Close 释放队列资源。
	Close() error
}
