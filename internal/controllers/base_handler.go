package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/metadata"

	kmd "github.com/go-kratos/kratos/v2/metadata"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写入类 Handler（上传、翻译请求）。
	HandlerTypeCommand
	// HandlerTypeQuery 表示只读查询 Handler。
	HandlerTypeQuery
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

const (
	fallbackDefaultTimeout = 5 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
	headerUserID           = "x-md-global-user-id"
	headerRequestID        = "x-md-request-id"
)

// BaseHandler 提供公共的超时、Metadata 解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		if timeouts.Command > 0 {
			timeouts.Default = timeouts.Command
		} else if timeouts.Query > 0 {
			timeouts.Default = timeouts.Query
		} else {
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		if timeouts.Default > 0 {
			timeouts.Query = timeouts.Default
		} else {
			timeouts.Query = fallbackQueryTimeout
		}
	}
	return &BaseHandler{timeouts: timeouts}
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// ExtractMetadata 从 kratos metadata 中间件注入的 server metadata 解析用户与请求标识。
func (h *BaseHandler) ExtractMetadata(ctx context.Context) metadata.HandlerMetadata {
	md, ok := kmd.FromServerContext(ctx)
	if !ok {
		return metadata.HandlerMetadata{}
	}
	return metadata.HandlerMetadata{
		UserID:    strings.TrimSpace(md.Get(headerUserID)),
		RequestID: strings.TrimSpace(md.Get(headerRequestID)),
	}
}

// RequestMetadata 直接读取请求头，用于不经过中间件链的流式与 WebSocket 路由。
func (h *BaseHandler) RequestMetadata(ctx khttp.Context) metadata.HandlerMetadata {
	if meta := h.ExtractMetadata(ctx); !meta.IsZero() {
		return meta
	}
	header := ctx.Request().Header
	return metadata.HandlerMetadata{
		UserID:    strings.TrimSpace(header.Get(headerUserID)),
		RequestID: strings.TrimSpace(header.Get(headerRequestID)),
	}
}

// call 让 fn 经过 server 中间件链（recovery、metadata、logging、metrics）执行。
func (h *BaseHandler) call(ctx khttp.Context, operation string, kind HandlerType, fn func(context.Context, metadata.HandlerMetadata) (any, error)) (any, error) {
	khttp.SetOperation(ctx, operation)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		meta := h.ExtractMetadata(c)
		if !meta.HasUser() {
			// metadata 中间件未配置时退回请求头
			meta = h.RequestMetadata(ctx)
		}
		tctx, cancel := h.WithTimeout(c, kind)
		defer cancel()
		return fn(metadata.Inject(tctx, meta), meta)
	})
	return handler(ctx, nil)
}
