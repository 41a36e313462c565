package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/metadata"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/gorilla/websocket"
)

// OperationWatchStatus 为状态推送的 operation 名称。
const OperationWatchStatus = "/lecture.v1.LectureQueryService/WatchStatus"

const (
	defaultStatusPollInterval = time.Second
	wsWriteTimeout            = 5 * time.Second
)

// StatusStreamHandler 通过 WebSocket 推送处理状态，状态变化时发送快照，终态时关闭连接。
type StatusStreamHandler struct {
	*BaseHandler
	svc      LectureQueries
	interval time.Duration
	upgrader websocket.Upgrader
	log      *log.Helper
}

// NewStatusStreamHandler 构造 StatusStreamHandler。
func NewStatusStreamHandler(base *BaseHandler, svc LectureQueries, interval time.Duration, logger log.Logger) *StatusStreamHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	if interval <= 0 {
		interval = defaultStatusPollInterval
	}
	return &StatusStreamHandler{
		BaseHandler: base,
		svc:         svc,
		interval:    interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.NewHelper(logger),
	}
}

// Register 挂载 WebSocket 路由。
func (h *StatusStreamHandler) Register(r *khttp.Router) {
	r.GET("/ws/status/{lecture_id}", h.Watch)
}

// Watch 在升级前读取一次状态，未登录或课程不存在时直接返回 HTTP 错误。
func (h *StatusStreamHandler) Watch(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	reply, err := h.call(ctx, OperationWatchStatus, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetStatus(c, meta.UserID, lectureID)
	})
	if err != nil {
		return err
	}
	current := reply.(*vo.LectureStatus)
	meta := h.RequestMetadata(ctx)

	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// Upgrade 已写出错误响应
		h.log.WithContext(ctx).Warnf("websocket upgrade failed: lecture_id=%s err=%v", lectureID, err)
		return nil
	}
	defer conn.Close()

	// server 超时只约束升级前的请求，推送循环脱离请求生命周期
	streamCtx, cancel := context.WithCancel(metadata.Inject(context.WithoutCancel(ctx), meta))
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.stream(streamCtx, conn, meta.UserID, lectureID, current)
	return nil
}

func (h *StatusStreamHandler) stream(ctx context.Context, conn *websocket.Conn, userID, lectureID string, current *vo.LectureStatus) {
	if err := h.push(conn, current); err != nil {
		return
	}
	if current.Terminal() {
		h.closeNormal(conn, current.Status)
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		qctx, qcancel := h.WithTimeout(ctx, HandlerTypeQuery)
		next, err := h.svc.GetStatus(qctx, userID, lectureID)
		qcancel()
		if err != nil {
			h.log.WithContext(ctx).Warnf("status poll failed: lecture_id=%s err=%v", lectureID, err)
			continue
		}
		if !next.SameProgress(current) {
			if err := h.push(conn, next); err != nil {
				return
			}
			current = next
		}
		if next.Terminal() {
			h.closeNormal(conn, next.Status)
			return
		}
	}
}

func (h *StatusStreamHandler) push(conn *websocket.Conn, status *vo.LectureStatus) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(status); err != nil {
		h.log.Debugf("websocket write failed: lecture_id=%s err=%v", status.LectureID, err)
		return err
	}
	return nil
}

func (h *StatusStreamHandler) closeNormal(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
}
