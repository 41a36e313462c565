package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/metadata"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"
	"github.com/bionicotaku/lingo-services-lecture/internal/views"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 查询相关 operation 名称。
const (
	OperationGetStatus          = "/lecture.v1.LectureQueryService/GetStatus"
	OperationGetTranscript      = "/lecture.v1.LectureQueryService/GetTranscript"
	OperationDownloadTranscript = "/lecture.v1.LectureQueryService/DownloadTranscript"
	OperationGetResults         = "/lecture.v1.LectureQueryService/GetResults"
	OperationListTranslations   = "/lecture.v1.LectureQueryService/ListTranslations"
	OperationGetMediaURL        = "/lecture.v1.LectureQueryService/GetMediaURL"
)

// LectureQueryHandler 提供状态、转写、分析结果与媒体链接的只读接口。
type LectureQueryHandler struct {
	*BaseHandler
	svc    LectureQueries
	window int
}

// NewLectureQueryHandler 构造 LectureQueryHandler。window 为转写流式输出的分窗字节数。
func NewLectureQueryHandler(base *BaseHandler, svc LectureQueries, window int) *LectureQueryHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	if window <= 0 {
		window = views.DefaultStreamWindow
	}
	return &LectureQueryHandler{BaseHandler: base, svc: svc, window: window}
}

// Register 挂载查询路由。
func (h *LectureQueryHandler) Register(r *khttp.Router) {
	r.GET("/status/{lecture_id}", h.GetStatus)
	r.GET("/transcript/{lecture_id}", h.GetTranscript)
	r.GET("/transcript/{lecture_id}/download", h.DownloadTranscript)
	r.GET("/results/{lecture_id}", h.GetResults)
	r.GET("/translations", h.ListTranslations)
	r.GET("/media/{lecture_id}", h.GetMediaURL)
}

// GetStatus 原样返回处理状态。
func (h *LectureQueryHandler) GetStatus(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	reply, err := h.call(ctx, OperationGetStatus, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetStatus(c, meta.UserID, lectureID)
	})
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, reply)
}

// GetTranscript 以 text/plain 分窗流式输出指定语言的转写。
func (h *LectureQueryHandler) GetTranscript(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	language := ctx.Query().Get("language")
	// 按需翻译可能耗时较长，使用命令类超时
	reply, err := h.call(ctx, OperationGetTranscript, HandlerTypeCommand, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetTranscript(c, meta.UserID, lectureID, language)
	})
	if err != nil {
		return err
	}
	transcript := reply.(*services.TranscriptText)

	w := ctx.Response()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Language", string(transcript.Language))
	w.WriteHeader(http.StatusOK)
	return views.StreamText(w, transcript.Text, h.window)
}

// DownloadTranscript 返回英文转写的 PDF 附件。
func (h *LectureQueryHandler) DownloadTranscript(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	reply, err := h.call(ctx, OperationDownloadTranscript, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetTranscript(c, meta.UserID, lectureID, string(po.LanguageEnglish))
	})
	if err != nil {
		return err
	}
	transcript := reply.(*services.TranscriptText)

	var buf bytes.Buffer
	if err := views.RenderTranscriptPDF(&buf, views.EnglishTranscriptTitle, transcript.Text); err != nil {
		return kerrors.InternalServer(services.ReasonQueryFailed, "failed to render transcript").WithCause(err)
	}
	w := ctx.Response()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", views.TranscriptFilename(lectureID, string(po.LanguageEnglish))))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(buf.Bytes())
	return err
}

// GetResults 返回参与度分析结果。
func (h *LectureQueryHandler) GetResults(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	reply, err := h.call(ctx, OperationGetResults, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetResults(c, meta.UserID, lectureID)
	})
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, reply)
}

// ListTranslations 返回已有的转写语言列表。
func (h *LectureQueryHandler) ListTranslations(ctx khttp.Context) error {
	lectureID := strings.TrimSpace(ctx.Query().Get("lecture_id"))
	if lectureID == "" {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "lecture_id is required")
	}
	reply, err := h.call(ctx, OperationListTranslations, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.ListTranslations(c, meta.UserID, lectureID)
	})
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, reply)
}

// GetMediaURL 返回源视频的签名下载链接。
func (h *LectureQueryHandler) GetMediaURL(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	reply, err := h.call(ctx, OperationGetMediaURL, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetMediaURL(c, meta.UserID, lectureID)
	})
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, reply)
}

func pathLectureID(ctx khttp.Context) (string, error) {
	id := strings.TrimSpace(ctx.Vars().Get("lecture_id"))
	if id == "" {
		return "", kerrors.BadRequest(services.ReasonInvalidArgument, "lecture_id is required")
	}
	return id, nil
}
