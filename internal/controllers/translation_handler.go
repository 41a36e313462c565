package controllers

import (
	"context"
	"net/http"

	"github.com/bionicotaku/lingo-services-lecture/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-lecture/internal/metadata"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 翻译相关 operation 名称。
const (
	OperationRequestTranslation   = "/lecture.v1.TranslationService/RequestTranslation"
	OperationGetTranslationStatus = "/lecture.v1.TranslationService/GetTranslationStatus"
)

// TranslationHandler 处理显式翻译请求与进度查询。
type TranslationHandler struct {
	*BaseHandler
	svc TranslationUsecase
}

// NewTranslationHandler 构造 TranslationHandler。
func NewTranslationHandler(base *BaseHandler, svc TranslationUsecase) *TranslationHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &TranslationHandler{BaseHandler: base, svc: svc}
}

// Register 挂载翻译路由。
func (h *TranslationHandler) Register(r *khttp.Router) {
	r.POST("/translate", h.RequestTranslation)
	r.GET("/translation-status/{lecture_id}", h.GetTranslationStatus)
}

// RequestTranslation 已有译文时返回 200，已投递任务时返回 202。
func (h *TranslationHandler) RequestTranslation(ctx khttp.Context) error {
	var req dto.TranslateRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body").WithCause(err)
	}
	req.Normalize()

	reply, err := h.call(ctx, OperationRequestTranslation, HandlerTypeCommand, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.RequestTranslation(c, meta.UserID, req.LectureID, req.Language)
	})
	if err != nil {
		return err
	}
	accepted := reply.(*vo.TranslationAccepted)
	code := http.StatusAccepted
	if accepted.Status == string(po.TranslationStateCompleted) {
		code = http.StatusOK
	}
	return ctx.Result(code, accepted)
}

// GetTranslationStatus 返回某语言的翻译子状态。
func (h *TranslationHandler) GetTranslationStatus(ctx khttp.Context) error {
	lectureID, err := pathLectureID(ctx)
	if err != nil {
		return err
	}
	language := ctx.Query().Get("language")
	reply, err := h.call(ctx, OperationGetTranslationStatus, HandlerTypeQuery, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.GetTranslationStatus(c, meta.UserID, lectureID, language)
	})
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, reply)
}
