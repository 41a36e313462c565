package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/bionicotaku/lingo-services-lecture/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-lecture/internal/metadata"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 上传相关 operation 名称，供 logging/metrics 中间件使用。
const (
	OperationUpload = "/lecture.v1.LectureService/Upload"
)

const reasonPayloadTooLarge = "PAYLOAD_TOO_LARGE"

// UploadHandler 处理 multipart 视频上传。
type UploadHandler struct {
	*BaseHandler
	svc      UploadUsecase
	maxBytes int64
}

// NewUploadHandler 构造 UploadHandler。maxBytes<=0 表示不限制请求体大小。
func NewUploadHandler(base *BaseHandler, svc UploadUsecase, maxBytes int64) *UploadHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &UploadHandler{BaseHandler: base, svc: svc, maxBytes: maxBytes}
}

// Register 挂载上传路由。
func (h *UploadHandler) Register(r *khttp.Router) {
	r.POST("/upload", h.Upload)
	r.POST("/upload/{lecture_id}", h.Upload)
}

// Upload 接收 video 文件字段与可选 language 字段，受理后返回 202。
func (h *UploadHandler) Upload(ctx khttp.Context) error {
	if h.svc == nil {
		return kerrors.InternalServer(services.ReasonStoreMediaFailed, "upload service not available")
	}
	req := ctx.Request()
	if h.maxBytes > 0 {
		req.Body = http.MaxBytesReader(ctx.Response(), req.Body, h.maxBytes)
	}

	file, header, err := req.FormFile(dto.FieldVideo)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return kerrors.New(http.StatusRequestEntityTooLarge, reasonPayloadTooLarge, "video exceeds upload limit")
		case errors.Is(err, http.ErrMissingFile):
			return kerrors.BadRequest(services.ReasonInvalidArgument, "no video file provided")
		default:
			return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid multipart form").WithCause(err)
		}
	}
	defer file.Close()

	lectureID := ctx.Vars().Get("lecture_id")
	language := req.FormValue(dto.FieldLanguage)

	reply, err := h.call(ctx, OperationUpload, HandlerTypeCommand, func(c context.Context, meta metadata.HandlerMetadata) (any, error) {
		return h.svc.Upload(c, dto.ToUploadInput(lectureID, header, file, language, meta))
	})
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusAccepted, reply)
}
