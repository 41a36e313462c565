package controllers

import (
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet 暴露 Handler 构造函数及其用例绑定。
var ProviderSet = wire.NewSet(
	ProvideBaseHandler,
	ProvideUploadHandler,
	ProvideLectureQueryHandler,
	ProvideTranslationHandler,
	ProvideStatusStreamHandler,
	ProvideRoutes,
	wire.Bind(new(UploadUsecase), new(*services.UploadService)),
	wire.Bind(new(LectureQueries), new(*services.LectureQueryService)),
	wire.Bind(new(TranslationUsecase), new(*services.TranslationService)),
)

// RouteRegistrar 由各 Handler 实现，负责把自身路由挂到 kratos Router。
type RouteRegistrar interface {
	Register(r *khttp.Router)
}

// Routes 聚合全部 Handler，供 HTTP server 统一挂载。
type Routes []RouteRegistrar

// ProvideBaseHandler 由 server.handlers 配置构造 BaseHandler。
func ProvideBaseHandler(cfg configloader.ServerConfig) *BaseHandler {
	return NewBaseHandler(HandlerTimeouts{
		Default: cfg.Handlers.Default,
		Command: cfg.Handlers.Command,
		Query:   cfg.Handlers.Query,
	})
}

// ProvideUploadHandler 注入上传大小上限。
func ProvideUploadHandler(base *BaseHandler, svc UploadUsecase, cfg configloader.ServerConfig) *UploadHandler {
	return NewUploadHandler(base, svc, cfg.MaxUploadBytes)
}

// ProvideLectureQueryHandler 注入转写分窗大小。
func ProvideLectureQueryHandler(base *BaseHandler, svc LectureQueries, cfg configloader.PipelineConfig) *LectureQueryHandler {
	return NewLectureQueryHandler(base, svc, cfg.StreamWindow)
}

// ProvideTranslationHandler 构造 TranslationHandler。
func ProvideTranslationHandler(base *BaseHandler, svc TranslationUsecase) *TranslationHandler {
	return NewTranslationHandler(base, svc)
}

// ProvideStatusStreamHandler 注入状态轮询间隔。
func ProvideStatusStreamHandler(base *BaseHandler, svc LectureQueries, cfg configloader.PipelineConfig, logger log.Logger) *StatusStreamHandler {
	return NewStatusStreamHandler(base, svc, cfg.StatusPollInterval, logger)
}

// ProvideRoutes 汇总全部路由。
func ProvideRoutes(upload *UploadHandler, queries *LectureQueryHandler, translations *TranslationHandler, status *StatusStreamHandler) Routes {
	return Routes{upload, queries, translations, status}
}
