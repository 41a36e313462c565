package controllers

import (
	"context"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"
)

// UploadUsecase 为上传 Handler 依赖的用例。
type UploadUsecase interface {
	Upload(ctx context.Context, input services.UploadInput) (*vo.UploadAccepted, error)
}

// LectureQueries 为只读查询 Handler 依赖的用例。
type LectureQueries interface {
	GetStatus(ctx context.Context, userID, lectureID string) (*vo.LectureStatus, error)
	GetTranscript(ctx context.Context, userID, lectureID, language string) (*services.TranscriptText, error)
	GetResults(ctx context.Context, userID, lectureID string) (*vo.EngagementResults, error)
	ListTranslations(ctx context.Context, userID, lectureID string) (*vo.AvailableTranslations, error)
	GetMediaURL(ctx context.Context, userID, lectureID string) (*vo.MediaURL, error)
}

// TranslationUsecase 为翻译 Handler 依赖的用例。
type TranslationUsecase interface {
	RequestTranslation(ctx context.Context, userID, lectureID, language string) (*vo.TranslationAccepted, error)
	GetTranslationStatus(ctx context.Context, userID, lectureID, language string) (*vo.TranslationStatus, error)
}

var (
	_ UploadUsecase      = (*services.UploadService)(nil)
	_ LectureQueries     = (*services.LectureQueryService)(nil)
	_ TranslationUsecase = (*services.TranslationService)(nil)
)
