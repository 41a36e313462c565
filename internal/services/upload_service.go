package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// UploadInput 为上传用例的输入。LectureID 为空时自动生成。
type UploadInput struct {
	LectureID   string
	UserID      string
	Filename    string
	ContentType string
	Language    string
	Body        io.Reader
}

// UploadService 归档上传的视频、初始化处理状态并投递处理任务。请求在任务投递后立即返回。
type UploadService struct {
	media    mediastore.Store
	statuses StatusStore
	queue    JobEnqueuer
	log      *log.Helper
	now      func() time.Time
	newID    func() string
}

// NewUploadService 创建 UploadService。
func NewUploadService(store mediastore.Store, statuses StatusStore, queue JobEnqueuer, logger log.Logger) (*UploadService, error) {
	switch {
	case store == nil:
		return nil, errors.New("upload service: media store is required")
	case statuses == nil:
		return nil, errors.New("upload service: status repository is required")
	case queue == nil:
		return nil, errors.New("upload service: job queue is required")
	}
	return &UploadService{
		media:    store,
		statuses: statuses,
		queue:    queue,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log.NewHelper(logger),
	}, nil
}

// Upload 受理一次上传。
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*vo.UploadAccepted, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if input.Body == nil || strings.TrimSpace(input.Filename) == "" {
		return nil, invalidArgument("no video file provided")
	}
	lang, ok := po.ParseLanguage(input.Language)
	if !ok {
		return nil, UnsupportedLanguage(input.Language)
	}
	lectureID := strings.TrimSpace(input.LectureID)
	if lectureID == "" {
		lectureID = s.newID()
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := s.media.Put(ctx, mediastore.ObjectKey(userID, lectureID), input.Body, contentType)
	if err != nil {
		s.log.WithContext(ctx).Errorf("store upload failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return nil, kerrors.InternalServer(ReasonStoreMediaFailed, "failed to store video").WithCause(err)
	}

	if _, err := s.statuses.Start(ctx, lectureID, userID, lang); err != nil {
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to initialize status").WithCause(err)
	}

	job := &vo.PipelineJob{
		ID:         s.newID(),
		Kind:       vo.JobKindProcess,
		LectureID:  lectureID,
		UserID:     userID,
		MediaKey:   obj.Key,
		Language:   string(lang),
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		msg := fmt.Sprintf("enqueue processing job: %v", err)
		if merr := s.statuses.MarkError(context.WithoutCancel(ctx), lectureID, userID, msg); merr != nil {
			s.log.WithContext(ctx).Warnf("mark status error failed: lecture_id=%s err=%v", lectureID, merr)
		}
		return nil, kerrors.ServiceUnavailable(ReasonEnqueueFailed, "failed to schedule processing").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("upload accepted: lecture_id=%s user_id=%s job_id=%s bytes=%d language=%s",
		lectureID, userID, job.ID, obj.SizeBytes, lang)
	return &vo.UploadAccepted{
		LectureID:         lectureID,
		Status:            string(po.RunStatusProcessing),
		JobID:             job.ID,
		PreferredLanguage: string(lang),
		Message:           "Video upload successful. Processing started.",
	}, nil
}
