package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/require"
)

func newUploadService(t *testing.T, store *memMedia, statuses *memStatuses, queue *memQueue) *services.UploadService {
	t.Helper()
	svc, err := services.NewUploadService(store, statuses, queue, testLogger())
	require.NoError(t, err)
	return svc
}

func TestUploadServiceAcceptsAndEnqueues(t *testing.T) {
	store, statuses, queue := newMemMedia(), newMemStatuses(), &memQueue{}
	svc := newUploadService(t, store, statuses, queue)

	got, err := svc.Upload(context.Background(), services.UploadInput{
		UserID:      "u1",
		Filename:    "lecture.mov",
		ContentType: "video/quicktime",
		Language:    "Hindi",
		Body:        strings.NewReader("video-bytes"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, got.LectureID)
	require.Equal(t, "processing", got.Status)
	require.Equal(t, "hindi", got.PreferredLanguage)

	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	require.Equal(t, vo.JobKindProcess, job.Kind)
	require.Equal(t, got.JobID, job.ID)
	require.Equal(t, "u1/"+got.LectureID+".mp4", job.MediaKey)
	require.Equal(t, "hindi", job.Language)
	require.NoError(t, job.Validate())
	require.Equal(t, []byte("video-bytes"), store.objects[job.MediaKey])

	status, err := statuses.Get(context.Background(), got.LectureID, "u1")
	require.NoError(t, err)
	require.Equal(t, po.RunStatusProcessing, status.Status)
	require.Equal(t, string(po.StageUploading), status.Stage)
	require.Equal(t, po.LanguageHindi, status.PreferredLanguage)
}

func TestUploadServiceKeepsSuppliedLectureID(t *testing.T) {
	queue := &memQueue{}
	svc := newUploadService(t, newMemMedia(), newMemStatuses(), queue)

	got, err := svc.Upload(context.Background(), services.UploadInput{
		LectureID: "lecture-42",
		UserID:    "u1",
		Filename:  "a.mp4",
		Body:      strings.NewReader("x"),
	})
	require.NoError(t, err)
	require.Equal(t, "lecture-42", got.LectureID)
	require.Equal(t, "english", queue.jobs[0].Language)
}

func TestUploadServiceValidation(t *testing.T) {
	svc := newUploadService(t, newMemMedia(), newMemStatuses(), &memQueue{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, services.UploadInput{Filename: "a.mp4", Body: strings.NewReader("x")})
	require.Equal(t, 401, kerrors.Code(err))

	_, err = svc.Upload(ctx, services.UploadInput{UserID: "u1", Body: strings.NewReader("x")})
	require.Equal(t, 400, kerrors.Code(err))

	_, err = svc.Upload(ctx, services.UploadInput{UserID: "u1", Filename: "a.mp4", Language: "french", Body: strings.NewReader("x")})
	require.Equal(t, 400, kerrors.Code(err))
	require.Equal(t, services.ReasonUnsupportedLanguage, kerrors.Reason(err))
}

func TestUploadServiceEnqueueFailureMarksError(t *testing.T) {
	statuses := newMemStatuses()
	svc := newUploadService(t, newMemMedia(), statuses, &memQueue{err: errors.New("redis down")})

	_, err := svc.Upload(context.Background(), services.UploadInput{
		LectureID: "lec", UserID: "u1", Filename: "a.mp4", Body: strings.NewReader("x"),
	})
	require.Equal(t, 503, kerrors.Code(err))

	status, gerr := statuses.Get(context.Background(), "lec", "u1")
	require.NoError(t, gerr)
	require.Equal(t, po.RunStatusError, status.Status)
}
