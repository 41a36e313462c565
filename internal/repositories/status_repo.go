package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStatusNotFound means no run has been started for the lecture/user pair.
var ErrStatusNotFound = errors.New("processing status not found")

// Translation sub-state progress milestones.
const (
	TranslationProgressStarted = 10
	TranslationProgressDone    = 100
)

// StatusRepository persists lecture.processing_status. The pipeline orchestrator is its
// only writer for the run fields; the translation fields are owned by translation jobs.
type StatusRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewStatusRepository constructs StatusRepository.
func NewStatusRepository(db *pgxpool.Pool, logger log.Logger) *StatusRepository {
	return &StatusRepository{db: db, log: log.NewHelper(logger)}
}

const statusColumns = `lecture_id, user_id, status, stage, progress, error, preferred_language,
       translation_status, translation_language, translation_progress, translation_error,
       created_at, updated_at`

const startStatusSQL = `
INSERT INTO lecture.processing_status (lecture_id, user_id, status, stage, progress, error, preferred_language,
                                       translation_status, translation_language, translation_progress, translation_error)
VALUES ($1, $2, 'processing', $3, $4, NULL, $5, '', NULL, 0, NULL)
ON CONFLICT (lecture_id, user_id) DO UPDATE
SET status = 'processing',
    stage = EXCLUDED.stage,
    progress = EXCLUDED.progress,
    error = NULL,
    preferred_language = EXCLUDED.preferred_language,
    translation_status = '',
    translation_language = NULL,
    translation_progress = 0,
    translation_error = NULL
RETURNING ` + statusColumns

// Start (re)initializes the status record for a new run in the uploading stage.
func (r *StatusRepository) Start(ctx context.Context, lectureID, userID string, preferred po.Language) (*po.ProcessingStatus, error) {
	row := r.db.QueryRow(ctx, startStatusSQL, lectureID, userID,
		string(po.StageUploading), po.StageUploading.Progress(), string(preferred))
	status, err := scanStatus(row)
	if err != nil {
		r.log.WithContext(ctx).Errorf("start status failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return nil, fmt.Errorf("start status: %w", err)
	}
	return status, nil
}

const updateStageSQL = `
UPDATE lecture.processing_status
SET status = 'processing', stage = $3, progress = $4, error = NULL
WHERE lecture_id = $1 AND user_id = $2`

// UpdateStage persists the label and milestone of the stage about to run.
func (r *StatusRepository) UpdateStage(ctx context.Context, lectureID, userID, label string, progress int) error {
	return r.exec(ctx, "update stage", updateStageSQL, lectureID, userID, label, progress)
}

const markCompletedSQL = `
UPDATE lecture.processing_status
SET status = 'completed', stage = $3, progress = $4, error = NULL
WHERE lecture_id = $1 AND user_id = $2`

// MarkCompleted moves the run to its successful terminal state.
func (r *StatusRepository) MarkCompleted(ctx context.Context, lectureID, userID string) error {
	return r.exec(ctx, "mark completed", markCompletedSQL, lectureID, userID,
		string(po.StageCompleted), po.StageCompleted.Progress())
}

const markErrorSQL = `
UPDATE lecture.processing_status
SET status = 'error', stage = $3, progress = $4, error = $5
WHERE lecture_id = $1 AND user_id = $2`

// MarkError moves the run to the error state with a human-readable message.
func (r *StatusRepository) MarkError(ctx context.Context, lectureID, userID, message string) error {
	return r.exec(ctx, "mark error", markErrorSQL, lectureID, userID,
		string(po.StageError), po.StageError.Progress(), message)
}

const getStatusSQL = `SELECT ` + statusColumns + `
FROM lecture.processing_status
WHERE lecture_id = $1 AND user_id = $2`

// Get returns the status record or ErrStatusNotFound.
func (r *StatusRepository) Get(ctx context.Context, lectureID, userID string) (*po.ProcessingStatus, error) {
	status, err := scanStatus(r.db.QueryRow(ctx, getStatusSQL, lectureID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		r.log.WithContext(ctx).Errorf("get status failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return nil, fmt.Errorf("get status: %w", err)
	}
	return status, nil
}

// A translation may be requested for a lecture whose run record predates the status
// table, so a missing row is created as an already completed run.
const startTranslationSQL = `
INSERT INTO lecture.processing_status (lecture_id, user_id, status, stage, progress,
                                       translation_status, translation_language, translation_progress, translation_error)
VALUES ($1, $2, 'completed', 'completed', 100, 'processing', $3, $4, NULL)
ON CONFLICT (lecture_id, user_id) DO UPDATE
SET translation_status = 'processing',
    translation_language = EXCLUDED.translation_language,
    translation_progress = EXCLUDED.translation_progress,
    translation_error = NULL`

// StartTranslation marks the translation sub-state as processing for lang.
func (r *StatusRepository) StartTranslation(ctx context.Context, lectureID, userID string, lang po.Language) error {
	if _, err := r.db.Exec(ctx, startTranslationSQL, lectureID, userID, string(lang), TranslationProgressStarted); err != nil {
		r.log.WithContext(ctx).Errorf("start translation status failed: lecture_id=%s language=%s err=%v", lectureID, lang, err)
		return fmt.Errorf("start translation status: %w", err)
	}
	return nil
}

const finishTranslationSQL = `
UPDATE lecture.processing_status
SET translation_status = $3, translation_language = $4, translation_progress = $5, translation_error = $6
WHERE lecture_id = $1 AND user_id = $2`

// CompleteTranslation marks the translation sub-state as completed.
func (r *StatusRepository) CompleteTranslation(ctx context.Context, lectureID, userID string, lang po.Language) error {
	return r.exec(ctx, "complete translation status", finishTranslationSQL, lectureID, userID,
		string(po.TranslationStateCompleted), string(lang), TranslationProgressDone, pgtype.Text{})
}

// FailTranslation records a failed translation. The run status is left untouched.
func (r *StatusRepository) FailTranslation(ctx context.Context, lectureID, userID string, lang po.Language, message string) error {
	return r.exec(ctx, "fail translation status", finishTranslationSQL, lectureID, userID,
		string(po.TranslationStateError), string(lang), 0, textFromPtr(&message))
}

func (r *StatusRepository) exec(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		r.log.WithContext(ctx).Errorf("%s failed: args=%v err=%v", op, args[:2], err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusNotFound
	}
	return nil
}

func scanStatus(row pgx.Row) (*po.ProcessingStatus, error) {
	var (
		s                                po.ProcessingStatus
		status, preferred, translation   string
		errText, translationErr, transTo pgtype.Text
	)
	if err := row.Scan(
		&s.LectureID, &s.UserID, &status, &s.Stage, &s.Progress, &errText, &preferred,
		&translation, &transTo, &s.TranslationProgress, &translationErr,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Status = po.RunStatus(status)
	s.PreferredLanguage = po.Language(preferred)
	s.Error = ptrFromText(errText)
	s.TranslationStatus = po.TranslationState(translation)
	s.TranslationError = ptrFromText(translationErr)
	if transTo.Valid {
		lang := po.Language(transTo.String)
		s.TranslationLanguage = &lang
	}
	return &s, nil
}
