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

// ErrResultsNotFound means analysis has not produced a record yet.
var ErrResultsNotFound = errors.New("engagement results not found")

// ResultsRepository persists lecture.engagement_results.
type ResultsRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewResultsRepository constructs ResultsRepository.
func NewResultsRepository(db *pgxpool.Pool, logger log.Logger) *ResultsRepository {
	return &ResultsRepository{db: db, log: log.NewHelper(logger)}
}

const saveResultsSQL = `
INSERT INTO lecture.engagement_results (lecture_id, user_id, question_results, questions_completed,
                                        questions_for_revision, topics_completed, topics_for_revision, error)
VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6::jsonb, $7::jsonb, NULL)
ON CONFLICT (lecture_id, user_id) DO UPDATE
SET question_results = EXCLUDED.question_results,
    questions_completed = EXCLUDED.questions_completed,
    questions_for_revision = EXCLUDED.questions_for_revision,
    topics_completed = EXCLUDED.topics_completed,
    topics_for_revision = EXCLUDED.topics_for_revision,
    error = NULL
RETURNING updated_at`

// Save writes a successful analysis in one statement, replacing any earlier record.
func (r *ResultsRepository) Save(ctx context.Context, result *po.EngagementResult) error {
	if result == nil {
		return fmt.Errorf("save results: nil record")
	}
	questions := result.QuestionResults
	if questions == nil {
		questions = map[string]po.QuestionResult{}
	}
	params := make([]any, 0, 7)
	params = append(params, result.LectureID, result.UserID)
	for _, v := range []any{
		questions,
		nonNilStrings(result.QuestionsCompleted),
		nonNilStrings(result.QuestionsForRevision),
		nonNilStrings(result.TopicsCompleted),
		nonNilStrings(result.TopicsForRevision),
	} {
		encoded, err := jsonParam(v)
		if err != nil {
			return err
		}
		params = append(params, encoded)
	}
	if err := r.db.QueryRow(ctx, saveResultsSQL, params...).Scan(&result.UpdatedAt); err != nil {
		r.log.WithContext(ctx).Errorf("save results failed: lecture_id=%s user_id=%s err=%v", result.LectureID, result.UserID, err)
		return fmt.Errorf("save results: %w", err)
	}
	result.Error = nil
	return nil
}

const markResultsErrorSQL = `
INSERT INTO lecture.engagement_results (lecture_id, user_id, error)
VALUES ($1, $2, $3)
ON CONFLICT (lecture_id, user_id) DO UPDATE
SET question_results = '{}'::jsonb,
    questions_completed = '[]'::jsonb,
    questions_for_revision = '[]'::jsonb,
    topics_completed = '[]'::jsonb,
    topics_for_revision = '[]'::jsonb,
    error = EXCLUDED.error`

// MarkError records a failed run; readers must treat the record as unusable.
func (r *ResultsRepository) MarkError(ctx context.Context, lectureID, userID, message string) error {
	if _, err := r.db.Exec(ctx, markResultsErrorSQL, lectureID, userID, message); err != nil {
		r.log.WithContext(ctx).Errorf("mark results error failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return fmt.Errorf("mark results error: %w", err)
	}
	return nil
}

const getResultsSQL = `
SELECT question_results, questions_completed, questions_for_revision, topics_completed, topics_for_revision,
       error, updated_at
FROM lecture.engagement_results
WHERE lecture_id = $1 AND user_id = $2`

// Get returns the record, including failed ones, or ErrResultsNotFound.
func (r *ResultsRepository) Get(ctx context.Context, lectureID, userID string) (*po.EngagementResult, error) {
	var (
		questions, completed, revision, topicsDone, topicsRevision []byte
		errText                                                    pgtype.Text
		result                                                     = &po.EngagementResult{LectureID: lectureID, UserID: userID}
	)
	err := r.db.QueryRow(ctx, getResultsSQL, lectureID, userID).Scan(
		&questions, &completed, &revision, &topicsDone, &topicsRevision, &errText, &result.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultsNotFound
		}
		r.log.WithContext(ctx).Errorf("get results failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return nil, fmt.Errorf("get results: %w", err)
	}
	targets := []struct {
		raw []byte
		dst any
	}{
		{questions, &result.QuestionResults},
		{completed, &result.QuestionsCompleted},
		{revision, &result.QuestionsForRevision},
		{topicsDone, &result.TopicsCompleted},
		{topicsRevision, &result.TopicsForRevision},
	}
	for _, target := range targets {
		if err := decodeJSON(target.raw, target.dst); err != nil {
			return nil, err
		}
	}
	result.Error = ptrFromText(errText)
	return result, nil
}
