package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTranscriptNotFound means no transcript exists for the lecture/user pair.
var ErrTranscriptNotFound = errors.New("transcript not found")

// TranscriptRepository persists lecture.transcripts.
type TranscriptRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewTranscriptRepository constructs TranscriptRepository.
func NewTranscriptRepository(db *pgxpool.Pool, logger log.Logger) *TranscriptRepository {
	return &TranscriptRepository{db: db, log: log.NewHelper(logger)}
}

// PlainText joins segment texts in order with newlines.
func PlainText(segments []po.Segment) string {
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	return strings.Join(texts, "\n")
}

const upsertTranscriptSQL = `
INSERT INTO lecture.transcripts (lecture_id, user_id, json_transcript, plain_transcript)
VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (lecture_id, user_id) DO UPDATE
SET json_transcript = EXCLUDED.json_transcript,
    plain_transcript = EXCLUDED.plain_transcript
RETURNING created_at, updated_at`

// Upsert stores segments and the derived plain text, replacing any previous transcript.
func (r *TranscriptRepository) Upsert(ctx context.Context, lectureID, userID string, segments []po.Segment) (*po.TranscriptRecord, error) {
	if segments == nil {
		segments = []po.Segment{}
	}
	payload, err := jsonParam(segments)
	if err != nil {
		return nil, err
	}
	record := &po.TranscriptRecord{
		LectureID:       lectureID,
		UserID:          userID,
		Segments:        segments,
		PlainTranscript: PlainText(segments),
	}
	if err := r.db.QueryRow(ctx, upsertTranscriptSQL, lectureID, userID, payload, record.PlainTranscript).
		Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
		r.log.WithContext(ctx).Errorf("upsert transcript failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return nil, fmt.Errorf("upsert transcript: %w", err)
	}
	return record, nil
}

const getTranscriptSQL = `
SELECT json_transcript, plain_transcript, created_at, updated_at
FROM lecture.transcripts
WHERE lecture_id = $1 AND user_id = $2`

// Get loads the transcript or returns ErrTranscriptNotFound.
func (r *TranscriptRepository) Get(ctx context.Context, lectureID, userID string) (*po.TranscriptRecord, error) {
	var (
		raw    []byte
		record = &po.TranscriptRecord{LectureID: lectureID, UserID: userID}
	)
	err := r.db.QueryRow(ctx, getTranscriptSQL, lectureID, userID).
		Scan(&raw, &record.PlainTranscript, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTranscriptNotFound
		}
		r.log.WithContext(ctx).Errorf("get transcript failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	if err := decodeJSON(raw, &record.Segments); err != nil {
		return nil, err
	}
	return record, nil
}
