package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTranslationNotFound means no translation exists for the language.
var ErrTranslationNotFound = errors.New("translation not found")

// TranslationRepository persists lecture.translations.
type TranslationRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewTranslationRepository constructs TranslationRepository.
func NewTranslationRepository(db *pgxpool.Pool, logger log.Logger) *TranslationRepository {
	return &TranslationRepository{db: db, log: log.NewHelper(logger)}
}

const getTranslationSQL = `
SELECT translated_text, created_at
FROM lecture.translations
WHERE lecture_id = $1 AND user_id = $2 AND language = $3`

// Get returns the cached translation or ErrTranslationNotFound.
func (r *TranslationRepository) Get(ctx context.Context, lectureID, userID string, lang po.Language) (*po.TranslationRecord, error) {
	record := &po.TranslationRecord{LectureID: lectureID, UserID: userID, Language: lang}
	err := r.db.QueryRow(ctx, getTranslationSQL, lectureID, userID, string(lang)).
		Scan(&record.TranslatedText, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTranslationNotFound
		}
		r.log.WithContext(ctx).Errorf("get translation failed: lecture_id=%s language=%s err=%v", lectureID, lang, err)
		return nil, fmt.Errorf("get translation: %w", err)
	}
	return record, nil
}

const upsertTranslationSQL = `
INSERT INTO lecture.translations (lecture_id, user_id, language, translated_text)
VALUES ($1, $2, $3, $4)
ON CONFLICT (lecture_id, user_id, language) DO UPDATE
SET translated_text = EXCLUDED.translated_text
RETURNING created_at`

// Upsert stores a complete translation for one language.
func (r *TranslationRepository) Upsert(ctx context.Context, record *po.TranslationRecord) error {
	if record == nil {
		return fmt.Errorf("upsert translation: nil record")
	}
	if err := r.db.QueryRow(ctx, upsertTranslationSQL, record.LectureID, record.UserID, string(record.Language), record.TranslatedText).
		Scan(&record.CreatedAt); err != nil {
		r.log.WithContext(ctx).Errorf("upsert translation failed: lecture_id=%s language=%s err=%v", record.LectureID, record.Language, err)
		return fmt.Errorf("upsert translation: %w", err)
	}
	return nil
}

const listTranslationLanguagesSQL = `
SELECT language
FROM lecture.translations
WHERE lecture_id = $1 AND user_id = $2
ORDER BY language`

// ListLanguages returns the languages that already have a translation.
func (r *TranslationRepository) ListLanguages(ctx context.Context, lectureID, userID string) ([]po.Language, error) {
	rows, err := r.db.Query(ctx, listTranslationLanguagesSQL, lectureID, userID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list translations failed: lecture_id=%s err=%v", lectureID, err)
		return nil, fmt.Errorf("list translations: %w", err)
	}
	langs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (po.Language, error) {
		var lang string
		err := row.Scan(&lang)
		return po.Language(lang), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan translations: %w", err)
	}
	return langs, nil
}
