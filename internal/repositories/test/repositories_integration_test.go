package repositories_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepositoriesIntegration(t *testing.T) {
	ctx := context.Background()
	pool, logger := newTestPool(ctx, t)

	transcripts := repositories.NewTranscriptRepository(pool, logger)
	translations := repositories.NewTranslationRepository(pool, logger)
	statuses := repositories.NewStatusRepository(pool, logger)
	results := repositories.NewResultsRepository(pool, logger)

	t.Run("transcript upsert replaces and derives plain text", func(t *testing.T) {
		lectureID, userID := uuid.NewString(), "user-1"

		_, err := transcripts.Get(ctx, lectureID, userID)
		require.ErrorIs(t, err, repositories.ErrTranscriptNotFound)

		first := []po.Segment{{Text: "hello", Start: 0, End: 1.5}, {Text: "class", Start: 1.5, End: 3}}
		rec, err := transcripts.Upsert(ctx, lectureID, userID, first)
		require.NoError(t, err)
		require.Equal(t, "hello\nclass", rec.PlainTranscript)

		second := []po.Segment{{Text: "again", Start: 0, End: 2}}
		_, err = transcripts.Upsert(ctx, lectureID, userID, second)
		require.NoError(t, err)

		got, err := transcripts.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, second, got.Segments)
		require.Equal(t, "again", got.PlainTranscript)

		_, err = transcripts.Get(ctx, lectureID, "someone-else")
		require.ErrorIs(t, err, repositories.ErrTranscriptNotFound)
	})

	t.Run("translations are keyed per language", func(t *testing.T) {
		lectureID, userID := uuid.NewString(), "user-2"

		_, err := translations.Get(ctx, lectureID, userID, po.LanguageHindi)
		require.ErrorIs(t, err, repositories.ErrTranslationNotFound)

		require.NoError(t, translations.Upsert(ctx, &po.TranslationRecord{
			LectureID: lectureID, UserID: userID, Language: po.LanguageTelugu, TranslatedText: "te",
		}))
		require.NoError(t, translations.Upsert(ctx, &po.TranslationRecord{
			LectureID: lectureID, UserID: userID, Language: po.LanguageHindi, TranslatedText: "hi",
		}))

		got, err := translations.Get(ctx, lectureID, userID, po.LanguageHindi)
		require.NoError(t, err)
		require.Equal(t, "hi", got.TranslatedText)

		langs, err := translations.ListLanguages(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, []po.Language{po.LanguageHindi, po.LanguageTelugu}, langs)
	})

	t.Run("status lifecycle", func(t *testing.T) {
		lectureID, userID := uuid.NewString(), "user-3"

		_, err := statuses.Get(ctx, lectureID, userID)
		require.ErrorIs(t, err, repositories.ErrStatusNotFound)
		require.ErrorIs(t, statuses.UpdateStage(ctx, lectureID, userID, "transcribing", 30), repositories.ErrStatusNotFound)

		started, err := statuses.Start(ctx, lectureID, userID, po.LanguageHindi)
		require.NoError(t, err)
		require.Equal(t, po.RunStatusProcessing, started.Status)
		require.Equal(t, "uploading", started.Stage)
		require.Equal(t, po.LanguageHindi, started.PreferredLanguage)

		label := po.StageTranslating.Label(po.LanguageHindi)
		require.NoError(t, statuses.UpdateStage(ctx, lectureID, userID, label, po.StageTranslating.Progress()))
		got, err := statuses.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, "translating_to_hindi", got.Stage)
		require.Equal(t, 65, got.Progress)

		require.NoError(t, statuses.MarkError(ctx, lectureID, userID, "no audio stream"))
		got, err = statuses.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, po.RunStatusError, got.Status)
		require.Equal(t, "error", got.Stage)
		require.Zero(t, got.Progress)
		require.NotNil(t, got.Error)
		require.Equal(t, "no audio stream", *got.Error)

		// a re-upload clears the previous failure
		restarted, err := statuses.Start(ctx, lectureID, userID, po.LanguageEnglish)
		require.NoError(t, err)
		require.Nil(t, restarted.Error)
		require.Equal(t, po.RunStatusProcessing, restarted.Status)

		require.NoError(t, statuses.MarkCompleted(ctx, lectureID, userID))
		got, err = statuses.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.True(t, got.Terminal())
		require.Equal(t, 100, got.Progress)
	})

	t.Run("translation sub-state", func(t *testing.T) {
		lectureID, userID := uuid.NewString(), "user-4"

		// no run row yet: created as an already completed run
		require.NoError(t, statuses.StartTranslation(ctx, lectureID, userID, po.LanguageTelugu))
		got, err := statuses.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, po.RunStatusCompleted, got.Status)
		require.Equal(t, po.TranslationStateProcessing, got.TranslationStatus)
		require.Equal(t, repositories.TranslationProgressStarted, got.TranslationProgress)
		require.NotNil(t, got.TranslationLanguage)
		require.Equal(t, po.LanguageTelugu, *got.TranslationLanguage)

		require.NoError(t, statuses.FailTranslation(ctx, lectureID, userID, po.LanguageTelugu, "window 2 failed"))
		got, err = statuses.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, po.TranslationStateError, got.TranslationStatus)
		require.Equal(t, "window 2 failed", *got.TranslationError)
		require.Equal(t, po.RunStatusCompleted, got.Status)

		require.NoError(t, statuses.StartTranslation(ctx, lectureID, userID, po.LanguageTelugu))
		require.NoError(t, statuses.CompleteTranslation(ctx, lectureID, userID, po.LanguageTelugu))
		got, err = statuses.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.Equal(t, po.TranslationStateCompleted, got.TranslationStatus)
		require.Equal(t, repositories.TranslationProgressDone, got.TranslationProgress)
		require.Nil(t, got.TranslationError)
	})

	t.Run("engagement results", func(t *testing.T) {
		lectureID, userID := uuid.NewString(), "user-5"

		_, err := results.Get(ctx, lectureID, userID)
		require.ErrorIs(t, err, repositories.ErrResultsNotFound)

		require.NoError(t, results.MarkError(ctx, lectureID, userID, "vision unavailable"))
		got, err := results.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.False(t, got.Usable())
		require.Empty(t, got.QuestionResults)

		record := &po.EngagementResult{
			LectureID: lectureID,
			UserID:    userID,
			QuestionResults: map[string]po.QuestionResult{
				"Is water wet?": {Yes: 32, No: 8, NotAnswered: 0},
			},
			QuestionsCompleted: []string{"Is water wet?"},
			TopicsCompleted:    []string{"Water"},
		}
		require.NoError(t, results.Save(ctx, record))

		got, err = results.Get(ctx, lectureID, userID)
		require.NoError(t, err)
		require.True(t, got.Usable())
		require.Equal(t, record.QuestionResults, got.QuestionResults)
		require.Equal(t, []string{"Is water wet?"}, got.QuestionsCompleted)
		require.Empty(t, got.QuestionsForRevision)
		require.Equal(t, []string{"Water"}, got.TopicsCompleted)
		require.Empty(t, got.TopicsForRevision)
	})
}
