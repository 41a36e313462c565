package services_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/require"
)

type queryFixture struct {
	svc          *services.LectureQueryService
	ai           *scriptedAI
	transcripts  *memTranscripts
	translations *memTranslations
	statuses     *memStatuses
	results      *memResults
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	f := &queryFixture{
		ai:           lectureAI("", "yes"),
		transcripts:  newMemTranscripts(),
		translations: newMemTranslations(),
		statuses:     newMemStatuses(),
		results:      newMemResults(),
	}
	translator, err := services.NewTranslator(f.translations, f.ai, nil, testLogger())
	require.NoError(t, err)
	f.svc = services.NewLectureQueryService(configloader.PipelineConfig{TranslationWindow: 30000},
		f.transcripts, f.translations, f.statuses, f.results, translator, newMemMedia(), testLogger())
	return f
}

func TestQueryStatus(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetStatus(ctx, "u1", "lec")
	require.Equal(t, services.ReasonLectureNotFound, kerrors.Reason(err))

	_, err = f.statuses.Start(ctx, "lec", "u1", po.LanguageTelugu)
	require.NoError(t, err)
	got, err := f.svc.GetStatus(ctx, "u1", "lec")
	require.NoError(t, err)
	require.Equal(t, "processing", got.Status)
	require.Equal(t, "telugu", got.PreferredLanguage)

	// 其他用户看不到
	_, err = f.svc.GetStatus(ctx, "u2", "lec")
	require.Equal(t, 404, kerrors.Code(err))

	_, err = f.svc.GetStatus(ctx, "", "lec")
	require.Equal(t, 401, kerrors.Code(err))
}

func TestQueryTranscriptLanguages(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	f.transcripts.put("lec", "u1", "hello class")

	got, err := f.svc.GetTranscript(ctx, "u1", "lec", "english")
	require.NoError(t, err)
	require.Equal(t, "hello class", got.Text)

	got, err = f.svc.GetTranscript(ctx, "u1", "lec", "hindi")
	require.NoError(t, err)
	require.Equal(t, "translated", got.Text)
	require.False(t, got.Cached)

	got, err = f.svc.GetTranscript(ctx, "u1", "lec", "HINDI")
	require.NoError(t, err)
	require.True(t, got.Cached)
	require.Equal(t, 1, f.ai.callsContaining(markerTranslate))

	_, err = f.svc.GetTranscript(ctx, "u1", "lec", "klingon")
	require.Equal(t, 400, kerrors.Code(err))

	_, err = f.svc.GetTranscript(ctx, "u1", "missing", "english")
	require.Equal(t, services.ReasonTranscriptNotFound, kerrors.Reason(err))
}

func TestQueryTranscriptDefaultsToPreferredLanguage(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	f.transcripts.put("lec", "u1", "hello class")

	got, err := f.svc.GetTranscript(ctx, "u1", "lec", "")
	require.NoError(t, err)
	require.Equal(t, po.LanguageEnglish, got.Language)

	_, err = f.statuses.Start(ctx, "lec", "u1", po.LanguageTelugu)
	require.NoError(t, err)
	got, err = f.svc.GetTranscript(ctx, "u1", "lec", "")
	require.NoError(t, err)
	require.Equal(t, po.LanguageTelugu, got.Language)
}

func TestQueryResultsHidesFailedRuns(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetResults(ctx, "u1", "lec")
	require.Equal(t, services.ReasonResultsNotFound, kerrors.Reason(err))

	require.NoError(t, f.results.MarkError(ctx, "lec", "u1", "analysis failed"))
	_, err = f.svc.GetResults(ctx, "u1", "lec")
	require.Equal(t, 404, kerrors.Code(err))

	require.NoError(t, f.results.Save(ctx, &po.EngagementResult{
		LectureID:          "lec",
		UserID:             "u1",
		QuestionResults:    map[string]po.QuestionResult{"q": {Yes: 40}},
		QuestionsCompleted: []string{"q"},
	}))
	got, err := f.svc.GetResults(ctx, "u1", "lec")
	require.NoError(t, err)
	require.Equal(t, []string{"q"}, got.QuestionsCompleted)
	require.NotNil(t, got.TopicsCompleted)
}

func TestQueryListTranslations(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListTranslations(ctx, "u1", "")
	require.Equal(t, 400, kerrors.Code(err))
	_, err = f.svc.ListTranslations(ctx, "u1", "lec")
	require.Equal(t, 404, kerrors.Code(err))

	f.transcripts.put("lec", "u1", "text")
	got, err := f.svc.ListTranslations(ctx, "u1", "lec")
	require.NoError(t, err)
	require.Equal(t, []string{"english"}, got.AvailableLanguages)

	require.NoError(t, f.translations.Upsert(ctx, &po.TranslationRecord{LectureID: "lec", UserID: "u1", Language: po.LanguageTelugu}))
	got, err = f.svc.ListTranslations(ctx, "u1", "lec")
	require.NoError(t, err)
	require.Equal(t, []string{"english", "telugu"}, got.AvailableLanguages)
}

func TestQueryMediaURLUnsupportedOnLocalStore(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetMediaURL(ctx, "u1", "lec")
	require.Equal(t, services.ReasonLectureNotFound, kerrors.Reason(err))

	_, err = f.statuses.Start(ctx, "lec", "u1", po.LanguageEnglish)
	require.NoError(t, err)
	_, err = f.svc.GetMediaURL(ctx, "u1", "lec")
	require.Equal(t, services.ReasonSigningNotConfigured, kerrors.Reason(err))
}
