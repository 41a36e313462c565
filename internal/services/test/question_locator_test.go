package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	"github.com/stretchr/testify/require"
)

var sampleSegments = []po.Segment{
	{Text: "Is 2+2=4? Raise your hand for yes.", Start: 14, End: 16},
	{Text: "Now raise for no.", Start: 16, End: 18},
}

func TestQuestionLocatorParsesFencedResponse(t *testing.T) {
	ai := &scriptedAI{respond: func(prompt string) (string, error) {
		require.Contains(t, prompt, `"text":"Is 2+2=4? Raise your hand for yes."`)
		return "```json\n{\"questions\": [{\"Is 2+2=4?\": [15.2, 17.2]}, {\"Is Paris in France?\": [254.5, 258.99]}]}\n```", nil
	}}
	locator, err := services.NewQuestionLocator(ai, fastRetrier(), nil, testLogger())
	require.NoError(t, err)

	got, err := locator.Locate(context.Background(), sampleSegments)
	require.NoError(t, err)
	require.Equal(t, []po.QuestionInterval{
		{QuestionText: "Is 2+2=4?", YesTimestamp: 15.2, NoTimestamp: 17.2},
		{QuestionText: "Is Paris in France?", YesTimestamp: 254.5, NoTimestamp: 258.99},
	}, got)
}

func TestQuestionLocatorFallsBackOnMalformedOutput(t *testing.T) {
	ai := &scriptedAI{respond: func(string) (string, error) {
		return "Sure! Here are the questions I found:\nthe first one is at 15 seconds", nil
	}}
	locator, err := services.NewQuestionLocator(ai, fastRetrier(), nil, testLogger())
	require.NoError(t, err)

	got, err := locator.Locate(context.Background(), sampleSegments)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestQuestionLocatorRetriesExternalFailures(t *testing.T) {
	attempts := 0
	ai := &scriptedAI{respond: func(string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", externalErr("429 too many requests")
		}
		return "{\"questions\": []}", nil
	}}
	locator, err := services.NewQuestionLocator(ai, fastRetrier(), nil, testLogger())
	require.NoError(t, err)

	got, err := locator.Locate(context.Background(), sampleSegments)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, 3, attempts)
}

func TestQuestionLocatorDoesNotRetryPermanentFailures(t *testing.T) {
	ai := &scriptedAI{respond: func(string) (string, error) {
		return "", errors.New("invalid api key")
	}}
	locator, err := services.NewQuestionLocator(ai, fastRetrier(), nil, testLogger())
	require.NoError(t, err)

	_, err = locator.Locate(context.Background(), sampleSegments)
	require.ErrorIs(t, err, services.ErrAnalysis)
	require.Equal(t, 1, ai.calls())
}
