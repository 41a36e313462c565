package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/aiparse"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
)

const questionLocatorPrompt = `%s



Analyze this transcript and give me the time stamp in JSON format,
where questions are being asked.
Use this JSON schema:

QuestionTimestamps = Dict(str: List[Dict(str: List(int, int))])

Example:
QuestionTimestamps = {"questions": [{"Is the 2+2=4?": [15.222, 17.222]}, {"Is the capital of France, Paris?": [254.506, 258.990]}]}

Return: QuestionTimestamps

(The first timestamp is for answering yes, and the second timestamp is for answering no).`

// QuestionLocator 让模型从带时间戳的转写中找出课堂提问及 yes/no 作答时间点。
type QuestionLocator struct {
	ai      TextGenerator
	retrier *Retrier
	log     *log.Helper
	metrics *PipelineMetrics
}

// NewQuestionLocator 构造问题定位器。
func NewQuestionLocator(ai TextGenerator, retrier *Retrier, metrics *PipelineMetrics, logger log.Logger) (*QuestionLocator, error) {
	if ai == nil {
		return nil, errors.New("question locator: text generator is required")
	}
	return &QuestionLocator{ai: ai, retrier: retrier, metrics: metrics, log: log.NewHelper(logger)}, nil
}

// Locate 返回问题区间。模型输出无法解析时降级为空列表并记录指标，不视为失败；
// 模型调用本身失败（重试耗尽）返回 ErrAnalysis。
func (l *QuestionLocator) Locate(ctx context.Context, segments []po.Segment) ([]po.QuestionInterval, error) {
	payload, err := json.Marshal(segments)
	if err != nil {
		return nil, fmt.Errorf("%w: encode transcript: %w", ErrAnalysis, err)
	}

	raw, err := l.retrier.Generate(ctx, "locate_questions", l.ai, fmt.Sprintf(questionLocatorPrompt, payload))
	if err != nil {
		return nil, fmt.Errorf("%w: locate questions: %w", ErrAnalysis, err)
	}

	set, err := aiparse.ParseQuestions(aiparse.UnwrapFenced(raw))
	if err != nil {
		l.metrics.recordParseFallback(ctx)
		l.log.WithContext(ctx).Warnw("msg", "question timestamps unparseable, continuing without questions",
			"error", fmt.Errorf("%w: %w", ErrQuestionParse, err), "response_bytes", len(raw))
		return []po.QuestionInterval{}, nil
	}
	if set.Skipped > 0 {
		l.log.WithContext(ctx).Warnf("question timestamps skipped: count=%d", set.Skipped)
	}

	out := make([]po.QuestionInterval, 0, len(set.Questions))
	for _, q := range set.Questions {
		out = append(out, po.QuestionInterval{QuestionText: q.Text, YesTimestamp: q.Yes, NoTimestamp: q.No})
	}
	return out, nil
}
