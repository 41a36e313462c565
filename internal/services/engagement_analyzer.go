package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/aiparse"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
)

const groundTruthPrompt = `%s

Give me 1 word answer whether the correct answer to this question
is either yes or no. Do not return anything else, just that single word.

Example,
    'Is capital of Italy Rome?'

    Return: yes (one word yes or no)`

const topicsPrompt = `%s

Give me the %s topics relating to each question in a list format.
For example,
    ['Does supervised learning have output labels?', 'Is capital of Greece Athens?']

    Should return: ['Machine Learning', 'Artificial Intelligence', 'General Knowledge', 'Geography']

    Just give a list and do not print anything else. Do not take the example for its factual accuracy, only for formatting.

Return: List(str)`

// EngagementConfig 是互动分析的常量。
type EngagementConfig struct {
	TotalStudents       int
	CompletionThreshold float64
}

// EngagementAnalyzer 在每个问题的 yes/no 区间内逐帧统计举手人数，
// 结合模型给出的正确答案把问题归为已掌握或待复习，并生成对应主题。
type EngagementAnalyzer struct {
	media   MediaToolkit
	vision  HandRaiseDetector
	ai      TextGenerator
	retrier *Retrier
	cfg     EngagementConfig
	log     *log.Helper
	metrics *PipelineMetrics
}

// NewEngagementAnalyzer 构造互动分析器。
func NewEngagementAnalyzer(toolkit MediaToolkit, vision HandRaiseDetector, ai TextGenerator, retrier *Retrier, cfg EngagementConfig, metrics *PipelineMetrics, logger log.Logger) (*EngagementAnalyzer, error) {
	switch {
	case toolkit == nil:
		return nil, errors.New("engagement analyzer: media toolkit is required")
	case vision == nil:
		return nil, errors.New("engagement analyzer: hand-raise detector is required")
	case ai == nil:
		return nil, errors.New("engagement analyzer: text generator is required")
	case cfg.TotalStudents <= 0:
		return nil, errors.New("engagement analyzer: total students must be positive")
	case cfg.CompletionThreshold <= 0 || cfg.CompletionThreshold > 1:
		return nil, errors.New("engagement analyzer: completion threshold must be in (0, 1]")
	}
	return &EngagementAnalyzer{
		media:   toolkit,
		vision:  vision,
		ai:      ai,
		retrier: retrier,
		cfg:     cfg,
		metrics: metrics,
		log:     log.NewHelper(logger),
	}, nil
}

// Analyze 计算整场课程的互动结果。问题列表为空时直接返回空结果，不探测视频也不调用模型。
// 返回的记录尚未持久化。
func (a *EngagementAnalyzer) Analyze(ctx context.Context, lectureID, userID, videoPath string, questions []po.QuestionInterval) (*po.EngagementResult, error) {
	result := &po.EngagementResult{
		LectureID:            lectureID,
		UserID:               userID,
		QuestionResults:      map[string]po.QuestionResult{},
		QuestionsCompleted:   []string{},
		QuestionsForRevision: []string{},
		TopicsCompleted:      []string{},
		TopicsForRevision:    []string{},
	}
	if len(questions) == 0 {
		return result, nil
	}

	info, err := a.media.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: probe video: %w", ErrAnalysis, err)
	}
	if !info.HasVideo || info.FPS <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, media.ErrNoVideoStream)
	}

	for _, q := range questions {
		yes, no, err := a.countResponses(ctx, videoPath, info, q)
		if err != nil {
			return nil, err
		}
		result.QuestionResults[q.QuestionText] = po.QuestionResult{
			Yes:         yes,
			No:          no,
			NotAnswered: max(0, a.cfg.TotalStudents-yes-no),
		}

		truth, err := a.retrier.Generate(ctx, "ground_truth", a.ai, fmt.Sprintf(groundTruthPrompt, q.QuestionText))
		if err != nil {
			return nil, fmt.Errorf("%w: ground truth for %q: %w", ErrAnalysis, q.QuestionText, err)
		}
		if Completed(truth, yes, no, a.cfg.TotalStudents, a.cfg.CompletionThreshold) {
			result.QuestionsCompleted = append(result.QuestionsCompleted, q.QuestionText)
		} else {
			result.QuestionsForRevision = append(result.QuestionsForRevision, q.QuestionText)
		}
	}

	if result.TopicsCompleted, err = a.topics(ctx, "topics_completed", result.QuestionsCompleted, "2, 3 or 4"); err != nil {
		return nil, err
	}
	if result.TopicsForRevision, err = a.topics(ctx, "topics_for_revision", result.QuestionsForRevision, "3 or 4"); err != nil {
		return nil, err
	}

	a.log.WithContext(ctx).Infof("engagement analyzed: lecture_id=%s questions=%d completed=%d revision=%d",
		lectureID, len(questions), len(result.QuestionsCompleted), len(result.QuestionsForRevision))
	return result, nil
}

// countResponses 对区间 [int(fps*yes), int(fps*no)] 内、落在视频范围的每一帧调用视觉模型。
// 某帧解码失败即结束该区间的扫描。
func (a *EngagementAnalyzer) countResponses(ctx context.Context, videoPath string, info *media.Info, q po.QuestionInterval) (yes, no int, err error) {
	startFrame := int(info.FPS * q.YesTimestamp)
	endFrame := int(info.FPS * q.NoTimestamp)
	sampled := 0
	defer func() { a.metrics.recordFrames(ctx, sampled) }()

	for idx := max(startFrame, 0); idx <= endFrame && idx < info.TotalFrames; idx++ {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		frame, ferr := a.media.FrameAt(ctx, videoPath, idx, info.FPS)
		if ferr != nil {
			a.log.WithContext(ctx).Warnf("frame decode stopped sweep: question=%q frame=%d err=%v", q.QuestionText, idx, ferr)
			break
		}
		var raised int
		verr := a.retrier.Do(ctx, "hand_raise", func(ctx context.Context) error {
			n, err := a.vision.CountRaisedHands(ctx, frame)
			raised = n
			return err
		})
		if verr != nil {
			return 0, 0, fmt.Errorf("%w: hand-raise detection at frame %d: %w", ErrAnalysis, idx, verr)
		}
		sampled++
		yes += raised
		no += a.cfg.TotalStudents - raised
	}
	return yes, no, nil
}

func (a *EngagementAnalyzer) topics(ctx context.Context, op string, questions []string, count string) ([]string, error) {
	if len(questions) == 0 {
		return []string{}, nil
	}
	list, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("%w: encode questions: %w", ErrAnalysis, err)
	}
	raw, err := a.retrier.Generate(ctx, op, a.ai, fmt.Sprintf(topicsPrompt, list, count))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalysis, op, err)
	}
	topics, err := aiparse.ParseStringList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalysis, op, err)
	}
	return topics, nil
}

// Completed 判断问题是否已被掌握：正确答案为 yes 时看 yes 比例，否则看 no 比例。
// 比例以 totalStudents 为分母。
func Completed(groundTruth string, yes, no, totalStudents int, threshold float64) bool {
	if totalStudents <= 0 {
		return false
	}
	count := no
	if strings.ToLower(strings.TrimSpace(groundTruth)) == "yes" {
		count = yes
	}
	return float64(count)/float64(totalStudents) >= threshold
}
