package services

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricNameStageDuration    = "lecture_stage_duration_seconds"
	metricNameRunOutcome       = "lecture_run_total"
	metricNameParseFallback    = "question_parse_fallback_total"
	metricNameAIRetry          = "lecture_ai_retry_total"
	metricNameFramesSampled    = "lecture_frames_sampled_total"
	metricNameTranslationCache = "lecture_translation_requests_total"
)

// PipelineMetrics 汇总流水线的 OTel 指标。nil 或未启用时所有记录方法均为空操作。
type PipelineMetrics struct {
	stageDuration metric.Float64Histogram
	runOutcome    metric.Int64Counter
	parseFallback metric.Int64Counter
	aiRetry       metric.Int64Counter
	frames        metric.Int64Counter
	translations  metric.Int64Counter
	enabled       bool
}

// NewPipelineMetrics 在全局 MeterProvider 上注册指标。
func NewPipelineMetrics(logger log.Logger) *PipelineMetrics {
	helper := log.NewHelper(logger)
	meter := otel.GetMeterProvider().Meter("lingo-services-lecture.pipeline")
	return newPipelineMetrics(meter, helper)
}

func newPipelineMetrics(meter metric.Meter, helper *log.Helper) *PipelineMetrics {
	m := &PipelineMetrics{}
	if meter == nil {
		return m
	}

	var err error
	if m.stageDuration, err = meter.Float64Histogram(metricNameStageDuration,
		metric.WithDescription("Wall time spent in each pipeline stage"), metric.WithUnit("s")); err != nil {
		helper.Warnf("pipeline metrics: register stage histogram: %v", err)
		return m
	}
	if m.runOutcome, err = meter.Int64Counter(metricNameRunOutcome,
		metric.WithDescription("Number of finished lecture runs by outcome")); err != nil {
		helper.Warnf("pipeline metrics: register run counter: %v", err)
	}
	if m.parseFallback, err = meter.Int64Counter(metricNameParseFallback,
		metric.WithDescription("Question locator responses that could not be parsed")); err != nil {
		helper.Warnf("pipeline metrics: register parse fallback counter: %v", err)
	}
	if m.aiRetry, err = meter.Int64Counter(metricNameAIRetry,
		metric.WithDescription("Retried external AI calls during analysis")); err != nil {
		helper.Warnf("pipeline metrics: register retry counter: %v", err)
	}
	if m.frames, err = meter.Int64Counter(metricNameFramesSampled,
		metric.WithDescription("Video frames sent to the hand-raise detector")); err != nil {
		helper.Warnf("pipeline metrics: register frames counter: %v", err)
	}
	if m.translations, err = meter.Int64Counter(metricNameTranslationCache,
		metric.WithDescription("Translation lookups by cache outcome")); err != nil {
		helper.Warnf("pipeline metrics: register translation counter: %v", err)
	}
	m.enabled = true
	return m
}

func (m *PipelineMetrics) recordStage(ctx context.Context, stage string, started time.Time, err error) {
	if m == nil || !m.enabled || m.stageDuration == nil {
		return
	}
	m.stageDuration.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("failed", err != nil),
	))
}

func (m *PipelineMetrics) recordRun(ctx context.Context, outcome string) {
	if m == nil || !m.enabled || m.runOutcome == nil {
		return
	}
	m.runOutcome.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *PipelineMetrics) recordParseFallback(ctx context.Context) {
	if m == nil || !m.enabled || m.parseFallback == nil {
		return
	}
	m.parseFallback.Add(ctx, 1)
}

func (m *PipelineMetrics) recordRetry(ctx context.Context, op string) {
	if m == nil || !m.enabled || m.aiRetry == nil {
		return
	}
	m.aiRetry.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *PipelineMetrics) recordFrames(ctx context.Context, n int) {
	if m == nil || !m.enabled || m.frames == nil || n == 0 {
		return
	}
	m.frames.Add(ctx, int64(n))
}

func (m *PipelineMetrics) recordTranslation(ctx context.Context, cached bool) {
	if m == nil || !m.enabled || m.translations == nil {
		return
	}
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	m.translations.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", outcome)))
}
