package httpserver

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	meterName = "lingo-services-lecture"

	// 与 services.PipelineMetrics 中的直方图同名
	stageDurationInstrument = "lecture_stage_duration_seconds"

	telemetryShutdownTimeout = 5 * time.Second
)

// 流水线阶段以分钟计，默认桶上限只有 10s。
var stageDurationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600}

// Telemetry 持有 HTTP 指标中间件所需的计数器与 Prometheus registry。
// 流水线指标经 otel 全局 MeterProvider 写入同一个 registry，由 /metrics 一并导出。
type Telemetry struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry

	Requests metric.Int64Counter
	Latency  metric.Float64Histogram
}

// NewTelemetry 注册 Prometheus exporter 并替换全局 MeterProvider；此前经 otel.GetMeterProvider 创建的仪表会自动委托过来。
func NewTelemetry(logger log.Logger) (*Telemetry, func(), error) {
	helper := log.NewHelper(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	exporter, err := promexp.New(
		promexp.WithRegisterer(registry),
		promexp.WithoutUnits(),
	)
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithView(
			kmetrics.DefaultSecondsHistogramView(kmetrics.DefaultServerSecondsHistogramName),
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: stageDurationInstrument},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: stageDurationBuckets}},
			),
		),
	)
	otel.SetMeterProvider(provider)

	t := &Telemetry{provider: provider, registry: registry}
	meter := provider.Meter(meterName)
	if t.Requests, err = kmetrics.DefaultRequestsCounter(meter, kmetrics.DefaultServerRequestsCounterName); err != nil {
		return nil, nil, err
	}
	if t.Latency, err = kmetrics.DefaultSecondsHistogram(meter, kmetrics.DefaultServerSecondsHistogramName); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			helper.Warnf("shutdown meter provider: %v", err)
		}
	}
	return t, cleanup, nil
}

// Handler 导出 registry 中的全部指标。
func (t *Telemetry) Handler() stdhttp.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
