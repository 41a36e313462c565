package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
)

// Config captures runtime metadata used to annotate logs.
type Config struct {
	Service string
	Version string
	HostID  string
	Env     string
	Level   string
	Output  io.Writer
}

// NewLogger builds a Kratos logger with service labels and trace/span enrichment.
func NewLogger(cfg Config) (log.Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Level == "" {
		cfg.Level = os.Getenv("LOG_LEVEL")
	}
	base := log.NewFilter(log.NewStdLogger(out), log.FilterLevel(parseLevel(cfg.Level, cfg.Env)))

	return log.With(
		base,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", cfg.Service,
		"service.version", cfg.Version,
		"service.id", cfg.HostID,
		"env", cfg.Env,
		"trace_id", log.Valuer(func(ctx context.Context) interface{} {
			sc := trace.SpanContextFromContext(ctx)
			if sc.HasTraceID() {
				return sc.TraceID().String()
			}
			return ""
		}),
		"span_id", log.Valuer(func(ctx context.Context) interface{} {
			sc := trace.SpanContextFromContext(ctx)
			if sc.HasSpanID() {
				return sc.SpanID().String()
			}
			return ""
		}),
	), nil
}

// DefaultConfig builds Config from environment defaults.
func DefaultConfig(service, version string) Config {
	if service == "" {
		service = "lingo-services-lecture"
	}
	if version == "" {
		version = "dev"
	}
	host, _ := os.Hostname()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	return Config{Service: service, Version: version, HostID: host, Env: env}
}

// parseLevel falls back to debug in development and info elsewhere.
func parseLevel(level, env string) log.Level {
	if strings.TrimSpace(level) != "" {
		return log.ParseLevel(level)
	}
	if strings.EqualFold(env, "development") {
		return log.LevelDebug
	}
	return log.LevelInfo
}
