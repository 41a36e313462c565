package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/logger"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerAnnotatesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewLogger(logger.Config{
		Service: "lecture-test",
		Version: "v0.0.1",
		HostID:  "host-1",
		Env:     "test",
		Level:   "info",
		Output:  &buf,
	})
	require.NoError(t, err)

	log.NewHelper(l).WithContext(context.Background()).Infof("pipeline started lecture_id=%s", "abc")

	out := buf.String()
	require.Contains(t, out, "service.name=lecture-test")
	require.Contains(t, out, "service.version=v0.0.1")
	require.Contains(t, out, "lecture_id=abc")
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewLogger(logger.Config{Service: "svc", Level: "warn", Output: &buf})
	require.NoError(t, err)

	helper := log.NewHelper(l)
	helper.Info("hidden")
	helper.Warn("visible")

	out := buf.String()
	require.False(t, strings.Contains(out, "hidden"))
	require.Contains(t, out, "visible")
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("APP_ENV", "")
	cfg := logger.DefaultConfig("", "")
	require.Equal(t, "lingo-services-lecture", cfg.Service)
	require.Equal(t, "dev", cfg.Version)
	require.Equal(t, "development", cfg.Env)
}
