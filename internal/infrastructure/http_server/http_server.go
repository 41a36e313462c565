// Package httpserver 组装对外 HTTP 服务：中间件链、探针、/metrics 与业务路由。
package httpserver

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/controllers"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metadata"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/tracing"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/jackc/pgx/v5/pgxpool"
)

const readinessTimeout = 2 * time.Second

// NewHTTPServer builds the kratos HTTP server, mounts probes, /metrics and every lecture route.
// pool may be nil, in which case readiness only reports process liveness.
func NewHTTPServer(c configloader.ServerConfig, telemetry *Telemetry, routes controllers.Routes, pool *pgxpool.Pool, logger log.Logger) *http.Server {
	middlewares := []middleware.Middleware{
		tracing.Server(),
		recovery.Recovery(),
		metadata.Server(
			metadata.WithPropagatedPrefix("x-md-"),
		),
		ratelimit.Server(),
		logging.Server(logger),
	}
	if telemetry != nil {
		middlewares = append(middlewares, kmetrics.Server(
			kmetrics.WithRequests(telemetry.Requests),
			kmetrics.WithSeconds(telemetry.Latency),
		))
	}

	opts := []http.ServerOption{
		http.Middleware(middlewares...),
	}
	if c.Network != "" {
		opts = append(opts, http.Network(c.Network))
	}
	if c.Address != "" {
		opts = append(opts, http.Address(c.Address))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.Timeout(c.Timeout))
	}

	srv := http.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))
	srv.Handle("/readyz", readinessHandler(pool, logger))
	if telemetry != nil {
		srv.Handle("/metrics", telemetry.Handler())
	}

	router := srv.Route("/")
	for _, r := range routes {
		if r != nil {
			r.Register(router)
		}
	}
	return srv
}

func readinessHandler(pool *pgxpool.Pool, logger log.Logger) stdhttp.Handler {
	helper := log.NewHelper(logger)
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				helper.WithContext(ctx).Warnf("readiness: database ping failed: %v", err)
				w.WriteHeader(stdhttp.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(stdhttp.StatusOK)
	})
}
