//go:build wireinject
// +build wireinject

// Package main 为 pipeline 任务 CLI 提供 Wire 依赖注入定义。
package main

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/clients"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/cassandra"
	configloader "github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/gcs"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/logger"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/pubsubclient"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/redisclient"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"
	pipelinerunner "github.com/bionicotaku/lingo-services-lecture/internal/tasks/pipeline"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

func wirePipelineTask(context.Context, configloader.Params) (*pipelineTaskApp, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		logger.ProviderSet,
		database.ProviderSet,
		redisclient.ProvideClient,
		pubsubclient.ProvideClient,
		gcs.ProvideClient,
		gcs.ProvideStore,
		mediastore.ProvideStore,
		cassandra.ProvideSession,
		media.ProviderSet,
		clients.ProviderSet,
		repositories.ProviderSet,
		services.ProviderSet,
		pipelinerunner.ProviderSet,
		newPipelineTaskApp,
	))
}

func newPipelineTaskApp(logger log.Logger, cfg configloader.QueueConfig, runner *pipelinerunner.Runner) (*pipelineTaskApp, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	if runner == nil {
		return nil, fmt.Errorf("pipeline runner not initialized")
	}
	return &pipelineTaskApp{
		Runner: runner,
		Logger: logger,
		Driver: cfg.Driver,
	}, nil
}
