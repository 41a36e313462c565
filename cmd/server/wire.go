//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/lingo-services-lecture/internal/clients"
	"github.com/bionicotaku/lingo-services-lecture/internal/controllers"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/cassandra"
	configloader "github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/gcs"
	httpserver "github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/http_server"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/logger"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/pubsubclient"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/redisclient"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"
	"github.com/bionicotaku/lingo-services-lecture/internal/tasks/pipeline"

	"github.com/go-kratos/kratos/v2"
	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

// wireApp init kratos application.
func wireApp(context.Context, configloader.Params) (*kratos.App, func(), error) {
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
		pipeline.ProviderSet,
		controllers.ProviderSet,
		httpserver.ProviderSet,
		newApp,
	))
}
