package configloader

import (
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/logger"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideLoader,
	ProvideRuntimeConfig,
	ProvideServiceMetadata,
	ProvideLoggerConfig,
	ProvideServerConfig,
	ProvideDatabaseConfig,
	ProvidePipelineConfig,
	ProvideRetryConfig,
	ProvideQueueConfig,
	ProvideOpenAIConfig,
	ProvideVisionConfig,
	ProvideStorageConfig,
	ProvideMediaConfig,
	ProvideCassandraConfig,
)

// ProvideLoader loads the configuration for the given params.
func ProvideLoader(params Params) (*Loader, error) {
	return Load(params)
}

// ProvideRuntimeConfig returns the normalized configuration tree.
func ProvideRuntimeConfig(l *Loader) RuntimeConfig {
	if l == nil {
		return RuntimeConfig{}
	}
	return l.Runtime
}

// ProvideServiceMetadata returns the resolved ServiceMetadata from the loader.
func ProvideServiceMetadata(l *Loader) ServiceMetadata {
	if l == nil {
		return ServiceMetadata{}
	}
	return l.Service
}

// ProvideLoggerConfig converts service metadata into logger configuration.
func ProvideLoggerConfig(meta ServiceMetadata) logger.Config {
	return logger.Config{
		Service: meta.Name,
		Version: meta.Version,
		HostID:  meta.InstanceID,
		Env:     meta.Environment,
	}
}

// ProvideServerConfig returns the server section.
func ProvideServerConfig(rc RuntimeConfig) ServerConfig { return rc.Server }

// ProvideDatabaseConfig returns the postgres section.
func ProvideDatabaseConfig(rc RuntimeConfig) DatabaseConfig { return rc.Database }

// ProvidePipelineConfig returns the pipeline constants.
func ProvidePipelineConfig(rc RuntimeConfig) PipelineConfig { return rc.Pipeline }

// ProvideRetryConfig returns the analysis retry policy.
func ProvideRetryConfig(rc RuntimeConfig) RetryConfig { return rc.Retry }

// ProvideQueueConfig returns the queue section.
func ProvideQueueConfig(rc RuntimeConfig) QueueConfig { return rc.Queue }

// ProvideOpenAIConfig returns the OpenAI section.
func ProvideOpenAIConfig(rc RuntimeConfig) OpenAIConfig { return rc.OpenAI }

// ProvideVisionConfig returns the vision section.
func ProvideVisionConfig(rc RuntimeConfig) VisionConfig { return rc.Vision }

// ProvideStorageConfig returns the media storage section.
func ProvideStorageConfig(rc RuntimeConfig) StorageConfig { return rc.Storage }

// ProvideMediaConfig returns the ffmpeg toolchain section.
func ProvideMediaConfig(rc RuntimeConfig) MediaConfig { return rc.Media }

// ProvideCassandraConfig returns the transcript archive section.
func ProvideCassandraConfig(rc RuntimeConfig) CassandraConfig { return rc.Cassandra }
