package configloader

import "time"

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
	defaultServiceName = "lingo-services-lecture"
	defaultVersion     = "dev"

	defaultHTTPAddr       = "0.0.0.0:8000"
	defaultHTTPTimeout    = 10 * time.Minute
	defaultMaxUploadBytes = 2 << 30

	defaultWorkDir                 = "tmp/pipeline"
	defaultChunkDuration           = 600 * time.Second
	defaultTranscribeWorkers       = 4
	defaultTotalStudents           = 40
	defaultCompletionThreshold     = 0.7
	defaultTranslationWindow       = 30000
	defaultUploadTranslationWindow = 10000
	defaultStreamWindow            = 1024
	defaultStatusPollInterval      = time.Second

	defaultRetryInitial    = 10 * time.Second
	defaultRetryMultiplier = 2.0
	defaultRetryMax        = 60 * time.Second
	defaultRetryTimeout    = 300 * time.Second

	defaultQueueDriver       = "memory"
	defaultQueueBuffer       = 64
	defaultRedisKey          = "lecture:pipeline:jobs"
	defaultRedisBlockTimeout = 5 * time.Second

	defaultChatModel          = "gpt-4o-mini"
	defaultTranscriptionModel = "whisper-1"
	defaultOpenAITimeout      = 120 * time.Second

	defaultVisionTimeout = 30 * time.Second

	defaultStorageDriver = "local"
	defaultStorageDir    = "tmp/media"
	defaultSignedURLTTL  = 15 * time.Minute

	defaultFFmpegPath  = "ffmpeg"
	defaultFFprobePath = "ffprobe"

	defaultCassandraConsistency = "quorum"
	defaultCassandraTimeout     = 10 * time.Second
)
