// Package configloader loads the YAML bootstrap configuration and normalizes it into
// strongly typed runtime sections consumed by the Wire graphs.
package configloader

import "time"

// ServiceMetadata identifies the running service for logs and metrics.
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// RuntimeConfig is the normalized configuration tree.
type RuntimeConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Pipeline  PipelineConfig
	Retry     RetryConfig
	Queue     QueueConfig
	OpenAI    OpenAIConfig
	Vision    VisionConfig
	Storage   StorageConfig
	Media     MediaConfig
	Cassandra CassandraConfig
}

// ServerConfig describes the HTTP listener and handler deadlines.
type ServerConfig struct {
	Network        string
	Address        string `validate:"required"`
	Timeout        time.Duration
	MaxUploadBytes int64 `validate:"gt=0"`
	Handlers       HandlerTimeouts
}

// HandlerTimeouts groups per-kind request deadlines.
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

// DatabaseConfig configures the pgx pool.
type DatabaseConfig struct {
	DSN               string `validate:"required"`
	MaxOpenConns      int32
	MinOpenConns      int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	Schema            string
	PreparedStmts     bool
}

// PipelineConfig holds the processing constants of a lecture run.
type PipelineConfig struct {
	WorkDir                 string        `validate:"required"`
	ChunkDuration           time.Duration `validate:"gt=0"`
	TranscribeWorkers       int           `validate:"gt=0"`
	TotalStudents           int           `validate:"gt=0"`
	CompletionThreshold     float64       `validate:"gt=0,lte=1"`
	TranslationWindow       int           `validate:"gt=0"`
	UploadTranslationWindow int           `validate:"gt=0"`
	StreamWindow            int           `validate:"gt=0"`
	StatusPollInterval      time.Duration `validate:"gt=0"`
}

// RetryConfig controls exponential backoff around analysis AI calls.
type RetryConfig struct {
	Initial    time.Duration `validate:"gt=0"`
	Multiplier float64       `validate:"gte=1"`
	Max        time.Duration `validate:"gt=0"`
	Timeout    time.Duration `validate:"gt=0"`
}

// QueueConfig selects the task queue backend.
type QueueConfig struct {
	Driver string `validate:"oneof=memory redis pubsub"`
	Buffer int    `validate:"gte=0"`
	Redis  RedisConfig
	PubSub PubSubConfig
}

// RedisConfig configures the Redis list queue.
type RedisConfig struct {
	Addr         string `validate:"required_if=Enabled true"`
	Password     string
	DB           int
	Key          string
	BlockTimeout time.Duration
	Enabled      bool
}

// PubSubConfig configures the Google Pub/Sub queue.
type PubSubConfig struct {
	ProjectID        string `validate:"required_if=Enabled true"`
	TopicID          string `validate:"required_if=Enabled true"`
	SubscriptionID   string `validate:"required_if=Enabled true"`
	EmulatorEndpoint string
	NumGoroutines    int
	Enabled          bool
}

// OpenAIConfig configures the speech-to-text and chat completion clients.
type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	ChatModel          string `validate:"required"`
	TranscriptionModel string `validate:"required"`
	Timeout            time.Duration
}

// VisionConfig configures the hand-raise inference endpoint.
type VisionConfig struct {
	Endpoint          string `validate:"required"`
	ModelID           string `validate:"required"`
	APIKey            string
	Timeout           time.Duration
	HandRaisedClassID int `validate:"gte=0"`
}

// StorageConfig selects where uploaded videos are archived.
type StorageConfig struct {
	Driver   string `validate:"oneof=local gcs"`
	LocalDir string
	GCS      GCSConfig
}

// GCSConfig configures the Cloud Storage media store.
type GCSConfig struct {
	Bucket               string
	Prefix               string
	CredentialsFile      string
	SignerServiceAccount string
	SignedURLTTL         time.Duration
}

// MediaConfig locates the ffmpeg toolchain.
type MediaConfig struct {
	FFmpegPath  string `validate:"required"`
	FFprobePath string `validate:"required"`
}

// CassandraConfig configures the optional transcript archive.
type CassandraConfig struct {
	Hosts       []string
	Keyspace    string
	Consistency string
	Timeout     time.Duration
}

// Enabled reports whether the Cassandra archive is configured.
func (c CassandraConfig) Enabled() bool {
	return len(c.Hosts) > 0 && c.Keyspace != ""
}
