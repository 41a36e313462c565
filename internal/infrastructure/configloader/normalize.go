package configloader

import (
	"fmt"
	"strings"
	"time"
)

func fromFile(fc *fileConfig) (RuntimeConfig, error) {
	if fc == nil {
		return RuntimeConfig{}, fmt.Errorf("empty configuration")
	}
	var (
		rc  RuntimeConfig
		err error
	)
	d := durationParser{}

	rc.Server = ServerConfig{
		Network:        fc.Server.HTTP.Network,
		Address:        firstNonEmpty(fc.Server.HTTP.Addr, defaultHTTPAddr),
		Timeout:        d.parse("server.http.timeout", fc.Server.HTTP.Timeout, defaultHTTPTimeout),
		MaxUploadBytes: positiveInt64(fc.Server.MaxUploadBytes, defaultMaxUploadBytes),
		Handlers: HandlerTimeouts{
			Default: d.parse("server.handlers.default", fc.Server.Handlers.Default, 0),
			Command: d.parse("server.handlers.command", fc.Server.Handlers.Command, 0),
			Query:   d.parse("server.handlers.query", fc.Server.Handlers.Query, 0),
		},
	}

	pg := fc.Data.Postgres
	rc.Database = DatabaseConfig{
		DSN:               pg.DSN,
		MaxOpenConns:      pg.MaxOpenConns,
		MinOpenConns:      pg.MinOpenConns,
		MaxConnLifetime:   d.parse("data.postgres.max_conn_lifetime", pg.MaxConnLifetime, 0),
		MaxConnIdleTime:   d.parse("data.postgres.max_conn_idle_time", pg.MaxConnIdleTime, 0),
		HealthCheckPeriod: d.parse("data.postgres.health_check_period", pg.HealthCheckPeriod, 0),
		Schema:            pg.Schema,
		PreparedStmts:     pg.PreparedStmts,
	}

	cs := fc.Data.Cassandra
	rc.Cassandra = CassandraConfig{
		Hosts:       trimAll(cs.Hosts),
		Keyspace:    cs.Keyspace,
		Consistency: firstNonEmpty(strings.ToLower(cs.Consistency), defaultCassandraConsistency),
		Timeout:     d.parse("data.cassandra.timeout", cs.Timeout, defaultCassandraTimeout),
	}

	p := fc.Pipeline
	rc.Pipeline = PipelineConfig{
		WorkDir:                 firstNonEmpty(p.WorkDir, defaultWorkDir),
		ChunkDuration:           d.parse("pipeline.chunk_duration", p.ChunkDuration, defaultChunkDuration),
		TranscribeWorkers:       positiveInt(p.TranscribeWorkers, defaultTranscribeWorkers),
		TotalStudents:           positiveInt(p.TotalStudents, defaultTotalStudents),
		CompletionThreshold:     positiveFloat(p.CompletionThreshold, defaultCompletionThreshold),
		TranslationWindow:       positiveInt(p.TranslationWindow, defaultTranslationWindow),
		UploadTranslationWindow: positiveInt(p.UploadTranslationWindow, defaultUploadTranslationWindow),
		StreamWindow:            positiveInt(p.StreamWindow, defaultStreamWindow),
		StatusPollInterval:      d.parse("pipeline.status_poll_interval", p.StatusPollInterval, defaultStatusPollInterval),
	}
	rc.Retry = RetryConfig{
		Initial:    d.parse("pipeline.retry.initial", p.Retry.Initial, defaultRetryInitial),
		Multiplier: positiveFloat(p.Retry.Multiplier, defaultRetryMultiplier),
		Max:        d.parse("pipeline.retry.max", p.Retry.Max, defaultRetryMax),
		Timeout:    d.parse("pipeline.retry.timeout", p.Retry.Timeout, defaultRetryTimeout),
	}

	q := fc.Queue
	driver := firstNonEmpty(strings.ToLower(q.Driver), defaultQueueDriver)
	rc.Queue = QueueConfig{
		Driver: driver,
		Buffer: positiveInt(q.Buffer, defaultQueueBuffer),
		Redis: RedisConfig{
			Addr:         q.Redis.Addr,
			Password:     q.Redis.Password,
			DB:           q.Redis.DB,
			Key:          firstNonEmpty(q.Redis.Key, defaultRedisKey),
			BlockTimeout: d.parse("queue.redis.block_timeout", q.Redis.BlockTimeout, defaultRedisBlockTimeout),
			Enabled:      driver == "redis",
		},
		PubSub: PubSubConfig{
			ProjectID:        q.PubSub.ProjectID,
			TopicID:          q.PubSub.TopicID,
			SubscriptionID:   q.PubSub.SubscriptionID,
			EmulatorEndpoint: q.PubSub.EmulatorEndpoint,
			NumGoroutines:    positiveInt(q.PubSub.NumGoroutines, 1),
			Enabled:          driver == "pubsub",
		},
	}

	rc.OpenAI = OpenAIConfig{
		APIKey:             fc.OpenAI.APIKey,
		BaseURL:            fc.OpenAI.BaseURL,
		ChatModel:          firstNonEmpty(fc.OpenAI.ChatModel, defaultChatModel),
		TranscriptionModel: firstNonEmpty(fc.OpenAI.TranscriptionModel, defaultTranscriptionModel),
		Timeout:            d.parse("openai.timeout", fc.OpenAI.Timeout, defaultOpenAITimeout),
	}

	rc.Vision = VisionConfig{
		Endpoint:          strings.TrimRight(fc.Vision.Endpoint, "/"),
		ModelID:           fc.Vision.ModelID,
		APIKey:            fc.Vision.APIKey,
		Timeout:           d.parse("vision.timeout", fc.Vision.Timeout, defaultVisionTimeout),
		HandRaisedClassID: fc.Vision.HandRaisedClassID,
	}

	st := fc.Storage
	rc.Storage = StorageConfig{
		Driver:   firstNonEmpty(strings.ToLower(st.Driver), defaultStorageDriver),
		LocalDir: firstNonEmpty(st.LocalDir, defaultStorageDir),
		GCS: GCSConfig{
			Bucket:               st.GCS.Bucket,
			Prefix:               strings.Trim(st.GCS.Prefix, "/"),
			CredentialsFile:      st.GCS.CredentialsFile,
			SignerServiceAccount: st.GCS.SignerServiceAccount,
			SignedURLTTL:         d.parse("storage.gcs.signed_url_ttl", st.GCS.SignedURLTTL, defaultSignedURLTTL),
		},
	}

	rc.Media = MediaConfig{
		FFmpegPath:  firstNonEmpty(fc.Media.FFmpegPath, defaultFFmpegPath),
		FFprobePath: firstNonEmpty(fc.Media.FFprobePath, defaultFFprobePath),
	}

	if err = d.err(); err != nil {
		return RuntimeConfig{}, err
	}
	return rc, nil
}

// durationParser collects the first parse failure so normalization reads linearly.
type durationParser struct {
	first error
}

func (p *durationParser) parse(field, raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		if p.first == nil {
			p.first = fmt.Errorf("%s: %w", field, err)
		}
		return fallback
	}
	return v
}

func (p *durationParser) err() error {
	return p.first
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func positiveInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func positiveInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}

func positiveFloat(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
