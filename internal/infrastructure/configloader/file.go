package configloader

// fileConfig mirrors the YAML layout under configs/. Durations are strings so that kratos
// config can scan them through encoding/json.
type fileConfig struct {
	Server struct {
		HTTP struct {
			Network string `json:"network"`
			Addr    string `json:"addr"`
			Timeout string `json:"timeout"`
		} `json:"http"`
		MaxUploadBytes int64 `json:"max_upload_bytes"`
		Handlers       struct {
			Default string `json:"default"`
			Command string `json:"command"`
			Query   string `json:"query"`
		} `json:"handlers"`
	} `json:"server"`

	Data struct {
		Postgres struct {
			DSN               string `json:"dsn"`
			MaxOpenConns      int32  `json:"max_open_conns"`
			MinOpenConns      int32  `json:"min_open_conns"`
			MaxConnLifetime   string `json:"max_conn_lifetime"`
			MaxConnIdleTime   string `json:"max_conn_idle_time"`
			HealthCheckPeriod string `json:"health_check_period"`
			Schema            string `json:"schema"`
			PreparedStmts     bool   `json:"enable_prepared_statements"`
		} `json:"postgres"`
		Cassandra struct {
			Hosts       []string `json:"hosts"`
			Keyspace    string   `json:"keyspace"`
			Consistency string   `json:"consistency"`
			Timeout     string   `json:"timeout"`
		} `json:"cassandra"`
	} `json:"data"`

	Pipeline struct {
		WorkDir                 string  `json:"work_dir"`
		ChunkDuration           string  `json:"chunk_duration"`
		TranscribeWorkers       int     `json:"transcribe_workers"`
		TotalStudents           int     `json:"total_students"`
		CompletionThreshold     float64 `json:"completion_threshold"`
		TranslationWindow       int     `json:"translation_window"`
		UploadTranslationWindow int     `json:"upload_translation_window"`
		StreamWindow            int     `json:"stream_window"`
		StatusPollInterval      string  `json:"status_poll_interval"`
		Retry                   struct {
			Initial    string  `json:"initial"`
			Multiplier float64 `json:"multiplier"`
			Max        string  `json:"max"`
			Timeout    string  `json:"timeout"`
		} `json:"retry"`
	} `json:"pipeline"`

	Queue struct {
		Driver string `json:"driver"`
		Buffer int    `json:"buffer"`
		Redis  struct {
			Addr         string `json:"addr"`
			Password     string `json:"password"`
			DB           int    `json:"db"`
			Key          string `json:"key"`
			BlockTimeout string `json:"block_timeout"`
		} `json:"redis"`
		PubSub struct {
			ProjectID        string `json:"project_id"`
			TopicID          string `json:"topic_id"`
			SubscriptionID   string `json:"subscription_id"`
			EmulatorEndpoint string `json:"emulator_endpoint"`
			NumGoroutines    int    `json:"num_goroutines"`
		} `json:"pubsub"`
	} `json:"queue"`

	OpenAI struct {
		APIKey             string `json:"api_key"`
		BaseURL            string `json:"base_url"`
		ChatModel          string `json:"chat_model"`
		TranscriptionModel string `json:"transcription_model"`
		Timeout            string `json:"timeout"`
	} `json:"openai"`

	Vision struct {
		Endpoint          string `json:"endpoint"`
		ModelID           string `json:"model_id"`
		APIKey            string `json:"api_key"`
		Timeout           string `json:"timeout"`
		HandRaisedClassID int    `json:"hand_raised_class_id"`
	} `json:"vision"`

	Storage struct {
		Driver   string `json:"driver"`
		LocalDir string `json:"local_dir"`
		GCS      struct {
			Bucket               string `json:"bucket"`
			Prefix               string `json:"prefix"`
			CredentialsFile      string `json:"credentials_file"`
			SignerServiceAccount string `json:"signer_service_account"`
			SignedURLTTL         string `json:"signed_url_ttl"`
		} `json:"gcs"`
	} `json:"storage"`

	Media struct {
		FFmpegPath  string `json:"ffmpeg_path"`
		FFprobePath string `json:"ffprobe_path"`
	} `json:"media"`
}
