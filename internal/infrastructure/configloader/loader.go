package configloader

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	envConfPath       = "CONF_PATH"
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
	envOpenAIKey      = "OPENAI_API_KEY"
	envVisionKey      = "VISION_API_KEY"
	envRedisAddr      = "REDIS_ADDR"
)

var envFileNames = []string{".env.local", ".env"}

// Params carries the runtime inputs needed to build the configuration.
type Params struct {
	ConfPath string
}

// Loader aggregates the normalized configuration and service metadata.
type Loader struct {
	Runtime RuntimeConfig
	Service ServiceMetadata
}

// BuildError records which stage of configuration loading failed.
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error implements error.
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e BuildError) Unwrap() error {
	return e.Err
}

// Load resolves the configuration path, reads .env files, scans the YAML, applies
// environment overrides, normalizes defaults and validates the result.
func Load(params Params) (*Loader, error) {
	confPath := ResolveConfPath(params.ConfPath)
	loadEnvFiles(confPath)

	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var fc fileConfig
	if err := c.Scan(&fc); err != nil {
		return nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}
	applyEnvOverrides(&fc)

	rc, err := fromFile(&fc)
	if err != nil {
		return nil, BuildError{Stage: "normalize", Path: confPath, Err: err}
	}
	if err := validator.New().Struct(rc); err != nil {
		return nil, BuildError{Stage: "validate", Path: confPath, Err: err}
	}

	return &Loader{
		Runtime: rc,
		Service: buildServiceMetadata(),
	}, nil
}

// ResolveConfPath applies the precedence explicit path > CONF_PATH > default.
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// applyEnvOverrides lets secrets and platform ports come from the environment.
// Empty variables never override file values.
func applyEnvOverrides(fc *fileConfig) {
	if fc == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		fc.Data.Postgres.DSN = dsn
	}
	if port := os.Getenv(envPort); port != "" {
		fc.Server.HTTP.Addr = replacePort(fc.Server.HTTP.Addr, port)
	}
	if key := os.Getenv(envOpenAIKey); key != "" {
		fc.OpenAI.APIKey = key
	}
	if key := os.Getenv(envVisionKey); key != "" {
		fc.Vision.APIKey = key
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		fc.Queue.Redis.Addr = addr
	}
}

func buildServiceMetadata() ServiceMetadata {
	host, _ := os.Hostname()
	return ServiceMetadata{
		Name:        firstNonEmpty(os.Getenv(envServiceName), defaultServiceName),
		Version:     firstNonEmpty(os.Getenv(envServiceVersion), defaultVersion),
		Environment: firstNonEmpty(strings.ToLower(os.Getenv(envAppEnv)), defaultEnvironment),
		InstanceID:  host,
	}
}

// loadEnvFiles loads .env files best-effort; missing files are ignored.
func loadEnvFiles(confPath string) {
	files := envFileCandidates(confPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates returns existing .env files, config directory first, then the working
// directory. godotenv never overrides variables that are already set, so earlier files win.
func envFileCandidates(confPath string) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range orderedDirs(confPath) {
		for _, name := range envFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			files = append(files, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return files
}

func orderedDirs(confPath string) []string {
	var dirs []string
	appendUnique := func(path string) {
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		for _, existing := range dirs {
			if existing == clean {
				return
			}
		}
		dirs = append(dirs, clean)
	}

	if confPath != "" {
		if info, err := os.Stat(confPath); err == nil {
			if info.IsDir() {
				appendUnique(confPath)
			} else {
				appendUnique(filepath.Dir(confPath))
			}
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		appendUnique(cwd)
	}
	return dirs
}

// replacePort swaps the port of addr and keeps the host:
//
//	"0.0.0.0:8000" -> "0.0.0.0:8080"
//	"[::1]:8000"   -> "[::1]:8080"
func replacePort(addr, newPort string) string {
	if addr == "" {
		return "0.0.0.0:" + newPort
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "0.0.0.0:" + newPort
	}
	return net.JoinHostPort(host, newPort)
}
