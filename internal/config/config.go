package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Text generation
	AIProvider string
	AIAPIKey   string
	AIModel    string
	AIBaseURL  string
	AITimeout  time.Duration

	// Persistence
	StoreDriver     string
	SQLitePath      string
	SupabaseURL     string
	SupabaseAnonKey string

	// Auth
	AuthMode     string
	StaticAPIKey string
	AuthCacheTTL time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes    int64
	SampleTokenBudget int

	// Job state
	JobTTL time.Duration

	// YAML file of speaker labels, empty for the built-in list
	VocabularyFile string

	// Rotated log file, empty for stdout only
	LogFile string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first without overriding
// variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		AIProvider: envOr("AI_PROVIDER", "gemini"),
		AIAPIKey:   os.Getenv("AI_API_KEY"),
		AIModel:    os.Getenv("AI_MODEL"),
		AIBaseURL:  os.Getenv("AI_BASE_URL"),
		AITimeout:  envDuration("AI_TIMEOUT", 3*time.Minute),

		StoreDriver:     envOr("STORE_DRIVER", "sqlite"),
		SQLitePath:      envOr("SQLITE_PATH", "lessonplan.db"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),

		AuthMode:     envOr("AUTH_MODE", "static"),
		StaticAPIKey: os.Getenv("STATIC_API_KEY"),
		AuthCacheTTL: envDuration("AUTH_CACHE_TTL", 5*time.Minute),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes:    envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB
		SampleTokenBudget: envInt("SAMPLE_TOKEN_BUDGET", 3000),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		VocabularyFile: os.Getenv("SPEAKER_VOCAB_FILE"),

		LogFile: os.Getenv("LOG_FILE"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.SampleTokenBudget <= 0 {
		cfg.SampleTokenBudget = 3000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 3 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	var errs []error

	switch c.AIProvider {
	case "gemini", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("AI_PROVIDER must be gemini or anthropic, got %q", c.AIProvider))
	}
	if c.AIAPIKey == "" {
		errs = append(errs, errors.New("AI_API_KEY is required"))
	}

	switch c.StoreDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be sqlite or supabase, got %q", c.StoreDriver))
	}

	switch c.AuthMode {
	case "static":
		if c.StaticAPIKey == "" {
			errs = append(errs, errors.New("STATIC_API_KEY is required in static auth mode"))
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required in supabase auth mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE must be static or supabase, got %q", c.AuthMode))
	}

	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
