package config

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/futig/coach-backend/internal/pkg/retry"
)

// LLM providers
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DBConnectRetryDelay time.Duration `env:"DB_CONNECT_RETRY_DELAY" envDefault:"1s"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Longest accepted free-text message, in bytes
	MaxInputLength int `env:"MAX_INPUT_LENGTH" envDefault:"4000"`

	// Curriculum content directory; the bundled content is used when empty
	CurriculumDir string `env:"CURRICULUM_DIR"`

	LLMCfg      LLMConfig      `envPrefix:"LLM_"`
	CacheCfg    CacheConfig    `envPrefix:"CACHE_"`
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`
	ExportCfg   ExportConfig   `envPrefix:"EXPORT_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LLMConfig selects and configures the text-generation collaborator
type LLMConfig struct {
	Provider string `env:"PROVIDER" envDefault:"mock"`

	HTTPClientConfig
	GenerateEndpoint string `env:"GENERATE_ENDPOINT" envDefault:"/generate"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	MaxOutputTokens int64  `env:"MAX_OUTPUT_TOKENS" envDefault:"1024"`

	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// CacheConfig configures the in-process project read cache
type CacheConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"false"`
	TTL             time.Duration `env:"TTL" envDefault:"5m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string        `env:"BOT_TOKEN"`
	UpdateTimeout      int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int           `env:"MAX_CONCURRENT_USERS" envDefault:"50"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Debug              bool          `env:"DEBUG" envDefault:"false"`
}

// ExportConfig configures plan exports
type ExportConfig struct {
	// FontDir holds a UTF-8 TTF font for PDF output; core fonts are used when empty
	FontDir  string `env:"FONT_DIR"`
	FontFile string `env:"FONT_FILE" envDefault:"DejaVuSans.ttf"`
}

// FontPath returns the PDF font location, empty when no font dir is configured
func (c ExportConfig) FontPath() string {
	if c.FontDir == "" {
		return ""
	}
	return filepath.Join(c.FontDir, c.FontFile)
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []error

	switch cfg.LLMCfg.Provider {
	case ProviderMock:
	case ProviderHTTP:
		if cfg.LLMCfg.Url == "" {
			errs = append(errs, errors.New("LLM_SERVICE_URL is required for the http provider"))
		}
	case ProviderOpenAI:
		if cfg.LLMCfg.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("LLM_OPENAI_API_KEY is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of http, openai, mock, got %q", cfg.LLMCfg.Provider))
	}

	if cfg.LLMCfg.Retry.Attempts < 1 || cfg.LLMCfg.Retry.Attempts > 10 {
		errs = append(errs, fmt.Errorf("LLM_RETRY_ATTEMPTS must be between 1 and 10, got %d", cfg.LLMCfg.Retry.Attempts))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errs = append(errs, fmt.Errorf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errs = append(errs, fmt.Errorf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.MaxInputLength < 1 {
		errs = append(errs, fmt.Errorf("MAX_INPUT_LENGTH must be positive, got %d", cfg.MaxInputLength))
	}

	return errors.Join(errs...)
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
