package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvLocal      Environment = "LOCAL"
	EnvDev        Environment = "DEV"
	EnvProduction Environment = "PROD"
)

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// UpstreamConfig points the proxy at the external captioning service.
type UpstreamConfig struct {
	BaseURL         string
	PresignTimeout  time.Duration
	RegisterTimeout time.Duration
	GenerateTimeout time.Duration
	PollTimeout     time.Duration
}

// AuthConfig selects how caller sessions are verified.
// Mode "gotrue" verifies bearer tokens against an auth service;
// mode "static" accepts a single configured token (LOCAL only).
type AuthConfig struct {
	Mode        string
	BaseURL     string
	StaticToken string
}

// PollConfig bounds the orchestrator's caption poll loop.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// EmulatorConfig configures the local captioning service (cmd/captiond).
type EmulatorConfig struct {
	Host            string
	Port            int
	PublicBaseURL   string
	SignerMode      string // local, gcs
	StoreMode       string // memory, firestore
	ProjectID       string
	Bucket          string
	ImageCollection string
	ResultTopicID   string
	GenerationDelay time.Duration
	WorkerLimit     int
	CaptionCount    int
}

type Config struct {
	Env      Environment
	Logging  LoggingConfig
	Server   ServerConfig
	Upstream UpstreamConfig
	Auth     AuthConfig
	Poll     PollConfig
	Emulator EmulatorConfig
}

func LoadConfig(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	env := Environment(getEnvOrDefault("ENV", string(EnvLocal)))
	switch env {
	case EnvLocal, EnvDev, EnvProduction:
	default:
		return nil, fmt.Errorf("unknown ENV value: %s", env)
	}

	upstreamBase := os.Getenv("CAPTION_API_BASE_URL")
	if upstreamBase == "" {
		if env == EnvLocal {
			upstreamBase = "http://localhost:8090"
		} else {
			return nil, fmt.Errorf("CAPTION_API_BASE_URL environment variable is not set")
		}
	}

	authMode := getEnvOrDefault("AUTH_MODE", "gotrue")
	if env == EnvLocal && os.Getenv("AUTH_MODE") == "" {
		authMode = "static"
	}

	cfg := &Config{
		Env: env,
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		Server: ServerConfig{
			Host:    getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Upstream: UpstreamConfig{
			BaseURL:         upstreamBase,
			PresignTimeout:  getEnvAsDuration("PRESIGN_TIMEOUT", 30*time.Second),
			RegisterTimeout: getEnvAsDuration("REGISTER_TIMEOUT", 30*time.Second),
			GenerateTimeout: getEnvAsDuration("GENERATE_TIMEOUT", 45*time.Second),
			PollTimeout:     getEnvAsDuration("POLL_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			Mode:        authMode,
			BaseURL:     os.Getenv("AUTH_BASE_URL"),
			StaticToken: os.Getenv("AUTH_STATIC_TOKEN"),
		},
		Poll: PollConfig{
			Interval:    getEnvAsDuration("CAPTION_POLL_INTERVAL", 10*time.Second),
			MaxAttempts: getEnvAsInt("CAPTION_POLL_MAX_ATTEMPTS", 12),
		},
		Emulator: EmulatorConfig{
			Host:            getEnvOrDefault("EMULATOR_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("EMULATOR_PORT", 8090),
			PublicBaseURL:   getEnvOrDefault("EMULATOR_PUBLIC_BASE_URL", "http://localhost:8090"),
			SignerMode:      getEnvOrDefault("EMULATOR_SIGNER", "local"),
			StoreMode:       getEnvOrDefault("EMULATOR_STORE", "memory"),
			ProjectID:       os.Getenv("GCP_PROJECT_ID"),
			Bucket:          os.Getenv("GCP_BUCKET"),
			ImageCollection: getEnvOrDefault("EMULATOR_IMAGE_COLLECTION", "caption_images"),
			ResultTopicID:   os.Getenv("EMULATOR_RESULT_TOPIC_ID"),
			GenerationDelay: getEnvAsDuration("EMULATOR_GENERATION_DELAY", 15*time.Second),
			WorkerLimit:     getEnvAsInt("EMULATOR_WORKER_LIMIT", 4),
			CaptionCount:    getEnvAsInt("EMULATOR_CAPTION_COUNT", 3),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Mode == "gotrue" && c.Auth.BaseURL == "" {
		return fmt.Errorf("AUTH_BASE_URL environment variable is not set")
	}
	if c.Auth.Mode == "static" && c.Auth.StaticToken == "" && c.Env != EnvLocal {
		return fmt.Errorf("AUTH_STATIC_TOKEN must be set outside LOCAL")
	}
	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("CAPTION_POLL_MAX_ATTEMPTS must be positive")
	}
	if c.Emulator.SignerMode == "gcs" && c.Emulator.Bucket == "" {
		return fmt.Errorf("GCP_BUCKET must be set when EMULATOR_SIGNER=gcs")
	}
	if c.Emulator.StoreMode == "firestore" && c.Emulator.ProjectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID must be set when EMULATOR_STORE=firestore")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Error parsing environment variable %s: %v. Using default value: %d\n", key, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Error parsing environment variable %s: %v. Using default value: %s\n", key, err, defaultValue)
		return defaultValue
	}
	return value
}
