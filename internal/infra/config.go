package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisAddr   string
	GeoIPDBPath string

	DeepseekAPIKey  string
	DeepseekModel   string
	DeepseekBaseURL string

	PerplexityAPIKey  string
	PerplexityModel   string
	PerplexityBaseURL string

	FalAPIKey    string
	FalModel     string
	FalBaseURL   string
	FalImageSize string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	ProviderTimeout   time.Duration
	ProcessingTimeout time.Duration
	ReaperInterval    time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		DeepseekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepseekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepseekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),

		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityModel:   getEnv("PERPLEXITY_MODEL", "sonar"),
		PerplexityBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),

		FalAPIKey:    os.Getenv("FAL_API_KEY"),
		FalModel:     getEnv("FAL_MODEL", "fal-ai/flux/dev"),
		FalBaseURL:   getEnv("FAL_BASE_URL", "https://fal.run"),
		FalImageSize: getEnv("FAL_IMAGE_SIZE", "portrait_4_3"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "dall-e-3"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		ProviderTimeout:   time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		ProcessingTimeout: time.Minute * time.Duration(getEnvInt("PROCESSING_TIMEOUT_MINUTES", 15)),
		ReaperInterval:    time.Second * time.Duration(getEnvInt("REAPER_INTERVAL_SECONDS", 30)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
