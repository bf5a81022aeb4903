package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/internal/domain"
)

type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Session  SessionConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Preview  PreviewConfig
	Logging  LoggingConfig
	Language LanguageConfig
}

type ServerConfig struct {
	Addr             string
	AnalyzeTimeout   time.Duration
	TranslateTimeout time.Duration
	// Mode is the gin mode: release, debug or test.
	Mode string
}

type AIConfig struct {
	Provider string
}

type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	AnalyzeModel   string
	TranslateModel string
	ThinkingBudget int
	// StrictSchema sends the response schema with search-grounded requests.
	StrictSchema bool
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SessionConfig struct {
	Store string
	TTL   time.Duration
}

type CacheConfig struct {
	Backend        string
	TranslationTTL time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PreviewConfig struct {
	Enabled bool
	Timeout time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

type LanguageConfig struct {
	Default domain.Language
}

// NeedsRedis reports whether any component is configured for Redis.
func (c *Config) NeedsRedis() bool {
	return c.Session.Store == "redis" || c.Cache.Backend == "redis"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:             getEnv("HTTP_ADDR", ":8080"),
			AnalyzeTimeout:   getEnvSeconds("ANALYZE_TIMEOUT_SECONDS", constants.Timeouts.Analyze),
			TranslateTimeout: getEnvSeconds("TRANSLATE_TIMEOUT_SECONDS", constants.Timeouts.Translate),
			Mode:             strings.ToLower(getEnv("GIN_MODE", "release")),
		},
		AI: AIConfig{
			Provider: strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			BaseURL:        getEnv("GEMINI_BASE_URL", ""),
			AnalyzeModel:   getEnv("GEMINI_ANALYZE_MODEL", constants.AIModels.GeminiAnalyze),
			TranslateModel: getEnv("GEMINI_TRANSLATE_MODEL", constants.AIModels.GeminiTranslate),
			ThinkingBudget: getEnvInt("GEMINI_THINKING_BUDGET", constants.AIModels.ThinkingBudget),
			StrictSchema:   getEnvBool("GEMINI_ANALYZE_STRICT_SCHEMA", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", constants.AIModels.OpenAI),
		},
		Session: SessionConfig{
			Store: strings.ToLower(getEnv("SESSION_STORE", "memory")),
			TTL:   getEnvMinutes("SESSION_TTL_MINUTES", constants.CacheTTL.Session),
		},
		Cache: CacheConfig{
			Backend:        strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
			TranslationTTL: getEnvMinutes("TRANSLATION_CACHE_TTL_MINUTES", constants.CacheTTL.Translation),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Preview: PreviewConfig{
			Enabled: getEnvBool("PREVIEW_ENABLED", true),
			Timeout: getEnvSeconds("PREVIEW_TIMEOUT_SECONDS", constants.Timeouts.Preview),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Language: LanguageConfig{
			Default: domain.ParseLanguage(getEnv("DEFAULT_LANGUAGE", string(domain.DefaultLanguage)), domain.DefaultLanguage),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks static settings only. A missing API key is not an error:
// the service starts and reports the credential state instead.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	switch c.Server.Mode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("GIN_MODE must be release, debug or test, got %q", c.Server.Mode)
	}
	switch c.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("AI_PROVIDER must be gemini or openai, got %q", c.AI.Provider)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.Session.Store)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.NeedsRedis() && (c.Redis.Host == "" || c.Redis.Port <= 0) {
		return fmt.Errorf("REDIS_HOST and REDIS_PORT are required for the redis backend")
	}
	if c.Server.AnalyzeTimeout <= 0 || c.Server.TranslateTimeout <= 0 {
		return fmt.Errorf("request timeouts must be positive")
	}
	if c.Gemini.ThinkingBudget < 0 {
		return fmt.Errorf("GEMINI_THINKING_BUDGET must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, int(defaultValue/time.Second))) * time.Second
}

func getEnvMinutes(key string, defaultValue time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, int(defaultValue/time.Minute))) * time.Minute
}
