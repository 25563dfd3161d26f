package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AdvisoryOff  = "off"
	AdvisoryMock = "mock"
	AdvisoryHTTP = "http"
	AdvisoryLLM  = "llm"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	EventsChannel string `mapstructure:"EVENTS_CHANNEL"`
	EventsBuffer  int    `mapstructure:"EVENTS_BUFFER"`

	AdvisoryMode    string        `mapstructure:"ADVISORY_MODE"`
	AdvisoryURL     string        `mapstructure:"ADVISORY_URL"`
	AdvisoryTimeout time.Duration `mapstructure:"ADVISORY_TIMEOUT"`
	AdvisoryRetries int           `mapstructure:"ADVISORY_RETRIES"`
	AdvisoryBackoff time.Duration `mapstructure:"ADVISORY_BACKOFF"`

	AssistantBaseURL   string `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel     string `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey    string `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxTokens int    `mapstructure:"ASSISTANT_MAX_TOKENS"`
	ChatHistoryTurns   int    `mapstructure:"CHAT_HISTORY_TURNS"`

	GeocoderURL       string `mapstructure:"GEOCODER_URL"`
	GeocoderUserAgent string `mapstructure:"GEOCODER_USER_AGENT"`
	CountryDefault    string `mapstructure:"COUNTRY_DEFAULT"`

	SeedDemo        bool  `mapstructure:"SEED_DEMO"`
	MaxUploadSizeMB int64 `mapstructure:"MAX_UPLOAD_MB"`
}

var keys = []string{
	"ENV", "PORT", "LOG_LEVEL", "ADMIN_KEY", "CORS_ALLOWED_ORIGINS", "REQUEST_TIMEOUT",
	"DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "EVENTS_CHANNEL", "EVENTS_BUFFER",
	"ADVISORY_MODE", "ADVISORY_URL", "ADVISORY_TIMEOUT", "ADVISORY_RETRIES", "ADVISORY_BACKOFF",
	"ASSISTANT_BASE_URL", "ASSISTANT_MODEL", "ASSISTANT_API_KEY", "ASSISTANT_MAX_TOKENS", "CHAT_HISTORY_TURNS",
	"GEOCODER_URL", "GEOCODER_USER_AGENT", "COUNTRY_DEFAULT",
	"SEED_DEMO", "MAX_UPLOAD_MB",
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads path if it exists; environment variables take precedence.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EVENTS_CHANNEL", "dispatch.events")
	v.SetDefault("EVENTS_BUFFER", 256)
	v.SetDefault("ADVISORY_MODE", AdvisoryMock)
	v.SetDefault("ADVISORY_TIMEOUT", "5s")
	v.SetDefault("ADVISORY_RETRIES", 1)
	v.SetDefault("ADVISORY_BACKOFF", "100ms")
	v.SetDefault("ASSISTANT_MODEL", "gpt-4o-mini")
	v.SetDefault("ASSISTANT_MAX_TOKENS", 512)
	v.SetDefault("CHAT_HISTORY_TURNS", 10)
	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_USER_AGENT", "greenroute-dispatch/1.0")
	v.SetDefault("COUNTRY_DEFAULT", "USA")
	v.SetDefault("SEED_DEMO", false)
	v.SetDefault("MAX_UPLOAD_MB", 10)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.AdvisoryMode = strings.ToLower(strings.TrimSpace(cfg.AdvisoryMode))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.AdvisoryMode {
	case AdvisoryOff, AdvisoryMock:
	case AdvisoryHTTP:
		if strings.TrimSpace(c.AdvisoryURL) == "" {
			return fmt.Errorf("ADVISORY_URL is required when ADVISORY_MODE=http")
		}
	case AdvisoryLLM:
		if strings.TrimSpace(c.AssistantBaseURL) == "" {
			return fmt.Errorf("ASSISTANT_BASE_URL is required when ADVISORY_MODE=llm")
		}
	default:
		return fmt.Errorf("unknown ADVISORY_MODE %q", c.AdvisoryMode)
	}
	if c.AdvisoryRetries < 0 {
		return fmt.Errorf("ADVISORY_RETRIES must not be negative")
	}
	if c.AdvisoryBackoff < 0 {
		return fmt.Errorf("ADVISORY_BACKOFF must not be negative")
	}
	if c.AdvisoryTimeout <= 0 {
		return fmt.Errorf("ADVISORY_TIMEOUT must be positive")
	}
	return nil
}
