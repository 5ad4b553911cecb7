package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the research & writing service
type Config struct {
	General      GeneralConfig      `mapstructure:"general"`
	Server       ServerConfig       `mapstructure:"server"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Search       SearchConfig       `mapstructure:"search"`
	Encyclopedia EncyclopediaConfig `mapstructure:"encyclopedia"`
	Session      SessionConfig      `mapstructure:"session"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains the model provider configuration. The credential is read
// once at startup; there is no refresh or rotation.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // groq, gemini
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"` // default model when the request does not pick one
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required (set SCRIBE_LLM_API_KEY or GROQ_API_KEY)")
	}
	if l.Provider == "groq" && !strings.HasPrefix(l.APIKey, "gsk_") {
		return fmt.Errorf("llm.api_key is not a Groq key (must start with gsk_)")
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be > 0")
	}
	return nil
}

// SearchConfig contains web search settings. A missing key degrades research
// to the encyclopedia source instead of failing startup.
type SearchConfig struct {
	Provider   string        `mapstructure:"provider"` // serper, brave
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (s SearchConfig) Validate() error {
	if s.MaxResults <= 0 || s.MaxResults > 10 {
		return fmt.Errorf("search.max_results must be in 1..10")
	}
	return nil
}

// EncyclopediaConfig contains the Wikipedia summary lookup settings
type EncyclopediaConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects the session store backend
type SessionConfig struct {
	Store string        `mapstructure:"store"` // inmemory, redis
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (s SessionConfig) Validate() error {
	switch s.Store {
	case "inmemory":
	case "redis":
		if strings.TrimSpace(s.Redis.Host) == "" || strings.TrimSpace(s.Redis.Port) == "" {
			return fmt.Errorf("session.redis.host and session.redis.port required when session.store is redis")
		}
	default:
		return fmt.Errorf("session.store must be inmemory or redis, got %q", s.Store)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0")
	}
	return nil
}

// LoadConfig loads config from an optional file, the environment and a .env
// file, failing fast on an invalid credential or section.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("llm.provider", "groq")
	viper.SetDefault("llm.model", "llama-3.1-8b-instant")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 3000)
	viper.SetDefault("llm.timeout", 120*time.Second)
	viper.SetDefault("search.provider", "serper")
	viper.SetDefault("search.max_results", 3)
	viper.SetDefault("search.timeout", 15*time.Second)
	viper.SetDefault("encyclopedia.enabled", true)
	viper.SetDefault("encyclopedia.timeout", 10*time.Second)
	viper.SetDefault("session.store", "inmemory")
	viper.SetDefault("session.ttl", time.Hour)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("SCRIBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// the original tool's env names keep working
	_ = viper.BindEnv("llm.api_key", "SCRIBE_LLM_API_KEY", "GROQ_API_KEY")
	_ = viper.BindEnv("search.api_key", "SCRIBE_SEARCH_API_KEY", "SERPER_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := config.LLM.Validate(); err != nil {
		return nil, err
	}
	if err := config.Search.Validate(); err != nil {
		return nil, err
	}
	if err := config.Session.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
