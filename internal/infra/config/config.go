package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	AI        AIConfig        `yaml:"ai"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains OpenAI-compatible provider settings.
type LLMConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	Temperature    float32 `yaml:"temperature"`
}

// AIConfig tunes the suggestion pipeline.
type AIConfig struct {
	TopK                int     `yaml:"topK"`
	MaxResponseTokens   int     `yaml:"maxResponseTokens"`
	ConfidenceThreshold float64 `yaml:"confidenceThreshold"`
	MaxContextTokens    int     `yaml:"maxContextTokens"`
}

// SentimentConfig tunes the sentiment classifier and its result cache.
type SentimentConfig struct {
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
	Valkey      ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	// Provider is "openai" or "deterministic" (network-free, for dev).
	Provider string `yaml:"provider"`
	// Dim is the vector dimension used by the deterministic provider.
	Dim int `yaml:"dim"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("TOP_K_FAQS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AI.TopK = parsed
		}
	}
	if v := os.Getenv("MAX_RESPONSE_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AI.MaxResponseTokens = parsed
		}
	}
	if v := os.Getenv("CONFIDENCE_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AI.ConfidenceThreshold = parsed
		}
	}
	if v := os.Getenv("MAX_CONTEXT_LENGTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AI.MaxContextTokens = parsed
		}
	}
	if v := os.Getenv("SENTIMENT_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Sentiment.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("SENTIMENT_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Sentiment.CacheTTL = parsed
		}
	}
	if v := os.Getenv("SENTIMENT_VALKEY_ENABLED"); v != "" {
		cfg.Sentiment.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SENTIMENT_VALKEY_ADDR"); v != "" {
		cfg.Sentiment.Valkey.Addr = v
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_DIM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dim = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Model:          "gpt-4-turbo-preview",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.7,
		},
		AI: AIConfig{
			TopK:                5,
			MaxResponseTokens:   500,
			ConfidenceThreshold: 0.8,
			MaxContextTokens:    4000,
		},
		Sentiment: SentimentConfig{
			Temperature: 0.3,
			MaxTokens:   10,
			CacheTTL:    6 * time.Hour,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Dim:      32,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.AI.TopK <= 0 {
		return errors.New("ai.topK must be positive")
	}
	if c.AI.MaxResponseTokens <= 0 {
		return errors.New("ai.maxResponseTokens must be positive")
	}
	if c.AI.ConfidenceThreshold < 0 || c.AI.ConfidenceThreshold > 1 {
		return errors.New("ai.confidenceThreshold must lie in [0,1]")
	}
	if c.AI.MaxContextTokens <= 0 {
		return errors.New("ai.maxContextTokens must be positive")
	}
	if c.Sentiment.MaxTokens <= 0 {
		return errors.New("sentiment.maxTokens must be positive")
	}
	if c.Sentiment.CacheTTL < 0 {
		return errors.New("sentiment.cacheTtl cannot be negative")
	}
	if c.Sentiment.Valkey.Enabled && strings.TrimSpace(c.Sentiment.Valkey.Addr) == "" {
		return errors.New("sentiment.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	switch c.Embedding.Provider {
	case "openai", "deterministic":
	default:
		return fmt.Errorf("embedding.provider must be openai or deterministic, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "deterministic" && c.Embedding.Dim <= 0 {
		return errors.New("embedding.dim must be positive for the deterministic provider")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
