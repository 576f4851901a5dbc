// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Research  ResearchConfig  `yaml:"research" mapstructure:"research"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	Model             string `yaml:"model" mapstructure:"model"`
	ClassifyMaxTokens int64  `yaml:"classify_max_tokens" mapstructure:"classify_max_tokens"`
	ExtractMaxTokens  int64  `yaml:"extract_max_tokens" mapstructure:"extract_max_tokens"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ResearchConfig configures the research pipeline's HTTP behavior.
type ResearchConfig struct {
	ProbeTimeoutSecs  int    `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	FetchTimeoutSecs  int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	ReaderTimeoutSecs int    `yaml:"reader_timeout_secs" mapstructure:"reader_timeout_secs"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare provider env vars work as aliases for the prefixed form.
	_ = v.BindEnv("anthropic.key", "RESEARCH_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("jina.key", "RESEARCH_JINA_KEY", "JINA_API_KEY")

	// Defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.classify_max_tokens", 150)
	v.SetDefault("anthropic.extract_max_tokens", 1500)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("research.probe_timeout_secs", 15)
	v.SetDefault("research.fetch_timeout_secs", 15)
	v.SetDefault("research.reader_timeout_secs", 30)
	v.SetDefault("research.user_agent", "Mozilla/5.0 (compatible; ResearchBot/1.0)")
	v.SetDefault("batch.max_concurrent_companies", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ValidateCredentials checks that required secrets are present. Missing
// credentials are a startup-time fatal for entry points that reach the LLM,
// never a per-request condition.
func (c *Config) ValidateCredentials() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic API key required (set ANTHROPIC_API_KEY)")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
