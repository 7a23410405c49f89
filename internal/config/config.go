// Package config provides configuration management for the data pipeline.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	perrors "crypto-pulse/internal/errors"
)

// Config holds all application configuration. It is built once at startup and
// passed by value into adapter and orchestrator constructors; there is no
// process-wide mutable state beyond the composition root.
type Config struct {
	Database    DatabaseConfig `mapstructure:"database"`
	Tracking    TrackingConfig `mapstructure:"tracking"`
	News        NewsConfig     `mapstructure:"news"`
	AI          AIConfig       `mapstructure:"ai"`
	Credentials Credentials    `mapstructure:"-"` // Loaded separately
}

// DatabaseConfig holds the SQLite store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// TrackingConfig lists the tracked assets and symbols per data source.
type TrackingConfig struct {
	// Assets maps a display name to the market data provider's asset id.
	Assets map[string]string `mapstructure:"assets"`
	// Chains are the networks tracked for on-chain TVL.
	Chains []string `mapstructure:"chains"`
	// ExchangeSymbols are the candle pairs fetched from the exchange.
	ExchangeSymbols []string `mapstructure:"exchange_symbols"`
	// ForexSymbols are the EOD forex symbols tracked.
	ForexSymbols []string `mapstructure:"forex_symbols"`
	// DefaultWindowDays is the cold-start history depth in days.
	DefaultWindowDays int `mapstructure:"default_window_days"`
}

// NewsConfig holds news ingestion settings.
type NewsConfig struct {
	RSSFeeds         []string `mapstructure:"rss_feeds"`
	GeneralKeywords  []string `mapstructure:"general_keywords"`
	EconomicKeywords []string `mapstructure:"economic_keywords"`
	EconomicSources  string   `mapstructure:"economic_sources"`
	PageSize         int      `mapstructure:"page_size"`
}

// AIConfig holds annotation settings.
type AIConfig struct {
	// BaseURL points at any OpenAI-compatible chat endpoint; a local Ollama
	// instance works with its /v1 path.
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max_retries"`
	BatchLimit int    `mapstructure:"batch_limit"`
}

// Credentials holds API credentials.
type Credentials struct {
	NewsAPI NewsAPICredentials `mapstructure:"newsapi"`
	EODHD   EODHDCredentials   `mapstructure:"eodhd"`
	OpenAI  OpenAICredentials  `mapstructure:"openai"`
}

// NewsAPICredentials holds the NewsAPI key.
type NewsAPICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// EODHDCredentials holds the EODHD key.
type EODHDCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAICredentials holds the chat completion API key.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/crypto-pulse"
	}
	return filepath.Join(home, ".config", "crypto-pulse")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, perrors.Wrapf(err, "loading config.toml from %s", configDir)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, perrors.Wrapf(err, "loading credentials.toml from %s", configDir)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, perrors.Wrap(err, "validating config")
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setTrackingDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func setTrackingDefaults(v *viper.Viper) {
	v.SetDefault("tracking.assets", map[string]string{
		"bitcoin":        "bitcoin",
		"ethereum":       "ethereum",
		"solana":         "solana",
		"ripple":         "ripple",
		"pudgy-penguins": "pudgy-penguins",
		"dogs-2":         "dogs-2",
	})
	v.SetDefault("tracking.chains", []string{"Ethereum", "Solana", "Arbitrum", "Polygon"})
	v.SetDefault("tracking.exchange_symbols", []string{"BTC-USDT", "ETH-USDT", "SOL-USDT"})
	v.SetDefault("tracking.forex_symbols", []string{"DXY.INDX"})
	v.SetDefault("tracking.default_window_days", 30)

	v.SetDefault("news.rss_feeds", []string{
		"https://www.investing.com/rss/news_301.rss",
		"https://www.investing.com/rss/news_1.rss",
		"https://www.investing.com/rss/news_95.rss",
	})
	v.SetDefault("news.general_keywords", []string{
		"crypto", "bitcoin", "ethereum", "solana", "ripple", "blockchain",
	})
	v.SetDefault("news.economic_keywords", []string{
		"inflation", "interest rate", "GDP", "FOMC", "unemployment",
	})
	v.SetDefault("news.economic_sources", "bloomberg,reuters,the-wall-street-journal,financial-times")
	v.SetDefault("news.page_size", 20)

	v.SetDefault("ai.base_url", "http://localhost:11434/v1")
	v.SetDefault("ai.model", "llama3.2")
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.batch_limit", 5)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEWSAPI_API_KEY"); v != "" {
		cfg.Credentials.NewsAPI.APIKey = v
	}
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		cfg.Credentials.EODHD.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("CRYPTO_PULSE_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CRYPTO_PULSE_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
}

func applyDefaults(cfg *Config, configDir string) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(configDir, "data", "pulse.db")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Tracking.Assets) == 0 {
		return perrors.NewValidationError("tracking.assets", c.Tracking.Assets, "must list at least one asset")
	}
	if c.Tracking.DefaultWindowDays <= 0 {
		return perrors.NewValidationError("tracking.default_window_days", c.Tracking.DefaultWindowDays, "must be positive")
	}
	if c.AI.MaxRetries < 1 {
		return perrors.NewValidationError("ai.max_retries", c.AI.MaxRetries, "must be at least 1")
	}
	if c.AI.BatchLimit < 1 {
		return perrors.NewValidationError("ai.batch_limit", c.AI.BatchLimit, "must be at least 1")
	}
	if c.News.PageSize < 1 || c.News.PageSize > 100 {
		return perrors.NewValidationError("news.page_size", c.News.PageSize, "must be between 1 and 100")
	}
	return nil
}

// AssetID resolves a tracked asset name to its provider id.
func (c *Config) AssetID(name string) (string, bool) {
	id, ok := c.Tracking.Assets[name]
	return id, ok
}
