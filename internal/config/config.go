// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	creditorToken := cfg.Creditor.APIKey
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"equalizer/internal/ledger"
)

// Config represents the entire application configuration
type Config struct {
	Creditor      CreditorConfig      `yaml:"creditor"`
	Debtor        DebtorConfig        `yaml:"debtor"`
	Tags          TagsConfig          `yaml:"tags"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CreditorConfig holds the paying party's ledger settings. The creditor
// fronts shared expenses and receives the repayment.
type CreditorConfig struct {
	APIKey             string `yaml:"api_key"`
	ProxyCategoryID    int64  `yaml:"proxy_category_id"`
	RepaymentAccountID int64  `yaml:"repayment_account_id"`
	EmailAddress       string `yaml:"email_address"`
}

// DebtorConfig holds the owing party's ledger settings.
type DebtorConfig struct {
	APIKey             string `yaml:"api_key"`
	RepaymentAccountID int64  `yaml:"repayment_account_id"`
	VenmoUsername      string `yaml:"venmo_username"`
}

// TagsConfig names the tags that opt transactions into batching.
type TagsConfig struct {
	Batch string `yaml:"batch"`
	Split string `yaml:"split"`
}

// LedgerConfig holds remote ledger API settings shared by both parties.
type LedgerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${CREDITOR_LEDGER_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Creditor: CreditorConfig{
			APIKey:             os.Getenv("CREDITOR_LEDGER_TOKEN"),
			ProxyCategoryID:    getEnvInt64("CREDITOR_PROXY_CATEGORY_ID", 0),
			RepaymentAccountID: getEnvInt64("CREDITOR_REPAYMENT_ACCOUNT_ID", 0),
			EmailAddress:       os.Getenv("CREDITOR_EMAIL_ADDRESS"),
		},
		Debtor: DebtorConfig{
			APIKey:             os.Getenv("DEBTOR_LEDGER_TOKEN"),
			RepaymentAccountID: getEnvInt64("DEBTOR_REPAYMENT_ACCOUNT_ID", 0),
			VenmoUsername:      os.Getenv("DEBTOR_VENMO_USERNAME"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("EQUALIZER_DB_PATH", "equalizer.db"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Tags.Batch == "" {
		c.Tags.Batch = "eq-to-batch"
	}
	if c.Tags.Split == "" {
		c.Tags.Split = "eq-to-split"
	}
	if c.Ledger.BaseURL == "" {
		c.Ledger.BaseURL = ledger.DefaultBaseURL
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "equalizer.db"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate reports the first missing setting that would make a run fail
// halfway through instead of up front.
func (c *Config) Validate() error {
	switch {
	case c.Creditor.APIKey == "":
		return fmt.Errorf("creditor.api_key is required")
	case c.Debtor.APIKey == "":
		return fmt.Errorf("debtor.api_key is required")
	case c.Creditor.ProxyCategoryID == 0:
		return fmt.Errorf("creditor.proxy_category_id is required")
	case c.Creditor.RepaymentAccountID == 0:
		return fmt.Errorf("creditor.repayment_account_id is required")
	case c.Debtor.RepaymentAccountID == 0:
		return fmt.Errorf("debtor.repayment_account_id is required")
	case c.Tags.Batch == c.Tags.Split:
		return fmt.Errorf("tags.batch and tags.split must differ")
	}
	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt64 retrieves an integer environment variable with a fallback default
func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		var result int64
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
