package configloader

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables read on top of the YAML file.
const (
	EnvPrivateKey         = "TRANSFER_PRIVATE_KEY"
	EnvKeystorePassphrase = "TRANSFER_KEYSTORE_PASSPHRASE"
	EnvOneInchAPIKey      = "ONEINCH_API_KEY"
	EnvCoinGeckoAPIKey    = "COINGECKO_API_KEY"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WalletConfig describes the connected account and where its signing key comes from.
type WalletConfig struct {
	ChainID      uint64 `yaml:"chainId"`
	KeystorePath string `yaml:"keystorePath"`
	// PrivateKey and KeystorePassphrase are only ever taken from the environment.
	PrivateKey         string `yaml:"-"`
	KeystorePassphrase string `yaml:"-"`
}

// OneInchConfig holds 1inch token list and balance API configuration.
type OneInchConfig struct {
	TokenListBaseURL     string `yaml:"tokenListBaseURL"`
	BalanceBaseURL       string `yaml:"balanceBaseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    int    `yaml:"requestsPerSecond"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	ClientTimeoutSeconds int    `yaml:"clientTimeoutSeconds"`
	PerPage              int    `yaml:"perPage"`
}

// TokensConfig holds token list configuration.
type TokensConfig struct {
	Directory string `yaml:"directory"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines     int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds     int `yaml:"rpc_call_timeout_seconds"`
	ReceiptPollIntervalMillis int `yaml:"receipt_poll_interval_millis"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Wallet      WalletConfig      `yaml:"wallet"`
	OneInch     OneInchConfig     `yaml:"oneInch"`
	CoinGecko   CoinGeckoConfig   `yaml:"coingecko"`
	Tokens      TokensConfig      `yaml:"tokens"`
	Performance PerformanceConfig `yaml:"performance"`
	// RPCOverrides maps a network identifier (e.g. "sepolia") to an RPC URL.
	RPCOverrides map[string]string `yaml:"rpcOverrides"`
}

// RPCCallTimeout returns the per-call JSON-RPC timeout.
func (c *Config) RPCCallTimeout() time.Duration {
	return time.Duration(c.Performance.RPCCallTimeoutSeconds) * time.Second
}

// ReceiptPollInterval returns the interval between receipt lookups.
func (c *Config) ReceiptPollInterval() time.Duration {
	return time.Duration(c.Performance.ReceiptPollIntervalMillis) * time.Millisecond
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file is not an error: defaults and environment variables still apply.
// A .env file next to the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	var cfg Config
	if path != "" {
		logrus.Infof("Loading configuration from path: %s", path)
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logrus.Warnf("Config file %s not found, using defaults", path)
		case err != nil:
			logrus.Errorf("Failed to read config file %s: %v", path, err)
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
				return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Wallet.PrivateKey == "" && cfg.Wallet.KeystorePath == "" {
		logrus.Warn("No signing key configured: set wallet.keystorePath or " + EnvPrivateKey + ". Transfers will be unavailable.")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Wallet.PrivateKey = os.Getenv(EnvPrivateKey)
	cfg.Wallet.KeystorePassphrase = os.Getenv(EnvKeystorePassphrase)
	if v := os.Getenv(EnvOneInchAPIKey); v != "" {
		cfg.OneInch.APIKey = v
	}
	if v := os.Getenv(EnvCoinGeckoAPIKey); v != "" {
		cfg.CoinGecko.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Wallet.ChainID == 0 {
		cfg.Wallet.ChainID = 1
		logrus.Infof("Wallet.ChainID not set, defaulting to %d", cfg.Wallet.ChainID)
	}

	if cfg.OneInch.TokenListBaseURL == "" {
		cfg.OneInch.TokenListBaseURL = "https://tokens.1inch.io"
	}
	if cfg.OneInch.BalanceBaseURL == "" {
		cfg.OneInch.BalanceBaseURL = "https://api.1inch.io"
	}
	if cfg.OneInch.RequestTimeoutMillis <= 0 {
		cfg.OneInch.RequestTimeoutMillis = 10000
		logrus.Infof("OneInch.RequestTimeoutMillis not set, defaulting to %d ms", cfg.OneInch.RequestTimeoutMillis)
	}
	if cfg.OneInch.RequestsPerSecond <= 0 {
		cfg.OneInch.RequestsPerSecond = 5
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.ClientTimeoutSeconds <= 0 {
		cfg.CoinGecko.ClientTimeoutSeconds = 10
	}
	if cfg.CoinGecko.PerPage <= 0 {
		cfg.CoinGecko.PerPage = 100
	}

	if cfg.Tokens.Directory == "" {
		cfg.Tokens.Directory = "data/tokens"
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.ReceiptPollIntervalMillis <= 0 {
		cfg.Performance.ReceiptPollIntervalMillis = 2000
	}
}
