package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Logging configuration
	LogLevel string

	// Metrics endpoint address (promhttp)
	MetricsAddr string

	// NATS configuration
	NATSURL string

	// EVM RPC endpoints keyed by network name, e.g. "mainnet", "sepolia".
	// Parsed from ETH_RPC_URLS as "mainnet=https://...,sepolia=https://...".
	RPCURLs map[string]string

	// Known-asset snapshot file (JSON list of fungible assets per network).
	AssetsFile string

	// Optional address book file mapping addresses to display names.
	AddressBookFile string

	// Number of fractional digits annotations display amounts at.
	DisplayDecimals int
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.MetricsAddr = getEnvOrDefault("METRICS_ADDR", ":9090")

	cfg.NATSURL = getEnvOrDefault("NATS_URL", "nats://localhost:4222")

	rpcURLs, err := parseRPCURLs(os.Getenv("ETH_RPC_URLS"))
	if err != nil {
		errs = append(errs, err)
	} else if len(rpcURLs) == 0 {
		errs = append(errs, fmt.Errorf("ETH_RPC_URLS is required"))
	}
	cfg.RPCURLs = rpcURLs

	cfg.AssetsFile = os.Getenv("ASSETS_FILE")
	if cfg.AssetsFile == "" {
		errs = append(errs, fmt.Errorf("ASSETS_FILE is required"))
	}

	cfg.AddressBookFile = os.Getenv("ADDRESS_BOOK_FILE")

	decimals, err := parseInt("DISPLAY_DECIMALS", 2)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.DisplayDecimals = decimals
	}

	if cfg.DisplayDecimals < 0 {
		errs = append(errs, fmt.Errorf("DISPLAY_DECIMALS must not be negative"))
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for daemon initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.NATSURL == "" {
		errs = append(errs, fmt.Errorf("NATSURL is required"))
	}

	if len(c.RPCURLs) == 0 {
		errs = append(errs, fmt.Errorf("RPCURLs is required"))
	}

	for network, url := range c.RPCURLs {
		if network == "" || url == "" {
			errs = append(errs, fmt.Errorf("RPCURLs entries must have both network and URL"))
		}
	}

	if c.AssetsFile == "" {
		errs = append(errs, fmt.Errorf("AssetsFile is required"))
	}

	if c.DisplayDecimals < 0 {
		errs = append(errs, fmt.Errorf("DisplayDecimals must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// parseRPCURLs parses a "network=url,network=url" list into a map.
func parseRPCURLs(raw string) (map[string]string, error) {
	urls := make(map[string]string)
	if raw == "" {
		return urls, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		network, url, found := strings.Cut(pair, "=")
		if !found || network == "" || url == "" {
			return nil, fmt.Errorf("ETH_RPC_URLS: invalid entry %q, want network=url", pair)
		}
		urls[strings.TrimSpace(network)] = strings.TrimSpace(url)
	}
	return urls, nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
