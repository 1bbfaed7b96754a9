package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stockdash/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Upstream struct {
		RatePerMinute  int `yaml:"rate_per_minute"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"upstream"`
	Proxy      string           `yaml:"proxy"`
	Securities []model.Security `yaml:"securities"`
}

// defaultSecurities is the built-in catalog: NSE top 10 by market cap,
// mapped to their Yahoo Finance tickers.
var defaultSecurities = []model.Security{
	{Symbol: "RELIANCE", Name: "Reliance Industries Ltd", UpstreamID: "RELIANCE.NS"},
	{Symbol: "TCS", Name: "Tata Consultancy Services", UpstreamID: "TCS.NS"},
	{Symbol: "INFY", Name: "Infosys Ltd", UpstreamID: "INFY.NS"},
	{Symbol: "HDFCBANK", Name: "HDFC Bank Ltd", UpstreamID: "HDFCBANK.NS"},
	{Symbol: "ICICIBANK", Name: "ICICI Bank Ltd", UpstreamID: "ICICIBANK.NS"},
	{Symbol: "SBIN", Name: "State Bank of India", UpstreamID: "SBIN.NS"},
	{Symbol: "BAJFINANCE", Name: "Bajaj Finance Ltd", UpstreamID: "BAJFINANCE.NS"},
	{Symbol: "LT", Name: "Larsen & Toubro Ltd", UpstreamID: "LT.NS"},
	{Symbol: "ITC", Name: "ITC Ltd", UpstreamID: "ITC.NS"},
	{Symbol: "BHARTIARTL", Name: "Bharti Airtel Ltd", UpstreamID: "BHARTIARTL.NS"},
}

// Load reads config from a YAML file, then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("UPSTREAM_RATE_PER_MINUTE"); v != "" {
		var rpm int
		if _, err := fmt.Sscanf(v, "%d", &rpm); err == nil {
			cfg.Upstream.RatePerMinute = rpm
		}
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT_SECONDS"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil {
			cfg.Upstream.TimeoutSeconds = secs
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stockdash.db"
	}
	if cfg.Upstream.RatePerMinute == 0 {
		cfg.Upstream.RatePerMinute = 30
	}
	if cfg.Upstream.TimeoutSeconds == 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	if len(cfg.Securities) == 0 {
		// Copy so a caller mutating its config cannot corrupt the defaults.
		cfg.Securities = append([]model.Security(nil), defaultSecurities...)
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Upstream.RatePerMinute <= 0 {
		return fmt.Errorf("upstream.rate_per_minute must be positive")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream.timeout_seconds must be positive")
	}
	if len(c.Securities) == 0 {
		return fmt.Errorf("securities catalog must not be empty")
	}
	for i, s := range c.Securities {
		if s.Symbol == "" || s.Name == "" || s.UpstreamID == "" {
			return fmt.Errorf("securities[%d]: symbol, name and upstream are all required", i)
		}
	}
	return nil
}
