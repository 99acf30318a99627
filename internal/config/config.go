package config

import "time"

// Config holds runtime settings for the tripkeeper CLI.
//
// Intervals and timeouts are time.Duration values. Empty URLs leave the
// matching remote call unconfigured; empty S3 settings disable receipt
// uploads.
type Config struct {
	DBPath   string
	LogLevel string

	ManifestURL     string
	ManifestToken   string
	ManifestTimeout time.Duration

	TripsURL      string
	FuelURL       string
	IngestTimeout time.Duration

	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration

	S3 S3Config
}

// S3Config points receipt uploads at an S3-compatible bucket.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	PublicURL    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "tripkeeper.db"
	c.LogLevel = "info"
	c.ManifestTimeout = 15 * time.Second
	c.IngestTimeout = 30 * time.Second
	c.SyncInterval = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.S3.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
