package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// keep the value already in Config.
type JsonConfig struct {
	DBPath   string `json:"db_path"`
	LogLevel string `json:"log_level"`

	ManifestURL     string          `json:"manifest_url"`
	ManifestToken   string          `json:"manifest_token"`
	ManifestTimeout *timex.Duration `json:"manifest_timeout"`

	TripsURL      string          `json:"trips_url"`
	FuelURL       string          `json:"fuel_url"`
	IngestTimeout *timex.Duration `json:"ingest_timeout"`

	SyncInterval        *timex.Duration `json:"sync_interval"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`

	S3 struct {
		Region       string `json:"region"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		BaseEndpoint string `json:"base_endpoint"`
		Bucket       string `json:"bucket"`
		PublicURL    string `json:"public_url"`
	} `json:"s3"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. It panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	path := configFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.ManifestURL, jc.ManifestURL)
	setString(&cfg.ManifestToken, jc.ManifestToken)
	setString(&cfg.TripsURL, jc.TripsURL)
	setString(&cfg.FuelURL, jc.FuelURL)

	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.BaseEndpoint, jc.S3.BaseEndpoint)
	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.PublicURL, jc.S3.PublicURL)

	if jc.ManifestTimeout != nil {
		cfg.ManifestTimeout = jc.ManifestTimeout.Duration
	}
	if jc.IngestTimeout != nil {
		cfg.IngestTimeout = jc.IngestTimeout.Duration
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
