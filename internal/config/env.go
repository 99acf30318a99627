package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "TRIPKEEPER_"

// dotEnvFile is loaded into the process environment before parseEnv reads it.
var dotEnvFile = ".env"

// parseEnv overlays cfg with TRIPKEEPER_* variables. Durations use Go syntax
// ("30s"). It panics on a malformed .env file or duration.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	strs := map[string]*string{
		"DB_PATH":        &cfg.DBPath,
		"LOG_LEVEL":      &cfg.LogLevel,
		"MANIFEST_URL":   &cfg.ManifestURL,
		"MANIFEST_TOKEN": &cfg.ManifestToken,
		"TRIPS_URL":      &cfg.TripsURL,
		"FUEL_URL":       &cfg.FuelURL,
		"S3_REGION":      &cfg.S3.Region,
		"S3_ACCESS_KEY":  &cfg.S3.AccessKey,
		"S3_SECRET_KEY":  &cfg.S3.SecretKey,
		"S3_ENDPOINT":    &cfg.S3.BaseEndpoint,
		"S3_BUCKET":      &cfg.S3.Bucket,
		"S3_PUBLIC_URL":  &cfg.S3.PublicURL,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"MANIFEST_TIMEOUT":      &cfg.ManifestTimeout,
		"INGEST_TIMEOUT":        &cfg.IngestTimeout,
		"SYNC_INTERVAL":         &cfg.SyncInterval,
		"ONLINE_CHECK_INTERVAL": &cfg.OnlineCheckInterval,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
