package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags populates selected Config fields from command-line flags.
//
// os.Args is filtered to the flags handled here so -c/-config and flags of
// other components do not break parsing. It panics on invalid values.
func parseFlags(cfg *Config) {
	args := filterArgs(os.Args[1:], []string{"-d", "-m", "-s", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the SQLite database file")
	fs.StringVar(&cfg.ManifestURL, "m", cfg.ManifestURL, "manifest API base URL")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "background sync interval (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
