package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-s server base URL
//	-d local database file path
//	-c/-config json file path with configs
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-poll-interval coordinator drain timer period (e.g., "30s")
//	-probe-interval connectivity probe period (e.g., "5s")
func ParseFlags() *StructuredConfig {
	var serverURL string
	var databaseDSN string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var pollInterval time.Duration
	var probeInterval time.Duration

	flag.StringVar(&serverURL, "s", "", "Remote API base URL")
	flag.StringVar(&databaseDSN, "d", "", "Local database file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&pollInterval, "poll-interval", 0, "Sync poll interval (e.g., 30s)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 5s)")

	flag.Parse()

	return &StructuredConfig{
		Adapter: Adapter{
			BaseURL:        serverURL,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Sync: Sync{
			PollInterval:  pollInterval,
			ProbeInterval: probeInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}
