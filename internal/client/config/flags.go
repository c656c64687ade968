package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/campuslink/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// The args are filtered with flagx.FilterArgs so this parser ignores flags
// owned by other components (such as -c/-config).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-i", "-d", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the LMS backend")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "per-request timeout (in seconds)")
	pollInterval := fs.Int("i", int(cfg.UnreadPollInterval.Seconds()), "unread-message poll interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.DeviceKeyPath, "k", cfg.DeviceKeyPath, "path to the device secret file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.UnreadPollInterval = time.Duration(*pollInterval) * time.Second
}
