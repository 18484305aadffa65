package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Run configuration
	EventsFile string `long:"events-file" env:"EVENTS_FILE" default:"events.yml" description:"Events configuration file"`
	BaseBranch string `long:"base-branch" env:"BASE_BRANCH" default:"master" description:"Branch to fork event branches from"`
	CacheDB    string `long:"cache-db" env:"CACHE_DB" description:"SQLite file caching raw extraction payloads (disabled when empty)"`
	Refresh    bool   `long:"refresh" env:"REFRESH" description:"Ignore cached extraction payloads and re-fetch"`
	PushAll    bool   `long:"push-all" env:"PUSH_ALL" description:"Push every scraped branch, not only minimal downloads"`

	// Application metadata
	YtDlpPath string `long:"yt-dlp" env:"YT_DLP" default:"yt-dlp" description:"Path to the yt-dlp binary"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		EventsFile: raw.EventsFile,
		BaseBranch: raw.BaseBranch,
		CacheDB:    raw.CacheDB,
		Refresh:    raw.Refresh,
		PushAll:    raw.PushAll,
		YtDlpPath:  raw.YtDlpPath,
		Debug:      raw.Debug,
		Version:    GetVersion(),
	}

	return cfg, nil
}
