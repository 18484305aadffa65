package cfg

type Cfg struct {
	// Run configuration
	EventsFile string
	BaseBranch string
	CacheDB    string
	Refresh    bool
	PushAll    bool

	// Application metadata
	YtDlpPath string
	Debug     bool
	Version   string
}
