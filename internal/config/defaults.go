package config

const (
	defaultSourceDir            = "videos_to_label"
	defaultLogDir               = "~/.local/share/clipsort/logs"
	defaultLogRetentionDays     = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultPlacementMode        = "move"
	defaultCorruptRows          = "skip"
	defaultPlayerBinary         = "mpv"
	defaultSeekSeconds          = 5.0
	defaultNotifyRequestTimeout = 10
	defaultDecisionLogFilename  = "decisions.csv"
	defaultSortedRootDirname    = "sorted"
)

func defaultExtensions() []string {
	return []string{".mp4", ".mov", ".avi", ".mkv", ".mpg", ".mpeg", ".wmv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			LogDir:    defaultLogDir,
		},
		Placement: Placement{
			Mode: defaultPlacementMode,
		},
		DecisionLog: DecisionLog{
			CorruptRows: defaultCorruptRows,
		},
		Scan: Scan{
			Extensions: defaultExtensions(),
		},
		Player: Player{
			Enabled:     true,
			Binary:      defaultPlayerBinary,
			SeekSeconds: defaultSeekSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			SessionDone:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
