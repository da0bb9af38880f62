package config

const (
	defaultDataDir             = "~/.local/share/photomise"
	defaultLogDir              = "~/.local/share/photomise/logs"
	defaultQuality             = 80
	defaultMaxDimension        = 1200
	defaultMaxTimeDeltaHours   = 8
	defaultLocationThresholdKM = 0.5
	defaultBlueskyHost         = "https://bsky.social"
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Defaults: Defaults{
			Quality:      defaultQuality,
			MaxDimension: defaultMaxDimension,
			AutoEvent:    false,
		},
		Clustering: Clustering{
			MaxTimeDeltaHours:   defaultMaxTimeDeltaHours,
			LocationThresholdKM: defaultLocationThresholdKM,
		},
		Bluesky: Bluesky{
			Host: defaultBlueskyHost,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
