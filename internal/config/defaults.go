package config

const (
	defaultDatabaseDir         = "~/.config/tracksync"
	defaultLogDir              = "~/.local/share/tracksync/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultSimilarityThreshold = 0.6
)

// DefaultExtensions returns the file extensions treated as music when the
// config does not override them.
func DefaultExtensions() []string {
	return []string{"flac", "mp3", "ogg", "mp4", "m4a"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatabaseDir: defaultDatabaseDir,
			LogDir:      defaultLogDir,
		},
		Scan: Scan{
			Extensions: DefaultExtensions(),
		},
		Dupes: Dupes{
			SimilarityThreshold: defaultSimilarityThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
