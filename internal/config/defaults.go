package config

const (
	defaultConfigPath       = "~/.config/gearboy/config.toml"
	defaultDataDir          = "~/Gearboy"
	defaultDatabaseSubdir   = "database"
	defaultLogDir           = "~/.local/share/gearboy/logs"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultBoxArtBaseURL    = "http://thumbnails.libretro.com"
	defaultBoxArtTimeout    = 30
	defaultBoxArtUserAgent  = "Gearboy/dev"
	defaultWatchDebounceMS  = 2000
	defaultRecentDays       = 30
	defaultBoxArtEnabled    = true

	// CatalogFileName is the persisted catalog file inside the database directory.
	CatalogFileName = "db.json"
)

// DefaultExtensions lists the file extensions recognized as ROMs.
var DefaultExtensions = []string{"gb", "gbc", "cgb", "sgb", "rom", "dmg", "zip"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		BoxArt: BoxArt{
			Enabled:        defaultBoxArtEnabled,
			BaseURL:        defaultBoxArtBaseURL,
			TimeoutSeconds: defaultBoxArtTimeout,
			UserAgent:      defaultBoxArtUserAgent,
		},
		Library: Library{
			Extensions:      append([]string(nil), DefaultExtensions...),
			WatchDebounceMS: defaultWatchDebounceMS,
			RecentDays:      defaultRecentDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
