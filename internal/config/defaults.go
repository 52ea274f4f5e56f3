package config

const (
	defaultConfigPath       = "~/.config/rive2d/config.toml"
	defaultLibraryDir       = "~/.local/share/rive2d/models"
	defaultDataDir          = "~/.local/share/rive2d"
	defaultLogDir           = "~/.local/share/rive2d/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultSidecarName      = "config.json"
	defaultMakeCurrent      = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
		Import: Import{
			SidecarName: defaultSidecarName,
			MakeCurrent: defaultMakeCurrent,
		},
	}
}
