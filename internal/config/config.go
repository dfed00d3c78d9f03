// Package config handles viewer configuration loading and management.
package config

// Config holds all meshview settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Library LibraryConfig `yaml:"library"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds display and rendering settings.
type ViewerConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	VSync       bool   `yaml:"vsync"`
	Wireframe   bool   `yaml:"wireframe"`
	Orientation string `yaml:"orientation"` // "flat" or "vertical"
}

// LibraryConfig holds model file locations.
type LibraryConfig struct {
	ModelPaths []string `yaml:"model_paths"` // Directories searched for STL files
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:       1024,
			Height:      768,
			VSync:       true,
			Wireframe:   false,
			Orientation: "flat",
		},
		Library: LibraryConfig{
			ModelPaths: []string{"./models"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
