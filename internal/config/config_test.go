package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewer.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Viewer.Height)
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Viewer.Wireframe {
		t.Error("expected wireframe to be false by default")
	}
	if cfg.Viewer.Orientation != "flat" {
		t.Errorf("expected orientation 'flat', got %s", cfg.Viewer.Orientation)
	}

	if len(cfg.Library.ModelPaths) != 1 || cfg.Library.ModelPaths[0] != "./models" {
		t.Errorf("unexpected model paths: %v", cfg.Library.ModelPaths)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "meshview.yaml")

	yamlContent := `
viewer:
  width: 1920
  height: 1080
  vsync: false
  wireframe: true
  orientation: "vertical"

library:
  model_paths:
    - "/srv/models"
    - "./local"

logging:
  level: "debug"
  log_file: "meshview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.VSync {
		t.Error("expected vsync to be false")
	}
	if !cfg.Viewer.Wireframe {
		t.Error("expected wireframe to be true")
	}
	if cfg.Viewer.Orientation != "vertical" {
		t.Errorf("expected orientation 'vertical', got %s", cfg.Viewer.Orientation)
	}

	if len(cfg.Library.ModelPaths) != 2 || cfg.Library.ModelPaths[0] != "/srv/models" {
		t.Errorf("unexpected model paths: %v", cfg.Library.ModelPaths)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshview.log" {
		t.Errorf("expected log file 'meshview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/meshview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Viewer.Width)
				}
				if cfg.Viewer.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "wireframe flag",
			setup: func() {
				*flagWireframe = true
			},
			verify: func(cfg *Config) {
				if !cfg.Viewer.Wireframe {
					t.Error("expected wireframe to be enabled")
				}
			},
			teardown: func() {
				*flagWireframe = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "meshview.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag wins over file
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	// Height from file, no flag override
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "meshview.yaml")

	cfg := Default()
	cfg.Viewer.Width = 800
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Viewer.Width != 800 {
		t.Errorf("expected width 800 after round trip, got %d", loaded.Viewer.Width)
	}
}
