package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Window.Samples != 4 {
		t.Errorf("expected 4 MSAA samples, got %d", cfg.Window.Samples)
	}

	lv := cfg.LayerView
	if lv.Max3DElements != nil {
		t.Errorf("expected no max 3d elements override, got %d", *lv.Max3DElements)
	}
	if lv.Resolution != nil {
		t.Errorf("expected no resolution override, got %d", *lv.Resolution)
	}
	if lv.TrailDistance != 5 {
		t.Errorf("expected trail distance 5, got %f", lv.TrailDistance)
	}
	if lv.Elevation != 1 {
		t.Errorf("expected elevation 1, got %f", lv.Elevation)
	}
	if lv.DefaultCamera != "3d" {
		t.Errorf("expected default camera '3d', got %s", lv.DefaultCamera)
	}
	if lv.FollowCamera != "nozzle_cam" {
		t.Errorf("expected follow camera 'nozzle_cam', got %s", lv.FollowCamera)
	}
	if lv.CompatibilityMode {
		t.Error("expected compatibility mode to be off by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "layerview.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

layer_view:
  shader_dir: "/opt/layerview/shaders"
  max_3d_elements: 250000
  resolution: 2
  trail_distance: 7.5
  compatibility_mode: true
  constrained_shaders: true

theme:
  layerview_starts: [0.1, 0.2, 0.3, 1.0]

logging:
  level: "debug"
  log_file: "layerview.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.LayerView.ShaderDir != "/opt/layerview/shaders" {
		t.Errorf("unexpected shader dir %s", cfg.LayerView.ShaderDir)
	}
	if cfg.LayerView.Max3DElements == nil || *cfg.LayerView.Max3DElements != 250000 {
		t.Errorf("expected max 3d elements 250000, got %v", cfg.LayerView.Max3DElements)
	}
	if cfg.LayerView.Resolution == nil || *cfg.LayerView.Resolution != 2 {
		t.Errorf("expected resolution 2, got %v", cfg.LayerView.Resolution)
	}
	if cfg.LayerView.TrailDistance != 7.5 {
		t.Errorf("expected trail distance 7.5, got %f", cfg.LayerView.TrailDistance)
	}
	if !cfg.LayerView.ConstrainedShaders || cfg.LayerView.HighTier {
		t.Errorf("unexpected tier flags constrained=%v high=%v", cfg.LayerView.ConstrainedShaders, cfg.LayerView.HighTier)
	}
	// Untouched keys keep their defaults
	if cfg.LayerView.Elevation != 1 {
		t.Errorf("expected default elevation 1, got %f", cfg.LayerView.Elevation)
	}
	if cfg.LayerView.PathsPerSecond != 20 {
		t.Errorf("expected default paths per second 20, got %f", cfg.LayerView.PathsPerSecond)
	}
	if cfg.Theme.Starts != (Color{0.1, 0.2, 0.3, 1.0}) {
		t.Errorf("unexpected starts colour %v", cfg.Theme.Starts)
	}
	if cfg.Logging.LogFile != "layerview.log" {
		t.Errorf("expected log file 'layerview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/layerview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantMax  *int
		wantRes  *int
		startMax *int
		startRes *int
	}{
		{
			name: "no overrides",
			env:  map[string]string{},
		},
		{
			name:    "both overrides",
			env:     map[string]string{EnvMax3DElements: "1000", EnvResolution: "3"},
			wantMax: intPtr(1000),
			wantRes: intPtr(3),
		},
		{
			name:     "malformed values are ignored",
			env:      map[string]string{EnvMax3DElements: "lots", EnvResolution: "1.5"},
			startMax: intPtr(42),
			startRes: intPtr(1),
			wantMax:  intPtr(42),
			wantRes:  intPtr(1),
		},
		{
			name:    "whitespace is tolerated",
			env:     map[string]string{EnvMax3DElements: " 77 "},
			wantMax: intPtr(77),
		},
		{
			name:    "zero budget is an override",
			env:     map[string]string{EnvMax3DElements: "0"},
			wantMax: intPtr(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.LayerView.Max3DElements = tt.startMax
			cfg.LayerView.Resolution = tt.startRes

			applyEnv(cfg, func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			})

			if !sameInt(cfg.LayerView.Max3DElements, tt.wantMax) {
				t.Errorf("Max3DElements = %v, want %v", cfg.LayerView.Max3DElements, tt.wantMax)
			}
			switch {
			case tt.wantRes == nil && cfg.LayerView.Resolution != nil:
				t.Errorf("Resolution = %d, want nil", *cfg.LayerView.Resolution)
			case tt.wantRes != nil && (cfg.LayerView.Resolution == nil || *cfg.LayerView.Resolution != *tt.wantRes):
				t.Errorf("Resolution = %v, want %d", cfg.LayerView.Resolution, *tt.wantRes)
			}
		})
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

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "layerview.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find layerview.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "compat flag",
			setup: func() { *flagCompatibility = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.LayerView.CompatibilityMode {
					t.Error("expected compatibility mode with compat flag")
				}
			},
			teardown: func() { *flagCompatibility = false },
		},
		{
			name:  "shaders flag",
			setup: func() { *flagShaders = "/tmp/shaders" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.LayerView.ShaderDir != "/tmp/shaders" {
					t.Errorf("expected shader dir /tmp/shaders, got %s", cfg.LayerView.ShaderDir)
				}
			},
			teardown: func() { *flagShaders = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "layerview.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
layer_view:
  max_3d_elements: 100
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv(EnvMax3DElements, "200")
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

	// Flag beats file
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
	// Environment beats file
	if cfg.LayerView.Max3DElements == nil || *cfg.LayerView.Max3DElements != 200 {
		t.Errorf("expected max 3d elements 200 from env, got %v", cfg.LayerView.Max3DElements)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "layerview.yaml")

	cfg := Default()
	cfg.LayerView.Resolution = intPtr(1)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.LayerView.Resolution == nil || *loaded.LayerView.Resolution != 1 {
		t.Errorf("expected resolution 1 after round trip, got %v", loaded.LayerView.Resolution)
	}
}

func TestSaveWritesUserConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)

	*flagWriteConfig = true
	defer func() { *flagWriteConfig = false }()
	if !WriteConfigRequested() {
		t.Fatal("expected write-config flag to be reported")
	}

	cfg := Default()
	cfg.LayerView.Max3DElements = intPtr(0)
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, filepath.Join(ConfigDir(), "layerview.yaml")); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if !sameInt(loaded.LayerView.Max3DElements, intPtr(0)) {
		t.Errorf("expected zero max 3d elements to survive, got %v", loaded.LayerView.Max3DElements)
	}
}

func intPtr(n int) *int { return &n }

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
