// Package config handles layer view configuration loading and management.
package config

// Config holds all layer view settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	LayerView LayerViewConfig `yaml:"layer_view"`
	Theme     ThemeConfig     `yaml:"theme"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings for the preview binary.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"` // MSAA, 0 disables
}

// LayerViewConfig holds simulation pass settings.
type LayerViewConfig struct {
	// ShaderDir overrides the embedded shader sources with <name>.vert and
	// <name>.frag files from a directory.
	ShaderDir string `yaml:"shader_dir"`

	// Max3DElements is the element count above which constrained hardware
	// falls back to the 2D layer shader. Nil selects the tier default; zero
	// or less always uses the 2D shader.
	Max3DElements *int `yaml:"max_3d_elements"`

	// Resolution overrides the 2D fallback detail level. Nil means the
	// camera distance heuristic decides.
	Resolution *int `yaml:"resolution"`

	TrailDistance float32 `yaml:"trail_distance"` // mm behind the nozzle
	Elevation     float32 `yaml:"elevation"`      // mm above the nozzle

	DefaultCamera string `yaml:"default_camera"`
	FollowCamera  string `yaml:"follow_camera"`

	CompatibilityMode  bool `yaml:"compatibility_mode"`
	DisplayLineDetails bool `yaml:"display_line_details"`

	// ConstrainedShaders selects the simplified shaders meant for GLES
	// devices. HighTier marks the faster of those devices.
	ConstrainedShaders bool `yaml:"constrained_shaders"`
	HighTier           bool `yaml:"high_tier"`

	// PathsPerSecond is the auto-play speed of the preview.
	PathsPerSecond float64 `yaml:"paths_per_second"`
}

// Color is an RGBA colour with components in [0, 1].
type Color [4]float32

// ThemeConfig holds the colours pushed to shader uniforms.
type ThemeConfig struct {
	Starts             Color `yaml:"layerview_starts"`
	Nozzle             Color `yaml:"layerview_nozzle"`
	ModelUnslicable    Color `yaml:"model_unslicable"`
	ModelUnslicableAlt Color `yaml:"model_unslicable_alt"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "Layer View",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Samples: 4,
		},
		LayerView: LayerViewConfig{
			TrailDistance:  5.0,
			Elevation:      1.0,
			DefaultCamera:  "3d",
			FollowCamera:   "nozzle_cam",
			PathsPerSecond: 20,
		},
		Theme: ThemeConfig{
			Starts:             Color{1.0, 1.0, 1.0, 1.0},
			Nozzle:             Color{0.64, 0.64, 0.64, 0.3},
			ModelUnslicable:    Color{0.48, 0.48, 0.48, 1.0},
			ModelUnslicableAlt: Color{0.67, 0.67, 0.67, 1.0},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
