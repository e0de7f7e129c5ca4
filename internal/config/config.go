// Package config holds the viewer's settings.
//
// Settings come from Default, then an optional HuJSON file (JSON with
// comments and trailing commas), then command-line flags.
package config

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"ar-viewer/internal/ar"
)

// Camera sources.
const (
	SourcePattern   = "pattern"
	SourceStill     = "still"
	SourceGStreamer = "gstreamer"
)

// Shader dialects, matching the shaders package.
const (
	DialectOES  = "oes"
	DialectES2D = "es2d"
	DialectCore = "core"
)

// WindowConfig describes the desktop window.
type WindowConfig struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Title      string `json:"title"`
	Resizable  bool   `json:"resizable"`
	VSync      bool   `json:"vsync"`
	Fullscreen bool   `json:"fullscreen"`
}

// CameraConfig selects and sizes the camera feed.
type CameraConfig struct {
	Source string `json:"source"`
	// Path is the image shown by the still source.
	Path string `json:"path,omitempty"`
	// Device and Element configure the gstreamer source.
	Device  string   `json:"device,omitempty"`
	Element string   `json:"element,omitempty"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	FPS     int      `json:"fps"`
	Warmup  Duration `json:"warmup"`
}

// RuntimeConfig scripts the simulated AR runtime.
type RuntimeConfig struct {
	InstallRequired bool   `json:"install_required"`
	Unavailable     string `json:"unavailable,omitempty"`
	FailSessions    bool   `json:"fail_sessions"`
	// AskPermission starts without camera permission so the viewer has
	// to request it. DenyPermission makes the request fail.
	AskPermission  bool `json:"ask_permission"`
	DenyPermission bool `json:"deny_permission"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level      string `json:"level"`
	Timestamps bool   `json:"timestamps"`
	Caller     bool   `json:"caller"`
}

// Config is the complete viewer configuration.
type Config struct {
	Window WindowConfig `json:"window"`
	// FPS is the render loop cadence.
	FPS     int    `json:"fps"`
	Dialect string `json:"dialect"`
	// Rotation is the initial display rotation in degrees.
	Rotation   int           `json:"rotation"`
	ClearColor [4]float32    `json:"clear_color"`
	Camera     CameraConfig  `json:"camera"`
	Runtime    RuntimeConfig `json:"runtime"`
	Log        LogConfig     `json:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "AR Viewer",
			Resizable: true,
			VSync:     true,
		},
		FPS:        60,
		Dialect:    DialectCore,
		ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
		Camera: CameraConfig{
			Source:  SourcePattern,
			Element: "autovideosrc",
			Width:   640,
			Height:  480,
			FPS:     30,
			Warmup:  Duration(500 * time.Millisecond),
		},
		Log: LogConfig{Level: "info"},
	}
}

// maxFileSize bounds config files read by Load.
const maxFileSize = 1 << 20

// Load reads a HuJSON file over Default. Fields missing from the file keep
// their defaults; unknown fields are rejected. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return c.decode(data)
}

func (c *Config) decode(data []byte) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.FPS < 1 || c.FPS > 240 {
		return fmt.Errorf("fps must be between 1 and 240, got %d", c.FPS)
	}
	switch c.Dialect {
	case DialectOES, DialectES2D, DialectCore:
	default:
		return fmt.Errorf("unknown shader dialect %q", c.Dialect)
	}
	if c.Rotation%90 != 0 {
		return fmt.Errorf("rotation must be a multiple of 90, got %d", c.Rotation)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear_color[%d] must be between 0 and 1, got %g", i, v)
		}
	}

	switch c.Camera.Source {
	case SourcePattern, SourceGStreamer:
	case SourceStill:
		if c.Camera.Path == "" {
			return fmt.Errorf("camera source %q needs a path", SourceStill)
		}
	default:
		return fmt.Errorf("unknown camera source %q", c.Camera.Source)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS < 1 {
		return fmt.Errorf("camera fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Camera.Warmup < 0 {
		return fmt.Errorf("camera warmup must not be negative, got %v", c.Camera.Warmup)
	}

	switch c.Runtime.Unavailable {
	case "", ar.ReasonNotInstalled, ar.ReasonUserDeclinedInstall, ar.ReasonDeviceNotCompatible,
		ar.ReasonRuntimeTooOld, ar.ReasonAppTooOld:
	default:
		return fmt.Errorf("unknown runtime.unavailable reason %q", c.Runtime.Unavailable)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Duration is a time.Duration written as a string like "500ms" in config
// files.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

var _ flag.Value = (*Duration)(nil)
