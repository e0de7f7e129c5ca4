package config

import (
	"flag"
	"fmt"
)

// bind registers one flag per overridable field of c on fs.
func (c *Config) bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Window.Width, "width", c.Window.Width, "window width")
	fs.IntVar(&c.Window.Height, "height", c.Window.Height, "window height")
	fs.BoolVar(&c.Window.Fullscreen, "fullscreen", c.Window.Fullscreen, "open a fullscreen window")
	fs.BoolVar(&c.Window.VSync, "vsync", c.Window.VSync, "synchronise buffer swaps with the display")
	fs.IntVar(&c.FPS, "fps", c.FPS, "render loop ticks per second")
	fs.StringVar(&c.Dialect, "dialect", c.Dialect, "shader dialect: core, es2d or oes")
	fs.IntVar(&c.Rotation, "rotation", c.Rotation, "initial display rotation in degrees")
	fs.StringVar(&c.Camera.Source, "camera", c.Camera.Source, "camera source: pattern, still or gstreamer")
	fs.StringVar(&c.Camera.Path, "image", c.Camera.Path, "image file for the still camera")
	fs.StringVar(&c.Camera.Device, "device", c.Camera.Device, "capture device for the gstreamer camera")
	fs.IntVar(&c.Camera.FPS, "camera-fps", c.Camera.FPS, "camera frames per second")
	fs.Var(&c.Camera.Warmup, "camera-warmup", "delay before the first camera image")
	fs.BoolVar(&c.Runtime.InstallRequired, "simulate-install", c.Runtime.InstallRequired, "simulate an AR runtime install on first start")
	fs.StringVar(&c.Runtime.Unavailable, "simulate-unavailable", c.Runtime.Unavailable, "simulate an unavailable AR runtime with this reason")
	fs.BoolVar(&c.Runtime.AskPermission, "ask-permission", c.Runtime.AskPermission, "start without camera permission")
	fs.BoolVar(&c.Runtime.DenyPermission, "deny-permission", c.Runtime.DenyPermission, "deny camera permission requests")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level: debug, info, warn or error")
	fs.BoolVar(&c.Log.Timestamps, "log-timestamps", c.Log.Timestamps, "include timestamps in log lines")
}

// Parse builds a Config from defaults, the file named by -config if given,
// and the remaining flags, which win over the file. The result is
// validated.
func Parse(name string, args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "HuJSON configuration file")
	cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		fileCfg, err := Load(*path)
		if err != nil {
			return Config{}, err
		}
		// Re-apply explicitly set flags on top of the file.
		over := flag.NewFlagSet(name, flag.ContinueOnError)
		fileCfg.bind(over)
		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "config" || setErr != nil {
				return
			}
			if err := over.Set(f.Name, f.Value.String()); err != nil {
				setErr = fmt.Errorf("flag -%s: %w", f.Name, err)
			}
		})
		if setErr != nil {
			return Config{}, setErr
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
