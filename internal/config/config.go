// Package config loads viewer settings from an optional KEY=VALUE file and the
// environment. Environment variables win over the file.
package config

import (
	"time"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"

	"specter/engine/quarkgl"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = eris.New("invalid config")

// Config is the viewer configuration.
type Config struct {
	AssetDir string `config:"SPECTER_ASSET_DIR"`
	Manifest string `config:"SPECTER_MANIFEST"`
	FeedURL  string `config:"SPECTER_FEED_URL"`

	Width    int  `config:"SPECTER_WIDTH"`
	Height   int  `config:"SPECTER_HEIGHT"`
	Hz       int  `config:"SPECTER_HZ"`
	Ticks    int  `config:"SPECTER_TICKS"`
	Headless bool `config:"SPECTER_HEADLESS"`
	Follow   bool `config:"SPECTER_FOLLOW"`
	// RenderMode is solid, wireframe or vertex.
	RenderMode string `config:"SPECTER_RENDER_MODE"`

	LogLevel  string `config:"SPECTER_LOG_LEVEL"`
	LogPretty bool   `config:"SPECTER_LOG_PRETTY"`

	LoadConcurrency int `config:"SPECTER_LOAD_CONCURRENCY"`
	// LoadTimeoutMS bounds one asset load; 0 disables the timeout.
	LoadTimeoutMS int `config:"SPECTER_LOAD_TIMEOUT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AssetDir:        "assets",
		Width:           320,
		Height:          240,
		Hz:              30,
		RenderMode:      "solid",
		LogLevel:        "info",
		LoadConcurrency: 4,
	}
}

// Load applies file (if non-empty) and then the environment on top of Default.
func Load(file string) (Config, error) {
	cfg := Default()
	b := jlconfig.FromEnv()
	if file != "" {
		b = jlconfig.From(file).FromEnv()
	}
	if err := b.To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "load config")
	}
	return cfg, cfg.Validate()
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.AssetDir == "":
		return eris.Wrap(ErrInvalid, "asset directory is empty")
	case c.Width <= 0 || c.Height <= 0:
		return eris.Wrapf(ErrInvalid, "screen size %dx%d", c.Width, c.Height)
	case c.Hz <= 0:
		return eris.Wrapf(ErrInvalid, "tick rate %d", c.Hz)
	case c.Ticks < 0:
		return eris.Wrapf(ErrInvalid, "tick count %d", c.Ticks)
	case !validRenderMode(c.RenderMode):
		return eris.Wrapf(ErrInvalid, "render mode %q", c.RenderMode)
	case c.LoadConcurrency <= 0:
		return eris.Wrapf(ErrInvalid, "load concurrency %d", c.LoadConcurrency)
	case c.LoadTimeoutMS < 0:
		return eris.Wrapf(ErrInvalid, "load timeout %dms", c.LoadTimeoutMS)
	}
	return nil
}

func validRenderMode(s string) bool {
	_, ok := quarkgl.ParseRenderMode(s)
	return ok
}

// Render returns the parsed render mode. It assumes Validate passed.
func (c Config) Render() quarkgl.RenderMode {
	m, _ := quarkgl.ParseRenderMode(c.RenderMode)
	return m
}

// LoadTimeout returns LoadTimeoutMS as a duration.
func (c Config) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutMS) * time.Millisecond
}
