package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/uGboly/xrblocks/internal/xr"
)

// RuntimeConfig configures one xrblocks host process. TOML on disk, with
// XRBLOCKS_* environment overrides applied on top.
type RuntimeConfig struct {
	App         string   `toml:"app" env:"XRBLOCKS_APP"`
	DebugAddr   string   `toml:"debug_addr" env:"XRBLOCKS_DEBUG_ADDR"`
	CorsOrigins []string `toml:"cors_origins" env:"XRBLOCKS_CORS_ORIGINS" envSeparator:","`

	// FrameRate is the simulated host frame cadence in frames per second.
	FrameRate int `toml:"frame_rate" env:"XRBLOCKS_FRAME_RATE"`

	// PhysicsTimestepMS is the fixed physics interval in milliseconds.
	PhysicsTimestepMS int `toml:"physics_timestep_ms" env:"XRBLOCKS_PHYSICS_TIMESTEP_MS"`

	Session SessionConfig `toml:"session"`
}

type SessionConfig struct {
	Mode             string   `toml:"mode" env:"XRBLOCKS_SESSION_MODE"`
	RequiredFeatures []string `toml:"required_features"`
	OptionalFeatures []string `toml:"optional_features"`

	// AutoStart requests the session as soon as capability probing
	// reports ready.
	AutoStart bool `toml:"auto_start" env:"XRBLOCKS_SESSION_AUTOSTART"`
}

// Load reads path (optional), applies defaults and env overrides, and
// validates. An empty path yields the default configuration.
func Load(path string) (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return RuntimeConfig{}, err
		}
	}
	applyDefaults(&cfg)
	if err := env.Parse(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("config env overrides failed: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *RuntimeConfig) {
	if cfg.App == "" {
		cfg.App = "xrsim"
	}
	if cfg.DebugAddr == "" {
		cfg.DebugAddr = ":9300"
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = 60
	}
	if cfg.PhysicsTimestepMS == 0 {
		cfg.PhysicsTimestepMS = 20
	}
	if cfg.Session.Mode == "" {
		cfg.Session.Mode = string(xr.ModeImmersiveAR)
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg RuntimeConfig) error {
	if strings.TrimSpace(cfg.App) == "" {
		return fmt.Errorf("runtime config missing app")
	}
	if strings.TrimSpace(cfg.DebugAddr) == "" {
		return fmt.Errorf("runtime config missing debug_addr")
	}
	if cfg.FrameRate < 1 || cfg.FrameRate > 240 {
		return fmt.Errorf("frame_rate out of range: %d", cfg.FrameRate)
	}
	if cfg.PhysicsTimestepMS < 1 || cfg.PhysicsTimestepMS > 1000 {
		return fmt.Errorf("physics_timestep_ms out of range: %d", cfg.PhysicsTimestepMS)
	}
	switch xr.SessionMode(cfg.Session.Mode) {
	case xr.ModeImmersiveAR, xr.ModeImmersiveVR:
	default:
		return fmt.Errorf("unknown session mode %q", cfg.Session.Mode)
	}
	return nil
}

// Timestep returns the physics interval as a duration.
func (c RuntimeConfig) Timestep() time.Duration {
	return time.Duration(c.PhysicsTimestepMS) * time.Millisecond
}

// FrameInterval returns the simulated host frame interval.
func (c RuntimeConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// SessionOptions maps the session block onto the xr contract shape.
func (c RuntimeConfig) SessionOptions() xr.SessionOptions {
	return xr.SessionOptions{
		Mode:             xr.SessionMode(c.Session.Mode),
		RequiredFeatures: c.Session.RequiredFeatures,
		OptionalFeatures: c.Session.OptionalFeatures,
	}
}
