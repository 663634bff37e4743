// Package config loads server and canvas settings from a YAML file with
// PATHBUILDER_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/geometry"
)

// EnvPrefix marks environment overrides. A double underscore descends into a
// section: PATHBUILDER_CANVAS__WEIGHT_SCALE sets canvas.weight_scale.
const EnvPrefix = "PATHBUILDER_"

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "pathbuilder.yml"

type Config struct {
	Environment    string       `yaml:"environment" koanf:"environment"`
	LogLevel       string       `yaml:"log_level" koanf:"log_level"`
	Addr           string       `yaml:"addr" koanf:"addr"`
	AllowedOrigins []string     `yaml:"allowed_origins" koanf:"allowed_origins"`
	MaxSessions    int          `yaml:"max_sessions" koanf:"max_sessions"`
	MaxImportBytes int64        `yaml:"max_import_bytes" koanf:"max_import_bytes"`
	Canvas         CanvasConfig `yaml:"canvas" koanf:"canvas"`
}

// CanvasConfig seeds the params of every new session.
type CanvasConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" koanf:"refresh_interval"`
	WeightScale     float64       `yaml:"weight_scale" koanf:"weight_scale"`
	LinkModifier    string        `yaml:"link_modifier" koanf:"link_modifier"`
	SelectionStroke string        `yaml:"selection_stroke" koanf:"selection_stroke"`
	EdgeStroke      string        `yaml:"edge_stroke" koanf:"edge_stroke"`
	Background      string        `yaml:"background" koanf:"background"`
	Width           float64       `yaml:"width" koanf:"width"`
	Height          float64       `yaml:"height" koanf:"height"`
	Platform        string        `yaml:"platform" koanf:"platform"`
}

func DefaultConfig() *Config {
	p := canvas.DefaultParams()
	return &Config{
		Environment:    "development",
		LogLevel:       "info",
		Addr:           ":8080",
		AllowedOrigins: []string{"*"},
		MaxSessions:    64,
		MaxImportBytes: 8 << 20,
		Canvas: CanvasConfig{
			RefreshInterval: p.RefreshInterval,
			WeightScale:     p.WeightScale,
			LinkModifier:    p.LinkModifier.String(),
			SelectionStroke: p.SelectionStroke,
			EdgeStroke:      p.EdgeStroke,
			Width:           p.Bounds.Width,
			Height:          p.Bounds.Height,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"production":  true,
	"test":        true,
}

var validPlatforms = map[canvas.Platform]bool{
	canvas.PlatformMac:     true,
	canvas.PlatformWindows: true,
	canvas.PlatformIOS:     true,
	canvas.PlatformAndroid: true,
	canvas.PlatformOther:   true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if !validEnvironments[c.Environment] {
		return fmt.Errorf("invalid environment %q: must be one of development, production, test", c.Environment)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive")
	}
	if c.MaxImportBytes <= 0 {
		return fmt.Errorf("max_import_bytes must be positive")
	}

	cc := c.Canvas
	if cc.RefreshInterval <= 0 {
		return fmt.Errorf("canvas.refresh_interval must be positive")
	}
	if cc.WeightScale <= 0 {
		return fmt.Errorf("canvas.weight_scale must be positive")
	}
	if _, ok := canvas.ParseModifier(cc.LinkModifier); !ok {
		return fmt.Errorf("invalid canvas.link_modifier %q: must be one of alt, ctrl, meta, shift", cc.LinkModifier)
	}
	if cc.Width <= 0 || cc.Height <= 0 {
		return fmt.Errorf("canvas.width and canvas.height must be positive")
	}
	if !validPlatforms[canvas.Platform(cc.Platform)] {
		return fmt.Errorf("invalid canvas.platform %q", cc.Platform)
	}
	return nil
}

// Params converts the canvas section. Call Validate first.
func (cc CanvasConfig) Params() canvas.Params {
	p := canvas.DefaultParams()
	p.RefreshInterval = cc.RefreshInterval
	p.WeightScale = cc.WeightScale
	if mod, ok := canvas.ParseModifier(cc.LinkModifier); ok {
		p.LinkModifier = mod
	}
	p.SelectionStroke = cc.SelectionStroke
	p.EdgeStroke = cc.EdgeStroke
	p.Background = cc.Background
	p.Bounds = geometry.Box{Width: cc.Width, Height: cc.Height}
	p.Platform = canvas.Platform(cc.Platform)
	return p
}
