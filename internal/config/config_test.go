package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/geometry"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "shift", cfg.Canvas.LinkModifier)
	assert.Equal(t, canvas.DefaultRefreshInterval, cfg.Canvas.RefreshInterval)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathbuilder.yml")

	original := DefaultConfig()
	original.Environment = "production"
	original.AllowedOrigins = []string{"https://a.example", "https://b.example"}
	original.Canvas.RefreshInterval = 50 * time.Millisecond
	original.Canvas.WeightScale = 3
	original.Canvas.LinkModifier = "alt"
	original.Canvas.Platform = string(canvas.PlatformMac)

	require.NoError(t, original.Save(path))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Addr, cfg.Addr)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0644))

	_, err := Load(path)

	assert.ErrorContains(t, err, "reading config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PATHBUILDER_ADDR", ":9090")
	t.Setenv("PATHBUILDER_MAX_SESSIONS", "3")
	t.Setenv("PATHBUILDER_CANVAS__WEIGHT_SCALE", "2.5")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Equal(t, 2.5, cfg.Canvas.WeightScale)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"addr", func(c *Config) { c.Addr = "" }, "addr is required"},
		{"sessions", func(c *Config) { c.MaxSessions = 0 }, "max_sessions"},
		{"import size", func(c *Config) { c.MaxImportBytes = -1 }, "max_import_bytes"},
		{"refresh", func(c *Config) { c.Canvas.RefreshInterval = 0 }, "refresh_interval"},
		{"weight scale", func(c *Config) { c.Canvas.WeightScale = 0 }, "weight_scale"},
		{"link modifier", func(c *Config) { c.Canvas.LinkModifier = "ctrl+shift" }, "link_modifier"},
		{"bounds", func(c *Config) { c.Canvas.Height = 0 }, "canvas.width"},
		{"platform", func(c *Config) { c.Canvas.Platform = "amiga" }, "canvas.platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestCanvasParams(t *testing.T) {
	cc := DefaultConfig().Canvas
	cc.LinkModifier = "ctrl"
	cc.Width, cc.Height = 640, 480
	cc.Background = "map.png"

	p := cc.Params()

	assert.Equal(t, canvas.ModCtrl, p.LinkModifier)
	assert.Equal(t, geometry.Box{Width: 640, Height: 480}, p.Bounds)
	assert.Equal(t, "map.png", p.Background)
	assert.Equal(t, 1.0, p.PixelScale)
}
