package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"punk_dash/internal/rain"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "punk_dash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, `
endpoint: https://dash.example.com/api/data
poll_interval: 1m
fps: 24
schedule: fixed
theme: amber
charset: binary
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Endpoint = "https://dash.example.com/api/data"
	want.PollInterval = time.Minute
	want.FPS = 24
	want.Schedule = ScheduleFixed
	want.Theme = "amber"
	want.CharSet = "binary"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, cfg.Validate())
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "fps: 24\ntheme: amber\n")
	t.Setenv("PUNK_DASH_FPS", "50")
	t.Setenv("PUNK_DASH_DEBUG", "true")
	t.Setenv("PUNK_DASH_REQUEST_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.FPS)
	assert.Equal(t, "amber", cfg.Theme)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "colour: green\n"))
	assert.Error(t, err, "unknown keys are rejected")

	t.Setenv("PUNK_DASH_FPS", "fast")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"endpoint scheme", func(c *Config) { c.Endpoint = "ftp://host/api" }},
		{"endpoint host", func(c *Config) { c.Endpoint = "http:///api" }},
		{"poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"request timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"schedule", func(c *Config) { c.Schedule = "vsync" }},
		{"fps low", func(c *Config) { c.FPS = 0 }},
		{"fps high", func(c *Config) { c.FPS = 61 }},
		{"tick interval", func(c *Config) { c.TickInterval = 0 }},
		{"effect", func(c *Config) { c.Effect = "snow" }},
		{"preset", func(c *Config) { c.Preset = "fast" }},
		{"theme", func(c *Config) { c.Theme = "mauve" }},
		{"charset", func(c *Config) { c.CharSet = "" }},
		{"locale", func(c *Config) { c.Locale = "not a locale!" }},
		{"cell size", func(c *Config) { c.CellHeight = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestRainParams(t *testing.T) {
	cfg := Default()
	p, err := cfg.RainParams()
	require.NoError(t, err)
	assert.Equal(t, rain.PresetFrameSynced, p)

	cfg.Schedule = ScheduleFixed
	p, err = cfg.RainParams()
	require.NoError(t, err)
	assert.Equal(t, rain.PresetFixedRate, p)

	cfg.Preset = PresetFrameSynced
	p, err = cfg.RainParams()
	require.NoError(t, err)
	assert.Equal(t, rain.PresetFrameSynced, p, "explicit preset wins over schedule")
}

func TestDerivedValues(t *testing.T) {
	cfg := Default()
	cfg.Theme = "Cyan"
	cfg.CharSet = "binary"
	cfg.Locale = "de"

	assert.Equal(t, "cyan", cfg.ColorTheme().Name)
	assert.Equal(t, []rune("01"), cfg.Palette().Katakana)
	assert.Equal(t, language.German, cfg.Language())

	cfg.Theme = "mauve"
	assert.Equal(t, "green", cfg.ColorTheme().Name)
}

func TestScheduler(t *testing.T) {
	cfg := Default()
	s, err := cfg.Scheduler()
	require.NoError(t, err)
	s.Stop()

	cfg.Schedule = ScheduleFixed
	s, err = cfg.Scheduler()
	require.NoError(t, err)
	s.Stop()
}
