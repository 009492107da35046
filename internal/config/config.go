// Package config loads the dashboard's settings from defaults, an optional
// YAML file and PUNK_DASH_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"punk_dash/internal/gfx"
	"punk_dash/internal/loop"
	"punk_dash/internal/rain"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "PUNK_DASH_"

// Scheduling models.
const (
	ScheduleFrame = "frame"
	ScheduleFixed = "fixed"
)

// Rain effects.
const (
	EffectColumns   = "columns"
	EffectParticles = "particles"
)

// Rain parameter presets.
const (
	PresetAuto        = "auto"
	PresetFrameSynced = "frame-synced"
	PresetFixedRate   = "fixed-rate"
)

// Default configuration values.
const (
	defaultEndpoint       = "http://localhost:5000/api/data"
	defaultPollInterval   = 5 * time.Minute
	defaultRequestTimeout = 10 * time.Second
	defaultFPS            = 30
	defaultTickInterval   = 30 * time.Millisecond
	defaultTheme          = "green"
	defaultLocale         = "en"
	defaultCellWidth      = 7
	defaultCellHeight     = 14
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the dashboard settings.
type Config struct {
	Endpoint       string        `yaml:"endpoint" env:"ENDPOINT"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	Schedule     string        `yaml:"schedule" env:"SCHEDULE"`           // frame or fixed
	FPS          int           `yaml:"fps" env:"FPS"`                     // frame schedule rate, 1-60
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"` // fixed schedule period

	Effect  string `yaml:"effect" env:"EFFECT"`   // columns or particles
	Preset  string `yaml:"preset" env:"PRESET"`   // auto follows the schedule
	Theme   string `yaml:"theme" env:"THEME"`     // rain and panel color
	CharSet string `yaml:"charset" env:"CHARSET"` // named set or literal glyphs

	Locale     string `yaml:"locale" env:"LOCALE"`
	CellWidth  int    `yaml:"cell_width" env:"CELL_WIDTH"`
	CellHeight int    `yaml:"cell_height" env:"CELL_HEIGHT"`

	LogFile string `yaml:"log_file" env:"LOG_FILE"`
	Debug   bool   `yaml:"debug" env:"DEBUG"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint:       defaultEndpoint,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		Schedule:       ScheduleFrame,
		FPS:            defaultFPS,
		TickInterval:   defaultTickInterval,
		Effect:         EffectColumns,
		Preset:         PresetAuto,
		Theme:          defaultTheme,
		CharSet:        rain.DefaultCharSet,
		Locale:         defaultLocale,
		CellWidth:      defaultCellWidth,
		CellHeight:     defaultCellHeight,
	}
}

// Load applies the YAML file at path (if not empty) and then the environment
// over the defaults. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint must be an http(s) URL: %q", ErrInvalid, c.Endpoint)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive: %s", ErrInvalid, c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive: %s", ErrInvalid, c.RequestTimeout)
	}
	switch c.Schedule {
	case ScheduleFrame, ScheduleFixed:
	default:
		return fmt.Errorf("%w: unknown schedule %q", ErrInvalid, c.Schedule)
	}
	if c.FPS < 1 || c.FPS > 60 {
		return fmt.Errorf("%w: fps out of range (1-60): got %d", ErrInvalid, c.FPS)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive: %s", ErrInvalid, c.TickInterval)
	}
	switch c.Effect {
	case EffectColumns, EffectParticles:
	default:
		return fmt.Errorf("%w: unknown effect %q", ErrInvalid, c.Effect)
	}
	if _, err := c.RainParams(); err != nil {
		return err
	}
	if _, ok := gfx.LookupTheme(c.Theme); !ok {
		return fmt.Errorf("%w: unknown color theme %q", ErrInvalid, c.Theme)
	}
	if _, err := rain.ResolveCharSet(c.CharSet); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("%w: locale %q: %v", ErrInvalid, c.Locale, err)
	}
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return fmt.Errorf("%w: cell size must be positive: %dx%d", ErrInvalid, c.CellWidth, c.CellHeight)
	}
	return nil
}

// RainParams returns the column parameters of the selected preset.
func (c Config) RainParams() (rain.Params, error) {
	preset := c.Preset
	if preset == PresetAuto || preset == "" {
		preset = PresetFrameSynced
		if c.Schedule == ScheduleFixed {
			preset = PresetFixedRate
		}
	}
	switch preset {
	case PresetFrameSynced:
		return rain.PresetFrameSynced, nil
	case PresetFixedRate:
		return rain.PresetFixedRate, nil
	}
	return rain.Params{}, fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Preset)
}

// ColorTheme returns the selected theme.
func (c Config) ColorTheme() gfx.Theme {
	t, ok := gfx.LookupTheme(c.Theme)
	if !ok {
		t, _ = gfx.LookupTheme(defaultTheme)
	}
	return t
}

// Palette returns the default palette with the selected primary set.
func (c Config) Palette() rain.Palette {
	set, _ := rain.ResolveCharSet(c.CharSet)
	return rain.DefaultPalette().WithPrimary(set)
}

// Language returns the locale tag used for number formatting.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Scheduler builds the animation scheduler.
func (c Config) Scheduler() (loop.Scheduler, error) {
	if c.Schedule == ScheduleFixed {
		return loop.FixedRate(c.TickInterval)
	}
	return loop.FrameSynced(c.FPS)
}

// Presets lists the preset names.
func Presets() []string {
	return []string{PresetAuto, PresetFrameSynced, PresetFixedRate}
}
