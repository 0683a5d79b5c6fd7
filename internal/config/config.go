// Package config loads ls-trails settings from YAML, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-trails/internal/clock"
	"github.com/litescript/ls-trails/internal/colormap"
	"github.com/litescript/ls-trails/internal/daynight"
	"github.com/litescript/ls-trails/internal/trips"
	"github.com/litescript/ls-trails/internal/view"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "LS_TRAILS_"

// Config is the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Clock    ClockConfig    `yaml:"clock"`
	DayNight DayNightConfig `yaml:"daynight"`
	View     ViewConfig     `yaml:"view"`
	Color    ColorConfig    `yaml:"color"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig locates the trip document.
type DataConfig struct {
	Source      string        `yaml:"source"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	TrailLength float64       `yaml:"trail_length" validate:"gt=0"`
}

// ClockConfig sets the animation window.
type ClockConfig struct {
	TMin float64 `yaml:"tmin"`
	TMax float64 `yaml:"tmax" validate:"gtefield=TMin"`
	Step float64 `yaml:"step" validate:"gt=0"`
	FPS  int     `yaml:"fps" validate:"gte=1,lte=240"`

	// FitToData replaces TMin/TMax with the loaded trips' time range.
	FitToData bool `yaml:"fit_to_data"`
}

// DayNightConfig selects how daytime is decided.
type DayNightConfig struct {
	Rule      string  `yaml:"rule" validate:"oneof=hours solar"`
	Timezone  string  `yaml:"timezone"`
	DayStart  int     `yaml:"day_start" validate:"gte=0,lte=23"`
	DayEnd    int     `yaml:"day_end" validate:"gtfield=DayStart,lte=24"`
	RampHours float64 `yaml:"ramp_hours" validate:"gte=0,lte=6"`
}

// ViewConfig holds camera settings.
type ViewConfig struct {
	TransitionDuration time.Duration  `yaml:"transition_duration" validate:"gt=0"`
	Initial            PresetConfig   `yaml:"initial"`
	Presets            []PresetConfig `yaml:"presets" validate:"dive"`
}

// PresetConfig is a named camera position.
type PresetConfig struct {
	Name      string  `yaml:"name" validate:"required"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Zoom      float64 `yaml:"zoom" validate:"gte=0,lte=22"`
	Pitch     float64 `yaml:"pitch" validate:"gte=0,lte=85"`
	Bearing   float64 `yaml:"bearing"`
}

// State converts the preset to a camera state.
func (p PresetConfig) State() view.State {
	return view.State{
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
		Zoom:      p.Zoom,
		Pitch:     p.Pitch,
		Bearing:   p.Bearing,
	}
}

// ColorConfig describes the trail color scale.
type ColorConfig struct {
	From      string  `yaml:"from" validate:"hexcolor"`
	To        string  `yaml:"to" validate:"hexcolor"`
	DomainMin float64 `yaml:"domain_min"`
	DomainMax float64 `yaml:"domain_max" validate:"gtfield=DomainMin"`
	ClampMax  float64 `yaml:"clamp_max"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Timeout:     trips.DefaultTimeout,
			TrailLength: trips.DefaultTrailLength,
		},
		Clock: ClockConfig{
			TMin: clock.DefaultTMin,
			TMax: clock.DefaultTMax,
			Step: clock.DefaultStep,
			FPS:  int(time.Second / clock.DefaultFrameInterval),
		},
		DayNight: DayNightConfig{
			Rule:      daynight.RuleHours.String(),
			DayStart:  daynight.DefaultDayStartHour,
			DayEnd:    daynight.DefaultDayEndHour,
			RampHours: 1,
		},
		View: ViewConfig{
			TransitionDuration: view.DefaultTransitionDuration,
			Initial:            presetFrom("initial", view.Initial),
			Presets:            []PresetConfig{presetFrom("paris", view.Paris)},
		},
		Color: ColorConfig{
			From:      colormap.DefaultFrom,
			To:        colormap.DefaultTo,
			DomainMin: colormap.DefaultDomainMin,
			DomainMax: colormap.DefaultDomainMax,
			ClampMax:  colormap.DefaultClampMax,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func presetFrom(name string, s view.State) PresetConfig {
	return PresetConfig{
		Name:      name,
		Longitude: s.Longitude,
		Latitude:  s.Latitude,
		Zoom:      s.Zoom,
		Pitch:     s.Pitch,
		Bearing:   s.Bearing,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then a .env file in the working directory, then
// LS_TRAILS_* environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	float := func(key string, dst *float64) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
		return nil
	}

	if v, ok := get("DATA"); ok {
		c.Data.Source = v
	}
	if v, ok := get("TIMEZONE"); ok {
		c.DayNight.Timezone = v
	}
	if v, ok := get("RULE"); ok {
		c.DayNight.Rule = strings.ToLower(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := get("LOG_FILE"); ok {
		c.Log.File = v
	}
	if v, ok := get("FPS"); ok {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sFPS: %w", EnvPrefix, err)
		}
		c.Clock.FPS = fps
	}
	if v, ok := get("FIT_TO_DATA"); ok {
		fit, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sFIT_TO_DATA: %w", EnvPrefix, err)
		}
		c.Clock.FitToData = fit
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"TMIN", &c.Clock.TMin},
		{"TMAX", &c.Clock.TMax},
		{"STEP", &c.Clock.Step},
		{"TRAIL_LENGTH", &c.Data.TrailLength},
	}
	for _, f := range floats {
		if err := float(f.key, f.dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks struct constraints and the timezone name.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.DayNight.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DayNight.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.DayNight.Timezone, err)
	}
	return loc, nil
}

// FrameInterval converts FPS to a tick interval.
func (c *Config) FrameInterval() time.Duration {
	if c.Clock.FPS <= 0 {
		return clock.DefaultFrameInterval
	}
	return time.Second / time.Duration(c.Clock.FPS)
}

// Resolver builds the day/night resolver from the configuration.
func (c *Config) Resolver() (daynight.Resolver, error) {
	loc, err := c.Location()
	if err != nil {
		return daynight.Resolver{}, err
	}
	r := daynight.NewResolver(loc)
	r.DayStartHour = c.DayNight.DayStart
	r.DayEndHour = c.DayNight.DayEnd
	r.RampHours = c.DayNight.RampHours
	return r, nil
}

// Scale builds the trail color scale.
func (c *Config) Scale() (colormap.Scale, error) {
	return colormap.New(c.Color.From, c.Color.To, c.Color.DomainMin, c.Color.DomainMax, c.Color.ClampMax)
}

// ClockEngineConfig returns the engine construction parameters.
func (c *Config) ClockEngineConfig() clock.Config {
	return clock.Config{
		TMin: c.Clock.TMin,
		TMax: c.Clock.TMax,
		Step: c.Clock.Step,
	}
}
