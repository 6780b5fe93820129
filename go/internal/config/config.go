// Package config loads process settings from the environment and match
// defaults from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/courtclock/go/internal/dbconfig"
	"github.com/mcdev12/courtclock/go/internal/models"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Env struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	StoreDriver       string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"courtclock.db"`
	ConfigPath        string        `env:"COURTCLOCK_CONFIG" envDefault:"courtclock.yaml"`
	NATSURL           string        `env:"NATS_URL"`
	NATSStream        string        `env:"NATS_STREAM" envDefault:"COURTCLOCK_EVENTS"`
	NATSSubjectPrefix string        `env:"NATS_SUBJECT_PREFIX" envDefault:"courtclock.events"`
	TickInterval      time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`

	DB dbconfig.Config
}

// LoadEnv parses and validates the process environment.
func LoadEnv() (Env, error) {
	cfg, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	if err := cfg.validate(); err != nil {
		return Env{}, err
	}
	return cfg, nil
}

func (e Env) validate() error {
	switch e.StoreDriver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", e.StoreDriver)
	}
	if e.StoreDriver == DriverSQLite && e.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required for the sqlite store")
	}
	if e.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", e.TickInterval)
	}
	if _, err := zerolog.ParseLevel(e.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (e Env) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(e.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// File holds match defaults used before anything has been stored.
type File struct {
	Settings  models.GameSettings `yaml:"settings"`
	HomeTeam  models.TeamConfig   `yaml:"home_team"`
	GuestTeam models.TeamConfig   `yaml:"guest_team"`
	Presets   []Preset            `yaml:"presets"`
}

// Preset is a named set of phase lengths offered as a starting profile.
type Preset struct {
	Name            string `yaml:"name"`
	QuarterMinutes  int    `yaml:"quarter_minutes"`
	BreakMinutes    int    `yaml:"break_minutes"`
	HalftimeMinutes int    `yaml:"halftime_minutes"`
}

// Apply returns base with the preset's phase lengths. Zero lengths keep base.
func (p Preset) Apply(base models.GameSettings) models.GameSettings {
	if p.QuarterMinutes > 0 {
		base.QuarterLength = p.QuarterMinutes
	}
	if p.BreakMinutes > 0 {
		base.BreakLength = p.BreakMinutes
	}
	if p.HalftimeMinutes > 0 {
		base.HalftimeLength = p.HalftimeMinutes
	}
	return base
}

func DefaultFile() File {
	return File{
		Settings:  models.DefaultGameSettings(),
		HomeTeam:  models.DefaultHomeTeam(),
		GuestTeam: models.DefaultGuestTeam(),
		Presets:   []Preset{},
	}
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (File, error) {
	cfg := DefaultFile()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return File{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return File{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (f File) validate() error {
	s := f.Settings
	if s.QuarterLength < 0 || s.BreakLength < 0 || s.HalftimeLength < 0 {
		return errors.New("phase lengths must not be negative")
	}
	if !s.SoundType.Valid() {
		return fmt.Errorf("unknown sound type %q", s.SoundType)
	}
	for i, p := range f.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("preset %d has no name", i)
		}
		if p.QuarterMinutes < 0 || p.BreakMinutes < 0 || p.HalftimeMinutes < 0 {
			return fmt.Errorf("preset %q has a negative length", p.Name)
		}
	}
	return nil
}
