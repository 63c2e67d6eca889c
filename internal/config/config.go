package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const appName = "pomodoro"

// Duration is a time.Duration written as "25m" or "90s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Seconds returns the duration in whole seconds.
func (d Duration) Seconds() int {
	return int(d.Duration / time.Second)
}

type TimerConfig struct {
	WorkDuration  Duration `toml:"work_duration"`
	BreakDuration Duration `toml:"break_duration"`
	AutoResume    bool     `toml:"auto_resume"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type NotifyConfig struct {
	Desktop       *bool    `toml:"desktop"`
	Sound         *bool    `toml:"sound"`
	Speech        *bool    `toml:"speech"`
	SoundFile     string   `toml:"sound_file"`
	SoundCommand  string   `toml:"sound_command"`
	BeepCommand   string   `toml:"beep_command"`
	SpeechCommand string   `toml:"speech_command"`
	Timeout       Duration `toml:"timeout"`
}

type BusConfig struct {
	System bool `toml:"system"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Timer  TimerConfig  `toml:"timer"`
	Store  StoreConfig  `toml:"store"`
	Notify NotifyConfig `toml:"notify"`
	Bus    BusConfig    `toml:"bus"`
	Log    LogConfig    `toml:"log"`
}

// SetDefault fills every unset field. Non-positive durations are treated
// as unset.
func (c *Config) SetDefault() {
	if c.Timer.WorkDuration.Duration <= 0 {
		c.Timer.WorkDuration.Duration = 20 * time.Minute
	}
	if c.Timer.BreakDuration.Duration <= 0 {
		c.Timer.BreakDuration.Duration = 5 * time.Minute
	}

	if c.Store.Backend == "" {
		c.Store.Backend = "json"
	}
	if c.Store.Path == "" {
		name := "state.json"
		if c.Store.Backend == "sqlite" {
			name = "state.db"
		}
		c.Store.Path = filepath.Join(DefaultDir(), name)
	}

	for _, flag := range []**bool{&c.Notify.Desktop, &c.Notify.Sound, &c.Notify.Speech} {
		if *flag == nil {
			enabled := true
			*flag = &enabled
		}
	}
	if c.Notify.SoundCommand == "" {
		c.Notify.SoundCommand = "paplay"
	}
	if c.Notify.BeepCommand == "" {
		c.Notify.BeepCommand = "aplay"
	}
	if c.Notify.SpeechCommand == "" {
		c.Notify.SpeechCommand = "spd-say"
	}
	if c.Notify.Timeout.Duration <= 0 {
		c.Notify.Timeout.Duration = 10 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects values SetDefault cannot repair.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// LogLevel returns the configured slog level, info if unparsable.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultDir is <user config dir>/pomodoro, or the working directory when
// the user config dir cannot be resolved.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, appName)
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// LoadConfigFromFile reads path. A missing file yields the defaults.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadConfigFromBytes(nil)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfigFromBytes(data)
}

func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.SetDefault()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
