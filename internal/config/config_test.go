package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Duration
		expectError bool
	}{
		{"Minutes", "25m", 25 * time.Minute, false},
		{"Seconds with spaces", " 90s ", 90 * time.Second, false},
		{"Mixed", "1h30m", 90 * time.Minute, false},
		{"Missing unit", "25", 0, true},
		{"Empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, d.Duration)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	var config Config
	config.SetDefault()

	assert.Equal(t, 1200, config.Timer.WorkDuration.Seconds())
	assert.Equal(t, 300, config.Timer.BreakDuration.Seconds())
	assert.False(t, config.Timer.AutoResume)
	assert.Equal(t, "json", config.Store.Backend)
	assert.Equal(t, "state.json", filepath.Base(config.Store.Path))
	assert.True(t, *config.Notify.Desktop)
	assert.True(t, *config.Notify.Sound)
	assert.True(t, *config.Notify.Speech)
	assert.Equal(t, "spd-say", config.Notify.SpeechCommand)
	assert.Equal(t, 10*time.Second, config.Notify.Timeout.Duration)
	assert.Equal(t, slog.LevelInfo, config.LogLevel())
}

func TestSetDefault_KeepsExplicitFalse(t *testing.T) {
	off := false
	config := Config{Notify: NotifyConfig{Speech: &off}}
	config.SetDefault()
	assert.False(t, *config.Notify.Speech)
	assert.True(t, *config.Notify.Sound)
}

func TestLoadConfigFromBytes(t *testing.T) {
	tomlData := `
[timer]
work_duration = "25m"
break_duration = "-5m"
auto_resume = true

[store]
backend = "sqlite"

[notify]
sound = false
sound_file = "/usr/share/sounds/bell.oga"

[log]
level = "debug"
`
	config, err := LoadConfigFromBytes([]byte(tomlData))
	require.NoError(t, err)

	assert.Equal(t, 1500, config.Timer.WorkDuration.Seconds())
	assert.Equal(t, 300, config.Timer.BreakDuration.Seconds(), "non-positive duration falls back to default")
	assert.True(t, config.Timer.AutoResume)
	assert.Equal(t, "state.db", filepath.Base(config.Store.Path))
	assert.False(t, *config.Notify.Sound)
	assert.Equal(t, "/usr/share/sounds/bell.oga", config.Notify.SoundFile)
	assert.Equal(t, slog.LevelDebug, config.LogLevel())
}

func TestLoadConfigFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Bad duration", "[timer]\nwork_duration = \"soon\"\n"},
		{"Unknown backend", "[store]\nbackend = \"redis\"\n"},
		{"Bad log level", "[log]\nlevel = \"loud\"\n"},
		{"Broken TOML", "[timer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromBytes([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	config, err := LoadConfigFromFile(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 1200, config.Timer.WorkDuration.Seconds())

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\npath = \"/tmp/x.json\"\n"), 0o644))
	config, err = LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.json", config.Store.Path)
}
