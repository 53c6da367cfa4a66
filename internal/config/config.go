// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// Default configuration values.
const (
	DefaultAppName    = "toastbox"
	DefaultVolume     = 80
	DefaultTick       = 100 * time.Millisecond
	DefaultMaxVisible = toast.DefaultMaxVisible
	DefaultWidth      = toast.DefaultWidth
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "2500ms", "2.5s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Plain integers are milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '2500ms', '2.5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int64 {
	return time.Duration(d).Milliseconds()
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the toastbox configuration.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Display  DisplayConfig  `toml:"display"`
	Theme    ThemeConfig    `toml:"theme"`
	DBus     DBusConfig     `toml:"dbus"`
	Audio    AudioConfig    `toml:"audio"`
	History  HistoryConfig  `toml:"history"`
}

// DefaultsConfig holds the values the form starts with and resets to.
type DefaultsConfig struct {
	Message       string   `toml:"message"`
	Expiry        Duration `toml:"expiry"` // e.g. "2500ms", "2.5s" or "2500"
	Dismissable   bool     `toml:"dismissable"`
	ExpiryEnabled bool     `toml:"expiry_enabled"`
	Progress      bool     `toml:"progress"`
	Level         string   `toml:"level"`    // info, success, warn, error
	Position      string   `toml:"position"` // top_left, top_right, bottom_right, bottom_left
	Stacked       bool     `toml:"stacked"`
}

// DisplayConfig contains toast display settings.
type DisplayConfig struct {
	Width      int      `toml:"width"`       // Toast width in cells
	MaxVisible int      `toml:"max_visible"` // Maximum stacked toasts per corner
	Tick       Duration `toml:"tick"`        // Expiry and progress refresh interval
}

// ThemeConfig contains per-level colors (ANSI number or hex).
type ThemeConfig struct {
	Info    string `toml:"info"`
	Success string `toml:"success"`
	Warn    string `toml:"warn"`
	Error   string `toml:"error"`
}

// DBusConfig controls forwarding toasts to the desktop notification daemon.
type DBusConfig struct {
	Enabled bool   `toml:"enabled"`
	AppName string `toml:"app_name"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-level sound file paths.
type SoundConfig struct {
	Info    string `toml:"info"`
	Success string `toml:"success"`
	Warn    string `toml:"warn"`
	Error   string `toml:"error"`
}

// HistoryConfig controls the toast history log.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Defaults to the data directory
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	d := form.BuiltinDefaults()
	return &Config{
		Defaults: DefaultsConfig{
			Message:       d.Message,
			Expiry:        Duration(time.Duration(d.Expiry) * time.Millisecond),
			Dismissable:   d.Dismissable,
			ExpiryEnabled: d.ExpiryEnabled,
			Progress:      d.ProgressEnabled,
			Level:         d.Level.String(),
			Position:      d.Position.String(),
			Stacked:       d.Stacked,
		},
		Display: DisplayConfig{
			Width:      DefaultWidth,
			MaxVisible: DefaultMaxVisible,
			Tick:       Duration(DefaultTick),
		},
		DBus: DBusConfig{
			Enabled: false,
			AppName: DefaultAppName,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastbox", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "toastbox")
}

// HistoryPath returns the path to the history JSONL file.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return expandPath(c.History.Path)
	}
	return filepath.Join(DataPath(), "history.jsonl")
}

// LogPath returns the path of the log file used while the TUI owns the terminal.
func LogPath() string {
	return filepath.Join(DataPath(), "toastbox.log")
}

// PresetPath returns the path of a named preset in the config directory.
func PresetPath(name string) string {
	return filepath.Join(filepath.Dir(ConfigPath()), "presets", name+".yaml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := toast.ParseLevel(c.Defaults.Level); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if _, err := toast.ParsePosition(c.Defaults.Position); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}

	ms := c.Defaults.Expiry.Milliseconds()
	if ms < 0 || ms > math.MaxUint32 {
		return fmt.Errorf("defaults: expiry must be between 0ms and %dms, got %dms", uint32(math.MaxUint32), ms)
	}

	if c.Display.Width < 12 || c.Display.Width > 200 {
		return fmt.Errorf("display: width must be between 12 and 200, got %d", c.Display.Width)
	}
	if c.Display.MaxVisible < 1 || c.Display.MaxVisible > 20 {
		return fmt.Errorf("display: max_visible must be between 1 and 20, got %d", c.Display.MaxVisible)
	}
	if c.Display.Tick.Duration() < 10*time.Millisecond || c.Display.Tick.Duration() > time.Second {
		return fmt.Errorf("display: tick must be between 10ms and 1s, got %s", c.Display.Tick.Duration())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("audio: volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	return nil
}

// FormDefaults converts the [defaults] section to form values.
// The configuration must have been validated.
func (c *Config) FormDefaults() form.Values {
	level, err := toast.ParseLevel(c.Defaults.Level)
	if err != nil {
		level = form.BuiltinDefaults().Level
	}
	position, err := toast.ParsePosition(c.Defaults.Position)
	if err != nil {
		position = form.BuiltinDefaults().Position
	}

	return form.Values{
		Message:         c.Defaults.Message,
		Expiry:          uint32(c.Defaults.Expiry.Milliseconds()),
		Dismissable:     c.Defaults.Dismissable,
		ExpiryEnabled:   c.Defaults.ExpiryEnabled,
		ProgressEnabled: c.Defaults.Progress,
		Level:           level,
		Position:        position,
		Stacked:         c.Defaults.Stacked,
	}
}

// ColorForLevel returns the configured color for a level, or "" for the default.
func (c *Config) ColorForLevel(level toast.Level) string {
	switch level {
	case toast.LevelSuccess:
		return c.Theme.Success
	case toast.LevelWarn:
		return c.Theme.Warn
	case toast.LevelError:
		return c.Theme.Error
	default:
		return c.Theme.Info
	}
}

// SoundForLevel returns the sound file for a level with ~ expanded.
func (c *Config) SoundForLevel(level toast.Level) string {
	var path string
	switch level {
	case toast.LevelSuccess:
		path = c.Audio.Sounds.Success
	case toast.LevelWarn:
		path = c.Audio.Sounds.Warn
	case toast.LevelError:
		path = c.Audio.Sounds.Error
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
