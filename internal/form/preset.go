package form

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastbox/internal/toast"
)

// ErrInvalidPreset is returned when a preset names an unknown level or position.
var ErrInvalidPreset = errors.New("invalid preset")

// Preset is the YAML form of Values.
type Preset struct {
	Message         string `yaml:"message"`
	Expiry          uint32 `yaml:"expiry"`
	Dismissable     bool   `yaml:"dismissable"`
	ExpiryEnabled   bool   `yaml:"expiry_enabled"`
	ProgressEnabled bool   `yaml:"progress_enabled"`
	Level           string `yaml:"level"`
	Position        string `yaml:"position"`
	Stacked         bool   `yaml:"stacked"`
}

// NewPreset converts values to a preset.
func NewPreset(v Values) Preset {
	return Preset{
		Message:         v.Message,
		Expiry:          v.Expiry,
		Dismissable:     v.Dismissable,
		ExpiryEnabled:   v.ExpiryEnabled,
		ProgressEnabled: v.ProgressEnabled,
		Level:           v.Level.String(),
		Position:        v.Position.String(),
		Stacked:         v.Stacked,
	}
}

// Values converts the preset back to form values.
func (p Preset) Values() (Values, error) {
	level, err := toast.ParseLevel(p.Level)
	if err != nil {
		return Values{}, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	position, err := toast.ParsePosition(p.Position)
	if err != nil {
		return Values{}, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	return Values{
		Message:         p.Message,
		Expiry:          p.Expiry,
		Dismissable:     p.Dismissable,
		ExpiryEnabled:   p.ExpiryEnabled,
		ProgressEnabled: p.ProgressEnabled,
		Level:           level,
		Position:        position,
		Stacked:         p.Stacked,
	}, nil
}

// WritePreset encodes v as YAML to w.
func WritePreset(w io.Writer, v Values) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewPreset(v)); err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	return enc.Close()
}

// SavePreset writes v to path as YAML, creating parent directories.
func SavePreset(path string, v Values) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create preset directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preset file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return WritePreset(f, v)
}

// LoadPreset reads form values from a YAML preset file.
// Fields missing from the file take their values from base.
func LoadPreset(path string, base Values) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("failed to read preset: %w", err)
	}

	p := NewPreset(base)
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Values{}, fmt.Errorf("failed to parse preset: %w", err)
	}
	return p.Values()
}
