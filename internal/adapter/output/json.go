package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastbox/internal/history"
)

// JSONFormatter formats records as a JSON array.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes records as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, records []history.Record) error {
	if records == nil {
		records = []history.Record{}
	}
	encoder := json.NewEncoder(w)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(records)
}

// YAMLFormatter formats records as a YAML sequence.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes records as a YAML sequence.
func (f *YAMLFormatter) Format(w io.Writer, records []history.Record) error {
	if records == nil {
		records = []history.Record{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(records); err != nil {
		return err
	}
	return encoder.Close()
}
