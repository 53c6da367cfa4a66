// Package output provides output formatters for toast history.
package output

import (
	"fmt"
	"io"
	"text/template"

	"github.com/jmylchreest/toastbox/internal/history"
)

// Formatter formats history records for output.
type Formatter interface {
	// Format writes formatted records to the writer.
	Format(w io.Writer, records []history.Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes returns the supported format names.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom text/template for plain format, executed per record
	ShowIndex  bool   // Show 1-based index prefix
	ShowTime   bool   // Show relative time
	MessageLen int    // Maximum message length (0 = unlimited)
	Compact    bool   // Single-line JSON
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowTime:   true,
		MessageLen: 80,
	}
}

// templateData is the value custom templates are executed against.
type templateData struct {
	Index int
	history.Record
	RelativeTime string
}

// parseTemplate parses a per-record template.
func parseTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("record").Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return tmpl, nil
}
