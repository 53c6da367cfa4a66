package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastbox/internal/history"
)

// PlainFormatter formats records as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := parseTemplate(opts.Template)
		if err != nil {
			return nil, err
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes records as plain text.
func (f *PlainFormatter) Format(w io.Writer, records []history.Record) error {
	for i, r := range records {
		if err := f.formatRecord(w, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatRecord(w io.Writer, index int, r history.Record) error {
	if f.template != nil {
		data := templateData{Index: index, Record: r, RelativeTime: relativeTime(r.CreatedAt)}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	fmt.Fprintf(&sb, "%-7s %-12s %s", r.Level, r.Position, r.Status)
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s)", relativeTime(r.CreatedAt))
	}
	if d := r.Duration(); d > 0 {
		fmt.Fprintf(&sb, " after %s", d.Round(time.Millisecond))
	}
	sb.WriteString("\n    ")
	sb.WriteString(truncate(singleLine(r.Message), f.opts.MessageLen))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from a record.
func FormatField(r history.Record, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return r.ID
	case "level":
		return r.Level
	case "position":
		return r.Position
	case "status":
		return r.Status
	case "expiry":
		if r.Expiry == nil {
			return "none"
		}
		return fmt.Sprintf("%d", *r.Expiry)
	default:
		return r.Message
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime":  relativeTime,
		"upper":    strings.ToUpper,
	}
}

// relativeTime returns a human-readable relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
