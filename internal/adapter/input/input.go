// Package input provides input adapters that read toast requests from
// outside the form.
package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmylchreest/toastbox/internal/toast"
)

// InputAdapter reads toast requests from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin").
	Name() string

	// Import reads every request the source holds.
	Import(ctx context.Context) ([]Request, error)
}

// Request is one toast to raise. Unset fields keep the value of the base
// builder they are applied to.
type Request struct {
	Message     string  `json:"message"`
	Level       string  `json:"level,omitempty"`
	Position    string  `json:"position,omitempty"`
	Expiry      *uint32 `json:"expiry_ms,omitempty"`
	NoExpiry    bool    `json:"no_expiry,omitempty"`
	Dismissable *bool   `json:"dismissable,omitempty"`
	Progress    *bool   `json:"progress,omitempty"`
}

// Apply overlays the request onto base.
func (r Request) Apply(base toast.Builder) (toast.Builder, error) {
	message := base.Message()
	if r.Message != "" {
		message = r.Message
	}
	b := toast.NewBuilder(message).
		WithLevel(base.Level()).
		WithPosition(base.Position()).
		WithExpiry(base.Expiry()).
		WithDismissable(base.Dismissable()).
		WithProgress(base.Progress())

	if r.Level != "" {
		l, err := toast.ParseLevel(strings.ToLower(r.Level))
		if err != nil {
			return base, err
		}
		b = b.WithLevel(l)
	}
	if r.Position != "" {
		p, err := toast.ParsePosition(strings.ToLower(r.Position))
		if err != nil {
			return base, err
		}
		b = b.WithPosition(p)
	}
	switch {
	case r.NoExpiry && r.Expiry != nil:
		return base, fmt.Errorf("request sets both expiry_ms and no_expiry")
	case r.NoExpiry:
		b = b.WithExpiry(nil)
	case r.Expiry != nil:
		b = b.WithExpiry(r.Expiry)
	}
	if r.Dismissable != nil {
		b = b.WithDismissable(*r.Dismissable)
	}
	if r.Progress != nil {
		b = b.WithProgress(*r.Progress)
	}
	return b, nil
}

// NewAdapter creates an InputAdapter for the specified source.
func NewAdapter(source string) (InputAdapter, error) {
	switch source {
	case "stdin", "-", "":
		return NewStdinAdapter(), nil
	default:
		return nil, &AdapterError{
			Source:  source,
			Message: "unknown or unavailable adapter",
		}
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// sanitizeString replaces control characters other than newline and tab.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
