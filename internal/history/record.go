// Package history keeps a JSONL log of every toast shown and how it closed.
package history

import (
	"time"

	"github.com/jmylchreest/toastbox/internal/toast"
)

// Record is one toast in the history log.
type Record struct {
	ID          string    `json:"id" yaml:"id"`
	Message     string    `json:"message" yaml:"message"`
	Level       string    `json:"level" yaml:"level"`
	Position    string    `json:"position" yaml:"position"`
	Dismissable bool      `json:"dismissable" yaml:"dismissable"`
	Progress    bool      `json:"progress" yaml:"progress"`
	Expiry      *uint32   `json:"expiry_ms,omitempty" yaml:"expiry_ms,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	DBusID      uint32    `json:"dbus_id,omitempty" yaml:"dbus_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ClosedAt    time.Time `json:"closed_at,omitzero" yaml:"closed_at,omitempty"`
}

// NewRecord converts a toast to a history record.
func NewRecord(t toast.Toast) Record {
	r := Record{
		ID:          t.ID,
		Message:     t.Message,
		Level:       t.Level.String(),
		Position:    t.Position.String(),
		Dismissable: t.Dismissable,
		Progress:    t.Progress,
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt,
		ClosedAt:    t.ClosedAt,
	}
	if t.Expiry != nil {
		v := *t.Expiry
		r.Expiry = &v
	}
	return r
}

// Closed reports whether the record reached a final status.
func (r Record) Closed() bool {
	return !r.ClosedAt.IsZero()
}

// Duration returns how long the toast was on screen, or 0 if still open.
func (r Record) Duration() time.Duration {
	if !r.Closed() {
		return 0
	}
	return r.ClosedAt.Sub(r.CreatedAt)
}

// merge folds a later line for the same toast into r.
func (r *Record) merge(later Record) {
	if later.Status != "" {
		r.Status = later.Status
	}
	if !later.ClosedAt.IsZero() {
		r.ClosedAt = later.ClosedAt
	}
	if later.DBusID != 0 {
		r.DBusID = later.DBusID
	}
}

// Fold collapses lines sharing an ID into one record each, in order of
// first appearance.
func Fold(lines []Record) []Record {
	index := make(map[string]int, len(lines))
	var out []Record
	for _, l := range lines {
		if i, ok := index[l.ID]; ok {
			out[i].merge(l)
			continue
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}
