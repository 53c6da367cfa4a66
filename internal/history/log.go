package history

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/jmylchreest/toastbox/internal/toast"
)

// DBusLookup returns the desktop notification ID a toast was forwarded as.
type DBusLookup func(toastID string) (uint32, bool)

// Log records toasts to a JSONL file. It implements toast.Sink: a line is
// appended when a toast is shown and another when it closes; lines are
// folded by toast ID when read back.
type Log struct {
	mu          sync.Mutex
	logger      *slog.Logger
	persistence *JSONLPersistence
	source      string
	dbusLookup  DBusLookup
}

// Open opens the history log at path.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p, err := NewJSONLPersistence(path)
	if err != nil {
		return nil, err
	}
	return &Log{logger: logger, persistence: p}, nil
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.persistence.Path()
}

// SetSource tags subsequent records with where the toast came from (e.g. "tui").
func (l *Log) SetSource(source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.source = source
}

// SetDBusLookup sets how desktop notification IDs are resolved.
func (l *Log) SetDBusLookup(fn DBusLookup) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dbusLookup = fn
}

// Record appends the current state of a toast.
func (l *Log) Record(t toast.Toast) error {
	r := NewRecord(t)

	l.mu.Lock()
	r.Source = l.source
	lookup := l.dbusLookup
	l.mu.Unlock()

	if lookup != nil {
		if id, ok := lookup(t.ID); ok {
			r.DBusID = id
		}
	}
	return l.persistence.Append(r)
}

// Show implements toast.Sink.
func (l *Log) Show(t toast.Toast) {
	if err := l.Record(t); err != nil {
		l.logger.Warn("failed to record toast", "id", t.ID, "error", err)
	}
}

// Close implements toast.Sink.
func (l *Log) Close(t toast.Toast) {
	if err := l.Record(t); err != nil {
		l.logger.Warn("failed to record toast close", "id", t.ID, "status", t.Status.String(), "error", err)
	}
}

// All returns every record, oldest first.
func (l *Log) All() ([]Record, error) {
	lines, err := l.persistence.Load()
	if err != nil {
		return nil, err
	}
	records := Fold(lines)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// List returns up to limit records, newest first. A limit of 0 returns all.
func (l *Log) List(limit int) ([]Record, error) {
	records, err := l.All()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Compact rewrites the file with one line per toast.
func (l *Log) Compact() error {
	records, err := l.All()
	if err != nil {
		return err
	}
	if err := l.persistence.Rewrite(records); err != nil {
		return err
	}
	l.logger.Debug("history compacted", "records", len(records))
	return nil
}

// Retain rewrites the log keeping only records for which keep returns true.
// Returns the number of records removed.
func (l *Log) Retain(keep func(Record) bool) (int, error) {
	records, err := l.All()
	if err != nil {
		return 0, err
	}
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := l.persistence.Rewrite(kept); err != nil {
		return 0, err
	}
	l.logger.Debug("history pruned", "removed", removed, "kept", len(kept))
	return removed, nil
}

// Clear removes all history.
func (l *Log) Clear() error {
	return l.persistence.Clear()
}

// Stop closes the log file.
func (l *Log) Stop() error {
	return l.persistence.Close()
}
