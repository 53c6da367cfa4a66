package toast

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxVisible is the default cap on stacked toasts per position.
const DefaultMaxVisible = 5

// Sink observes toasts as they are shown and closed.
// Sinks are called outside the toaster lock and must not block for long.
type Sink interface {
	Show(t Toast)
	Close(t Toast)
}

// Toaster owns the live toasts.
type Toaster struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// Live toasts, oldest first.
	toasts []Toast

	stacked    bool
	maxVisible int
	sinks      []Sink
	now        func() time.Time
}

// New creates a new Toaster with stacking disabled.
func New(logger *slog.Logger) *Toaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toaster{
		logger:     logger,
		maxVisible: DefaultMaxVisible,
		now:        time.Now,
	}
}

// AddSink registers a sink.
func (t *Toaster) AddSink(s Sink) {
	if s == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sinks = append(t.sinks, s)
}

// SetClock replaces the time source. Intended for tests.
func (t *Toaster) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// SetMaxVisible sets how many stacked toasts a position can hold.
// Values below 1 are ignored.
func (t *Toaster) SetMaxVisible(n int) {
	if n < 1 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxVisible = n
}

// SetStacked sets whether toasts at the same position stack.
// When false, a new toast replaces the toasts already shown at its position.
func (t *Toaster) SetStacked(stacked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stacked = stacked
}

// Stacked reports whether stacking is enabled.
func (t *Toaster) Stacked() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stacked
}

// Toast builds a toast from b and shows it.
func (t *Toaster) Toast(b Builder) Toast {
	t.mu.Lock()
	now := t.now()
	nt := Toast{
		ID:          newID(now),
		Message:     b.Message(),
		Level:       b.Level(),
		Position:    b.Position(),
		Dismissable: b.Dismissable(),
		Progress:    b.Progress(),
		Expiry:      b.Expiry(),
		CreatedAt:   now,
		Status:      StatusActive,
	}

	var closed []Toast
	if !t.stacked {
		closed = t.closeWhere(now, StatusClosed, func(x Toast) bool {
			return x.Position == nt.Position
		})
	}
	t.toasts = append(t.toasts, nt)
	if t.stacked {
		closed = append(closed, t.trimPosition(now, nt.Position)...)
	}
	sinks := t.sinks
	t.mu.Unlock()

	t.logger.Debug("toast shown",
		"id", nt.ID,
		"level", nt.Level.String(),
		"position", nt.Position.String(),
		"replaced", len(closed),
	)

	for _, s := range sinks {
		for _, c := range closed {
			s.Close(c)
		}
		s.Show(nt)
	}
	return nt
}

// Clear closes every live toast and returns how many were closed.
func (t *Toaster) Clear() int {
	t.mu.Lock()
	closed := t.closeWhere(t.now(), StatusClosed, func(Toast) bool { return true })
	sinks := t.sinks
	t.mu.Unlock()

	t.notifyClosed(sinks, closed)
	t.logger.Debug("toasts cleared", "count", len(closed))
	return len(closed)
}

// Dismiss closes a toast on behalf of the user.
func (t *Toaster) Dismiss(id string) error {
	return t.closeByID(id, StatusDismissed, true)
}

// CloseByID closes a live toast with the given final status, whether or
// not it is dismissable. Used when something outside the toaster, such as
// the desktop notification daemon, has already removed it.
func (t *Toaster) CloseByID(id string, status Status) error {
	return t.closeByID(id, status, false)
}

func (t *Toaster) closeByID(id string, status Status, userDismissal bool) error {
	t.mu.Lock()
	idx := t.indexOf(id)
	if idx < 0 {
		t.mu.Unlock()
		return ErrNotFound
	}
	if userDismissal && !t.toasts[idx].Dismissable {
		t.mu.Unlock()
		return ErrNotDismissable
	}
	closed := t.closeWhere(t.now(), status, func(x Toast) bool {
		return x.ID == id
	})
	sinks := t.sinks
	t.mu.Unlock()

	t.notifyClosed(sinks, closed)
	return nil
}

// DismissNewest dismisses the most recently shown dismissable toast.
func (t *Toaster) DismissNewest() (Toast, error) {
	t.mu.RLock()
	var target Toast
	for i := len(t.toasts) - 1; i >= 0; i-- {
		if t.toasts[i].Dismissable {
			target = t.toasts[i]
			break
		}
	}
	t.mu.RUnlock()

	if target.ID == "" {
		return Toast{}, ErrNotFound
	}
	if err := t.Dismiss(target.ID); err != nil {
		return Toast{}, err
	}
	target.Status = StatusDismissed
	return target, nil
}

// Tick expires toasts whose expiry has elapsed at now and returns them.
func (t *Toaster) Tick(now time.Time) []Toast {
	t.mu.Lock()
	expired := t.closeWhere(now, StatusExpired, func(x Toast) bool {
		return x.Expired(now)
	})
	sinks := t.sinks
	t.mu.Unlock()

	t.notifyClosed(sinks, expired)
	return expired
}

// Visible returns the live toasts at pos, newest first.
func (t *Toaster) Visible(pos Position) []Toast {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []Toast
	for i := len(t.toasts) - 1; i >= 0; i-- {
		if t.toasts[i].Position == pos {
			result = append(result, t.toasts[i])
		}
	}
	return result
}

// All returns every live toast, oldest first.
func (t *Toaster) All() []Toast {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Toast, len(t.toasts))
	copy(result, t.toasts)
	return result
}

// Count returns the number of live toasts.
func (t *Toaster) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.toasts)
}

// Get returns a live toast by id.
func (t *Toaster) Get(id string) (Toast, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := t.indexOf(id)
	if idx < 0 {
		return Toast{}, false
	}
	return t.toasts[idx], true
}

// closeWhere removes matching toasts, marking them with status.
// Caller must hold the write lock.
func (t *Toaster) closeWhere(now time.Time, status Status, match func(Toast) bool) []Toast {
	var closed []Toast
	kept := t.toasts[:0]
	for _, x := range t.toasts {
		if match(x) {
			x.Status = status
			x.ClosedAt = now
			closed = append(closed, x)
			continue
		}
		kept = append(kept, x)
	}
	t.toasts = kept
	return closed
}

// trimPosition closes the oldest toasts at pos beyond maxVisible.
// Caller must hold the write lock.
func (t *Toaster) trimPosition(now time.Time, pos Position) []Toast {
	count := 0
	for _, x := range t.toasts {
		if x.Position == pos {
			count++
		}
	}
	excess := count - t.maxVisible
	if excess <= 0 {
		return nil
	}
	return t.closeWhere(now, StatusClosed, func(x Toast) bool {
		if excess > 0 && x.Position == pos {
			excess--
			return true
		}
		return false
	})
}

func (t *Toaster) indexOf(id string) int {
	for i, x := range t.toasts {
		if x.ID == id {
			return i
		}
	}
	return -1
}

func (t *Toaster) notifyClosed(sinks []Sink, closed []Toast) {
	if len(closed) == 0 {
		return
	}
	for _, s := range sinks {
		for _, c := range closed {
			s.Close(c)
		}
	}
}
