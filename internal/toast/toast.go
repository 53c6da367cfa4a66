// Package toast provides an in-terminal toast notification component.
//
// Toasts are constructed with a Builder and handed to a Toaster, which owns
// their lifecycle: positioning, stacking, expiry and dismissal. Sinks can be
// attached to observe toasts as they are shown and closed.
package toast

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level is the severity of a toast. It controls the toast's styling.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

var levelTokens = map[Level]string{
	LevelInfo:    "info",
	LevelSuccess: "success",
	LevelWarn:    "warn",
	LevelError:   "error",
}

// Levels returns all levels in display order.
func Levels() []Level {
	return []Level{LevelInfo, LevelSuccess, LevelWarn, LevelError}
}

// String returns the level token.
func (l Level) String() string {
	if s, ok := levelTokens[l]; ok {
		return s
	}
	return "unknown"
}

// Label returns the human-readable level name.
func (l Level) Label() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelSuccess:
		return "Success"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ParseLevel maps a level token to a Level.
func ParseLevel(token string) (Level, error) {
	for l, s := range levelTokens {
		if s == token {
			return l, nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: level %q", ErrUnknownToken, token)
}

// Position is the screen corner a toast is shown in.
type Position int

const (
	PositionTopLeft Position = iota
	PositionTopRight
	PositionBottomRight
	PositionBottomLeft
)

var positionTokens = map[Position]string{
	PositionTopLeft:     "top_left",
	PositionTopRight:    "top_right",
	PositionBottomRight: "bottom_right",
	PositionBottomLeft:  "bottom_left",
}

// Positions returns all positions in display order.
func Positions() []Position {
	return []Position{PositionTopLeft, PositionTopRight, PositionBottomRight, PositionBottomLeft}
}

// String returns the position token.
func (p Position) String() string {
	if s, ok := positionTokens[p]; ok {
		return s
	}
	return "unknown"
}

// Label returns the human-readable position name.
func (p Position) Label() string {
	switch p {
	case PositionTopLeft:
		return "Top left"
	case PositionTopRight:
		return "Top right"
	case PositionBottomRight:
		return "Bottom right"
	case PositionBottomLeft:
		return "Bottom left"
	default:
		return "Unknown"
	}
}

// IsTop reports whether the position is along the top edge.
func (p Position) IsTop() bool {
	return p == PositionTopLeft || p == PositionTopRight
}

// IsLeft reports whether the position is along the left edge.
func (p Position) IsLeft() bool {
	return p == PositionTopLeft || p == PositionBottomLeft
}

// ParsePosition maps a position token to a Position.
func ParsePosition(token string) (Position, error) {
	for p, s := range positionTokens {
		if s == token {
			return p, nil
		}
	}
	return PositionBottomLeft, fmt.Errorf("%w: position %q", ErrUnknownToken, token)
}

// Status is the lifecycle state of a toast.
type Status int

const (
	// StatusPending means the toast has been built but not shown.
	StatusPending Status = iota
	// StatusActive means the toast is on screen.
	StatusActive
	// StatusExpired means the toast timed out.
	StatusExpired
	// StatusDismissed means the user dismissed the toast.
	StatusDismissed
	// StatusClosed means the toast was closed programmatically (clear or replacement).
	StatusClosed
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusDismissed:
		return "dismissed"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Errors returned by the toaster.
var (
	ErrUnknownToken   = errors.New("unknown token")
	ErrNotFound       = errors.New("toast not found")
	ErrNotDismissable = errors.New("toast is not dismissable")
)

// Toast is a toast issued by a Toaster.
type Toast struct {
	ID          string
	Message     string
	Level       Level
	Position    Position
	Dismissable bool
	Progress    bool
	Expiry      *uint32 // milliseconds, nil = never expires
	CreatedAt   time.Time
	ClosedAt    time.Time
	Status      Status
}

// newID returns a new ULID string for a toast.
func newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// ExpiresAt returns when the toast expires. The zero time means never.
func (t Toast) ExpiresAt() time.Time {
	if t.Expiry == nil {
		return time.Time{}
	}
	return t.CreatedAt.Add(time.Duration(*t.Expiry) * time.Millisecond)
}

// Expired reports whether the toast's expiry has elapsed at now.
func (t Toast) Expired(now time.Time) bool {
	exp := t.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// Remaining returns the fraction of the expiry still to run, in [0, 1].
// Toasts without an expiry always report 1.
func (t Toast) Remaining(now time.Time) float64 {
	if t.Expiry == nil {
		return 1
	}
	if *t.Expiry == 0 {
		return 0
	}
	total := time.Duration(*t.Expiry) * time.Millisecond
	left := t.ExpiresAt().Sub(now)
	if left <= 0 {
		return 0
	}
	if left >= total {
		return 1
	}
	return float64(left) / float64(total)
}
