package tui

import (
	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// field identifies one focusable row of the form.
type field int

const (
	fieldMessage field = iota
	fieldExpiry
	fieldDismissable
	fieldExpiryEnabled
	fieldProgress
	fieldLevel
	fieldPosition
	fieldStacked
	fieldShow
	fieldReset
	fieldClear
	fieldCount
)

// label returns the text shown next to the field.
func (f field) label() string {
	switch f {
	case fieldMessage:
		return "Message"
	case fieldExpiry:
		return "Expiry (ms)"
	case fieldDismissable:
		return "Dismissable"
	case fieldExpiryEnabled:
		return "Expires"
	case fieldProgress:
		return "Progress bar"
	case fieldLevel:
		return "Level"
	case fieldPosition:
		return "Position"
	case fieldStacked:
		return "Stacked"
	case fieldShow:
		return "Show"
	case fieldReset:
		return "Reset"
	case fieldClear:
		return "Clear"
	default:
		return ""
	}
}

func (f field) isText() bool {
	return f == fieldMessage || f == fieldExpiry
}

func (f field) isButton() bool {
	return f == fieldShow || f == fieldReset || f == fieldClear
}

// enabled reports whether the field currently accepts input.
func (f field) enabled(s *form.State) bool {
	switch f {
	case fieldExpiry:
		return s.ExpiryEditable()
	case fieldProgress:
		return s.ProgressEditable()
	case fieldShow, fieldReset, fieldClear:
		return s.ActionsEnabled()
	default:
		return true
	}
}

// nextField returns the next enabled field after from, moving by step.
// The message field is always enabled, so the search terminates.
func nextField(s *form.State, from field, step int) field {
	f := from
	for range fieldCount {
		f = field((int(f) + step + int(fieldCount)) % int(fieldCount))
		if f.enabled(s) {
			return f
		}
	}
	return fieldMessage
}

// choice is a select input bound to the read and write sides of a form
// cell. It only ever writes one of its options.
type choice[T comparable] struct {
	options []T
	read    func() T
	write   func(T)
	label   func(T) string
}

func levelChoice(s *form.State) choice[toast.Level] {
	return choice[toast.Level]{
		options: toast.Levels(),
		read:    s.Level.Reader(),
		write:   s.Level.Writer(),
		label:   toast.Level.Label,
	}
}

func positionChoice(s *form.State) choice[toast.Position] {
	return choice[toast.Position]{
		options: toast.Positions(),
		read:    s.Position.Reader(),
		write:   s.Position.Writer(),
		label:   toast.Position.Label,
	}
}

// cycle selects the option step places from the current one, wrapping.
func (c choice[T]) cycle(step int) {
	i := indexOf(c.options, c.read())
	c.write(c.options[cycleIndex(i, step, len(c.options))])
}

func cycleIndex(i, step, n int) int {
	return ((i+step)%n + n) % n
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}
