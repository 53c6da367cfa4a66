// Package form holds the toast configuration form state and dispatches its
// actions to a toaster.
package form

import (
	"strconv"

	"github.com/jmylchreest/toastbox/internal/signal"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// DefaultMessage is used when the message field is blank at submit time.
const DefaultMessage = "Toast message"

// Values is a plain copy of every form field.
type Values struct {
	Message         string
	Expiry          uint32 // milliseconds
	Dismissable     bool
	ExpiryEnabled   bool
	ProgressEnabled bool
	Level           toast.Level
	Position        toast.Position
	Stacked         bool
}

// BuiltinDefaults returns the field values a fresh form starts with.
func BuiltinDefaults() Values {
	return Values{
		Message:         DefaultMessage,
		Expiry:          toast.DefaultExpiry,
		Dismissable:     true,
		ExpiryEnabled:   true,
		ProgressEnabled: true,
		Level:           toast.LevelSuccess,
		Position:        toast.PositionBottomLeft,
		Stacked:         false,
	}
}

// Toaster is the part of the toaster the form dispatches to.
type Toaster interface {
	Toast(b toast.Builder) toast.Toast
	Clear() int
}

// State is the form state: one reactive cell per field.
type State struct {
	Message         *signal.Signal[string]
	Expiry          *signal.Signal[uint32]
	Dismissable     *signal.Signal[bool]
	ExpiryEnabled   *signal.Signal[bool]
	ProgressEnabled *signal.Signal[bool]
	Level           *signal.Signal[toast.Level]
	Position        *signal.Signal[toast.Position]
	Stacked         *signal.Signal[bool]

	defaults Values
}

// New creates a form whose fields start at, and reset to, defaults.
func New(defaults Values) *State {
	return &State{
		Message:         signal.NewComparable(defaults.Message),
		Expiry:          signal.NewComparable(defaults.Expiry),
		Dismissable:     signal.NewComparable(defaults.Dismissable),
		ExpiryEnabled:   signal.NewComparable(defaults.ExpiryEnabled),
		ProgressEnabled: signal.NewComparable(defaults.ProgressEnabled),
		Level:           signal.NewComparable(defaults.Level),
		Position:        signal.NewComparable(defaults.Position),
		Stacked:         signal.NewComparable(defaults.Stacked),
		defaults:        defaults,
	}
}

// Defaults returns the values Reset restores.
func (s *State) Defaults() Values {
	return s.defaults
}

// SetDefaults changes the values Reset restores. Current fields are kept.
func (s *State) SetDefaults(v Values) {
	s.defaults = v
}

// Values returns the current value of every field.
func (s *State) Values() Values {
	return Values{
		Message:         s.Message.Get(),
		Expiry:          s.Expiry.Get(),
		Dismissable:     s.Dismissable.Get(),
		ExpiryEnabled:   s.ExpiryEnabled.Get(),
		ProgressEnabled: s.ProgressEnabled.Get(),
		Level:           s.Level.Get(),
		Position:        s.Position.Get(),
		Stacked:         s.Stacked.Get(),
	}
}

// Apply writes every field.
func (s *State) Apply(v Values) {
	s.Message.Set(v.Message)
	s.Expiry.Set(v.Expiry)
	s.Dismissable.Set(v.Dismissable)
	s.ExpiryEnabled.Set(v.ExpiryEnabled)
	s.ProgressEnabled.Set(v.ProgressEnabled)
	s.Level.Set(v.Level)
	s.Position.Set(v.Position)
	s.Stacked.Set(v.Stacked)
}

// Reset restores every field to its default.
func (s *State) Reset() {
	s.Apply(s.defaults)
}

// SetExpiryText parses text as an unsigned number of milliseconds and
// writes it to the expiry field. Text that does not parse is ignored and
// the previous value is kept. Returns whether the text was accepted.
func (s *State) SetExpiryText(text string) bool {
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return false
	}
	s.Expiry.Set(uint32(v))
	return true
}

// SetLevelToken selects a level by token ("info", "success", "warn",
// "error"). Unknown tokens leave the field unchanged.
func (s *State) SetLevelToken(token string) error {
	l, err := toast.ParseLevel(token)
	if err != nil {
		return err
	}
	s.Level.Set(l)
	return nil
}

// SetPositionToken selects a position by token ("top_left", "top_right",
// "bottom_right", "bottom_left"). Unknown tokens leave the field unchanged.
func (s *State) SetPositionToken(token string) error {
	p, err := toast.ParsePosition(token)
	if err != nil {
		return err
	}
	s.Position.Set(p)
	return nil
}

// Request builds the toast the form currently describes.
func (s *State) Request() toast.Builder {
	message := s.Message.Get()
	if message == "" {
		message = DefaultMessage
	}

	var expiry *uint32
	if s.ExpiryEnabled.Get() {
		v := s.Expiry.Get()
		expiry = &v
	}

	return toast.NewBuilder(message).
		WithLevel(s.Level.Get()).
		WithDismissable(s.Dismissable.Get()).
		WithExpiry(expiry).
		WithProgress(s.ProgressEnabled.Get()).
		WithPosition(s.Position.Get())
}

// Submit shows the toast the form describes.
func (s *State) Submit(t Toaster) toast.Toast {
	return t.Toast(s.Request())
}

// Clear closes every toast shown by t.
func (s *State) Clear(t Toaster) int {
	return t.Clear()
}

// ActionsEnabled reports whether the show, reset and clear actions are
// available. They are disabled while the message field is empty.
func (s *State) ActionsEnabled() bool {
	return s.Message.Get() != ""
}

// ExpiryEditable reports whether the expiry field accepts input.
func (s *State) ExpiryEditable() bool {
	return s.ExpiryEnabled.Get()
}

// ProgressEditable reports whether the progress checkbox accepts input.
// A progress bar needs an expiry to count down.
func (s *State) ProgressEditable() bool {
	return s.ExpiryEnabled.Get()
}

// BindStacked keeps a toaster's stacking flag in step with the stacked
// field. The returned function stops the binding.
func (s *State) BindStacked(t interface{ SetStacked(bool) }) func() {
	t.SetStacked(s.Stacked.Get())
	return s.Stacked.Subscribe(t.SetStacked)
}
