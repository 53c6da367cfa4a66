// Package tui provides the BubbleTea-based toast playground.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/toastbox/internal/config"
	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// DefaultTick is the default expiry and progress refresh interval.
const DefaultTick = 100 * time.Millisecond

// statusDuration is how long a status message stays visible.
const statusDuration = 3 * time.Second

// Options configures the TUI model.
type Options struct {
	Form       *form.State
	Toaster    *toast.Toaster
	Renderer   *toast.Renderer
	Tick       time.Duration
	PresetPath string // Where ctrl+w saves the form (empty = disabled)
	Logger     *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	form     *form.State
	toaster  *toast.Toaster
	renderer *toast.Renderer
	logger   *slog.Logger

	// Components
	message textinput.Model
	expiry  textinput.Model
	help    help.Model
	keys    KeyMap

	// State
	focus      field
	showHelp   bool
	width      int
	height     int
	tick       time.Duration
	presetPath string
	now        func() time.Time

	// Status message
	statusMsg string
	statusErr bool
	statusSeq int
}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.Form == nil {
		opts.Form = form.New(form.BuiltinDefaults())
	}
	if opts.Toaster == nil {
		opts.Toaster = toast.New(opts.Logger)
	}
	if opts.Renderer == nil {
		opts.Renderer = toast.NewRenderer(toast.DefaultWidth)
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	message := textinput.New()
	message.Placeholder = form.DefaultMessage
	message.CharLimit = 256
	message.Width = 40
	message.Prompt = ""

	expiry := textinput.New()
	expiry.CharLimit = 10 // len("4294967295")
	expiry.Width = 12
	expiry.Prompt = ""

	m := Model{
		form:       opts.Form,
		toaster:    opts.Toaster,
		renderer:   opts.Renderer,
		logger:     opts.Logger,
		message:    message,
		expiry:     expiry,
		help:       help.New(),
		keys:       DefaultKeyMap(),
		focus:      fieldMessage,
		tick:       opts.Tick,
		presetPath: opts.PresetPath,
		now:        time.Now,
	}
	m.form.BindStacked(m.toaster)
	m.syncInputs()
	m.message.Focus()
	return m
}

// tickMsg drives toast expiry and progress bars.
type tickMsg time.Time

// ConfigReloadedMsg is sent when the configuration file changes.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct {
	seq int
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.scheduleTick())
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if expired := m.toaster.Tick(time.Time(msg)); len(expired) > 0 {
			m.logger.Debug("toasts expired", "count", len(expired))
		}
		return m, m.scheduleTick()

	case ConfigReloadedMsg:
		return m.applyConfig(msg)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		m.statusSeq++
		seq := m.statusSeq
		return m, tea.Tick(statusDuration, func(time.Time) tea.Msg {
			return clearStatusMsg{seq: seq}
		})

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.showHelp && msg.String() == "esc" {
			m.showHelp = false
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1)

	case key.Matches(msg, m.keys.Show):
		return m.show()

	case key.Matches(msg, m.keys.Reset):
		return m.reset()

	case key.Matches(msg, m.keys.Clear):
		return m.clear()

	case key.Matches(msg, m.keys.SavePreset):
		return m, m.savePreset()
	}

	if m.focus.isText() {
		if key.Matches(msg, m.keys.Activate) {
			return m.show()
		}
		return m.updateFocusedInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		return m.dismissNewest()

	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Activate):
		return m.activate()

	case key.Matches(msg, m.keys.Left):
		return m.cycle(-1)

	case key.Matches(msg, m.keys.Right):
		return m.cycle(1)
	}

	return m, nil
}

// updateFocusedInput feeds msg to the focused text input and writes the
// result through to its cell.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldMessage:
		m.message, cmd = m.message.Update(msg)
		m.form.Message.Set(m.message.Value())
	case fieldExpiry:
		m.expiry, cmd = m.expiry.Update(msg)
		text := m.expiry.Value()
		if text != "" && !m.form.SetExpiryText(text) {
			// Rejected input keeps the previous value on screen too.
			m.expiry.SetValue(formatExpiry(m.form.Expiry.Get()))
		}
	}
	return m, cmd
}

// moveFocus moves focus to the next enabled field.
func (m Model) moveFocus(step int) (tea.Model, tea.Cmd) {
	m.setFocus(nextField(m.form, m.focus, step))
	return m, nil
}

func (m *Model) setFocus(f field) {
	if m.focus == fieldExpiry {
		// Leaving an empty expiry field shows the retained value again.
		m.expiry.SetValue(formatExpiry(m.form.Expiry.Get()))
	}
	m.focus = f
	m.message.Blur()
	m.expiry.Blur()
	switch f {
	case fieldMessage:
		m.message.Focus()
		m.message.CursorEnd()
	case fieldExpiry:
		m.expiry.Focus()
		m.expiry.CursorEnd()
	}
}

// activate toggles the focused checkbox or presses the focused button.
func (m Model) activate() (tea.Model, tea.Cmd) {
	if !m.focus.enabled(m.form) {
		return m, nil
	}
	switch m.focus {
	case fieldDismissable:
		m.form.Dismissable.Update(func(v bool) bool { return !v })
	case fieldExpiryEnabled:
		m.form.ExpiryEnabled.Update(func(v bool) bool { return !v })
	case fieldProgress:
		m.form.ProgressEnabled.Update(func(v bool) bool { return !v })
	case fieldStacked:
		m.form.Stacked.Update(func(v bool) bool { return !v })
	case fieldLevel, fieldPosition:
		return m.cycle(1)
	case fieldShow:
		return m.show()
	case fieldReset:
		return m.reset()
	case fieldClear:
		return m.clear()
	}
	return m, nil
}

// cycle moves the focused select by step options.
func (m Model) cycle(step int) (tea.Model, tea.Cmd) {
	switch m.focus {
	case fieldLevel:
		levelChoice(m.form).cycle(step)
	case fieldPosition:
		positionChoice(m.form).cycle(step)
	}
	return m, nil
}

// show raises the toast the form describes.
func (m Model) show() (tea.Model, tea.Cmd) {
	if !m.form.ActionsEnabled() {
		return m, setStatus("Enter a message first", true)
	}
	t := m.form.Submit(m.toaster)
	m.logger.Debug("toast submitted", "id", t.ID)
	return m, nil
}

// reset restores the form defaults.
func (m Model) reset() (tea.Model, tea.Cmd) {
	if !m.form.ActionsEnabled() {
		return m, setStatus("Enter a message first", true)
	}
	m.form.Reset()
	m.syncInputs()
	if !m.focus.enabled(m.form) {
		m.setFocus(fieldMessage)
	}
	return m, setStatus("Form reset", false)
}

// clear closes every toast.
func (m Model) clear() (tea.Model, tea.Cmd) {
	if !m.form.ActionsEnabled() {
		return m, setStatus("Enter a message first", true)
	}
	n := m.form.Clear(m.toaster)
	return m, setStatus(fmt.Sprintf("Cleared %d toast(s)", n), false)
}

// dismissNewest dismisses the most recent dismissable toast.
func (m Model) dismissNewest() (tea.Model, tea.Cmd) {
	if _, err := m.toaster.DismissNewest(); err != nil {
		if errors.Is(err, toast.ErrNotFound) {
			return m, setStatus("Nothing to dismiss", false)
		}
		return m, setStatus(err.Error(), true)
	}
	return m, nil
}

// savePreset writes the current form to the preset path.
func (m Model) savePreset() tea.Cmd {
	if m.presetPath == "" {
		return setStatus("No preset path configured", true)
	}
	path := m.presetPath
	values := m.form.Values()
	return func() tea.Msg {
		if err := form.SavePreset(path, values); err != nil {
			return statusMsg{text: "Failed to save preset: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Preset saved to " + path}
	}
}

// applyConfig applies a reloaded configuration.
func (m Model) applyConfig(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", "error", msg.Err)
		return m, setStatus("Config reload failed: "+msg.Err.Error(), true)
	}
	cfg := msg.Config
	m.form.SetDefaults(cfg.FormDefaults())
	m.toaster.SetMaxVisible(cfg.Display.MaxVisible)
	for _, level := range toast.Levels() {
		m.renderer.SetColor(level, cfg.ColorForLevel(level))
	}
	return m, setStatus("Config reloaded", false)
}

// syncInputs copies the text cells into the text inputs.
func (m *Model) syncInputs() {
	m.message.SetValue(m.form.Message.Get())
	m.expiry.SetValue(formatExpiry(m.form.Expiry.Get()))
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

func formatExpiry(ms uint32) string {
	return strconv.FormatUint(uint64(ms), 10)
}

// NewProgram creates the Bubble Tea program for m.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}
