package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastbox/internal/config"
	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/toast"
)

var testStart = time.Unix(1700000000, 0)

func newTestModel(t *testing.T) Model {
	t.Helper()
	tr := toast.New(nil)
	tr.SetClock(func() time.Time { return testStart })
	m := New(Options{
		Form:       form.New(form.BuiltinDefaults()),
		Toaster:    tr,
		PresetPath: t.TempDir() + "/preset.yaml",
	})
	m.now = func() time.Time { return testStart }
	return m
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tabs(n int) []tea.Msg {
	msgs := make([]tea.Msg, n)
	for i := range msgs {
		msgs[i] = keyType(tea.KeyTab)
	}
	return msgs
}

func TestNew_ShowsDefaults(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, fieldMessage, m.focus)
	assert.Equal(t, form.DefaultMessage, m.message.Value())
	assert.Equal(t, "2500", m.expiry.Value())
	assert.False(t, m.toaster.Stacked())

	view := m.View()
	assert.Contains(t, view, "[Success]")
	assert.Contains(t, view, "[Bottom left]")
}

func TestModel_TypingWritesMessage(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlU), runes("Hello"))

	assert.Equal(t, "Hello", m.form.Message.Get())
	assert.True(t, m.form.ActionsEnabled())
}

func TestModel_EmptyMessageDisablesActions(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlU))
	require.Equal(t, "", m.form.Message.Get())

	next, cmd := m.Update(keyType(tea.KeyCtrlS))
	m = next.(Model)
	assert.Equal(t, 0, m.toaster.Count())
	require.NotNil(t, cmd)
	status, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.True(t, status.isErr)

	// Buttons are skipped by the focus ring
	m = update(t, m, tabs(7)...)
	assert.Equal(t, fieldStacked, m.focus)
	m = update(t, m, keyType(tea.KeyTab))
	assert.Equal(t, fieldMessage, m.focus)
}

func TestModel_ExpiryInput(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyTab))
	require.Equal(t, fieldExpiry, m.focus)

	m = update(t, m, keyType(tea.KeyCtrlU))
	assert.Equal(t, uint32(2500), m.form.Expiry.Get(), "empty input keeps the value")

	m = update(t, m, runes("1000"))
	assert.Equal(t, uint32(1000), m.form.Expiry.Get())

	m = update(t, m, runes("x"))
	assert.Equal(t, uint32(1000), m.form.Expiry.Get(), "non-numeric input is rejected")
	assert.Equal(t, "1000", m.expiry.Value())
}

func TestModel_ExpiryDisabledSkipsDependentFields(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tabs(3)...)
	require.Equal(t, fieldExpiryEnabled, m.focus)

	m = update(t, m, keyType(tea.KeySpace))
	assert.False(t, m.form.ExpiryEnabled.Get())

	m = update(t, m, keyType(tea.KeyTab))
	assert.Equal(t, fieldLevel, m.focus, "progress is skipped")

	m = update(t, m, keyType(tea.KeyShiftTab), keyType(tea.KeyShiftTab), keyType(tea.KeyShiftTab))
	assert.Equal(t, fieldMessage, m.focus, "expiry is skipped")

	m = update(t, m, keyType(tea.KeyCtrlS))
	live := m.toaster.All()
	require.Len(t, live, 1)
	assert.Nil(t, live[0].Expiry)
}

func TestChoice_BoundToCell(t *testing.T) {
	state := form.New(form.BuiltinDefaults())

	var written []toast.Level
	stop := state.Level.Subscribe(func(l toast.Level) { written = append(written, l) })
	defer stop()

	levels := levelChoice(state)
	levels.cycle(1)
	levels.cycle(2)
	assert.Equal(t, toast.LevelInfo, state.Level.Get(), "success +3 wraps to info")
	assert.Equal(t, []toast.Level{toast.LevelWarn, toast.LevelInfo}, written)
	assert.Contains(t, renderChoice(levels), "[Info]")

	state.Position.Set(toast.PositionBottomRight)
	positions := positionChoice(state)
	assert.Contains(t, renderChoice(positions), "[Bottom right]")
	positions.cycle(1)
	assert.Equal(t, toast.PositionBottomLeft, state.Position.Get())
}

func TestModel_Selects(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tabs(5)...)
	require.Equal(t, fieldLevel, m.focus)

	m = update(t, m, keyType(tea.KeyRight))
	assert.Equal(t, toast.LevelWarn, m.form.Level.Get())
	m = update(t, m, keyType(tea.KeyLeft), keyType(tea.KeyLeft))
	assert.Equal(t, toast.LevelInfo, m.form.Level.Get())
	m = update(t, m, keyType(tea.KeyLeft))
	assert.Equal(t, toast.LevelError, m.form.Level.Get(), "wraps around")
	assert.Contains(t, m.View(), "[Error]")

	m = update(t, m, keyType(tea.KeyTab), keyType(tea.KeyRight))
	assert.Equal(t, toast.PositionTopLeft, m.form.Position.Get())
	assert.Contains(t, m.View(), "[Top left]")
}

func TestModel_StackedTogglesToaster(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tabs(7)...)
	require.Equal(t, fieldStacked, m.focus)

	m = update(t, m, keyType(tea.KeyEnter))
	assert.True(t, m.form.Stacked.Get())
	assert.True(t, m.toaster.Stacked())

	m = update(t, m, keyType(tea.KeyCtrlS), keyType(tea.KeyCtrlS))
	assert.Equal(t, 2, m.toaster.Count())
}

func TestModel_ShowUsesFormValues(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlU), runes("Deployed"), keyType(tea.KeyEnter))

	live := m.toaster.All()
	require.Len(t, live, 1)
	assert.Equal(t, "Deployed", live[0].Message)
	assert.Equal(t, toast.LevelSuccess, live[0].Level)
	assert.Equal(t, toast.PositionBottomLeft, live[0].Position)
	require.NotNil(t, live[0].Expiry)
	assert.Equal(t, uint32(2500), *live[0].Expiry)
	assert.True(t, live[0].Progress)
}

func TestModel_ButtonsViaFocus(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tabs(8)...)
	require.Equal(t, fieldShow, m.focus)

	m = update(t, m, keyType(tea.KeyEnter))
	assert.Equal(t, 1, m.toaster.Count())

	m = update(t, m, keyType(tea.KeyTab), keyType(tea.KeyTab))
	require.Equal(t, fieldClear, m.focus)
	m = update(t, m, keyType(tea.KeySpace))
	assert.Equal(t, 0, m.toaster.Count())
}

func TestModel_Reset(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlU), runes("Changed"), keyType(tea.KeyTab), keyType(tea.KeyCtrlU), runes("99"))
	m = update(t, m, tabs(4)...)
	require.Equal(t, fieldLevel, m.focus)
	m = update(t, m, keyType(tea.KeyRight))

	m = update(t, m, keyType(tea.KeyCtrlR))
	assert.Equal(t, form.BuiltinDefaults(), m.form.Values())
	assert.Equal(t, form.DefaultMessage, m.message.Value())
	assert.Equal(t, "2500", m.expiry.Value())
}

func TestModel_Clear(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlS))
	require.Equal(t, 1, m.toaster.Count())

	next, cmd := m.Update(keyType(tea.KeyCtrlX))
	m = next.(Model)
	assert.Equal(t, 0, m.toaster.Count())
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg{text: "Cleared 1 toast(s)"}, cmd())
}

func TestModel_DismissNewest(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlS), keyType(tea.KeyTab), keyType(tea.KeyTab))
	require.Equal(t, fieldDismissable, m.focus)

	m = update(t, m, runes("x"))
	assert.Equal(t, 0, m.toaster.Count())

	// Not dismissable
	m = update(t, m, keyType(tea.KeySpace), keyType(tea.KeyCtrlS), runes("x"))
	assert.Equal(t, 1, m.toaster.Count())
}

func TestModel_TickExpires(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyCtrlS))
	require.Equal(t, 1, m.toaster.Count())

	next, cmd := m.Update(tickMsg(testStart.Add(time.Second)))
	m = next.(Model)
	assert.Equal(t, 1, m.toaster.Count())
	assert.NotNil(t, cmd, "tick reschedules itself")

	m = update(t, m, tickMsg(testStart.Add(3*time.Second)))
	assert.Equal(t, 0, m.toaster.Count())
}

func TestModel_ConfigReloaded(t *testing.T) {
	m := newTestModel(t)

	cfg := config.DefaultConfig()
	cfg.Defaults.Level = "error"
	cfg.Defaults.Message = "From config"
	m = update(t, m, ConfigReloadedMsg{Config: cfg})

	assert.Equal(t, toast.LevelError, m.form.Defaults().Level)
	assert.Equal(t, toast.LevelSuccess, m.form.Level.Get(), "current values are kept")

	m = update(t, m, keyType(tea.KeyCtrlR))
	assert.Equal(t, toast.LevelError, m.form.Level.Get())
	assert.Equal(t, "From config", m.message.Value())
}

func TestModel_ConfigReloadError(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(ConfigReloadedMsg{Err: assert.AnError})
	m = next.(Model)
	require.NotNil(t, cmd)
	status := cmd().(statusMsg)
	assert.True(t, status.isErr)
	assert.Equal(t, form.BuiltinDefaults(), m.form.Defaults())
}

func TestModel_SavePreset(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyType(tea.KeyCtrlW))
	require.NotNil(t, cmd)
	status := cmd().(statusMsg)
	assert.False(t, status.isErr, status.text)

	loaded, err := form.LoadPreset(m.presetPath, form.Values{})
	require.NoError(t, err)
	assert.Equal(t, form.BuiltinDefaults(), loaded)
}

func TestModel_StatusExpiresBySequence(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, statusMsg{text: "first"})
	m = update(t, m, statusMsg{text: "second"})

	m = update(t, m, clearStatusMsg{seq: 1})
	assert.Equal(t, "second", m.statusMsg, "stale clear is ignored")

	m = update(t, m, clearStatusMsg{seq: 2})
	assert.Empty(t, m.statusMsg)
}

func TestModel_HelpAndQuit(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyType(tea.KeyTab), keyType(tea.KeyTab), runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "dismiss newest")

	m = update(t, m, keyType(tea.KeyEsc))
	assert.False(t, m.showHelp, "esc closes help first")

	_, cmd := m.Update(keyType(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ViewPlacesToasts(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 50})
	m = update(t, m, keyType(tea.KeyCtrlU), runes("Corner toast"), keyType(tea.KeyCtrlS))

	view := m.View()
	assert.Contains(t, view, "Corner toast")
	assert.Contains(t, view, "Toast playground")
}
