package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastbox/internal/config"
	"github.com/jmylchreest/toastbox/internal/dbus"
	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/history"
	"github.com/jmylchreest/toastbox/internal/toast"
)

func parseSendFlags(t *testing.T, args ...string) (*form.State, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "send"}
	addSendFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))

	state := form.New(form.BuiltinDefaults())
	return state, applySendFlags(cmd, state)
}

func TestApplySendFlags_Unset(t *testing.T) {
	state, err := parseSendFlags(t)
	require.NoError(t, err)
	assert.Equal(t, form.BuiltinDefaults(), state.Values())
}

func TestApplySendFlags_All(t *testing.T) {
	state, err := parseSendFlags(t,
		"--level", "error",
		"--position", "top_right",
		"--expiry", "500",
		"--dismissable=false",
		"--progress=false",
	)
	require.NoError(t, err)

	v := state.Values()
	assert.Equal(t, toast.LevelError, v.Level)
	assert.Equal(t, toast.PositionTopRight, v.Position)
	assert.Equal(t, uint32(500), v.Expiry)
	assert.True(t, v.ExpiryEnabled)
	assert.False(t, v.Dismissable)
	assert.False(t, v.ProgressEnabled)
}

func TestApplySendFlags_NoExpiry(t *testing.T) {
	state, err := parseSendFlags(t, "--no-expiry")
	require.NoError(t, err)
	assert.False(t, state.ExpiryEnabled.Get())
	assert.Nil(t, state.Request().Expiry())
}

func TestApplySendFlags_Errors(t *testing.T) {
	tests := map[string][]string{
		"bad level":    {"--level", "critical"},
		"bad position": {"--position", "center"},
		"bad expiry":   {"--expiry=-1"},
		"both expiry":  {"--expiry", "100", "--no-expiry"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseSendFlags(t, args...)
			assert.Error(t, err)
		})
	}
}

func historyRecords(now time.Time) []history.Record {
	return []history.Record{
		{ID: "01AAA", Message: "Build finished", Level: "success", Status: "expired", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "01BBB", Message: "Disk almost full", Level: "warn", Status: "dismissed", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "01CCC", Message: "Deploy failed", Level: "error", Status: "active", CreatedAt: now.Add(-time.Minute)},
	}
}

func resetHistoryOpts(t *testing.T) {
	t.Helper()
	saved := historyOpts
	t.Cleanup(func() { historyOpts = saved })
	historyOpts.since = "0"
	historyOpts.sort = "created"
	historyOpts.order = "desc"
	historyOpts.limit = 0
	historyOpts.level = ""
	historyOpts.position = ""
	historyOpts.status = ""
	historyOpts.filter = ""
	historyOpts.search = ""
}

func recordIDs(records []history.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestQueryHistory_Defaults(t *testing.T) {
	resetHistoryOpts(t)
	got, err := queryHistory(historyRecords(time.Now()), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"01CCC", "01BBB", "01AAA"}, recordIDs(got))
}

func TestQueryHistory_FiltersAndLimit(t *testing.T) {
	resetHistoryOpts(t)
	historyOpts.filter = "level>=success"
	historyOpts.since = "150m"
	historyOpts.order = "asc"
	historyOpts.limit = 1

	got, err := queryHistory(historyRecords(time.Now()), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"01BBB"}, recordIDs(got))
}

func TestQueryHistory_Lookup(t *testing.T) {
	resetHistoryOpts(t)
	records := historyRecords(time.Now())

	got, err := queryHistory(records, []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"01CCC"}, recordIDs(got), "index counts from the newest")

	got, err = queryHistory(records, []string{"01bb"})
	require.NoError(t, err)
	assert.Equal(t, []string{"01BBB"}, recordIDs(got))

	_, err = queryHistory(records, []string{"zzz"})
	assert.Error(t, err)
}

func TestQueryHistory_BadFlags(t *testing.T) {
	for _, set := range []func(){
		func() { historyOpts.since = "soon" },
		func() { historyOpts.filter = "level=critical" },
		func() { historyOpts.sort = "app" },
		func() { historyOpts.order = "up" },
	} {
		resetHistoryOpts(t)
		set()
		_, err := queryHistory(historyRecords(time.Now()), nil)
		assert.Error(t, err)
	}
}

func TestPruneSet(t *testing.T) {
	saved := pruneOpts
	t.Cleanup(func() { pruneOpts = saved })

	now := time.Now()
	records := historyRecords(now)

	pruneOpts.olderThan = "150m"
	pruneOpts.keep = 0
	remove, err := pruneSet(records, now)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"01AAA": true}, remove)

	pruneOpts.olderThan = ""
	pruneOpts.keep = 1
	remove, err = pruneSet(records, now)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"01AAA": true, "01BBB": true}, remove)
	assert.Equal(t, "01AAA", records[0].ID, "input order is untouched")

	pruneOpts.olderThan = "bogus"
	_, err = pruneSet(records, now)
	assert.Error(t, err)
}

// closedSink records the toasts the toaster closes.
type closedSink struct{ closed []toast.Toast }

func (s *closedSink) Show(toast.Toast) {}
func (s *closedSink) Close(t toast.Toast) { s.closed = append(s.closed, t) }

func TestDesktopClosed(t *testing.T) {
	tests := []struct {
		reason dbus.CloseReason
		want   toast.Status
	}{
		{dbus.CloseReasonExpired, toast.StatusExpired},
		{dbus.CloseReasonDismissed, toast.StatusDismissed},
		{dbus.CloseReasonClosed, toast.StatusClosed},
		{dbus.CloseReasonUndefined, toast.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			toaster := toast.New(nil)
			sink := &closedSink{}
			toaster.AddSink(sink)
			handler := desktopClosed(toaster)

			sticky := toaster.Toast(toast.NewBuilder("sticky").WithDismissable(false).WithExpiry(nil))
			handler(sticky.ID, tt.reason)

			assert.Equal(t, 0, toaster.Count())
			require.Len(t, sink.closed, 1)
			assert.Equal(t, tt.want, sink.closed[0].Status)

			// A second close for the same toast is ignored
			handler(sticky.ID, tt.reason)
			assert.Len(t, sink.closed, 1)
		})
	}
}

func TestDesktopClosed_ReleasesWait(t *testing.T) {
	toaster := toast.New(nil)
	done := make(chan struct{}, 1)
	toaster.AddSink(closeNotifier(done))

	sticky := toaster.Toast(toast.NewBuilder("sticky").WithDismissable(false).WithExpiry(nil))
	desktopClosed(toaster)(sticky.ID, dbus.CloseReasonClosed)

	select {
	case <-done:
	default:
		t.Fatal("close of a non-dismissable toast did not reach the wait channel")
	}
}

func TestInitConfig(t *testing.T) {
	setupLogger(io.Discard)
	path := filepath.Join(t.TempDir(), "toastbox", "config.toml")

	require.NoError(t, initConfig(path, false))
	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().FormDefaults(), loaded.FormDefaults())

	require.NoError(t, os.WriteFile(path, []byte("# edited\n"), 0o644))
	err = initConfig(path, false)
	assert.ErrorContains(t, err, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# edited\n", string(data), "existing file is kept")

	require.NoError(t, initConfig(path, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "# edited\n", string(data))
}
