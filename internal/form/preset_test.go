package form

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastbox/internal/toast"
)

func TestPreset_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets", "alert.yaml")

	v := BuiltinDefaults()
	v.Message = "disk almost full"
	v.Level = toast.LevelWarn
	v.Position = toast.PositionTopRight
	v.Stacked = true

	require.NoError(t, SavePreset(path, v))

	got, err := LoadPreset(path, BuiltinDefaults())
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestWritePreset_UsesTokens(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreset(&buf, BuiltinDefaults()))

	out := buf.String()
	assert.Contains(t, out, "level: success")
	assert.Contains(t, out, "position: bottom_left")
	assert.Contains(t, out, "expiry: 2500")
}

func TestLoadPreset_PartialFileKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("level: error\n"), 0644))

	got, err := LoadPreset(path, BuiltinDefaults())
	require.NoError(t, err)

	want := BuiltinDefaults()
	want.Level = toast.LevelError
	assert.Equal(t, want, got)
}

func TestLoadPreset_InvalidToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("position: center\n"), 0644))

	_, err := LoadPreset(path, BuiltinDefaults())
	assert.ErrorIs(t, err, ErrInvalidPreset)
	assert.ErrorIs(t, err, toast.ErrUnknownToken)
}

func TestLoadPreset_Missing(t *testing.T) {
	_, err := LoadPreset(filepath.Join(t.TempDir(), "nope.yaml"), BuiltinDefaults())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
