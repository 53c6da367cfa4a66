package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastbox/internal/history"
)

func u32(v uint32) *uint32 { return &v }

func testRecords() []history.Record {
	now := time.Now()
	return []history.Record{
		{
			ID:        "01AAA",
			Message:   "Build finished",
			Level:     "success",
			Position:  "bottom_left",
			Status:    "expired",
			Expiry:    u32(2500),
			CreatedAt: now.Add(-5 * time.Minute),
			ClosedAt:  now.Add(-5*time.Minute + 2500*time.Millisecond),
		},
		{
			ID:        "01BBB",
			Message:   "Disk\nalmost full",
			Level:     "error",
			Position:  "top_right",
			Status:    "active",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
}

func TestNewFormatter(t *testing.T) {
	for _, ft := range FormatTypes() {
		f, err := NewFormatter(ft, DefaultFormatterOptions())
		require.NoError(t, err, ft)
		assert.NotNil(t, f)
	}

	_, err := NewFormatter("xml", DefaultFormatterOptions())
	assert.ErrorContains(t, err, "unknown output format")
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRecords()))

	out := buf.String()
	assert.Contains(t, out, "[1] success")
	assert.Contains(t, out, "bottom_left")
	assert.Contains(t, out, "after 2.5s")
	assert.Contains(t, out, "5 minutes ago")
	assert.Contains(t, out, "[2] error")
	assert.Contains(t, out, "Disk almost full", "newlines are flattened")
}

func TestPlainFormatter_NoIndexNoTime(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewPlainFormatter(FormatterOptions{})
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRecords()[:1]))

	out := buf.String()
	assert.NotContains(t, out, "[1]")
	assert.NotContains(t, out, "ago")
}

func TestPlainFormatter_Template(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewPlainFormatter(FormatterOptions{Template: "{{.Index}} {{upper .Level}} {{truncate .Message 8}}"})
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "template output is not flattened")
	assert.Equal(t, "1 SUCCESS Build...", lines[0])
	assert.Equal(t, "2 ERROR Disk", lines[1])

	_, err = NewPlainFormatter(FormatterOptions{Template: "{{.Nope"})
	assert.ErrorContains(t, err, "invalid template")
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatterOptions{}).Format(&buf, testRecords()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "01AAA", decoded[0]["id"])
	assert.Equal(t, float64(2500), decoded[0]["expiry_ms"])
	assert.NotContains(t, decoded[1], "expiry_ms")
	assert.NotContains(t, decoded[1], "closed_at")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatterOptions{Compact: true}).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testRecords()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "01BBB", decoded[1]["id"])
	assert.Equal(t, "top_right", decoded[1]["position"])
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testRecords()))
	assert.Equal(t, "01AAA\n01BBB\n", buf.String())
}

func TestFormatField(t *testing.T) {
	r := testRecords()
	assert.Equal(t, "01AAA", FormatField(r[0], "id"))
	assert.Equal(t, "2500", FormatField(r[0], "expiry"))
	assert.Equal(t, "none", FormatField(r[1], "expiry"))
	assert.Equal(t, "error", FormatField(r[1], "LEVEL"))
	assert.Equal(t, "Build finished", FormatField(r[0], "whatever"))
}
