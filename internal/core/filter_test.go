package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastbox/internal/history"
)

func u32(v uint32) *uint32 { return &v }

func sampleRecords(now time.Time) []history.Record {
	return []history.Record{
		{ID: "01AAA", Message: "Build finished", Level: "success", Position: "bottom_left", Status: "expired", Expiry: u32(3000), CreatedAt: now.Add(-30 * time.Minute)},
		{ID: "01BBB", Message: "Disk almost full", Level: "warn", Position: "top_right", Status: "dismissed", Expiry: u32(500), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "01CCC", Message: "Deploy failed", Level: "error", Position: "top_right", Status: "active", Source: "send", CreatedAt: now.Add(-5 * time.Minute)},
		{ID: "02DDD", Message: "Hello", Level: "info", Position: "bottom_left", Status: "closed", Expiry: u32(1000), CreatedAt: now.Add(-48 * time.Hour)},
	}
}

func ids(records []history.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, FilterOptions{})
	assert.Len(t, result, 0)
}

func TestFilter_NoFilters(t *testing.T) {
	records := sampleRecords(time.Now())
	assert.Len(t, Filter(records, FilterOptions{}), len(records))
}

func TestFilter_Options(t *testing.T) {
	now := time.Now()
	records := sampleRecords(now)

	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"level", FilterOptions{Level: "warn"}, []string{"01BBB"}},
		{"position", FilterOptions{Position: "top_right"}, []string{"01BBB", "01CCC"}},
		{"status", FilterOptions{Status: "expired"}, []string{"01AAA"}},
		{"since", FilterOptions{Since: time.Hour}, []string{"01AAA", "01CCC"}},
		{"limit", FilterOptions{Limit: 2}, []string{"01AAA", "01BBB"}},
		{"combined", FilterOptions{Position: "bottom_left", Since: time.Hour}, []string{"01AAA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(filterAt(records, tt.opts, now)))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"48h", 48 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"xd", 0, true},
		{"nope", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"level",
		"color=red",
		"level=critical",
		"created>soon",
		"expiry<abc",
		"message~=[",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilter(expr)
			assert.Error(t, err)
		})
	}
}

func TestParseFilter_Empty(t *testing.T) {
	f, err := ParseFilter(" , ")
	require.NoError(t, err)
	assert.Empty(t, f.Conditions)
}

func TestFilterWithExpr(t *testing.T) {
	records := sampleRecords(time.Now())

	tests := []struct {
		expr string
		want []string
	}{
		{"level>=warn", []string{"01BBB", "01CCC"}},
		{"level<success", []string{"02DDD"}},
		{"severity!=info", []string{"01AAA", "01BBB", "01CCC"}},
		{"message~DEPLOY", []string{"01CCC"}},
		{"msg~=^D", []string{"01BBB", "01CCC"}},
		{"status=dismissed,position=top_right", []string{"01BBB"}},
		{"pos!=top_right", []string{"01AAA", "02DDD"}},
		{"source=send", []string{"01CCC"}},
		{"created>1h", []string{"01AAA", "01CCC"}},
		{"created<1d", []string{"02DDD"}},
		{"expiry<1000", []string{"01BBB"}},
		{"expiry>=1000", []string{"01AAA", "01CCC", "02DDD"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(FilterWithExpr(records, f)))
		})
	}
}

func TestFilterWithExpr_Nil(t *testing.T) {
	records := sampleRecords(time.Now())
	assert.Len(t, FilterWithExpr(records, nil), len(records))
}

func TestFilterCondition_UnknownLevelInRecord(t *testing.T) {
	f, err := ParseFilter("level>=info")
	require.NoError(t, err)
	assert.False(t, f.Match(history.Record{Level: "bogus"}))
}
