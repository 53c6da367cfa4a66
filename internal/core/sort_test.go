package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastbox/internal/history"
)

func TestSort_ByCreated(t *testing.T) {
	records := sampleRecords(time.Now())

	Sort(records, DefaultSortOptions())
	assert.Equal(t, []string{"01CCC", "01AAA", "01BBB", "02DDD"}, ids(records))

	Sort(records, SortOptions{Field: SortByCreated, Order: SortAsc})
	assert.Equal(t, []string{"02DDD", "01BBB", "01AAA", "01CCC"}, ids(records))
}

func TestSort_ByLevel(t *testing.T) {
	records := sampleRecords(time.Now())

	Sort(records, SortOptions{Field: SortByLevel, Order: SortDesc})
	assert.Equal(t, []string{"01CCC", "01BBB", "01AAA", "02DDD"}, ids(records))
}

func TestSort_ByDuration(t *testing.T) {
	now := time.Now()
	records := []history.Record{
		{ID: "long", CreatedAt: now, ClosedAt: now.Add(5 * time.Second)},
		{ID: "open", CreatedAt: now},
		{ID: "short", CreatedAt: now, ClosedAt: now.Add(time.Second)},
	}

	Sort(records, SortOptions{Field: SortByDuration, Order: SortAsc})
	assert.Equal(t, []string{"open", "short", "long"}, ids(records))
}

func TestParseSortField(t *testing.T) {
	tests := map[string]SortField{
		"":         SortByCreated,
		"created":  SortByCreated,
		"time":     SortByCreated,
		"level":    SortByLevel,
		"l":        SortByLevel,
		"duration": SortByDuration,
	}
	for in, want := range tests {
		got, err := ParseSortField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortField("app")
	assert.Error(t, err)
}

func TestParseSortOrder(t *testing.T) {
	got, err := ParseSortOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, SortAsc, got)

	got, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, got)

	_, err = ParseSortOrder("sideways")
	assert.Error(t, err)
}
