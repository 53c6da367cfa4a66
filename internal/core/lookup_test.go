package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByID(t *testing.T) {
	records := sampleRecords(time.Now())

	got := LookupByID(records, "01BBB")
	require.NotNil(t, got)
	assert.Equal(t, "Disk almost full", got.Message)

	got = LookupByID(records, "02d")
	require.NotNil(t, got, "unique prefix matches case-insensitively")
	assert.Equal(t, "02DDD", got.ID)

	assert.Nil(t, LookupByID(records, "01"), "ambiguous prefix")
	assert.Nil(t, LookupByID(records, "99"))
	assert.Nil(t, LookupByID(records, ""))
}

func TestLookupByIndex(t *testing.T) {
	records := sampleRecords(time.Now())

	got := LookupByIndex(records, 1)
	require.NotNil(t, got)
	assert.Equal(t, "01AAA", got.ID)

	got = LookupByIndex(records, 4)
	require.NotNil(t, got)
	assert.Equal(t, "02DDD", got.ID)

	assert.Nil(t, LookupByIndex(records, 0))
	assert.Nil(t, LookupByIndex(records, 5))
}

func TestSearch(t *testing.T) {
	records := sampleRecords(time.Now())

	assert.Equal(t, []string{"01AAA", "01BBB", "01CCC"}, ids(Search(records, "d")))
	assert.Equal(t, []string{"01AAA"}, ids(Search(records, "BUILD")))
	assert.Empty(t, Search(records, "nothing"))
	assert.Len(t, Search(records, ""), len(records))
}
