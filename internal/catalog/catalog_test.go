package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_CaseInsensitive(t *testing.T) {
	e, ok := Lookup("Caffeine")
	require.True(t, ok)
	assert.Equal(t, "Caffeine", e.Name)
	assert.Equal(t, "Stimulants", e.Category)

	e2, ok := Lookup(" CAFFEINE ")
	require.True(t, ok)
	assert.Equal(t, e, e2)
}

func TestLookup_UnknownName(t *testing.T) {
	_, ok := Lookup("unobtainium")
	assert.False(t, ok)
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	require.Len(t, all, len(entries))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
	for _, e := range all {
		assert.NotEmpty(t, e.Category, "%s has no category", e.Name)
		assert.Positive(t, e.MinIntervalHours, "%s has no interval", e.Name)
	}
}
