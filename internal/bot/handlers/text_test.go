package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDosage(t *testing.T) {
	tests := []struct {
		input  string
		amount float64
		unit   string
	}{
		{"400 mg", 400, "mg"},
		{"400mg", 400, "mg"},
		{"1.5 ml", 1.5, "ml"},
		{"2,5 ml", 2.5, "ml"},
		{"400 MG", 400, "mg"},
		{"2", 2, ""},
	}

	for _, tt := range tests {
		amount, unit, err := parseDosage(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.amount, amount, tt.input)
		assert.Equal(t, tt.unit, unit, tt.input)
	}
}

func TestParseDosage_Invalid(t *testing.T) {
	for _, input := range []string{"", "  ", "mg", "abc mg", "-5 mg", "0 mg"} {
		_, _, err := parseDosage(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestSplitCallback(t *testing.T) {
	action, id, ok := splitCallback("sub:42")
	require.True(t, ok)
	assert.Equal(t, "sub", action)
	assert.Equal(t, uint(42), id)

	action, id, ok = splitCallback("confirm_del:7")
	require.True(t, ok)
	assert.Equal(t, "confirm_del", action)
	assert.Equal(t, uint(7), id)

	_, _, ok = splitCallback("main_menu")
	assert.False(t, ok)

	_, _, ok = splitCallback("sub:notanumber")
	assert.False(t, ok)
}
