package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "now", FormatDuration(0))
	assert.Equal(t, "now", FormatDuration(-time.Hour))
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "2h 15m", FormatDuration(2*time.Hour+15*time.Minute))
}

func TestFormatDosage(t *testing.T) {
	assert.Equal(t, "400 mg", FormatDosage(400, "mg"))
	assert.Equal(t, "0.5 mg", FormatDosage(0.5, "mg"))
	assert.Equal(t, "standard drink", FormatDosage(0, "standard drink"))
}
