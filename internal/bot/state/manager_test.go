package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_UserState(t *testing.T) {
	m := NewManager()

	assert.Equal(t, None, m.GetUserState(1), "unknown user defaults to none")

	m.SetUserState(1, WaitingForDosage)
	assert.Equal(t, WaitingForDosage, m.GetUserState(1))
	assert.Equal(t, None, m.GetUserState(2), "states are per user")

	m.ClearUserState(1)
	assert.Equal(t, None, m.GetUserState(1))
}

func TestManager_TempData(t *testing.T) {
	m := NewManager()

	_, ok := m.GetTempData(1, KeySubstanceID)
	assert.False(t, ok)

	m.SetTempData(1, KeySubstanceID, uint(7))
	m.SetTempData(1, KeyPendingAmount, 400.0)

	v, ok := m.GetTempData(1, KeySubstanceID)
	assert.True(t, ok)
	id, ok := UintValue(v)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	m.ClearTempData(1)
	_, ok = m.GetTempData(1, KeySubstanceID)
	assert.False(t, ok)
}

func TestUintValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want uint
		ok   bool
	}{
		{uint(3), 3, true},
		{int(4), 4, true},
		{int64(5), 5, true},
		{float64(6), 6, true}, // JSON round-trip through Redis
		{"7", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := UintValue(tt.in)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}
