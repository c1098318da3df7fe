package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
)

func TestRegisterUser_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	first, err := svc.RegisterUser(ctx, 777, "alice", "Alice", "")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	again, err := svc.RegisterUser(ctx, 777, "alice", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestGetUserByTelegramID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	created, err := svc.RegisterUser(ctx, 42, "bob", "Bob", "Builder")
	require.NoError(t, err)

	found, err := svc.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetUserByTelegramID(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
