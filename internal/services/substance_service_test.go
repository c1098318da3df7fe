package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-bot/internal/domain"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
)

func TestAddSubstance_SeedsFromCatalog(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewSubstanceService(db)

	sub, err := svc.AddSubstance(context.Background(), user.ID, "  caffeine ")
	require.NoError(t, err)

	assert.Equal(t, "Caffeine", sub.Name)
	assert.Equal(t, "Stimulants", sub.Category)
	assert.NotZero(t, sub.Settings.DefaultDosageAmount)
	assert.NotZero(t, sub.Settings.MinTimeBetweenDosesHours)
	assert.False(t, sub.Settings.UseRecommendedTiming, "catalog entries carry explicit timing")
	assert.NotEmpty(t, sub.PublicID)
}

func TestAddSubstance_UnknownNameGetsDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewSubstanceService(db)

	sub, err := svc.AddSubstance(context.Background(), user.ID, "Obscurol")
	require.NoError(t, err)

	assert.Equal(t, "Obscurol", sub.Name)
	assert.Equal(t, "Uncategorized", sub.Category)
	assert.True(t, sub.Settings.UseRecommendedTiming)
	assert.True(t, sub.Settings.EnforceDailyLimit)
	assert.True(t, sub.Settings.EnforceTimingRestrictions)
}

func TestAddSubstance_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewSubstanceService(db)

	_, err := svc.AddSubstance(context.Background(), user.ID, "   ")
	assert.Error(t, err)
}

func TestListSubstances_ScopedToUserAndSorted(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	other := &domain.User{TelegramID: 99999}
	require.NoError(t, db.Create(other).Error)
	svc := NewSubstanceService(db)
	ctx := context.Background()

	_, err := svc.AddSubstance(ctx, user.ID, "Zeta")
	require.NoError(t, err)
	_, err = svc.AddSubstance(ctx, user.ID, "Alpha")
	require.NoError(t, err)
	_, err = svc.AddSubstance(ctx, other.ID, "Theirs")
	require.NoError(t, err)

	subs, err := svc.ListSubstances(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Alpha", subs[0].Name)
	assert.Equal(t, "Zeta", subs[1].Name)
}

func TestGetSubstance_PreloadsDosesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewSubstanceService(db)
	doseSvc := NewDoseService(db)
	ctx := context.Background()

	sub, err := svc.AddSubstance(ctx, user.ID, "Obscurol")
	require.NoError(t, err)

	base := time.Now().Add(-20 * time.Hour)
	settings := sub.Settings
	settings.EnforceDailyLimit = false
	settings.EnforceTimingRestrictions = false
	require.NoError(t, svc.UpdateSettings(ctx, user.ID, sub.ID, settings))

	for i := 0; i < 3; i++ {
		_, _, err := doseSvc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base.Add(time.Duration(i)*time.Hour), false, "")
		require.NoError(t, err)
	}

	loaded, err := svc.GetSubstance(ctx, user.ID, sub.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Doses, 3)
	assert.True(t, loaded.Doses[0].Timestamp.After(loaded.Doses[1].Timestamp))

	// Another user must not see it.
	otherUser := &domain.User{TelegramID: 5555}
	require.NoError(t, db.Create(otherUser).Error)
	_, err = svc.GetSubstance(ctx, otherUser.ID, sub.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubstanceNotFound)
}

func TestUpdateSettings_PersistsAllFields(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewSubstanceService(db)
	ctx := context.Background()

	sub, err := svc.AddSubstance(ctx, user.ID, "Obscurol")
	require.NoError(t, err)

	supply := 12.0
	settings := domain.Settings{
		DefaultDosageAmount:       50,
		DefaultDosageUnit:         "mg",
		MinTimeBetweenDosesHours:  6.5,
		MaxDailyDoses:             3,
		CurrentSupply:             &supply,
		TrackSupply:               true,
		EnforceDailyLimit:         true,
		EnforceTimingRestrictions: false,
	}
	require.NoError(t, svc.UpdateSettings(ctx, user.ID, sub.ID, settings))

	loaded, err := svc.GetSubstance(ctx, user.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, loaded.Settings.DefaultDosageAmount)
	assert.Equal(t, "mg", loaded.Settings.DefaultDosageUnit)
	assert.Equal(t, 6.5, loaded.Settings.MinTimeBetweenDosesHours)
	assert.Equal(t, 3, loaded.Settings.MaxDailyDoses)
	require.NotNil(t, loaded.Settings.CurrentSupply)
	assert.Equal(t, 12.0, *loaded.Settings.CurrentSupply)
	assert.True(t, loaded.Settings.TrackSupply)
	assert.False(t, loaded.Settings.EnforceTimingRestrictions)

	err = svc.UpdateSettings(ctx, user.ID, 999, settings)
	assert.ErrorIs(t, err, apperrors.ErrSubstanceNotFound)
}

func TestDeleteSubstance_RemovesDoses(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewSubstanceService(db)
	doseSvc := NewDoseService(db)
	ctx := context.Background()

	sub, err := svc.AddSubstance(ctx, user.ID, "Obscurol")
	require.NoError(t, err)
	settings := sub.Settings
	settings.EnforceDailyLimit = false
	settings.EnforceTimingRestrictions = false
	require.NoError(t, svc.UpdateSettings(ctx, user.ID, sub.ID, settings))

	_, _, err = doseSvc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", time.Now(), false, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubstance(ctx, user.ID, sub.ID))

	_, err = svc.GetSubstance(ctx, user.ID, sub.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubstanceNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.Dose{}).Where("substance_id = ?", sub.ID).Count(&count).Error)
	assert.Zero(t, count)
}
