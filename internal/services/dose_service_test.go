package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dosewise/dosewise-bot/internal/database"
	"github.com/dosewise/dosewise-bot/internal/domain"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *domain.User {
	user := &domain.User{TelegramID: 12345, Username: "tester"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSubstance(t *testing.T, db *gorm.DB, userID uint, settings domain.Settings) *domain.Substance {
	sub := &domain.Substance{
		UserID:   userID,
		Name:     "Testine",
		Category: "Painkillers",
		Settings: settings,
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func TestRecordDose_Safe(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	sub := createTestSubstance(t, db, user.ID, domain.Settings{
		DefaultDosageAmount:       200,
		DefaultDosageUnit:         "mg",
		MinTimeBetweenDosesHours:  4,
		MaxDailyDoses:             4,
		EnforceDailyLimit:         true,
		EnforceTimingRestrictions: true,
	})
	svc := NewDoseService(db)

	dose, verdict, err := svc.RecordDose(context.Background(), user.ID, sub.ID, 0, "", time.Now(), false, "")
	require.NoError(t, err)
	assert.True(t, verdict.Safe)
	assert.Equal(t, domain.DoseStatusNormal, dose.Status)
	assert.Equal(t, 200.0, dose.Amount, "zero amount falls back to the default dosage")
	assert.Equal(t, "mg", dose.Unit)
	assert.NotEmpty(t, dose.PublicID)
}

func TestRecordDose_UnsafeRequiresOverride(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	sub := createTestSubstance(t, db, user.ID, domain.Settings{
		MinTimeBetweenDosesHours:  6,
		MaxDailyDoses:             4,
		EnforceDailyLimit:         true,
		EnforceTimingRestrictions: true,
	})
	svc := NewDoseService(db)

	now := time.Now()
	_, _, err := svc.RecordDose(context.Background(), user.ID, sub.ID, 100, "mg", now.Add(-time.Hour), false, "")
	require.NoError(t, err)

	_, verdict, err := svc.RecordDose(context.Background(), user.ID, sub.ID, 100, "mg", now, false, "")
	assert.ErrorIs(t, err, apperrors.ErrUnsafeDose)
	assert.True(t, verdict.TooSoon)

	// Override without a reason is still refused.
	_, _, err = svc.RecordDose(context.Background(), user.ID, sub.ID, 100, "mg", now, true, "  ")
	assert.ErrorIs(t, err, apperrors.ErrOverrideReasonRequired)

	dose, _, err := svc.RecordDose(context.Background(), user.ID, sub.ID, 100, "mg", now, true, "migraine came back")
	require.NoError(t, err)
	assert.Equal(t, domain.DoseStatusOverride, dose.Status)
	assert.Equal(t, "migraine came back", dose.OverrideReason)
}

func TestRecordDose_DecrementsSupplyAndClampsAtZero(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	supply := 1.0
	sub := createTestSubstance(t, db, user.ID, domain.Settings{
		MinTimeBetweenDosesHours: 1,
		MaxDailyDoses:            10,
		TrackSupply:              true,
		CurrentSupply:            &supply,
	})
	svc := NewDoseService(db)

	now := time.Now()
	_, _, err := svc.RecordDose(context.Background(), user.ID, sub.ID, 1, "tab", now.Add(-2*time.Hour), false, "")
	require.NoError(t, err)

	var reloaded domain.Substance
	require.NoError(t, db.First(&reloaded, sub.ID).Error)
	require.NotNil(t, reloaded.Settings.CurrentSupply)
	assert.Equal(t, 0.0, *reloaded.Settings.CurrentSupply)

	// Empty supply never blocks recording and never goes negative.
	_, _, err = svc.RecordDose(context.Background(), user.ID, sub.ID, 1, "tab", now, false, "")
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, sub.ID).Error)
	assert.Equal(t, 0.0, *reloaded.Settings.CurrentSupply)
}

func TestDeleteDose_RecomputesLaterStatuses(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	sub := createTestSubstance(t, db, user.ID, domain.Settings{
		MinTimeBetweenDosesHours:  4,
		MaxDailyDoses:             10,
		EnforceTimingRestrictions: true,
	})
	svc := NewDoseService(db)
	ctx := context.Background()

	base := time.Now().Add(-10 * time.Hour)
	first, _, err := svc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base, false, "")
	require.NoError(t, err)

	// Second dose only 2h later: refused, then recorded as override.
	second, _, err := svc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base.Add(2*time.Hour), true, "bad day")
	require.NoError(t, err)
	require.Equal(t, domain.DoseStatusOverride, second.Status)

	// Third dose 6h after the first, 4h after the second: safe.
	third, _, err := svc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base.Add(6*time.Hour), false, "")
	require.NoError(t, err)
	require.Equal(t, domain.DoseStatusNormal, third.Status)

	// Deleting the first dose leaves the override frozen and the third
	// still normal against the shrunken history.
	require.NoError(t, svc.DeleteDose(ctx, user.ID, first.ID))

	var reloaded domain.Dose
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.Equal(t, domain.DoseStatusOverride, reloaded.Status)
	assert.Equal(t, "bad day", reloaded.OverrideReason)

	reloaded = domain.Dose{}
	require.NoError(t, db.First(&reloaded, third.ID).Error)
	assert.Equal(t, domain.DoseStatusNormal, reloaded.Status)
}

func TestEditDose_MovingEarlierFlagsLaterDose(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	sub := createTestSubstance(t, db, user.ID, domain.Settings{
		MinTimeBetweenDosesHours:  4,
		MaxDailyDoses:             10,
		EnforceTimingRestrictions: true,
	})
	svc := NewDoseService(db)
	ctx := context.Background()

	base := time.Now().Add(-12 * time.Hour)
	_, _, err := svc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base, false, "")
	require.NoError(t, err)
	second, _, err := svc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base.Add(5*time.Hour), false, "")
	require.NoError(t, err)
	require.Equal(t, domain.DoseStatusNormal, second.Status)

	// Pull the second dose to 2h after the first: it is now inside the
	// minimum interval and its derived status changes.
	require.NoError(t, svc.EditDose(ctx, user.ID, second.ID, base.Add(2*time.Hour), 1, "tab"))

	var reloaded domain.Dose
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.NotEqual(t, domain.DoseStatusNormal, reloaded.Status)
}

func TestListDoses_NewestFirstWithLimit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	sub := createTestSubstance(t, db, user.ID, domain.Settings{MinTimeBetweenDosesHours: 1})
	svc := NewDoseService(db)
	ctx := context.Background()

	base := time.Now().Add(-10 * time.Hour)
	for i := 0; i < 5; i++ {
		_, _, err := svc.RecordDose(ctx, user.ID, sub.ID, 1, "tab", base.Add(time.Duration(i)*2*time.Hour), false, "")
		require.NoError(t, err)
	}

	doses, err := svc.ListDoses(ctx, user.ID, sub.ID, 3)
	require.NoError(t, err)
	require.Len(t, doses, 3)
	assert.True(t, doses[0].Timestamp.After(doses[1].Timestamp))
	assert.True(t, doses[1].Timestamp.After(doses[2].Timestamp))
}

func TestCheckSafety_DoesNotRecord(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	sub := createTestSubstance(t, db, user.ID, domain.Settings{MinTimeBetweenDosesHours: 4})
	svc := NewDoseService(db)

	verdict, err := svc.CheckSafety(context.Background(), user.ID, sub.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, verdict.Safe)

	var count int64
	require.NoError(t, db.Model(&domain.Dose{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDoseService_UnknownSubstance(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewDoseService(db)

	_, err := svc.CheckSafety(context.Background(), user.ID, 999, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrSubstanceNotFound)

	err = svc.DeleteDose(context.Background(), user.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrDoseNotFound)
}
