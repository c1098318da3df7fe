package dosing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-bot/internal/domain"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newSubstance(name, category string, minHours float64, maxDaily int) *domain.Substance {
	return &domain.Substance{
		Name:     name,
		Category: category,
		Settings: domain.Settings{
			MinTimeBetweenDosesHours:  minHours,
			MaxDailyDoses:             maxDaily,
			EnforceDailyLimit:         true,
			EnforceTimingRestrictions: true,
		},
	}
}

func addDose(sub *domain.Substance, ts time.Time) {
	sub.Doses = append(sub.Doses, domain.Dose{Timestamp: ts, Status: domain.DoseStatusNormal})
}

func TestCheckDoseSafety_NoHistoryAlwaysSafe(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 4, 4)

	verdict := CheckDoseSafety(sub, base)

	assert.True(t, verdict.Safe)
	assert.False(t, verdict.TooSoon)
	assert.False(t, verdict.QuotaExceeded)
	assert.Zero(t, verdict.DosesToday)
	assert.Empty(t, verdict.Reason)
}

func TestCheckDoseSafety_TooSoonBeforeOffsetPhase(t *testing.T) {
	// Opioids profile: onset 15 + peak 90 = 105 active minutes.
	sub := newSubstance("Unknown Opioid", "Opioids", 4, 10)
	addDose(sub, base)

	// 1h elapsed: 60 < 105 minutes, so not in offset phase.
	verdict := CheckDoseSafety(sub, base.Add(time.Hour))

	assert.False(t, verdict.Safe)
	assert.True(t, verdict.TooSoon)
	assert.False(t, verdict.InOffsetPhase)
	assert.InDelta(t, 1.0, verdict.TimeSinceLastDoseHours, 1e-9)
	assert.InDelta(t, 3.0, verdict.RemainingTimeHours, 1e-9)
	assert.Contains(t, verdict.Reason, "interval")
}

func TestCheckDoseSafety_OffsetPhaseWaivesInterval(t *testing.T) {
	// 3h elapsed with min interval 4h would be too soon, but 180 minutes is
	// past the 105-minute onset+peak window, so the interval is waived.
	sub := newSubstance("Unknown Opioid", "Opioids", 4, 10)
	addDose(sub, base)

	verdict := CheckDoseSafety(sub, base.Add(3*time.Hour))

	assert.True(t, verdict.Safe)
	assert.False(t, verdict.TooSoon)
	assert.True(t, verdict.InOffsetPhase)
	assert.True(t, verdict.IntervalWaived)
	assert.Empty(t, verdict.Reason)
}

func TestCheckDoseSafety_OffsetWaiverDoesNotTouchQuota(t *testing.T) {
	sub := newSubstance("Unknown Opioid", "Opioids", 4, 2)
	addDose(sub, base)
	addDose(sub, base.Add(-3*time.Hour))

	verdict := CheckDoseSafety(sub, base.Add(3*time.Hour))

	assert.True(t, verdict.InOffsetPhase)
	assert.True(t, verdict.QuotaExceeded)
	assert.False(t, verdict.Safe)
	assert.Contains(t, verdict.Reason, "Daily limit")
}

func TestCheckDoseSafety_IntervalElapsedNeverTooSoon(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 4, 10)
	addDose(sub, base)

	verdict := CheckDoseSafety(sub, base.Add(4*time.Hour))

	assert.False(t, verdict.TooSoon)
	assert.True(t, verdict.Safe)
	assert.Zero(t, verdict.RemainingTimeHours)
}

func TestCheckDoseSafety_QuotaScenario(t *testing.T) {
	// Four prior doses today, fifth proposed after the interval elapsed.
	sub := newSubstance("Ibuprofen", "Painkillers", 2, 4)
	for i := 0; i < 4; i++ {
		addDose(sub, base.Add(time.Duration(i)*2*time.Hour))
	}

	// 17:00 same day, two full hours after the 15:00 dose.
	verdict := CheckDoseSafety(sub, base.Add(8*time.Hour))

	assert.False(t, verdict.Safe)
	assert.True(t, verdict.QuotaExceeded)
	assert.Equal(t, 4, verdict.DosesToday)
	assert.Equal(t, 4, verdict.MaxDailyDoses)
	assert.Contains(t, verdict.Reason, "Daily limit")
}

func TestCheckDoseSafety_QuotaMonotonic(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 1, 3)

	exceeded := false
	for i := 0; i < 8; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		verdict := CheckDoseSafety(sub, ts)
		if exceeded {
			assert.True(t, verdict.QuotaExceeded, "quota flag must never flip back on the same day")
		}
		exceeded = exceeded || verdict.QuotaExceeded
		addDose(sub, ts)
	}
	assert.True(t, exceeded)
}

func TestCheckDoseSafety_TooSoonTakesPrecedenceOverQuota(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 6, 1)
	addDose(sub, base)

	// Both violated: 30 minutes elapsed (under 6h and under the 150-minute
	// active window) and the single daily dose already used.
	verdict := CheckDoseSafety(sub, base.Add(30*time.Minute))

	assert.True(t, verdict.TooSoon)
	assert.True(t, verdict.QuotaExceeded)
	assert.Contains(t, verdict.Reason, "interval")
	assert.NotContains(t, verdict.Reason, "Daily limit")
}

func TestCheckDoseSafety_CalendarDayBoundaryNotRolling24h(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 1, 2)
	// Two doses late yesterday.
	addDose(sub, time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC))
	addDose(sub, time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC))

	verdict := CheckDoseSafety(sub, base)

	assert.Zero(t, verdict.DosesToday)
	assert.False(t, verdict.QuotaExceeded)
}

func TestCheckDoseSafety_FeatureFlagsGateChecks(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 8, 1)
	sub.Settings.EnforceTimingRestrictions = false
	sub.Settings.EnforceDailyLimit = false
	addDose(sub, base)

	verdict := CheckDoseSafety(sub, base.Add(10*time.Minute))

	assert.True(t, verdict.Safe)
	assert.Equal(t, 1, verdict.DosesToday, "counts are still reported")
}

func TestEffectiveTiming_RecommendedFromProfile(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 2, 0)
	sub.Settings.UseRecommendedTiming = true

	minHours, maxDaily := EffectiveTiming(sub)

	// Caffeine profile total is 300 minutes.
	assert.InDelta(t, 5.0, minHours, 1e-9)
	assert.Equal(t, 4, maxDaily) // floor(24/5)
}

func TestEffectiveTiming_QuotaDefaultsFromInterval(t *testing.T) {
	sub := newSubstance("Something", "Sedatives", 6, 0)

	minHours, maxDaily := EffectiveTiming(sub)

	assert.InDelta(t, 6.0, minHours, 1e-9)
	assert.Equal(t, 4, maxDaily)
}

func TestNextDoseTime(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 4, 4)

	assert.Nil(t, NextDoseTime(sub, nil))

	last := base
	next := NextDoseTime(sub, &last)
	require.NotNil(t, next)
	assert.Equal(t, base.Add(4*time.Hour), *next)

	// Idempotent for identical inputs.
	again := NextDoseTime(sub, &last)
	require.NotNil(t, again)
	assert.Equal(t, *next, *again)
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, domain.DoseStatusNormal, DeriveStatus(SafetyVerdict{Safe: true}))
	assert.Equal(t, domain.DoseStatusEarly, DeriveStatus(SafetyVerdict{Safe: true, IntervalWaived: true}))
	assert.Equal(t, domain.DoseStatusWarning, DeriveStatus(SafetyVerdict{Safe: false, TooSoon: true}))
}

func TestRecordThenCheckRoundTrip(t *testing.T) {
	sub := newSubstance("Caffeine", "Stimulants", 4, 4)
	now := base

	verdict := CheckDoseSafety(sub, now)
	require.True(t, verdict.Safe)
	addDose(sub, now)

	after := CheckDoseSafety(sub, now.Add(time.Minute))
	assert.Equal(t, 1, after.DosesToday)
	assert.InDelta(t, 1.0/60, after.TimeSinceLastDoseHours, 1e-9)
	assert.False(t, after.Safe)
}
