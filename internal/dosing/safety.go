package dosing

import (
	"fmt"
	"math"
	"time"

	"github.com/dosewise/dosewise-bot/internal/domain"
)

// SafetyVerdict is the evaluator's answer to "is it safe to record a dose at
// this time". It is computed fresh on every call and never persisted.
type SafetyVerdict struct {
	Safe          bool
	TooSoon       bool
	QuotaExceeded bool

	DosesToday    int
	MaxDailyDoses int

	// RemainingTimeHours is how long until the minimum interval elapses,
	// clamped at zero.
	RemainingTimeHours     float64
	TimeSinceLastDoseHours float64

	// InOffsetPhase: the previous dose has moved past onset+peak. Dosing in
	// the offset phase waives the minimum-interval check - once past peak an
	// additional dose no longer compounds peak effects the same way. The
	// waiver never applies to the daily quota.
	InOffsetPhase bool

	// IntervalWaived is set when the interval was not met but the
	// offset-phase exception applied.
	IntervalWaived bool

	// Reason is empty when the verdict is safe. When both checks fail the
	// interval violation takes precedence in the message.
	Reason string
}

// EffectiveTiming derives the minimum interval (hours) and daily quota for a
// substance. With UseRecommendedTiming the interval comes from the timing
// profile's total duration; otherwise the stored value is used. An unset
// quota defaults to floor(24 / interval).
func EffectiveTiming(sub *domain.Substance) (minHours float64, maxDaily int) {
	profile := ProfileFor(sub.Name, sub.Category)

	minHours = sub.Settings.MinTimeBetweenDosesHours
	if sub.Settings.UseRecommendedTiming || minHours <= 0 || math.IsNaN(minHours) || math.IsInf(minHours, 0) {
		minHours = float64(profile.TotalMinutes) / 60
	}
	if minHours <= 0 {
		minHours = float64(defaultProfile.TotalMinutes) / 60
	}

	maxDaily = sub.Settings.MaxDailyDoses
	if maxDaily <= 0 {
		maxDaily = int(math.Floor(24 / minHours))
		if maxDaily < 1 {
			maxDaily = 1
		}
	}
	return minHours, maxDaily
}

// CheckDoseSafety evaluates whether recording a dose of sub at proposed
// would violate the minimum-interval or daily-quota rules. Pure function; a
// substance with no history is always safe. Violations are warnings the
// caller must let the user explicitly override, never hard blocks.
func CheckDoseSafety(sub *domain.Substance, proposed time.Time) SafetyVerdict {
	minHours, maxDaily := EffectiveTiming(sub)

	verdict := SafetyVerdict{
		Safe:          true,
		MaxDailyDoses: maxDaily,
	}

	last := sub.LastDose()
	if last == nil {
		return verdict
	}

	hoursSince := proposed.Sub(last.Timestamp).Hours()
	if math.IsNaN(hoursSince) || math.IsInf(hoursSince, 0) {
		// Garbage time input must not take down the caller's whole view.
		return verdict
	}
	verdict.TimeSinceLastDoseHours = hoursSince

	profile := ProfileFor(sub.Name, sub.Category)
	verdict.InOffsetPhase = hoursSince*60 >= float64(profile.ActiveMinutes())

	for i := range sub.Doses {
		if sameCalendarDay(sub.Doses[i].Timestamp, proposed) {
			verdict.DosesToday++
		}
	}

	verdict.RemainingTimeHours = minHours - hoursSince
	if verdict.RemainingTimeHours < 0 {
		verdict.RemainingTimeHours = 0
	}

	intervalShort := hoursSince < minHours
	if sub.Settings.EnforceTimingRestrictions {
		verdict.TooSoon = intervalShort && !verdict.InOffsetPhase
		verdict.IntervalWaived = intervalShort && verdict.InOffsetPhase
	}
	if sub.Settings.EnforceDailyLimit {
		verdict.QuotaExceeded = verdict.DosesToday >= maxDaily
	}

	verdict.Safe = !verdict.TooSoon && !verdict.QuotaExceeded

	switch {
	case verdict.TooSoon:
		verdict.Reason = fmt.Sprintf(
			"Minimum interval is %s - only %s have passed since the last dose. Wait %s more.",
			formatHours(minHours), formatHours(hoursSince), formatHours(verdict.RemainingTimeHours))
	case verdict.QuotaExceeded:
		verdict.Reason = fmt.Sprintf(
			"Daily limit reached: %d of %d doses already recorded today.",
			verdict.DosesToday, maxDaily)
	}

	return verdict
}

// NextDoseTime projects the earliest permissible next dose from the last
// dose and the effective minimum interval. Nil without a last dose. The
// result is not clamped to the future: a past time means "ready now".
func NextDoseTime(sub *domain.Substance, last *time.Time) *time.Time {
	if last == nil || last.IsZero() {
		return nil
	}
	minHours, _ := EffectiveTiming(sub)
	next := last.Add(time.Duration(minHours * float64(time.Hour)))
	return &next
}

// DeriveStatus classifies a dose from the verdict computed against the
// history preceding it. Overridden doses are classified by the caller.
func DeriveStatus(verdict SafetyVerdict) string {
	switch {
	case !verdict.Safe:
		return domain.DoseStatusWarning
	case verdict.IntervalWaived:
		return domain.DoseStatusEarly
	default:
		return domain.DoseStatusNormal
	}
}

// sameCalendarDay compares calendar dates in the reference time's location.
// The quota is a calendar-day rule, not a rolling 24 hours.
func sameCalendarDay(t, ref time.Time) bool {
	y1, m1, d1 := t.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func formatHours(h float64) string {
	if h < 0 {
		h = 0
	}
	return fmt.Sprintf("%.1fh", h)
}
