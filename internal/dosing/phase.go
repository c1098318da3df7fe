package dosing

import "time"

// PhaseStatus is the recomputed-on-every-tick view of where a dose sits in
// its effect timeline.
type PhaseStatus struct {
	Phase           PhaseName
	ElapsedMinutes  float64
	ProgressPercent float64

	// Absolute clock times marking the end of each phase
	// (dose time + cumulative minutes).
	OnsetEnds  time.Time
	PeakEnds   time.Time
	OffsetEnds time.Time
	FullyClear time.Time

	// Message is the profile's safety text for the current phase.
	Message string
}

// ComputePhase determines the current phase of the dose taken at lastDose,
// as of now. Boundaries are half-open on the left: exactly at a boundary the
// dose has moved to the next phase. A zero lastDose yields the sentinel
// "none" phase.
func ComputePhase(lastDose time.Time, profile TimingProfile, now time.Time) PhaseStatus {
	if lastDose.IsZero() {
		return PhaseStatus{Phase: PhaseNone}
	}

	elapsed := now.Sub(lastDose).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}

	onsetEnd := float64(profile.Onset.DurationMinutes)
	peakEnd := float64(profile.ActiveMinutes())
	offsetEnd := float64(profile.ListedMinutes())
	total := float64(profile.TotalMinutes)

	status := PhaseStatus{
		ElapsedMinutes: elapsed,
		OnsetEnds:      lastDose.Add(time.Duration(onsetEnd) * time.Minute),
		PeakEnds:       lastDose.Add(time.Duration(peakEnd) * time.Minute),
		OffsetEnds:     lastDose.Add(time.Duration(offsetEnd) * time.Minute),
		FullyClear:     lastDose.Add(time.Duration(total) * time.Minute),
	}

	switch {
	case total <= 0:
		status.Phase = PhaseFinished
	case elapsed < onsetEnd:
		status.Phase = PhaseOnset
	case elapsed < peakEnd:
		status.Phase = PhasePeak
	case elapsed < offsetEnd:
		status.Phase = PhaseOffset
	case elapsed < total:
		status.Phase = PhaseComedown
	default:
		status.Phase = PhaseFinished
	}

	if total > 0 {
		status.ProgressPercent = elapsed / total * 100
		if status.ProgressPercent > 100 {
			status.ProgressPercent = 100
		}
	} else {
		status.ProgressPercent = 100
	}

	status.Message = profile.SafetyInfo[status.Phase]
	return status
}

// Active reports whether the dose still has any effect left to run.
func (s PhaseStatus) Active() bool {
	return s.Phase != PhaseNone && s.Phase != PhaseFinished
}
