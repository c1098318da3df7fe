package dosing

import "strings"

// PhaseName identifies a window in the effect timeline of a dose.
type PhaseName string

const (
	PhaseNone     PhaseName = "none"
	PhaseOnset    PhaseName = "onset"
	PhasePeak     PhaseName = "peak"
	PhaseOffset   PhaseName = "offset"
	PhaseComedown PhaseName = "comedown"
	PhaseFinished PhaseName = "finished"
)

// PhaseSpec describes one listed phase of a timing profile.
type PhaseSpec struct {
	DurationMinutes int
	Intensity       string
}

// TimingProfile is static reference data describing how a substance's effect
// unfolds over time. Phase boundaries are prefix sums of the listed
// durations. TotalMinutes is authoritative for "fully cleared" and may
// exceed the listed sum; the excess is the comedown/afterglow tail.
type TimingProfile struct {
	Onset        PhaseSpec
	Peak         PhaseSpec
	Offset       PhaseSpec
	TotalMinutes int
	SafetyInfo   map[PhaseName]string
}

// ActiveMinutes is the onset+peak window. A dose past this point is in its
// offset phase, which waives the minimum-interval check (but never the
// daily quota).
func (p TimingProfile) ActiveMinutes() int {
	return p.Onset.DurationMinutes + p.Peak.DurationMinutes
}

// ListedMinutes is the sum of the listed phase durations.
func (p TimingProfile) ListedMinutes() int {
	return p.ActiveMinutes() + p.Offset.DurationMinutes
}

var defaultProfile = TimingProfile{
	Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "mild"},
	Peak:         PhaseSpec{DurationMinutes: 60, Intensity: "moderate"},
	Offset:       PhaseSpec{DurationMinutes: 120, Intensity: "mild"},
	TotalMinutes: 240,
	SafetyInfo: map[PhaseName]string{
		PhaseOnset:    "Effects are starting. Do not redose yet - wait for the full picture.",
		PhasePeak:     "Effects at their strongest. Redosing now compounds peak effects.",
		PhaseOffset:   "Effects are tapering off.",
		PhaseComedown: "Residual effects may linger.",
		PhaseFinished: "The previous dose should be fully cleared.",
	},
}

// substanceProfiles is keyed by lower-cased substance name.
var substanceProfiles = map[string]TimingProfile{
	"caffeine": {
		Onset:        PhaseSpec{DurationMinutes: 20, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 60, Intensity: "moderate"},
		Offset:       PhaseSpec{DurationMinutes: 180, Intensity: "mild"},
		TotalMinutes: 300,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Caffeine is absorbing. Hold off on another cup.",
			PhasePeak:     "Peak stimulation. Another dose now adds jitteriness, not alertness.",
			PhaseOffset:   "Stimulation is fading. Late doses can disturb sleep.",
			PhaseComedown: "Half-life tail - avoid dosing close to bedtime.",
			PhaseFinished: "Mostly cleared.",
		},
	},
	"nicotine": {
		Onset:        PhaseSpec{DurationMinutes: 5, Intensity: "moderate"},
		Peak:         PhaseSpec{DurationMinutes: 15, Intensity: "strong"},
		Offset:       PhaseSpec{DurationMinutes: 40, Intensity: "mild"},
		TotalMinutes: 90,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Fast onset. Wait before another use.",
			PhasePeak:     "Peak effect.",
			PhaseOffset:   "Effect wearing off.",
			PhaseComedown: "Craving window - frequent redosing builds tolerance quickly.",
			PhaseFinished: "Cleared.",
		},
	},
	"alcohol": {
		Onset:        PhaseSpec{DurationMinutes: 15, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 45, Intensity: "strong"},
		Offset:       PhaseSpec{DurationMinutes: 120, Intensity: "moderate"},
		TotalMinutes: 240,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Alcohol is absorbing - effects lag intake. Do not chase the onset.",
			PhasePeak:     "Peak impairment. Another drink now stacks on top of this one.",
			PhaseOffset:   "Blood level is falling at a fixed rate; nothing speeds it up.",
			PhaseComedown: "Hydrate. Impairment can outlast the subjective effect.",
			PhaseFinished: "Metabolized.",
		},
	},
	"melatonin": {
		Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 60, Intensity: "mild"},
		Offset:       PhaseSpec{DurationMinutes: 120, Intensity: "mild"},
		TotalMinutes: 300,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Taking effect - get into a dark, quiet environment.",
			PhasePeak:     "Peak drowsiness window.",
			PhaseOffset:   "Tapering.",
			PhaseComedown: "Residual drowsiness possible.",
			PhaseFinished: "Cleared.",
		},
	},
	"ibuprofen": {
		Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 120, Intensity: "moderate"},
		Offset:       PhaseSpec{DurationMinutes: 240, Intensity: "mild"},
		TotalMinutes: 480,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Absorbing - relief typically starts within half an hour.",
			PhasePeak:     "Peak relief. Extra doses do not add effect, only stomach load.",
			PhaseOffset:   "Relief tapering.",
			PhaseComedown: "Still active at low level.",
			PhaseFinished: "Safe interval reached for the next dose.",
		},
	},
	"diphenhydramine": {
		Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 120, Intensity: "moderate"},
		Offset:       PhaseSpec{DurationMinutes: 180, Intensity: "mild"},
		TotalMinutes: 420,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Taking effect.",
			PhasePeak:     "Peak sedation - avoid driving.",
			PhaseOffset:   "Wearing off.",
			PhaseComedown: "Grogginess may persist.",
			PhaseFinished: "Cleared.",
		},
	},
}

// categoryProfiles is keyed by lower-cased category name and serves as the
// fallback when no per-substance profile exists.
var categoryProfiles = map[string]TimingProfile{
	"stimulants": {
		Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "moderate"},
		Peak:         PhaseSpec{DurationMinutes: 120, Intensity: "strong"},
		Offset:       PhaseSpec{DurationMinutes: 240, Intensity: "moderate"},
		TotalMinutes: 480,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Coming up. Redosing during onset is the most common mistake.",
			PhasePeak:     "Peak stimulation - heart rate and blood pressure are elevated.",
			PhaseOffset:   "Coming down. Redosing now extends the comedown.",
			PhaseComedown: "Eat, hydrate, rest.",
			PhaseFinished: "Cleared.",
		},
	},
	"benzodiazepines": {
		Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "moderate"},
		Peak:         PhaseSpec{DurationMinutes: 90, Intensity: "strong"},
		Offset:       PhaseSpec{DurationMinutes: 240, Intensity: "moderate"},
		TotalMinutes: 480,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Taking effect. Benzodiazepine amnesia makes accidental redosing common - log every dose.",
			PhasePeak:     "Peak sedation. Never combine with alcohol or opioids.",
			PhaseOffset:   "Tapering, but still impairing.",
			PhaseComedown: "Long tail - effects outlast the subjective feeling.",
			PhaseFinished: "Cleared.",
		},
	},
	"opioids": {
		Onset:        PhaseSpec{DurationMinutes: 15, Intensity: "moderate"},
		Peak:         PhaseSpec{DurationMinutes: 90, Intensity: "strong"},
		Offset:       PhaseSpec{DurationMinutes: 180, Intensity: "moderate"},
		TotalMinutes: 360,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Taking effect. Respiratory depression risk rises with stacked doses.",
			PhasePeak:     "Peak effect. Do not redose; do not mix with depressants.",
			PhaseOffset:   "Wearing off.",
			PhaseComedown: "Residual sedation.",
			PhaseFinished: "Cleared.",
		},
	},
	"sedatives": {
		Onset:        PhaseSpec{DurationMinutes: 20, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 60, Intensity: "moderate"},
		Offset:       PhaseSpec{DurationMinutes: 180, Intensity: "mild"},
		TotalMinutes: 360,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Taking effect.",
			PhasePeak:     "Peak sedation - avoid driving or operating machinery.",
			PhaseOffset:   "Wearing off.",
			PhaseComedown: "Grogginess possible.",
			PhaseFinished: "Cleared.",
		},
	},
	"painkillers": {
		Onset:        PhaseSpec{DurationMinutes: 30, Intensity: "mild"},
		Peak:         PhaseSpec{DurationMinutes: 120, Intensity: "moderate"},
		Offset:       PhaseSpec{DurationMinutes: 240, Intensity: "mild"},
		TotalMinutes: 420,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Absorbing.",
			PhasePeak:     "Peak relief - extra doses add organ load, not relief.",
			PhaseOffset:   "Relief tapering.",
			PhaseComedown: "Still active at low level.",
			PhaseFinished: "Safe interval reached.",
		},
	},
	"psychedelics": {
		Onset:        PhaseSpec{DurationMinutes: 45, Intensity: "moderate"},
		Peak:         PhaseSpec{DurationMinutes: 180, Intensity: "strong"},
		Offset:       PhaseSpec{DurationMinutes: 240, Intensity: "moderate"},
		TotalMinutes: 600,
		SafetyInfo: map[PhaseName]string{
			PhaseOnset:    "Coming up - onset can take an hour. Do not redose because 'nothing is happening'.",
			PhasePeak:     "Peak. Stay in a safe setting with a sober contact.",
			PhaseOffset:   "Coming down.",
			PhaseComedown: "Afterglow; sleep may be difficult.",
			PhaseFinished: "Cleared.",
		},
	},
}

// GetProfile resolves a timing profile for a substance name or category.
// Resolution order: exact case-insensitive name match, then category match,
// then the default profile. Total function - it never fails.
func GetProfile(nameOrCategory string) TimingProfile {
	key := normalizeKey(nameOrCategory)
	if p, ok := substanceProfiles[key]; ok {
		return p
	}
	if p, ok := categoryProfiles[key]; ok {
		return p
	}
	return defaultProfile
}

// ProfileFor resolves a profile trying the substance name first, then its
// category, then the default.
func ProfileFor(name, category string) TimingProfile {
	if p, ok := substanceProfiles[normalizeKey(name)]; ok {
		return p
	}
	if p, ok := categoryProfiles[normalizeKey(category)]; ok {
		return p
	}
	return defaultProfile
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
