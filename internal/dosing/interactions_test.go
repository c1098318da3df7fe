package dosing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-bot/internal/domain"
)

func sub(id uint, name, category string) domain.Substance {
	s := domain.Substance{Name: name, Category: category}
	s.ID = id
	return s
}

func TestEvaluateInteractions_BenzoOpioidIsHigh(t *testing.T) {
	a := sub(1, "Alprazolam", "Benzodiazepines")
	b := sub(2, "Codeine", "Opioids")

	results := EvaluateInteractions(&a, []domain.Substance{a, b})

	require.Len(t, results, 1)
	assert.Equal(t, SeverityHigh, results[0].Severity)
	assert.Equal(t, "Codeine", results[0].OtherName)
	assert.Contains(t, results[0].Description, "Alprazolam")
	assert.Contains(t, results[0].Description, "Codeine")
}

func TestEvaluateInteractions_BenzoBenzoIsHigh(t *testing.T) {
	a := sub(1, "Alprazolam", "Benzodiazepines")
	b := sub(2, "Diazepam", "Benzodiazepines")

	results := EvaluateInteractions(&a, []domain.Substance{a, b})

	require.Len(t, results, 1)
	assert.Equal(t, SeverityHigh, results[0].Severity)
}

func TestEvaluateInteractions_StimulantPairIsMedium(t *testing.T) {
	a := sub(1, "Caffeine", "Stimulants")
	b := sub(2, "Nicotine", "Stimulants")

	results := EvaluateInteractions(&a, []domain.Substance{a, b})

	require.Len(t, results, 1)
	assert.Equal(t, SeverityMedium, results[0].Severity)
}

func TestEvaluateInteractions_RuleTableIsAsymmetric(t *testing.T) {
	benzo := sub(1, "Alprazolam", "Benzodiazepines")
	opioid := sub(2, "Codeine", "Opioids")
	tracked := []domain.Substance{benzo, opioid}

	fromBenzo := EvaluateInteractions(&benzo, tracked)
	require.Len(t, fromBenzo, 1)
	assert.Equal(t, SeverityHigh, fromBenzo[0].Severity)

	// Keyed off the current substance's category: opioid -> benzo has no
	// matching rule and falls through to low.
	fromOpioid := EvaluateInteractions(&opioid, tracked)
	require.Len(t, fromOpioid, 1)
	assert.Equal(t, SeverityLow, fromOpioid[0].Severity)
}

func TestEvaluateInteractions_ExcludesSelfAndSortsBySeverity(t *testing.T) {
	cur := sub(1, "Alprazolam", "Benzodiazepines")
	tracked := []domain.Substance{
		cur,
		sub(2, "Melatonin", "Sedatives"),
		sub(3, "Codeine", "Opioids"),
		sub(4, "Diazepam", "Benzodiazepines"),
	}

	results := EvaluateInteractions(&cur, tracked)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotEqual(t, "Alprazolam", r.OtherName)
	}
	assert.Equal(t, SeverityHigh, results[0].Severity)
	assert.Equal(t, SeverityHigh, results[1].Severity)
	assert.Equal(t, SeverityLow, results[2].Severity)
}

func TestEvaluateInteractions_LowIsIncludedNotFiltered(t *testing.T) {
	cur := sub(1, "Caffeine", "Stimulants")
	other := sub(2, "Melatonin", "Sedatives")

	results := EvaluateInteractions(&cur, []domain.Substance{cur, other})

	require.Len(t, results, 1)
	assert.Equal(t, SeverityLow, results[0].Severity)
	assert.Contains(t, results[0].Description, "not evidence of safety")
}

func TestEvaluateInteractions_EmptyTracked(t *testing.T) {
	cur := sub(1, "Caffeine", "Stimulants")
	assert.Empty(t, EvaluateInteractions(&cur, nil))
	assert.Empty(t, EvaluateInteractions(&cur, []domain.Substance{cur}))
}
