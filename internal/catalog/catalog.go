// Package catalog holds the static substance reference data used to pre-fill
// settings when a substance is first added. It is never consulted again for
// an existing record.
package catalog

import (
	"sort"
	"strings"
)

// Entry is the default metadata for a known substance.
type Entry struct {
	Name                string
	Category            string
	DefaultDosageAmount float64
	DefaultDosageUnit   string
	MinIntervalHours    float64
	MaxDailyDoses       int
	Description         string
	Instructions        string
	Warnings            string
}

var entries = map[string]Entry{
	"caffeine": {
		Name:                "Caffeine",
		Category:            "Stimulants",
		DefaultDosageAmount: 100,
		DefaultDosageUnit:   "mg",
		MinIntervalHours:    4,
		MaxDailyDoses:       4,
		Description:         "Common stimulant found in coffee, tea and energy drinks.",
		Instructions:        "Avoid within 6 hours of bedtime.",
		Warnings:            "High doses cause anxiety, palpitations and sleep disruption.",
	},
	"nicotine": {
		Name:                "Nicotine",
		Category:            "Stimulants",
		DefaultDosageAmount: 2,
		DefaultDosageUnit:   "mg",
		MinIntervalHours:    1,
		MaxDailyDoses:       12,
		Description:         "Fast-acting stimulant with strong dependence potential.",
		Instructions:        "Space uses out; tolerance builds within days.",
		Warnings:            "Highly addictive. Avoid combining with other stimulants.",
	},
	"alcohol": {
		Name:                "Alcohol",
		Category:            "Sedatives",
		DefaultDosageAmount: 1,
		DefaultDosageUnit:   "standard drink",
		MinIntervalHours:    1,
		MaxDailyDoses:       4,
		Description:         "Central depressant; effects lag intake noticeably.",
		Instructions:        "Alternate with water. Eat beforehand.",
		Warnings:            "Never combine with benzodiazepines or opioids.",
	},
	"melatonin": {
		Name:                "Melatonin",
		Category:            "Sedatives",
		DefaultDosageAmount: 0.5,
		DefaultDosageUnit:   "mg",
		MinIntervalHours:    24,
		MaxDailyDoses:       1,
		Description:         "Sleep-onset hormone; more is not better.",
		Instructions:        "Take 30-60 minutes before intended sleep.",
		Warnings:            "Grogginess at high doses.",
	},
	"ibuprofen": {
		Name:                "Ibuprofen",
		Category:            "Painkillers",
		DefaultDosageAmount: 400,
		DefaultDosageUnit:   "mg",
		MinIntervalHours:    6,
		MaxDailyDoses:       3,
		Description:         "Non-steroidal anti-inflammatory painkiller.",
		Instructions:        "Take with food.",
		Warnings:            "Stomach and kidney load accumulates with frequent use.",
	},
	"diphenhydramine": {
		Name:                "Diphenhydramine",
		Category:            "Sedatives",
		DefaultDosageAmount: 25,
		DefaultDosageUnit:   "mg",
		MinIntervalHours:    6,
		MaxDailyDoses:       4,
		Description:         "Sedating first-generation antihistamine.",
		Instructions:        "Avoid driving after taking.",
		Warnings:            "Anticholinergic burden; avoid regular use as a sleep aid.",
	},
}

// Lookup finds a catalog entry by case-insensitive name.
func Lookup(name string) (Entry, bool) {
	e, ok := entries[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// All returns every catalog entry sorted by name.
func All() []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
