package utils

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as "2h 15m" (or "45m" under an hour).
// Negative durations render as "now".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatClock renders the local wall-clock time of t
func FormatClock(t time.Time) string {
	return t.Local().Format("15:04")
}

// FormatDosage renders an amount/unit pair ("400 mg"); a zero amount
// renders just the unit.
func FormatDosage(amount float64, unit string) string {
	if amount == 0 {
		return unit
	}
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("%d %s", int64(amount), unit)
	}
	return fmt.Sprintf("%.2g %s", amount, unit)
}
