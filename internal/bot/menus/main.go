package menus

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dosewise/dosewise-bot/internal/bot/keyboards"
	"github.com/dosewise/dosewise-bot/internal/domain"
	"github.com/dosewise/dosewise-bot/internal/dosing"
	"github.com/dosewise/dosewise-bot/internal/utils"
)

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api *tgbotapi.BotAPI, chatID int64) error {
	text := `💊 *DoseWise* - track doses, stay on the safe side

What it does:
• Records every dose with a safety check
• Warns when a dose is too soon or over the daily limit
• Shows the live effect phase of your last dose
• Flags risky combinations between tracked substances
• Keeps count of remaining supply

⚠️ *Important:* this is harm-reduction bookkeeping, not medical advice.

Choose an action:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendSubstanceList sends the tracked-substance list
func SendSubstanceList(api *tgbotapi.BotAPI, chatID int64, subs []domain.Substance) error {
	var text string
	if len(subs) == 0 {
		text = "You are not tracking anything yet. Add a substance to get started."
	} else {
		text = fmt.Sprintf("Tracking %d substance(s). Pick one:", len(subs))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.SubstanceList(subs)
	_, err := api.Send(msg)
	return err
}

// SendSubstanceDetail sends the substance overview with its action keyboard
func SendSubstanceDetail(api *tgbotapi.BotAPI, chatID int64, sub *domain.Substance, tracked []domain.Substance, now time.Time) error {
	msg := tgbotapi.NewMessage(chatID, SubstanceDetailText(sub, tracked, now))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.SubstanceMenu(sub.ID, len(sub.Doses) > 0)
	_, err := api.Send(msg)
	return err
}

// SubstanceDetailText renders the overview: current phase, next safe dose,
// today's count, supply and the highest-severity interaction warning.
func SubstanceDetailText(sub *domain.Substance, tracked []domain.Substance, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "💊 *%s* (%s)\n", sub.Name, sub.Category)
	if sub.Description != "" {
		fmt.Fprintf(&b, "_%s_\n", sub.Description)
	}
	b.WriteString("\n")

	verdict := dosing.CheckDoseSafety(sub, now)
	last := sub.LastDose()

	if last == nil {
		b.WriteString("No doses recorded yet.\n")
	} else {
		profile := dosing.ProfileFor(sub.Name, sub.Category)
		status := dosing.ComputePhase(last.Timestamp, profile, now)
		fmt.Fprintf(&b, "Last dose: %s (%s)\n", last.Timestamp.Local().Format("Jan 2 15:04"),
			utils.FormatDosage(last.Amount, last.Unit))
		fmt.Fprintf(&b, "Phase: %s\n", phaseLabel(status.Phase))
		fmt.Fprintf(&b, "Doses today: %d of %d\n", verdict.DosesToday, verdict.MaxDailyDoses)

		if next := dosing.NextDoseTime(sub, &last.Timestamp); next != nil {
			if next.After(now) {
				fmt.Fprintf(&b, "Next dose: %s (in %s)\n",
					utils.FormatClock(*next), utils.FormatDuration(next.Sub(now)))
			} else {
				b.WriteString("Next dose: ready\n")
			}
		}
	}

	if sub.Settings.TrackSupply && sub.Settings.CurrentSupply != nil {
		fmt.Fprintf(&b, "Supply left: %.0f\n", *sub.Settings.CurrentSupply)
		if *sub.Settings.CurrentSupply <= 3 {
			b.WriteString("📦 Supply is running low.\n")
		}
	}

	if warn := topInteractionWarning(sub, tracked); warn != "" {
		fmt.Fprintf(&b, "\n⚠️ %s\n", warn)
	}

	if sub.Warnings != "" {
		fmt.Fprintf(&b, "\n⚠️ _%s_\n", sub.Warnings)
	}

	return b.String()
}

// LiveStatusText renders the ticking phase view: progress bar, phase
// boundaries as wall-clock times and the profile's safety message.
func LiveStatusText(sub *domain.Substance, now time.Time) string {
	last := sub.LastDose()
	if last == nil {
		return "No doses recorded - nothing to watch."
	}

	profile := dosing.ProfileFor(sub.Name, sub.Category)
	status := dosing.ComputePhase(last.Timestamp, profile, now)

	var b strings.Builder
	fmt.Fprintf(&b, "📈 *%s*: live status\n\n", sub.Name)
	fmt.Fprintf(&b, "Phase: %s\n", phaseLabel(status.Phase))
	fmt.Fprintf(&b, "%s %.0f%%\n\n", progressBar(status.ProgressPercent), status.ProgressPercent)
	fmt.Fprintf(&b, "Onset ends: %s\n", utils.FormatClock(status.OnsetEnds))
	fmt.Fprintf(&b, "Peak ends: %s\n", utils.FormatClock(status.PeakEnds))
	fmt.Fprintf(&b, "Offset ends: %s\n", utils.FormatClock(status.OffsetEnds))
	fmt.Fprintf(&b, "Fully clear: %s\n", utils.FormatClock(status.FullyClear))

	if status.Message != "" {
		fmt.Fprintf(&b, "\n_%s_\n", status.Message)
	}
	fmt.Fprintf(&b, "\nUpdated %s", utils.FormatClock(now))
	return b.String()
}

// InteractionsText renders the pairwise risk report for a substance.
func InteractionsText(sub *domain.Substance, results []dosing.InteractionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *Interaction check for %s*\n\n", sub.Name)

	if len(results) == 0 {
		b.WriteString("No other substances tracked - nothing to compare against.\n")
		return b.String()
	}

	for _, r := range results {
		fmt.Fprintf(&b, "%s *%s* - %s\n%s\n\n", severityEmoji(r.Severity), r.OtherName, r.Severity, r.Description)
	}

	b.WriteString("_Coarse category rules only, not a clinical interaction database._")
	return b.String()
}

// HistoryText renders the recent dose list, newest first.
func HistoryText(sub *domain.Substance, doses []domain.Dose) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *%s*: recent doses\n\n", sub.Name)

	if len(doses) == 0 {
		b.WriteString("No doses recorded yet.")
		return b.String()
	}

	for _, d := range doses {
		fmt.Fprintf(&b, "%s %s - %s (%s)\n", statusEmoji(d.Status),
			d.Timestamp.Local().Format("Jan 2 15:04"),
			utils.FormatDosage(d.Amount, d.Unit), d.Status)
		if d.OverrideReason != "" {
			fmt.Fprintf(&b, "   _override: %s_\n", d.OverrideReason)
		}
	}
	b.WriteString("\nTap an entry below to delete it.")
	return b.String()
}

// SendSettingsMenu sends the substance settings view
func SendSettingsMenu(api *tgbotapi.BotAPI, chatID int64, sub *domain.Substance) error {
	minHours, maxDaily := dosing.EffectiveTiming(sub)

	var b strings.Builder
	fmt.Fprintf(&b, "⚙️ *%s*: settings\n\n", sub.Name)
	fmt.Fprintf(&b, "Default dosage: %s\n", utils.FormatDosage(sub.Settings.DefaultDosageAmount, sub.Settings.DefaultDosageUnit))
	fmt.Fprintf(&b, "Effective min interval: %s\n", utils.FormatDuration(time.Duration(minHours*float64(time.Hour))))
	fmt.Fprintf(&b, "Effective daily max: %d\n", maxDaily)
	if sub.Settings.TrackSupply && sub.Settings.CurrentSupply != nil {
		fmt.Fprintf(&b, "Supply: %.0f\n", *sub.Settings.CurrentSupply)
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.SettingsMenu(sub)
	_, err := api.Send(msg)
	return err
}

func topInteractionWarning(sub *domain.Substance, tracked []domain.Substance) string {
	results := dosing.EvaluateInteractions(sub, tracked)
	for _, r := range results {
		if r.Severity == dosing.SeverityHigh {
			return r.Description
		}
	}
	return ""
}

func phaseLabel(p dosing.PhaseName) string {
	switch p {
	case dosing.PhaseOnset:
		return "🟡 onset"
	case dosing.PhasePeak:
		return "🔴 peak"
	case dosing.PhaseOffset:
		return "🟠 offset"
	case dosing.PhaseComedown:
		return "🟣 comedown"
	case dosing.PhaseFinished:
		return "🟢 finished (safe)"
	default:
		return "no active dose"
	}
}

func progressBar(percent float64) string {
	const width = 10
	filled := int(percent / 100 * width)
	if filled > width {
		filled = width
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", width-filled)
}

func severityEmoji(s dosing.Severity) string {
	switch s {
	case dosing.SeverityHigh:
		return "🔴"
	case dosing.SeverityMedium:
		return "🟠"
	default:
		return "🟢"
	}
}

func statusEmoji(status string) string {
	switch status {
	case domain.DoseStatusOverride:
		return "⛔"
	case domain.DoseStatusWarning:
		return "⚠️"
	case domain.DoseStatusEarly:
		return "🕒"
	default:
		return "✅"
	}
}
