package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dosewise/dosewise-bot/internal/domain"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💊 My substances", "substances"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add substance", "add_substance"),
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", "help"),
		),
	)
}

// SubstanceList creates one button per tracked substance
func SubstanceList(subs []domain.Substance) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.InlineKeyboardMarkup{}
	for _, s := range subs {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%s (%s)", s.Name, s.Category),
					fmt.Sprintf("sub:%d", s.ID)),
			),
		)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add substance", "add_substance"),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)
	return keyboard
}

// SubstanceMenu creates the per-substance action keyboard
func SubstanceMenu(substanceID uint, hasDoses bool) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Record dose", fmt.Sprintf("rec:%d", substanceID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Custom dose", fmt.Sprintf("recc:%d", substanceID)),
		),
	)
	if hasDoses {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📈 Live status", fmt.Sprintf("live:%d", substanceID)),
				tgbotapi.NewInlineKeyboardButtonData("📋 History", fmt.Sprintf("hist:%d", substanceID)),
			),
		)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Interactions", fmt.Sprintf("inter:%d", substanceID)),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", fmt.Sprintf("set:%d", substanceID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Delete", fmt.Sprintf("del:%d", substanceID)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", "substances"),
		),
	)
	return keyboard
}

// OverridePrompt asks for explicit acknowledgment of an unsafe dose
func OverridePrompt(substanceID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Record anyway", fmt.Sprintf("ovr:%d", substanceID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
}

// SettingsMenu creates the substance settings keyboard
func SettingsMenu(sub *domain.Substance) tgbotapi.InlineKeyboardMarkup {
	id := sub.ID
	timingLabel := "🕒 Use recommended timing: off"
	if sub.Settings.UseRecommendedTiming {
		timingLabel = "🕒 Use recommended timing: on"
	}
	dailyLabel := "📅 Daily limit check: off"
	if sub.Settings.EnforceDailyLimit {
		dailyLabel = "📅 Daily limit check: on"
	}
	intervalLabel := "⏱️ Interval check: off"
	if sub.Settings.EnforceTimingRestrictions {
		intervalLabel = "⏱️ Interval check: on"
	}
	supplyLabel := "📦 Supply tracking: off"
	if sub.Settings.TrackSupply {
		supplyLabel = "📦 Supply tracking: on"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(timingLabel, fmt.Sprintf("tgl_rec:%d", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Set min interval", fmt.Sprintf("set_int:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("Set daily max", fmt.Sprintf("set_max:%d", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(dailyLabel, fmt.Sprintf("tgl_daily:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData(intervalLabel, fmt.Sprintf("tgl_timing:%d", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(supplyLabel, fmt.Sprintf("tgl_supply:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("Set supply", fmt.Sprintf("set_sup:%d", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", fmt.Sprintf("sub:%d", id)),
		),
	)
}

// DeleteConfirm asks before removing a substance and its history
func DeleteConfirm(substanceID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Yes, delete", fmt.Sprintf("confirm_del:%d", substanceID)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
}

// History creates per-dose delete buttons plus navigation
func History(substanceID uint, doses []domain.Dose) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.InlineKeyboardMarkup{}
	for _, d := range doses {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("🗑️ %s", d.Timestamp.Local().Format("Jan 2 15:04")),
					fmt.Sprintf("ddose:%d", d.ID)),
			),
		)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
	return keyboard
}

// LiveStatus creates the live view keyboard
func LiveStatus(substanceID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹️ Stop", fmt.Sprintf("stop_live:%d", substanceID)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
}
