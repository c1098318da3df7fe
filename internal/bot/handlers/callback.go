package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dosewise/dosewise-bot/internal/bot/keyboards"
	"github.com/dosewise/dosewise-bot/internal/bot/menus"
	"github.com/dosewise/dosewise-bot/internal/bot/state"
	"github.com/dosewise/dosewise-bot/internal/domain"
	"github.com/dosewise/dosewise-bot/internal/dosing"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
	"github.com/dosewise/dosewise-bot/internal/logger"
	"github.com/dosewise/dosewise-bot/internal/utils"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *domain.User) error {
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		return err
	}

	chatID := query.Message.Chat.ID

	// Any navigation away from a live view ends its refresh loop. The live
	// view itself restarts a fresh one below.
	h.deps.Tickers.Stop(chatID)

	switch query.Data {
	case "main_menu":
		h.stateManager.ClearUserState(user.TelegramID)
		h.stateManager.ClearTempData(user.TelegramID)
		return menus.SendMainMenu(h.api, chatID)
	case "substances":
		h.stateManager.ClearUserState(user.TelegramID)
		return h.handleSubstanceList(ctx, chatID, user)
	case "add_substance":
		return h.handleAddSubstance(chatID, user)
	case "help":
		return sendHelp(h.api, chatID)
	}

	action, id, ok := splitCallback(query.Data)
	if !ok {
		return h.handleUnknownCallback(chatID)
	}

	switch action {
	case "sub":
		return h.handleSubstanceDetail(ctx, chatID, user, id)
	case "rec":
		return h.handleRecordDefault(ctx, chatID, user, id)
	case "recc":
		return h.handleRecordCustom(chatID, user, id)
	case "ovr":
		return h.handleOverrideStart(chatID, user, id)
	case "live":
		return h.handleLiveStatus(ctx, chatID, user, id)
	case "stop_live":
		return h.handleSubstanceDetail(ctx, chatID, user, id)
	case "hist":
		return h.handleHistory(ctx, chatID, user, id)
	case "ddose":
		return h.handleDeleteDose(ctx, chatID, user, id)
	case "inter":
		return h.handleInteractions(ctx, chatID, user, id)
	case "set":
		return h.handleSettings(ctx, chatID, user, id)
	case "tgl_rec", "tgl_daily", "tgl_timing", "tgl_supply":
		return h.handleToggle(ctx, chatID, user, id, action)
	case "set_int":
		return h.handlePrompt(chatID, user, id, state.WaitingForMinInterval,
			"Enter the minimum interval between doses in hours (e.g. 4 or 6.5):")
	case "set_max":
		return h.handlePrompt(chatID, user, id, state.WaitingForMaxDaily,
			"Enter the maximum number of doses per day (0 for the recommended default):")
	case "set_sup":
		return h.handlePrompt(chatID, user, id, state.WaitingForSupply,
			"Enter how many doses you have left (e.g. 30):")
	case "del":
		return h.handleDeleteSubstance(chatID, id)
	case "confirm_del":
		return h.handleConfirmDelete(ctx, chatID, user, id)
	default:
		return h.handleUnknownCallback(chatID)
	}
}

func (h *CallbackHandler) handleSubstanceList(ctx context.Context, chatID int64, user *domain.User) error {
	subs, err := h.deps.SubstanceSvc.ListSubstances(ctx, user.ID)
	if err != nil {
		return h.sendError(chatID, "Failed to load your substances.", err)
	}
	return menus.SendSubstanceList(h.api, chatID, subs)
}

func (h *CallbackHandler) handleAddSubstance(chatID int64, user *domain.User) error {
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForSubstanceName)
	h.stateManager.ClearTempData(user.TelegramID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", "substances"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "What do you want to track? Send the name (e.g. caffeine).\n\nKnown substances come pre-filled with recommended timing and dosage.")
	msg.ReplyMarkup = keyboard
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleSubstanceDetail(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	h.stateManager.ClearUserState(user.TelegramID)

	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.sendError(chatID, "Substance not found.", err)
	}
	tracked, err := h.deps.SubstanceSvc.ListSubstances(ctx, user.ID)
	if err != nil {
		return h.sendError(chatID, "Failed to load your substances.", err)
	}
	return menus.SendSubstanceDetail(h.api, chatID, sub, tracked, time.Now())
}

// handleRecordDefault records a dose with the substance's default dosage. An
// unsafe verdict turns into a warning with an explicit "record anyway" path.
func (h *CallbackHandler) handleRecordDefault(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	dose, verdict, err := h.deps.DoseSvc.RecordDose(ctx, user.ID, substanceID, 0, "", time.Now(), false, "")
	if errors.Is(err, apperrors.ErrUnsafeDose) {
		h.stateManager.SetTempData(user.TelegramID, state.KeySubstanceID, substanceID)
		return h.sendUnsafeWarning(chatID, substanceID, verdict)
	}
	if err != nil {
		return h.sendError(chatID, "Failed to record the dose.", err)
	}
	return h.sendRecorded(ctx, chatID, user, substanceID, dose)
}

func (h *CallbackHandler) handleRecordCustom(chatID int64, user *domain.User, substanceID uint) error {
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForDosage)
	h.stateManager.SetTempData(user.TelegramID, state.KeySubstanceID, substanceID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "Enter the dose, amount then unit (e.g. \"400 mg\" or \"1.5 ml\"):")
	msg.ReplyMarkup = keyboard
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleOverrideStart(chatID int64, user *domain.User, substanceID uint) error {
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForOverrideReason)
	h.stateManager.SetTempData(user.TelegramID, state.KeySubstanceID, substanceID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "Why are you recording this dose anyway? The reason is kept in the history:")
	msg.ReplyMarkup = keyboard
	_, err := h.api.Send(msg)
	return err
}

// handleLiveStatus sends the phase view and starts a per-chat refresh loop
// that edits the message in place until the dose is fully cleared.
func (h *CallbackHandler) handleLiveStatus(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.sendError(chatID, "Substance not found.", err)
	}

	msg := tgbotapi.NewMessage(chatID, menus.LiveStatusText(sub, time.Now()))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.LiveStatus(substanceID)
	sent, err := h.api.Send(msg)
	if err != nil {
		return err
	}

	userID := user.ID
	h.deps.Tickers.Start(ctx, chatID, func(now time.Time) bool {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sub, err := h.deps.SubstanceSvc.GetSubstance(refreshCtx, userID, substanceID)
		if err != nil {
			logger.Warnf("Live view refresh failed for substance %d: %v", substanceID, err)
			return false
		}

		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, sent.MessageID,
			menus.LiveStatusText(sub, now), keyboards.LiveStatus(substanceID))
		edit.ParseMode = "Markdown"
		if _, err := h.api.Send(edit); err != nil {
			logger.Warnf("Failed to edit live view in chat %d: %v", chatID, err)
			return false
		}

		last := sub.LastDose()
		if last == nil {
			return false
		}
		profile := dosing.ProfileFor(sub.Name, sub.Category)
		return dosing.ComputePhase(last.Timestamp, profile, now).Active()
	})
	return nil
}

func (h *CallbackHandler) handleHistory(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.sendError(chatID, "Substance not found.", err)
	}
	doses, err := h.deps.DoseSvc.ListDoses(ctx, user.ID, substanceID, 10)
	if err != nil {
		return h.sendError(chatID, "Failed to load the history.", err)
	}

	// Remember the substance so deleting an entry can return here.
	h.stateManager.SetTempData(user.TelegramID, state.KeySubstanceID, substanceID)

	msg := tgbotapi.NewMessage(chatID, menus.HistoryText(sub, doses))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.History(substanceID, doses)
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleDeleteDose(ctx context.Context, chatID int64, user *domain.User, doseID uint) error {
	if err := h.deps.DoseSvc.DeleteDose(ctx, user.ID, doseID); err != nil {
		return h.sendError(chatID, "Failed to delete the dose.", err)
	}

	msg := tgbotapi.NewMessage(chatID, "🗑️ Dose deleted. Earlier and later entries were re-checked.")
	if _, err := h.api.Send(msg); err != nil {
		return err
	}

	if v, ok := h.stateManager.GetTempData(user.TelegramID, state.KeySubstanceID); ok {
		if substanceID, ok := state.UintValue(v); ok {
			return h.handleHistory(ctx, chatID, user, substanceID)
		}
	}
	return h.handleSubstanceList(ctx, chatID, user)
}

func (h *CallbackHandler) handleInteractions(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.sendError(chatID, "Substance not found.", err)
	}
	tracked, err := h.deps.SubstanceSvc.ListSubstances(ctx, user.ID)
	if err != nil {
		return h.sendError(chatID, "Failed to load your substances.", err)
	}

	results := dosing.EvaluateInteractions(sub, tracked)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", fmt.Sprintf("sub:%d", substanceID)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, menus.InteractionsText(sub, results))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleSettings(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.sendError(chatID, "Substance not found.", err)
	}
	return menus.SendSettingsMenu(h.api, chatID, sub)
}

func (h *CallbackHandler) handleToggle(ctx context.Context, chatID int64, user *domain.User, substanceID uint, action string) error {
	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.sendError(chatID, "Substance not found.", err)
	}

	settings := sub.Settings
	switch action {
	case "tgl_rec":
		settings.UseRecommendedTiming = !settings.UseRecommendedTiming
	case "tgl_daily":
		settings.EnforceDailyLimit = !settings.EnforceDailyLimit
	case "tgl_timing":
		settings.EnforceTimingRestrictions = !settings.EnforceTimingRestrictions
	case "tgl_supply":
		settings.TrackSupply = !settings.TrackSupply
	}

	if err := h.deps.SubstanceSvc.UpdateSettings(ctx, user.ID, substanceID, settings); err != nil {
		return h.sendError(chatID, "Failed to update settings.", err)
	}
	return h.handleSettings(ctx, chatID, user, substanceID)
}

func (h *CallbackHandler) handlePrompt(chatID int64, user *domain.User, substanceID uint, nextState, prompt string) error {
	h.stateManager.SetUserState(user.TelegramID, nextState)
	h.stateManager.SetTempData(user.TelegramID, state.KeySubstanceID, substanceID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", fmt.Sprintf("set:%d", substanceID)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = keyboard
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleDeleteSubstance(chatID int64, substanceID uint) error {
	msg := tgbotapi.NewMessage(chatID, "⚠️ This removes the substance and its entire dose history. Are you sure?")
	msg.ReplyMarkup = keyboards.DeleteConfirm(substanceID)
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleConfirmDelete(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	if err := h.deps.SubstanceSvc.DeleteSubstance(ctx, user.ID, substanceID); err != nil {
		return h.sendError(chatID, "Failed to delete the substance.", err)
	}
	h.stateManager.ClearTempData(user.TelegramID)

	msg := tgbotapi.NewMessage(chatID, "🗑️ Substance and its history deleted.")
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	return h.handleSubstanceList(ctx, chatID, user)
}

// sendRecorded confirms a recorded dose and shows the updated overview.
func (h *CallbackHandler) sendRecorded(ctx context.Context, chatID int64, user *domain.User, substanceID uint, dose *domain.Dose) error {
	text := fmt.Sprintf("✅ Recorded %s at %s.",
		utils.FormatDosage(dose.Amount, dose.Unit), utils.FormatClock(dose.Timestamp))
	if dose.Status == domain.DoseStatusOverride {
		text = fmt.Sprintf("⛔ Recorded %s at %s as an override.",
			utils.FormatDosage(dose.Amount, dose.Unit), utils.FormatClock(dose.Timestamp))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	return h.handleSubstanceDetail(ctx, chatID, user, substanceID)
}

// sendUnsafeWarning explains why the dose was refused and offers the
// explicit override path.
func (h *CallbackHandler) sendUnsafeWarning(chatID int64, substanceID uint, verdict dosing.SafetyVerdict) error {
	msg := tgbotapi.NewMessage(chatID, unsafeVerdictText(verdict))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.OverridePrompt(substanceID)
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) sendError(chatID int64, text string, err error) error {
	logger.Errorf("Handler error: %v", err)
	msg := tgbotapi.NewMessage(chatID, text)
	_, sendErr := h.api.Send(msg)
	return sendErr
}

// handleUnknownCallback handles unknown callbacks
func (h *CallbackHandler) handleUnknownCallback(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown action. Use the menu below.")
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := h.api.Send(msg)
	return err
}

// unsafeVerdictText renders a refused verdict for the warning prompt.
func unsafeVerdictText(verdict dosing.SafetyVerdict) string {
	var b strings.Builder
	b.WriteString("⚠️ *This dose is not safe right now.*\n\n")
	b.WriteString(verdict.Reason)
	b.WriteString("\n")
	if verdict.TooSoon && verdict.RemainingTimeHours > 0 {
		fmt.Fprintf(&b, "\nWait another %s before the next dose.\n",
			utils.FormatDuration(time.Duration(verdict.RemainingTimeHours*float64(time.Hour))))
	}
	if verdict.QuotaExceeded {
		fmt.Fprintf(&b, "\nAlready recorded today: %d of %d.\n", verdict.DosesToday, verdict.MaxDailyDoses)
	}
	b.WriteString("\nYou can still record it, but you must give a reason.")
	return b.String()
}

// splitCallback parses "action:id" callback data.
func splitCallback(data string) (string, uint, bool) {
	idx := strings.LastIndex(data, ":")
	if idx < 0 {
		return "", 0, false
	}
	id, err := strconv.ParseUint(data[idx+1:], 10, 32)
	if err != nil {
		return "", 0, false
	}
	return data[:idx], uint(id), true
}
