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
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
	"github.com/dosewise/dosewise-bot/internal/utils"
)

// TextHandler handles text messages
type TextHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	userState := h.stateManager.GetUserState(user.TelegramID)

	switch userState {
	case state.WaitingForSubstanceName:
		return h.handleSubstanceName(ctx, message, user)
	case state.WaitingForDosage:
		return h.handleDosage(ctx, message, user)
	case state.WaitingForOverrideReason:
		return h.handleOverrideReason(ctx, message, user)
	case state.WaitingForMinInterval:
		return h.handleMinInterval(ctx, message, user)
	case state.WaitingForMaxDaily:
		return h.handleMaxDaily(ctx, message, user)
	case state.WaitingForSupply:
		return h.handleSupply(ctx, message, user)
	default:
		return h.handleDefaultText(message.Chat.ID)
	}
}

// handleSubstanceName handles the name input for a new substance
func (h *TextHandler) handleSubstanceName(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	name := strings.TrimSpace(message.Text)
	if name == "" {
		return h.reply(message.Chat.ID, "The name cannot be empty. Try again:")
	}

	sub, err := h.deps.SubstanceSvc.AddSubstance(ctx, user.ID, name)
	if err != nil {
		return h.reply(message.Chat.ID, "Failed to add the substance. Please try again.")
	}

	h.stateManager.ClearUserState(user.TelegramID)

	if _, err := h.api.Send(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("✅ Now tracking %s (%s).", sub.Name, sub.Category))); err != nil {
		return err
	}

	tracked, err := h.deps.SubstanceSvc.ListSubstances(ctx, user.ID)
	if err != nil {
		return err
	}
	return menus.SendSubstanceDetail(h.api, message.Chat.ID, sub, tracked, time.Now())
}

// handleDosage handles the custom dose input, e.g. "400 mg"
func (h *TextHandler) handleDosage(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	substanceID, ok := h.tempSubstanceID(user.TelegramID)
	if !ok {
		h.stateManager.ClearUserState(user.TelegramID)
		return h.reply(message.Chat.ID, "I lost track of which substance this was for. Please pick it again from the menu.")
	}

	amount, unit, err := parseDosage(message.Text)
	if err != nil {
		return h.reply(message.Chat.ID, "Please enter the dose as amount then unit, e.g. \"400 mg\" or \"1.5 ml\".")
	}

	dose, verdict, err := h.deps.DoseSvc.RecordDose(ctx, user.ID, substanceID, amount, unit, time.Now(), false, "")
	if errors.Is(err, apperrors.ErrUnsafeDose) {
		// Keep the entered dosage around for the override path.
		h.stateManager.SetTempData(user.TelegramID, state.KeyPendingAmount, amount)
		h.stateManager.SetTempData(user.TelegramID, state.KeyPendingUnit, unit)
		h.stateManager.ClearUserState(user.TelegramID)

		msg := tgbotapi.NewMessage(message.Chat.ID, unsafeVerdictText(verdict))
		msg.ParseMode = "Markdown"
		msg.ReplyMarkup = keyboards.OverridePrompt(substanceID)
		_, err := h.api.Send(msg)
		return err
	}
	if err != nil {
		return h.reply(message.Chat.ID, "Failed to record the dose. Please try again.")
	}

	h.stateManager.ClearUserState(user.TelegramID)
	h.stateManager.ClearTempData(user.TelegramID)

	if _, err := h.api.Send(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("✅ Recorded %s.", utils.FormatDosage(dose.Amount, dose.Unit)))); err != nil {
		return err
	}
	return h.showSubstance(ctx, message.Chat.ID, user, substanceID)
}

// handleOverrideReason records the previously refused dose with the given
// reason attached.
func (h *TextHandler) handleOverrideReason(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	reason := strings.TrimSpace(message.Text)
	if reason == "" {
		return h.reply(message.Chat.ID, "A reason is required to record an unsafe dose. Why are you taking it?")
	}

	substanceID, ok := h.tempSubstanceID(user.TelegramID)
	if !ok {
		h.stateManager.ClearUserState(user.TelegramID)
		return h.reply(message.Chat.ID, "I lost track of which substance this was for. Please pick it again from the menu.")
	}

	// Zero amount falls back to the substance default inside the service.
	var amount float64
	var unit string
	if v, ok := h.stateManager.GetTempData(user.TelegramID, state.KeyPendingAmount); ok {
		if f, ok := v.(float64); ok {
			amount = f
		}
	}
	if v, ok := h.stateManager.GetTempData(user.TelegramID, state.KeyPendingUnit); ok {
		if s, ok := v.(string); ok {
			unit = s
		}
	}

	dose, _, err := h.deps.DoseSvc.RecordDose(ctx, user.ID, substanceID, amount, unit, time.Now(), true, reason)
	if err != nil {
		return h.reply(message.Chat.ID, "Failed to record the dose. Please try again.")
	}

	h.stateManager.ClearUserState(user.TelegramID)
	h.stateManager.ClearTempData(user.TelegramID)

	if _, err := h.api.Send(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("⛔ Recorded %s as an override. Take care of yourself.", utils.FormatDosage(dose.Amount, dose.Unit)))); err != nil {
		return err
	}
	return h.showSubstance(ctx, message.Chat.ID, user, substanceID)
}

// handleMinInterval handles the custom minimum-interval input
func (h *TextHandler) handleMinInterval(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	hours, err := strconv.ParseFloat(strings.TrimSpace(message.Text), 64)
	if err != nil || hours <= 0 {
		return h.reply(message.Chat.ID, "Please enter a positive number of hours (e.g. 4 or 6.5).")
	}

	return h.updateSettings(ctx, message, user, func(s *domain.Settings) {
		s.MinTimeBetweenDosesHours = hours
		s.UseRecommendedTiming = false
	}, fmt.Sprintf("✅ Minimum interval set to %.1f h.", hours))
}

// handleMaxDaily handles the daily quota input
func (h *TextHandler) handleMaxDaily(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	max, err := strconv.Atoi(strings.TrimSpace(message.Text))
	if err != nil || max < 0 {
		return h.reply(message.Chat.ID, "Please enter a whole number of doses (0 for the recommended default).")
	}

	confirmation := fmt.Sprintf("✅ Daily maximum set to %d.", max)
	if max == 0 {
		confirmation = "✅ Daily maximum reset to the recommended default."
	}
	return h.updateSettings(ctx, message, user, func(s *domain.Settings) {
		s.MaxDailyDoses = max
	}, confirmation)
}

// handleSupply handles the remaining-supply input
func (h *TextHandler) handleSupply(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	supply, err := strconv.ParseFloat(strings.TrimSpace(message.Text), 64)
	if err != nil || supply < 0 {
		return h.reply(message.Chat.ID, "Please enter how many doses you have left (e.g. 30).")
	}

	return h.updateSettings(ctx, message, user, func(s *domain.Settings) {
		s.CurrentSupply = &supply
		s.TrackSupply = true
	}, fmt.Sprintf("✅ Supply set to %.0f.", supply))
}

// handleDefaultText handles text when no specific state is set
func (h *TextHandler) handleDefaultText(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Please use the menu to choose an action.")
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := h.api.Send(msg)
	return err
}

// updateSettings applies a mutation to the pending substance's settings and
// returns to its settings menu.
func (h *TextHandler) updateSettings(ctx context.Context, message *tgbotapi.Message, user *domain.User, mutate func(*domain.Settings), confirmation string) error {
	substanceID, ok := h.tempSubstanceID(user.TelegramID)
	if !ok {
		h.stateManager.ClearUserState(user.TelegramID)
		return h.reply(message.Chat.ID, "I lost track of which substance this was for. Please pick it again from the menu.")
	}

	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return h.reply(message.Chat.ID, "Substance not found.")
	}

	settings := sub.Settings
	mutate(&settings)

	if err := h.deps.SubstanceSvc.UpdateSettings(ctx, user.ID, substanceID, settings); err != nil {
		return h.reply(message.Chat.ID, "Failed to update settings. Please try again.")
	}

	h.stateManager.ClearUserState(user.TelegramID)
	h.stateManager.ClearTempData(user.TelegramID)

	if _, err := h.api.Send(tgbotapi.NewMessage(message.Chat.ID, confirmation)); err != nil {
		return err
	}

	sub, err = h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return err
	}
	return menus.SendSettingsMenu(h.api, message.Chat.ID, sub)
}

func (h *TextHandler) showSubstance(ctx context.Context, chatID int64, user *domain.User, substanceID uint) error {
	sub, err := h.deps.SubstanceSvc.GetSubstance(ctx, user.ID, substanceID)
	if err != nil {
		return err
	}
	tracked, err := h.deps.SubstanceSvc.ListSubstances(ctx, user.ID)
	if err != nil {
		return err
	}
	return menus.SendSubstanceDetail(h.api, chatID, sub, tracked, time.Now())
}

func (h *TextHandler) tempSubstanceID(telegramID int64) (uint, bool) {
	v, ok := h.stateManager.GetTempData(telegramID, state.KeySubstanceID)
	if !ok {
		return 0, false
	}
	return state.UintValue(v)
}

func (h *TextHandler) reply(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// parseDosage parses "400 mg", "400mg" or "1.5" into amount and unit. A
// missing unit is left empty so the substance default applies.
func parseDosage(input string) (float64, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, "", fmt.Errorf("empty dosage")
	}

	fields := strings.Fields(input)
	numPart := fields[0]
	unit := ""
	if len(fields) > 1 {
		unit = strings.ToLower(fields[1])
	} else {
		// Split a glued suffix like "400mg".
		split := len(numPart)
		for i, r := range numPart {
			if (r < '0' || r > '9') && r != '.' && r != ',' {
				split = i
				break
			}
		}
		unit = strings.ToLower(numPart[split:])
		numPart = numPart[:split]
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(numPart, ",", "."), 64)
	if err != nil || amount <= 0 {
		return 0, "", fmt.Errorf("invalid dosage amount %q", input)
	}
	return amount, unit, nil
}
