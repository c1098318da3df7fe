package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dosewise/dosewise-bot/internal/bot/keyboards"
	"github.com/dosewise/dosewise-bot/internal/bot/menus"
	"github.com/dosewise/dosewise-bot/internal/bot/state"
	"github.com/dosewise/dosewise-bot/internal/domain"
	"github.com/dosewise/dosewise-bot/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	logger.Infof("Handling command %s from user %d", message.Command(), user.ID)

	h.deps.Tickers.Stop(message.Chat.ID)

	switch message.Command() {
	case "start":
		h.stateManager.ClearUserState(user.TelegramID)
		h.stateManager.ClearTempData(user.TelegramID)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "substances":
		h.stateManager.ClearUserState(user.TelegramID)
		subs, err := h.deps.SubstanceSvc.ListSubstances(ctx, user.ID)
		if err != nil {
			return err
		}
		return menus.SendSubstanceList(h.api, message.Chat.ID, subs)
	case "help":
		return sendHelp(h.api, message.Chat.ID)
	default:
		return h.handleUnknownCommand(message.Chat.ID)
	}
}

// sendHelp answers both the /help command and the help button
func sendHelp(api *tgbotapi.BotAPI, chatID int64) error {
	text := `*Commands:*
/start - Show the main menu
/substances - List tracked substances
/help - Show this message

*Recording a dose:*
1. Open a substance and tap "Record dose" for the default dosage,
   or "Custom dose" and type the amount, e.g. "400 mg"
2. If the dose is too soon or over the daily limit the bot warns you first
3. Recording anyway requires a short reason, which stays in the history

*Live status* shows which effect phase the last dose is in and when you
are fully clear. *Interactions* compares a substance against everything
else you track.

⚠️ This bot is a bookkeeping aid, not medical advice.`

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", "main_menu"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	_, err := api.Send(msg)
	return err
}

// handleUnknownCommand handles unknown commands
func (h *CommandHandler) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do.")
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := h.api.Send(msg)
	return err
}
