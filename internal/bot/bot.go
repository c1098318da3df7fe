package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dosewise/dosewise-bot/internal/bot/handlers"
	"github.com/dosewise/dosewise-bot/internal/bot/state"
	"github.com/dosewise/dosewise-bot/internal/bot/ticker"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
	"github.com/dosewise/dosewise-bot/internal/interfaces"
	"github.com/dosewise/dosewise-bot/internal/logger"
)

// liveRefreshInterval is how often an open live-status view re-renders.
const liveRefreshInterval = time.Minute

// Bot wires the Telegram API to the update handlers.
type Bot struct {
	api           *tgbotapi.BotAPI
	updateHandler *handlers.UpdateHandler
	tickers       *ticker.Registry
	errHandler    *apperrors.Handler
}

// NewBot creates a bot from the given token and services
func NewBot(
	token string,
	userService interfaces.UserServiceInterface,
	substanceSvc interfaces.SubstanceServiceInterface,
	doseSvc interfaces.DoseServiceInterface,
	stateManager state.StateManager,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Infof("Bot authorized on account %s", api.Self.UserName)

	tickers := ticker.NewRegistry(liveRefreshInterval)
	deps := handlers.Dependencies{
		UserService:  userService,
		SubstanceSvc: substanceSvc,
		DoseSvc:      doseSvc,
		Tickers:      tickers,
	}

	return &Bot{
		api:           api,
		updateHandler: handlers.NewUpdateHandler(api, deps, stateManager),
		tickers:       tickers,
		errHandler:    apperrors.NewHandler(logger.GetLogger()),
	}, nil
}

// Start runs the long-poll loop until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			b.tickers.StopAll()
			return ctx.Err()
		case update := <-updates:
			if err := b.updateHandler.Handle(ctx, update); err != nil {
				b.errHandler.Handle(ctx, err)
			}
		}
	}
}
