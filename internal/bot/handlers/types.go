package handlers

import (
	"github.com/dosewise/dosewise-bot/internal/bot/ticker"
	"github.com/dosewise/dosewise-bot/internal/interfaces"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService  interfaces.UserServiceInterface
	SubstanceSvc interfaces.SubstanceServiceInterface
	DoseSvc      interfaces.DoseServiceInterface
	Tickers      *ticker.Registry
}
