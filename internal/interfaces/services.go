package interfaces

import (
	"context"
	"time"

	"github.com/dosewise/dosewise-bot/internal/domain"
	"github.com/dosewise/dosewise-bot/internal/dosing"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

// SubstanceServiceInterface defines the contract for substance operations
type SubstanceServiceInterface interface {
	AddSubstance(ctx context.Context, userID uint, name string) (*domain.Substance, error)
	ListSubstances(ctx context.Context, userID uint) ([]domain.Substance, error)
	GetSubstance(ctx context.Context, userID, substanceID uint) (*domain.Substance, error)
	UpdateSettings(ctx context.Context, userID, substanceID uint, settings domain.Settings) error
	DeleteSubstance(ctx context.Context, userID, substanceID uint) error
}

// DoseServiceInterface defines the contract for dose operations
type DoseServiceInterface interface {
	CheckSafety(ctx context.Context, userID, substanceID uint, at time.Time) (dosing.SafetyVerdict, error)
	RecordDose(ctx context.Context, userID, substanceID uint, amount float64, unit string, at time.Time, override bool, overrideReason string) (*domain.Dose, dosing.SafetyVerdict, error)
	EditDose(ctx context.Context, userID, doseID uint, at time.Time, amount float64, unit string) error
	DeleteDose(ctx context.Context, userID, doseID uint) error
	ListDoses(ctx context.Context, userID, substanceID uint, limit int) ([]domain.Dose, error)
}
