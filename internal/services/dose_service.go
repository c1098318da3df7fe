package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dosewise/dosewise-bot/internal/domain"
	"github.com/dosewise/dosewise-bot/internal/dosing"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
	"github.com/dosewise/dosewise-bot/internal/logger"
)

type DoseService struct {
	db *gorm.DB
}

func NewDoseService(db *gorm.DB) *DoseService {
	return &DoseService{db: db}
}

// CheckSafety evaluates a proposed dose time against the substance's rules
// without recording anything.
func (s *DoseService) CheckSafety(ctx context.Context, userID, substanceID uint, at time.Time) (dosing.SafetyVerdict, error) {
	sub, err := s.loadSubstance(ctx, userID, substanceID)
	if err != nil {
		return dosing.SafetyVerdict{}, err
	}
	return dosing.CheckDoseSafety(sub, at), nil
}

// RecordDose records a dose taken at the given time. An unsafe verdict is
// returned with ErrUnsafeDose unless the caller explicitly overrides; an
// override must carry a reason. On success the supply ledger is decremented
// when supply management is enabled (clamped at zero - running out never
// blocks recording).
func (s *DoseService) RecordDose(ctx context.Context, userID, substanceID uint, amount float64, unit string, at time.Time, override bool, overrideReason string) (*domain.Dose, dosing.SafetyVerdict, error) {
	sub, err := s.loadSubstance(ctx, userID, substanceID)
	if err != nil {
		return nil, dosing.SafetyVerdict{}, err
	}

	verdict := dosing.CheckDoseSafety(sub, at)
	if !verdict.Safe {
		if !override {
			return nil, verdict, apperrors.ErrUnsafeDose
		}
		if strings.TrimSpace(overrideReason) == "" {
			return nil, verdict, apperrors.ErrOverrideReasonRequired
		}
	}

	if amount == 0 {
		amount = sub.Settings.DefaultDosageAmount
	}
	if unit == "" {
		unit = sub.Settings.DefaultDosageUnit
	}

	dose := &domain.Dose{
		SubstanceID: sub.ID,
		Timestamp:   at,
		Amount:      amount,
		Unit:        unit,
		Status:      dosing.DeriveStatus(verdict),
	}
	if !verdict.Safe {
		dose.Status = domain.DoseStatusOverride
		dose.OverrideReason = strings.TrimSpace(overrideReason)
	}

	if err := s.db.WithContext(ctx).Create(dose).Error; err != nil {
		return nil, verdict, fmt.Errorf("failed to record dose: %w", err)
	}

	if err := s.decrementSupply(ctx, sub); err != nil {
		return nil, verdict, err
	}

	logger.Infof("Recorded dose for substance %d (status: %s)", sub.ID, dose.Status)
	return dose, verdict, nil
}

// EditDose updates a dose's time and dosage, then recomputes the derived
// statuses of the substance's history. Supply is not restored or re-taken on
// edits.
func (s *DoseService) EditDose(ctx context.Context, userID, doseID uint, at time.Time, amount float64, unit string) error {
	dose, sub, err := s.loadDose(ctx, userID, doseID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"timestamp": at,
		"amount":    amount,
		"unit":      unit,
	}
	if err := s.db.WithContext(ctx).Model(dose).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update dose: %w", err)
	}

	return s.recomputeStatuses(ctx, userID, sub.ID)
}

// DeleteDose removes a dose and recomputes the remaining statuses. Supply is
// intentionally not restored.
func (s *DoseService) DeleteDose(ctx context.Context, userID, doseID uint) error {
	dose, sub, err := s.loadDose(ctx, userID, doseID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(dose).Error; err != nil {
		return fmt.Errorf("failed to delete dose: %w", err)
	}

	return s.recomputeStatuses(ctx, userID, sub.ID)
}

// ListDoses returns up to limit doses for the substance, newest first.
// limit <= 0 means no limit.
func (s *DoseService) ListDoses(ctx context.Context, userID, substanceID uint, limit int) ([]domain.Dose, error) {
	sub, err := s.loadSubstance(ctx, userID, substanceID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("substance_id = ?", sub.ID).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var doses []domain.Dose
	if err := query.Find(&doses).Error; err != nil {
		return nil, fmt.Errorf("failed to list doses: %w", err)
	}
	return doses, nil
}

// recomputeStatuses re-derives the status of every non-override dose from
// the history preceding it. Override entries keep their recorded status and
// reason - they are a historical acknowledgment, not a derived view.
func (s *DoseService) recomputeStatuses(ctx context.Context, userID, substanceID uint) error {
	sub, err := s.loadSubstance(ctx, userID, substanceID)
	if err != nil {
		return err
	}

	doses := make([]domain.Dose, len(sub.Doses))
	copy(doses, sub.Doses)
	sort.Slice(doses, func(i, j int) bool {
		return doses[i].Timestamp.Before(doses[j].Timestamp)
	})

	history := *sub
	for i := range doses {
		history.Doses = doses[:i]
		if doses[i].Status != domain.DoseStatusOverride {
			verdict := dosing.CheckDoseSafety(&history, doses[i].Timestamp)
			status := dosing.DeriveStatus(verdict)
			if status != doses[i].Status {
				err := s.db.WithContext(ctx).
					Model(&domain.Dose{}).
					Where("id = ?", doses[i].ID).
					Update("status", status).Error
				if err != nil {
					return fmt.Errorf("failed to recompute dose status: %w", err)
				}
				doses[i].Status = status
			}
		}
	}
	return nil
}

func (s *DoseService) decrementSupply(ctx context.Context, sub *domain.Substance) error {
	if !sub.Settings.TrackSupply || sub.Settings.CurrentSupply == nil {
		return nil
	}
	remaining := *sub.Settings.CurrentSupply - 1
	if remaining < 0 {
		remaining = 0
	}
	err := s.db.WithContext(ctx).
		Model(&domain.Substance{}).
		Where("id = ?", sub.ID).
		Update("settings_current_supply", remaining).Error
	if err != nil {
		return fmt.Errorf("failed to update supply: %w", err)
	}
	return nil
}

func (s *DoseService) loadSubstance(ctx context.Context, userID, substanceID uint) (*domain.Substance, error) {
	var sub domain.Substance
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", substanceID, userID).
		Preload("Doses", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC")
		}).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrSubstanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get substance: %w", err)
	}
	return &sub, nil
}

func (s *DoseService) loadDose(ctx context.Context, userID, doseID uint) (*domain.Dose, *domain.Substance, error) {
	var dose domain.Dose
	err := s.db.WithContext(ctx).First(&dose, doseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.ErrDoseNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get dose: %w", err)
	}

	sub, err := s.loadSubstance(ctx, userID, dose.SubstanceID)
	if err != nil {
		return nil, nil, err
	}
	return &dose, sub, nil
}
