package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dosewise/dosewise-bot/internal/catalog"
	"github.com/dosewise/dosewise-bot/internal/domain"
	apperrors "github.com/dosewise/dosewise-bot/internal/errors"
)

type SubstanceService struct {
	db *gorm.DB
}

func NewSubstanceService(db *gorm.DB) *SubstanceService {
	return &SubstanceService{db: db}
}

// AddSubstance creates a tracked substance for the user, seeding settings
// from the static catalog when the name matches an entry. The catalog is
// consulted only here; existing records never re-read it.
func (s *SubstanceService) AddSubstance(ctx context.Context, userID uint, name string) (*domain.Substance, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("substance name must not be empty")
	}

	sub := &domain.Substance{
		UserID:   userID,
		Name:     name,
		Category: "Uncategorized",
		Settings: domain.Settings{
			UseRecommendedTiming:      true,
			EnforceDailyLimit:         true,
			EnforceTimingRestrictions: true,
		},
	}

	if entry, ok := catalog.Lookup(name); ok {
		sub.Name = entry.Name
		sub.Category = entry.Category
		sub.Description = entry.Description
		sub.Instructions = entry.Instructions
		sub.Warnings = entry.Warnings
		sub.Settings.DefaultDosageAmount = entry.DefaultDosageAmount
		sub.Settings.DefaultDosageUnit = entry.DefaultDosageUnit
		sub.Settings.MinTimeBetweenDosesHours = entry.MinIntervalHours
		sub.Settings.MaxDailyDoses = entry.MaxDailyDoses
		sub.Settings.UseRecommendedTiming = false
	}

	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create substance: %w", err)
	}
	return sub, nil
}

// ListSubstances returns the user's substances with their dose history,
// doses newest-first.
func (s *SubstanceService) ListSubstances(ctx context.Context, userID uint) ([]domain.Substance, error) {
	var subs []domain.Substance
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Doses", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC")
		}).
		Order("name ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list substances: %w", err)
	}
	return subs, nil
}

// GetSubstance loads one substance with its dose history, scoped to the user.
func (s *SubstanceService) GetSubstance(ctx context.Context, userID, substanceID uint) (*domain.Substance, error) {
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

// UpdateSettings replaces the substance's safety configuration.
func (s *SubstanceService) UpdateSettings(ctx context.Context, userID, substanceID uint, settings domain.Settings) error {
	result := s.db.WithContext(ctx).
		Model(&domain.Substance{}).
		Where("id = ? AND user_id = ?", substanceID, userID).
		Updates(map[string]interface{}{
			"settings_default_dosage_amount":       settings.DefaultDosageAmount,
			"settings_default_dosage_unit":         settings.DefaultDosageUnit,
			"settings_min_time_between_doses_hours": settings.MinTimeBetweenDosesHours,
			"settings_use_recommended_timing":      settings.UseRecommendedTiming,
			"settings_max_daily_doses":             settings.MaxDailyDoses,
			"settings_current_supply":              settings.CurrentSupply,
			"settings_track_supply":                settings.TrackSupply,
			"settings_enforce_daily_limit":         settings.EnforceDailyLimit,
			"settings_enforce_timing_restrictions": settings.EnforceTimingRestrictions,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSubstanceNotFound
	}
	return nil
}

// DeleteSubstance removes a substance and its dose history.
func (s *SubstanceService) DeleteSubstance(ctx context.Context, userID, substanceID uint) error {
	sub, err := s.GetSubstance(ctx, userID, substanceID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Where("substance_id = ?", sub.ID).Delete(&domain.Dose{}).Error; err != nil {
		return fmt.Errorf("failed to delete doses: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&domain.Substance{}, sub.ID).Error; err != nil {
		return fmt.Errorf("failed to delete substance: %w", err)
	}
	return nil
}
