package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/models"
)

// minRefreshIntervalSeconds bounds how often the rate feed may be polled.
const minRefreshIntervalSeconds = 60

// platformConfigService handles the platform configuration singleton.
type platformConfigService struct {
	store *database.Store
}

// NewPlatformConfigService creates a new PlatformConfigServicer.
func NewPlatformConfigService(store *database.Store) PlatformConfigServicer {
	return &platformConfigService{store: store}
}

// GetPlatformConfig returns the current configuration.
func (s *platformConfigService) GetPlatformConfig() (*models.PlatformConfig, error) {
	return loadPlatformConfig(s.store.DB())
}

// UpdatePlatformConfig validates and replaces every parameter. The change is
// visible to the next operation that reads the config.
func (s *platformConfigService) UpdatePlatformConfig(cfg models.PlatformConfig) (*models.PlatformConfig, error) {
	if err := validatePlatformConfig(&cfg); err != nil {
		return nil, err
	}
	cfg.ID = models.PlatformConfigID

	err := s.store.Atomic(func(tx *gorm.DB) error {
		if err := tx.Save(&cfg).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureDefaults seeds the singleton row unless it already exists.
func (s *platformConfigService) EnsureDefaults(defaults models.PlatformConfig) error {
	if err := validatePlatformConfig(&defaults); err != nil {
		return err
	}
	defaults.ID = models.PlatformConfigID

	return s.store.Atomic(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
}

func validatePlatformConfig(cfg *models.PlatformConfig) error {
	switch {
	case cfg.MinimumInvestment < 1:
		return apperrors.WithDetail(apperrors.ErrValidation, "minimum_investment must be at least 1")
	case cfg.MaximumInvestment < cfg.MinimumInvestment:
		return apperrors.WithDetail(apperrors.ErrValidation, "maximum_investment must not be below minimum_investment")
	case cfg.PlatformFeePercentage.IsNegative() || cfg.PlatformFeePercentage.GreaterThan(decimalOne):
		return apperrors.WithDetail(apperrors.ErrValidation, "platform_fee_percentage must be between 0 and 1")
	case cfg.KYCExpiryDays < 1:
		return apperrors.WithDetail(apperrors.ErrValidation, "kyc_expiry_days must be at least 1")
	case cfg.YieldDistributionFrequency < 1:
		return apperrors.WithDetail(apperrors.ErrValidation, "yield_distribution_frequency must be at least 1")
	case cfg.TreasuryAPIRefreshInterval < minRefreshIntervalSeconds:
		return apperrors.WithDetail(apperrors.ErrValidation,
			fmt.Sprintf("treasury_api_refresh_interval must be at least %d seconds", minRefreshIntervalSeconds))
	}
	return nil
}
