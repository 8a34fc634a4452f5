package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformConfigID is the primary key of the singleton configuration row.
const PlatformConfigID = 1

// PlatformConfig holds the process-wide trading parameters.
type PlatformConfig struct {
	ID                         uint            `gorm:"primaryKey" json:"-"`
	MinimumInvestment          int64           `gorm:"type:bigint;not null" json:"minimum_investment"`
	MaximumInvestment          int64           `gorm:"type:bigint;not null" json:"maximum_investment"`
	PlatformFeePercentage      decimal.Decimal `gorm:"type:numeric(10,6);not null" json:"platform_fee_percentage"`
	KYCExpiryDays              int             `gorm:"not null" json:"kyc_expiry_days"`
	YieldDistributionFrequency int             `gorm:"not null" json:"yield_distribution_frequency"`
	TreasuryAPIRefreshInterval int             `gorm:"not null" json:"treasury_api_refresh_interval"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// TableName pins the singleton table name.
func (PlatformConfig) TableName() string { return "platform_config" }

// DefaultPlatformConfig returns the parameters used until the singleton row
// has been seeded.
func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		ID:                         PlatformConfigID,
		MinimumInvestment:          1,
		MaximumInvestment:          10000,
		PlatformFeePercentage:      decimal.New(5, -3),
		KYCExpiryDays:              365,
		YieldDistributionFrequency: 1,
		TreasuryAPIRefreshInterval: 3600,
	}
}
