package models

import "time"

// YieldOption selects how a holding accrues value before maturity.
type YieldOption string

const (
	YieldOptionMaturity YieldOption = "maturity"
	YieldOptionFlexible YieldOption = "flexible"
)

// HoldingStatus represents the lifecycle state of a holding. Transitions only
// move forward from active.
type HoldingStatus string

const (
	HoldingStatusActive    HoldingStatus = "active"
	HoldingStatusSold      HoldingStatus = "sold"
	HoldingStatusMatured   HoldingStatus = "matured"
	HoldingStatusCancelled HoldingStatus = "cancelled"
)

// Holding records one purchase of tokens by a user. It references the user and
// the bill by key only.
type Holding struct {
	Base
	UserIdentity          string        `gorm:"not null;index" json:"user_identity"`
	USTBillID             string        `gorm:"column:ustbill_id;type:uuid;not null;index" json:"ustbill_id"`
	TokensOwned           int64         `gorm:"type:bigint;not null" json:"tokens_owned"`
	PurchasePricePerToken int64         `gorm:"type:bigint;not null" json:"purchase_price_per_token"`
	PurchaseDate          time.Time     `gorm:"not null" json:"purchase_date"`
	YieldOption           YieldOption   `gorm:"not null;default:maturity" json:"yield_option"`
	CurrentValue          int64         `gorm:"type:bigint;not null" json:"current_value"`
	ProjectedYield        int64         `gorm:"type:bigint;not null;default:0" json:"projected_yield"`
	Status                HoldingStatus `gorm:"not null;default:active;index" json:"status"`
	SettledAt             *time.Time    `json:"settled_at,omitempty"`
}

// Principal returns the amount paid for the holding.
func (h *Holding) Principal() int64 {
	return h.TokensOwned * h.PurchasePricePerToken
}
