package models

import "time"

// KYCStatus represents where an identity is in the verification lifecycle.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
	KYCStatusRejected KYCStatus = "rejected"
	KYCStatusExpired  KYCStatus = "expired"
)

// User is the ledger profile of an external identity.
type User struct {
	Base
	Identity         string     `gorm:"uniqueIndex;not null" json:"identity"`
	Email            string     `gorm:"not null" json:"email"`
	Country          string     `gorm:"size:3;not null" json:"country"`
	Phone            *string    `json:"phone,omitempty"`
	KYCStatus        KYCStatus  `gorm:"not null;default:pending" json:"kyc_status"`
	KYCVerifiedAt    *time.Time `json:"kyc_verified_at,omitempty"`
	WalletBalance    int64      `gorm:"type:bigint;not null;default:0" json:"wallet_balance"`
	TotalInvested    int64      `gorm:"type:bigint;not null;default:0" json:"total_invested"`
	TotalYieldEarned int64      `gorm:"type:bigint;not null;default:0" json:"total_yield_earned"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
}
