package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ustbills/internal/models"
	"ustbills/internal/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NextCUSIP returns a valid, previously unused CUSIP.
func NextCUSIP() string {
	base := fmt.Sprintf("9127%04d", nextID()%10000)
	check, _ := validator.CUSIPCheckDigit(base)
	return base + string(check)
}

// CreateTestUser creates an active user with pending KYC and a unique identity.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	user := &models.User{
		Identity:  fmt.Sprintf("identity-%d", n),
		Email:     fmt.Sprintf("user%d@test.com", n),
		Country:   "US",
		KYCStatus: models.KYCStatusPending,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateVerifiedUser creates a KYC-verified user holding the given balance.
func CreateVerifiedUser(t *testing.T, db *gorm.DB, balance int64) *models.User {
	t.Helper()
	user := CreateTestUser(t, db)
	now := time.Now()
	if err := db.Model(user).Updates(map[string]interface{}{
		"kyc_status":      models.KYCStatusVerified,
		"kyc_verified_at": now,
		"wallet_balance":  balance,
	}).Error; err != nil {
		t.Fatalf("failed to verify test user: %v", err)
	}
	user.KYCStatus = models.KYCStatusVerified
	user.KYCVerifiedAt = &now
	user.WalletBalance = balance
	return user
}

// CreateTestUSTBill creates an active bill maturing in 90 days with a 5% yield.
func CreateTestUSTBill(t *testing.T, db *gorm.DB, totalTokens, purchasePrice int64) *models.USTBill {
	t.Helper()
	return CreateTestUSTBillMaturing(t, db, totalTokens, purchasePrice, time.Now().Add(90*24*time.Hour))
}

// CreateTestUSTBillMaturing creates an active bill with the given maturity date.
// Face value is purchase price plus 2%.
func CreateTestUSTBillMaturing(t *testing.T, db *gorm.DB, totalTokens, purchasePrice int64, maturity time.Time) *models.USTBill {
	t.Helper()
	bill := &models.USTBill{
		CUSIP:         NextCUSIP(),
		Issuer:        "US Treasury",
		BillType:      "13-week",
		FaceValue:     purchasePrice + purchasePrice/50,
		PurchasePrice: purchasePrice,
		TotalTokens:   totalTokens,
		AnnualYield:   decimal.RequireFromString("0.05"),
		MaturityDate:  maturity,
		Status:        models.USTBillStatusActive,
	}
	if err := db.Create(bill).Error; err != nil {
		t.Fatalf("failed to create test ustbill: %v", err)
	}
	return bill
}
