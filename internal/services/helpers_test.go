package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"ustbills/internal/models"
)

const day = 24 * time.Hour

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// createHolding inserts an active holding purchased at purchaseDate.
func createHolding(t *testing.T, db *gorm.DB, user *models.User, bill *models.USTBill, tokens int64, option models.YieldOption, purchaseDate time.Time) *models.Holding {
	t.Helper()
	h := &models.Holding{
		UserIdentity:          user.Identity,
		USTBillID:             bill.ID,
		TokensOwned:           tokens,
		PurchasePricePerToken: bill.PurchasePrice,
		PurchaseDate:          purchaseDate,
		YieldOption:           option,
		CurrentValue:          tokens * bill.PurchasePrice,
		Status:                models.HoldingStatusActive,
	}
	if err := db.Create(h).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	if err := db.Model(bill).Update("tokens_sold", bill.TokensSold+tokens).Error; err != nil {
		t.Fatalf("failed to update tokens sold: %v", err)
	}
	bill.TokensSold += tokens
	return h
}

func reloadUser(t *testing.T, db *gorm.DB, identity string) *models.User {
	t.Helper()
	var user models.User
	if err := db.Where("identity = ?", identity).First(&user).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &user
}

func reloadBill(t *testing.T, db *gorm.DB, id string) *models.USTBill {
	t.Helper()
	var bill models.USTBill
	if err := db.Where("id = ?", id).First(&bill).Error; err != nil {
		t.Fatalf("failed to reload bill: %v", err)
	}
	return &bill
}

func countTransactions(t *testing.T, db *gorm.DB, identity string, txType models.TransactionType) int64 {
	t.Helper()
	var count int64
	db.Model(&models.Transaction{}).Where("user_identity = ? AND type = ?", identity, txType).Count(&count)
	return count
}
