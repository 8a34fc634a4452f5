package services

import (
	"errors"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "ustbills/internal/errors"
	"ustbills/internal/models"
)

// addChecked adds two non-negative amounts, failing instead of wrapping.
func addChecked(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount overflows")
	}
	return a + b, nil
}

// mulChecked multiplies two non-negative amounts, failing instead of wrapping.
func mulChecked(a, b int64) (int64, error) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount overflows")
	}
	return a * b, nil
}

func dbError(err error) error {
	return apperrors.Wrap(apperrors.ErrDatabase, err)
}

// notFound maps gorm's missing-row error to sentinel.
func notFound(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return dbError(err)
}

// forUpdate row-locks what the next query selects until tx ends, so writers
// in other processes sharing the database wait for this transaction.
// SQLite has no row locks and relies on its single writer.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func findUser(db *gorm.DB, identity string) (*models.User, error) {
	var user models.User
	if err := db.Where("identity = ?", identity).First(&user).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func findUSTBill(db *gorm.DB, id string) (*models.USTBill, error) {
	var bill models.USTBill
	if err := db.Where("id = ?", id).First(&bill).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUSTBillNotFound)
	}
	return &bill, nil
}

func findHolding(db *gorm.DB, id string) (*models.Holding, error) {
	var holding models.Holding
	if err := db.Where("id = ?", id).First(&holding).Error; err != nil {
		return nil, notFound(err, apperrors.ErrHoldingNotFound)
	}
	return &holding, nil
}

// loadPlatformConfig reads the singleton config, falling back to the
// built-in defaults before it has been seeded.
func loadPlatformConfig(db *gorm.DB) (*models.PlatformConfig, error) {
	var cfg models.PlatformConfig
	err := db.First(&cfg, models.PlatformConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.DefaultPlatformConfig()
		return &cfg, nil
	}
	if err != nil {
		return nil, dbError(err)
	}
	return &cfg, nil
}

// recordTransaction appends a wallet ledger entry.
func recordTransaction(tx *gorm.DB, entry *models.Transaction) error {
	if err := tx.Create(entry).Error; err != nil {
		return dbError(err)
	}
	return nil
}

// updateUser writes the given profile or balance columns of user.
func updateUser(tx *gorm.DB, user *models.User, fields map[string]interface{}) error {
	if err := tx.Model(user).Updates(fields).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
