package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/models"
)

// brokerService keeps the append-only record of broker-settled purchases.
type brokerService struct {
	store *database.Store
	now   func() time.Time
}

// NewBrokerService creates a new BrokerServicer.
func NewBrokerService(store *database.Store) BrokerServicer {
	return &brokerService{store: store, now: time.Now}
}

// AddBrokerPurchaseRecord appends a verified purchase. Records are never
// updated or deleted.
func (s *brokerService) AddBrokerPurchaseRecord(actor string, input BrokerPurchaseInput) (*models.BrokerPurchase, error) {
	input.BrokerTxnID = strings.TrimSpace(input.BrokerTxnID)
	input.USTBillType = strings.TrimSpace(input.USTBillType)
	switch {
	case input.Amount <= 0:
		return nil, apperrors.WithDetail(apperrors.ErrValidation, "amount must be greater than zero")
	case input.Price <= 0:
		return nil, apperrors.WithDetail(apperrors.ErrValidation, "price must be greater than zero")
	case input.BrokerTxnID == "":
		return nil, apperrors.WithDetail(apperrors.ErrValidation, "broker_txn_id is required")
	case input.USTBillType == "":
		return nil, apperrors.WithDetail(apperrors.ErrValidation, "ustbill_type is required")
	}

	record := &models.BrokerPurchase{
		BrokerTxnID: input.BrokerTxnID,
		Amount:      input.Amount,
		Price:       input.Price,
		USTBillType: input.USTBillType,
		RecordedBy:  actor,
	}
	err := s.store.Atomic(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BrokerPurchase{}).Where("broker_txn_id = ?", record.BrokerTxnID).Count(&count).Error; err != nil {
			return dbError(err)
		}
		if count > 0 {
			return apperrors.WithDetail(apperrors.ErrValidation, "broker_txn_id has already been recorded")
		}
		record.Timestamp = s.now().UTC()
		if err := tx.Create(record).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetAllVerifiedBrokerPurchases lists every record in insertion order.
func (s *brokerService) GetAllVerifiedBrokerPurchases() ([]models.BrokerPurchase, error) {
	records := []models.BrokerPurchase{}
	if err := s.store.DB().Order("id ASC").Find(&records).Error; err != nil {
		return nil, dbError(err)
	}
	return records, nil
}
