package models

import "time"

// BrokerPurchase is an append-only audit record of a purchase settled with an
// external broker.
type BrokerPurchase struct {
	Base
	BrokerTxnID string    `gorm:"uniqueIndex;not null" json:"broker_txn_id"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Price       int64     `gorm:"type:bigint;not null" json:"price"`
	USTBillType string    `gorm:"column:ustbill_type;not null" json:"ustbill_type"`
	RecordedBy  string    `gorm:"not null" json:"recorded_by"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
}
