package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreasuryRate is one record of the external reference-rate cache. The cache
// is only ever replaced as a whole.
type TreasuryRate struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	Position     int             `gorm:"not null;index" json:"-"`
	CUSIP        string          `gorm:"column:cusip;size:9;not null;index" json:"cusip"`
	Rate         decimal.Decimal `gorm:"type:numeric(12,6);not null" json:"rate"`
	RecordDate   string          `gorm:"not null" json:"record_date"`
	RateDate     string          `gorm:"not null" json:"rate_date"`
	SecurityType string          `json:"security_type"`
	SecurityDesc string          `json:"security_desc"`
}

// RateSnapshotID is the primary key of the singleton snapshot row.
const RateSnapshotID = 1

// RateSnapshot describes the rate cache currently committed. Version grows by
// one on every successful ingestion.
type RateSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Version     int64     `gorm:"type:bigint;not null;default:0" json:"version"`
	Fingerprint string    `gorm:"size:64" json:"fingerprint"`
	RecordCount int       `gorm:"not null;default:0" json:"record_count"`
	FetchedAt   time.Time `json:"fetched_at"`
}
