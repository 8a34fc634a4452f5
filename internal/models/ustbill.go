package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// USTBillStatus represents the lifecycle state of an instrument.
type USTBillStatus string

const (
	USTBillStatusActive    USTBillStatus = "active"
	USTBillStatusSoldOut   USTBillStatus = "sold_out"
	USTBillStatusMatured   USTBillStatus = "matured"
	USTBillStatusCancelled USTBillStatus = "cancelled"
)

// USTBill is a tokenized treasury bill with a fixed token supply.
// FaceValue and PurchasePrice are per-token amounts in whole currency units.
type USTBill struct {
	Base
	CUSIP         string              `gorm:"column:cusip;uniqueIndex;size:9;not null" json:"cusip"`
	Issuer        string              `gorm:"not null" json:"issuer"`
	BillType      string              `gorm:"not null" json:"bill_type"`
	FaceValue     int64               `gorm:"type:bigint;not null" json:"face_value"`
	PurchasePrice int64               `gorm:"type:bigint;not null" json:"purchase_price"`
	TotalTokens   int64               `gorm:"type:bigint;not null" json:"total_tokens"`
	TokensSold    int64               `gorm:"type:bigint;not null;default:0" json:"tokens_sold"`
	AnnualYield   decimal.Decimal     `gorm:"type:numeric(10,6);not null" json:"annual_yield"`
	MarketRate    decimal.NullDecimal `gorm:"type:numeric(10,6)" json:"market_rate"`
	MarketDataAt  *time.Time          `json:"market_data_at,omitempty"`
	MaturityDate  time.Time           `gorm:"not null" json:"maturity_date"`
	Status        USTBillStatus       `gorm:"not null;default:active;index" json:"status"`
}

// TableName pins the table name.
func (USTBill) TableName() string { return "ust_bills" }

// Available returns the number of unsold tokens.
func (b *USTBill) Available() int64 {
	return b.TotalTokens - b.TokensSold
}

// HasMatured reports whether the bill's maturity date has been reached at now.
func (b *USTBill) HasMatured(now time.Time) bool {
	return !now.Before(b.MaturityDate)
}
