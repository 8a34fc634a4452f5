package models

import "time"

// TradingMetricsID is the primary key of the singleton metrics row.
const TradingMetricsID = 1

// TradingMetrics aggregates executed purchases. Prices are per token.
type TradingMetrics struct {
	ID                uint       `gorm:"primaryKey" json:"-"`
	TotalTransactions int64      `gorm:"type:bigint;not null;default:0" json:"total_transactions"`
	TotalVolume       int64      `gorm:"type:bigint;not null;default:0" json:"total_volume"`
	AveragePrice      int64      `gorm:"type:bigint;not null;default:0" json:"average_price"`
	HighestPrice      int64      `gorm:"type:bigint;not null;default:0" json:"highest_price"`
	LowestPrice       int64      `gorm:"type:bigint;not null;default:0" json:"lowest_price"`
	LastUpdated       *time.Time `json:"last_updated"`
}

// TableName pins the singleton table name.
func (TradingMetrics) TableName() string { return "trading_metrics" }
