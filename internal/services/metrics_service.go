package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"ustbills/internal/database"
	"ustbills/internal/models"
)

// metricsService serves trading metrics and storage statistics.
type metricsService struct {
	store *database.Store
}

// NewMetricsService creates a new MetricsServicer.
func NewMetricsService(store *database.Store) MetricsServicer {
	return &metricsService{store: store}
}

// GetTradingMetrics returns the aggregate over every executed purchase.
func (s *metricsService) GetTradingMetrics() (*models.TradingMetrics, error) {
	var m models.TradingMetrics
	err := s.store.DB().First(&m, models.TradingMetricsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.TradingMetrics{ID: models.TradingMetricsID}, nil
	}
	if err != nil {
		return nil, dbError(err)
	}
	return &m, nil
}

// GetStorageStats counts the rows of every ledger table.
func (s *metricsService) GetStorageStats() (*StorageStats, error) {
	db := s.store.DB()
	stats := &StorageStats{}
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &stats.Users},
		{&models.USTBill{}, &stats.USTBills},
		{&models.Holding{}, &stats.Holdings},
		{&models.Transaction{}, &stats.Transactions},
		{&models.TreasuryRate{}, &stats.TreasuryRates},
		{&models.BrokerPurchase{}, &stats.BrokerPurchases},
		{&models.AuditLog{}, &stats.AuditLogs},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, dbError(err)
		}
	}
	return stats, nil
}

// recordPurchaseMetrics folds one purchase into the singleton metrics row.
// Average price is total volume over transaction count, rounded down.
func recordPurchaseMetrics(tx *gorm.DB, cost, price int64, now time.Time) error {
	m := models.TradingMetrics{ID: models.TradingMetricsID}
	if err := tx.FirstOrCreate(&m, models.TradingMetrics{ID: models.TradingMetricsID}).Error; err != nil {
		return dbError(err)
	}

	volume, err := addChecked(m.TotalVolume, cost)
	if err != nil {
		return err
	}
	m.TotalTransactions++
	m.TotalVolume = volume
	m.AveragePrice = m.TotalVolume / m.TotalTransactions
	if price > m.HighestPrice {
		m.HighestPrice = price
	}
	if m.TotalTransactions == 1 || price < m.LowestPrice {
		m.LowestPrice = price
	}
	m.LastUpdated = &now

	if err := tx.Save(&m).Error; err != nil {
		return dbError(err)
	}
	return nil
}
