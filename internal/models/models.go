// Package models defines the persisted ledger entities.
package models

// All lists every persisted model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&USTBill{},
		&Holding{},
		&Transaction{},
		&PlatformConfig{},
		&TradingMetrics{},
		&TreasuryRate{},
		&RateSnapshot{},
		&BrokerPurchase{},
		&AdminIdentity{},
		&AuditLog{},
	}
}
