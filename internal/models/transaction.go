package models

// TransactionType represents the kind of wallet ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit           TransactionType = "deposit"
	TransactionTypeWithdrawal        TransactionType = "withdrawal"
	TransactionTypePurchase          TransactionType = "purchase"
	TransactionTypeFee               TransactionType = "fee"
	TransactionTypeYieldDistribution TransactionType = "yield_distribution"
	TransactionTypeRefund            TransactionType = "refund"
)

// Transaction is an append-only wallet ledger entry. Amount is always
// positive; the type determines its direction.
type Transaction struct {
	Base
	UserIdentity string          `gorm:"not null;index" json:"user_identity"`
	Type         TransactionType `gorm:"not null" json:"type"`
	Amount       int64           `gorm:"type:bigint;not null" json:"amount"`
	BalanceAfter int64           `gorm:"type:bigint;not null" json:"balance_after"`
	USTBillID    *string         `gorm:"column:ustbill_id;type:uuid" json:"ustbill_id,omitempty"`
	HoldingID    *string         `gorm:"type:uuid" json:"holding_id,omitempty"`
	Description  string          `json:"description"`
}
