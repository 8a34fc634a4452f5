package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ustbills/internal/models"
	"ustbills/internal/pagination"
)

// PlatformConfigServicer defines the contract for the platform configuration singleton.
type PlatformConfigServicer interface {
	GetPlatformConfig() (*models.PlatformConfig, error)
	UpdatePlatformConfig(cfg models.PlatformConfig) (*models.PlatformConfig, error)
	EnsureDefaults(defaults models.PlatformConfig) error
}

// RegisterUserInput holds the profile fields supplied at registration.
type RegisterUserInput struct {
	Email   string
	Country string
	Phone   *string
}

// UserServicer defines the contract for user profiles, wallets and KYC state.
type UserServicer interface {
	RegisterUser(identity string, input RegisterUserInput) (*models.User, error)
	GetUserProfile(identity string) (*models.User, error)
	UpdateEmail(identity, email string) (*models.User, error)
	DepositFunds(identity string, amount int64) (int64, error)
	WithdrawFunds(identity string, amount int64) (int64, error)
	UpdateKYCStatus(identity string, status models.KYCStatus) (*models.User, error)
	SetUserActive(identity string, active bool) (*models.User, error)
	IsEligible(identity string) (bool, error)
	GetUserTransactions(identity string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// CreateUSTBillInput holds the fields of a new instrument.
type CreateUSTBillInput struct {
	CUSIP         string
	Issuer        string
	BillType      string
	FaceValue     int64
	PurchasePrice int64
	TotalTokens   int64
	AnnualYield   decimal.Decimal
	MaturityDate  time.Time
}

// SweepResult counts what a market data sweep changed.
type SweepResult struct {
	Matured         int   `json:"matured"`
	SoldOut         int   `json:"sold_out"`
	SettledHoldings int   `json:"settled_holdings"`
	Distributed     int64 `json:"distributed"`
}

// USTBillServicer defines the contract for the instrument registry.
type USTBillServicer interface {
	CreateUSTBill(input CreateUSTBillInput) (*models.USTBill, error)
	GetUSTBill(id string) (*models.USTBill, error)
	GetActiveUSTBills() ([]models.USTBill, error)
	GetUSTBillsPaginated(page pagination.PageRequest, includeAll bool) (*pagination.PageResponse[models.USTBill], error)
	GetUSTBillAvailability(id string) (int64, error)
	CalculatePurchaseCost(id string, tokens int64) (int64, error)
	CancelUSTBill(id string) (*models.USTBill, error)
	UpdateMarketData() (*SweepResult, error)
}

// YieldProjection describes the expected return of an active holding.
type YieldProjection struct {
	HoldingID       string          `json:"holding_id"`
	DaysToMaturity  int64           `json:"days_to_maturity"`
	AnnualYieldRate decimal.Decimal `json:"annual_yield_rate"`
	CurrentValue    int64           `json:"current_value"`
	ProjectedYield  int64           `json:"projected_yield"`
	YieldPercentage decimal.Decimal `json:"yield_percentage"`
}

// HoldingServicer defines the contract for purchases and holding valuation.
type HoldingServicer interface {
	BuyUSTBillTokens(identity, ustbillID string, tokens int64, option models.YieldOption) (*models.Holding, error)
	GetUserHoldings(identity string) ([]models.Holding, error)
	GetHolding(id string) (*models.Holding, error)
	CalculateCurrentValue(holdingID string) (int64, error)
	CalculateMaturityYield(holdingID string) (int64, error)
	GetYieldProjection(holdingID string) (*YieldProjection, error)
}

// StorageStats reports row counts per ledger table.
type StorageStats struct {
	Users           int64 `json:"users"`
	USTBills        int64 `json:"ustbills"`
	Holdings        int64 `json:"holdings"`
	Transactions    int64 `json:"transactions"`
	TreasuryRates   int64 `json:"treasury_rates"`
	BrokerPurchases int64 `json:"broker_purchases"`
	AuditLogs       int64 `json:"audit_logs"`
}

// MetricsServicer defines the contract for read-side statistics.
type MetricsServicer interface {
	GetTradingMetrics() (*models.TradingMetrics, error)
	GetStorageStats() (*StorageStats, error)
}

// RateServicer defines the contract for treasury rate ingestion.
type RateServicer interface {
	FetchTreasuryRates(ctx context.Context) ([]models.TreasuryRate, error)
	GetTreasuryRates(ctx context.Context) ([]models.TreasuryRate, error)
}

// BrokerPurchaseInput holds the fields of an externally settled purchase.
type BrokerPurchaseInput struct {
	BrokerTxnID string
	Amount      int64
	Price       int64
	USTBillType string
}

// BrokerServicer defines the contract for the append-only broker purchase ledger.
type BrokerServicer interface {
	AddBrokerPurchaseRecord(actor string, input BrokerPurchaseInput) (*models.BrokerPurchase, error)
	GetAllVerifiedBrokerPurchases() ([]models.BrokerPurchase, error)
}

// AdminServicer is the privileged capability policy.
type AdminServicer interface {
	IsAdmin(identity string) (bool, error)
	GrantAdmin(actor, identity string) (*models.AdminIdentity, error)
	ListAdmins() ([]string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
