package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/logger"
	"ustbills/internal/models"
)

// holdingService handles token purchases and holding valuation.
type holdingService struct {
	store *database.Store
	now   func() time.Time
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(store *database.Store) HoldingServicer {
	return &holdingService{store: store, now: time.Now}
}

// BuyUSTBillTokens buys tokens of a bill for identity at the bill's issuance
// price. Every check runs before the first write, and all writes commit
// together.
func (s *holdingService) BuyUSTBillTokens(identity, ustbillID string, tokens int64, option models.YieldOption) (*models.Holding, error) {
	if option == "" {
		option = models.YieldOptionMaturity
	}
	if option != models.YieldOptionMaturity && option != models.YieldOptionFlexible {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidHolding, "yield_option must be maturity or flexible")
	}

	var holding *models.Holding
	var cost, fee int64
	err := s.store.Atomic(func(tx *gorm.DB) error {
		now := s.now()

		user, err := findUser(forUpdate(tx), identity)
		if err != nil {
			return err
		}
		cfg, err := loadPlatformConfig(tx)
		if err != nil {
			return err
		}
		if err := checkEligible(user, cfg, now); err != nil {
			return err
		}

		bill, err := findUSTBill(forUpdate(tx), ustbillID)
		if err != nil {
			return err
		}
		if err := checkPurchasable(bill, now); err != nil {
			return err
		}
		if tokens <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidTokenAmount, "tokens must be greater than zero")
		}
		if tokens > bill.Available() {
			return apperrors.ErrInsufficientTokens
		}
		if cost, err = mulChecked(tokens, bill.PurchasePrice); err != nil {
			return err
		}
		if cost < cfg.MinimumInvestment {
			return apperrors.ErrMinimumInvestmentNotMet
		}
		if cost > cfg.MaximumInvestment {
			return apperrors.ErrMaximumInvestmentExceeded
		}
		if cost > user.WalletBalance {
			return apperrors.ErrInsufficientFunds
		}
		invested, err := addChecked(user.TotalInvested, cost)
		if err != nil {
			return err
		}
		fee = platformFee(cost, cfg.PlatformFeePercentage)

		balance := user.WalletBalance - cost
		if err := updateUser(tx, user, map[string]interface{}{
			"wallet_balance": balance,
			"total_invested": invested,
		}); err != nil {
			return err
		}

		sold := bill.TokensSold + tokens
		billFields := map[string]interface{}{"tokens_sold": sold}
		if sold == bill.TotalTokens {
			billFields["status"] = models.USTBillStatusSoldOut
		}
		if err := tx.Model(bill).Updates(billFields).Error; err != nil {
			return dbError(err)
		}

		holding = &models.Holding{
			UserIdentity:          identity,
			USTBillID:             bill.ID,
			TokensOwned:           tokens,
			PurchasePricePerToken: bill.PurchasePrice,
			PurchaseDate:          now,
			YieldOption:           option,
			CurrentValue:          cost,
			Status:                models.HoldingStatusActive,
		}
		if projected := maturityValue(holding, bill) - cost; projected > 0 {
			holding.ProjectedYield = projected
		}
		if err := tx.Create(holding).Error; err != nil {
			return dbError(err)
		}

		if err := recordTransaction(tx, &models.Transaction{
			UserIdentity: identity,
			Type:         models.TransactionTypePurchase,
			Amount:       cost,
			BalanceAfter: balance,
			USTBillID:    stringPtr(bill.ID),
			HoldingID:    stringPtr(holding.ID),
			Description:  fmt.Sprintf("Purchase of %d tokens of %s", tokens, bill.CUSIP),
		}); err != nil {
			return err
		}
		if fee > 0 {
			if err := recordTransaction(tx, &models.Transaction{
				UserIdentity: identity,
				Type:         models.TransactionTypeFee,
				Amount:       fee,
				BalanceAfter: balance,
				USTBillID:    stringPtr(bill.ID),
				HoldingID:    stringPtr(holding.ID),
				Description:  "Platform fee included in purchase price",
			}); err != nil {
				return err
			}
		}

		return recordPurchaseMetrics(tx, cost, bill.PurchasePrice, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("ustbill tokens purchased",
		"identity", identity,
		"ustbill_id", ustbillID,
		"tokens", tokens,
		"cost", cost,
		"fee", fee,
	)
	return holding, nil
}

// checkPurchasable rejects bills that are closed to new purchases.
func checkPurchasable(bill *models.USTBill, now time.Time) error {
	switch {
	case bill.Status == models.USTBillStatusCancelled:
		return apperrors.ErrUSTBillCancelled
	case bill.Status == models.USTBillStatusMatured || bill.HasMatured(now):
		return apperrors.ErrUSTBillMatured
	case bill.Status == models.USTBillStatusSoldOut:
		return apperrors.ErrUSTBillSoldOut
	}
	return nil
}

// platformFee is the platform's share of cost, rounded down.
func platformFee(cost int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(cost).Mul(pct).Floor().IntPart()
}

// GetUserHoldings lists identity's holdings in purchase order.
func (s *holdingService) GetUserHoldings(identity string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.store.DB().Where("user_identity = ?", identity).Order("id ASC").Find(&holdings).Error; err != nil {
		return nil, dbError(err)
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	return holdings, nil
}

// GetHolding returns a holding by id.
func (s *holdingService) GetHolding(id string) (*models.Holding, error) {
	return findHolding(s.store.DB(), id)
}

// CalculateCurrentValue values a holding at the current time.
func (s *holdingService) CalculateCurrentValue(holdingID string) (int64, error) {
	holding, bill, err := s.holdingWithBill(holdingID)
	if err != nil {
		return 0, err
	}
	return currentValue(holding, bill, s.now()), nil
}

// CalculateMaturityYield projects a holding's value at maturity.
func (s *holdingService) CalculateMaturityYield(holdingID string) (int64, error) {
	holding, bill, err := s.holdingWithBill(holdingID)
	if err != nil {
		return 0, err
	}
	return maturityValue(holding, bill), nil
}

// GetYieldProjection describes the remaining return of an active holding.
func (s *holdingService) GetYieldProjection(holdingID string) (*YieldProjection, error) {
	holding, bill, err := s.holdingWithBill(holdingID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch holding.Status {
	case models.HoldingStatusSold:
		return nil, apperrors.ErrHoldingAlreadySold
	case models.HoldingStatusCancelled:
		return nil, apperrors.ErrUSTBillCancelled
	case models.HoldingStatusMatured:
		return nil, apperrors.ErrHoldingMatured
	}
	if bill.HasMatured(now) {
		return nil, apperrors.ErrMaturityDatePassed
	}

	current := valueAt(holding, bill, now)
	projected := maturityValue(holding, bill) - current
	if projected < 0 {
		projected = 0
	}
	return &YieldProjection{
		HoldingID:       holding.ID,
		DaysToMaturity:  wholeDays(now, bill.MaturityDate),
		AnnualYieldRate: bill.AnnualYield,
		CurrentValue:    current,
		ProjectedYield:  projected,
		YieldPercentage: yieldPercentage(projected, current),
	}, nil
}

func (s *holdingService) holdingWithBill(holdingID string) (*models.Holding, *models.USTBill, error) {
	db := s.store.DB()
	holding, err := findHolding(db, holdingID)
	if err != nil {
		return nil, nil, err
	}
	bill, err := findUSTBill(db, holding.USTBillID)
	if err != nil {
		return nil, nil, err
	}
	return holding, bill, nil
}
