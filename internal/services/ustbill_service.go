package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/logger"
	"ustbills/internal/models"
	"ustbills/internal/pagination"
	"ustbills/internal/validator"
)

// maxMaturityHorizon is the furthest out a new bill may mature.
const maxMaturityHorizon = 5 * 365 * 24 * time.Hour

// ustbillService handles the instrument registry.
type ustbillService struct {
	store *database.Store
	now   func() time.Time
}

// NewUSTBillService creates a new USTBillServicer.
func NewUSTBillService(store *database.Store) USTBillServicer {
	return &ustbillService{store: store, now: time.Now}
}

// CreateUSTBill issues a new instrument with no tokens sold.
func (s *ustbillService) CreateUSTBill(input CreateUSTBillInput) (*models.USTBill, error) {
	input.CUSIP = strings.ToUpper(strings.TrimSpace(input.CUSIP))
	input.Issuer = strings.TrimSpace(input.Issuer)
	input.BillType = strings.TrimSpace(input.BillType)
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	bill := &models.USTBill{
		CUSIP:         input.CUSIP,
		Issuer:        input.Issuer,
		BillType:      input.BillType,
		FaceValue:     input.FaceValue,
		PurchasePrice: input.PurchasePrice,
		TotalTokens:   input.TotalTokens,
		AnnualYield:   input.AnnualYield,
		MaturityDate:  input.MaturityDate.UTC(),
		Status:        models.USTBillStatusActive,
	}

	err := s.store.Atomic(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.USTBill{}).Where("cusip = ?", bill.CUSIP).Count(&count).Error; err != nil {
			return dbError(err)
		}
		if count > 0 {
			return apperrors.ErrUSTBillAlreadyExists
		}
		if err := tx.Create(bill).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("ustbill created", "id", bill.ID, "cusip", bill.CUSIP, "total_tokens", bill.TotalTokens)
	return bill, nil
}

func (s *ustbillService) validateCreate(input CreateUSTBillInput) error {
	if !validator.ValidCUSIP(input.CUSIP) {
		return apperrors.ErrInvalidCUSIP
	}
	if input.Issuer == "" || input.BillType == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidUSTBillData, "issuer and bill_type are required")
	}
	if input.TotalTokens <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidTokenAmount, "total_tokens must be greater than zero")
	}
	if input.FaceValue <= 0 || input.PurchasePrice <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidUSTBillData, "face_value and purchase_price must be greater than zero")
	}
	if _, err := mulChecked(input.TotalTokens, input.FaceValue); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidUSTBillData, "total face value overflows")
	}
	if _, err := mulChecked(input.TotalTokens, input.PurchasePrice); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidUSTBillData, "total purchase value overflows")
	}
	if input.AnnualYield.IsNegative() || input.AnnualYield.GreaterThan(decimalOne) {
		return apperrors.WithMessage(apperrors.ErrInvalidYieldRate, "annual_yield must be between 0 and 1")
	}
	now := s.now()
	if !input.MaturityDate.After(now) {
		return apperrors.WithMessage(apperrors.ErrInvalidDate, "maturity_date must be in the future")
	}
	if input.MaturityDate.After(now.Add(maxMaturityHorizon)) {
		return apperrors.WithMessage(apperrors.ErrInvalidDate, "maturity_date must be within five years")
	}
	return nil
}

// GetUSTBill returns a bill by id.
func (s *ustbillService) GetUSTBill(id string) (*models.USTBill, error) {
	return findUSTBill(s.store.DB(), id)
}

// GetActiveUSTBills lists bills open for purchase in creation order.
func (s *ustbillService) GetActiveUSTBills() ([]models.USTBill, error) {
	var bills []models.USTBill
	if err := s.store.DB().Where("status = ?", models.USTBillStatusActive).Order("id ASC").Find(&bills).Error; err != nil {
		return nil, dbError(err)
	}
	if bills == nil {
		bills = []models.USTBill{}
	}
	return bills, nil
}

// GetUSTBillsPaginated pages through active bills, or every bill when
// includeAll is set, in creation order. Unusable page values give an empty
// page rather than an error.
func (s *ustbillService) GetUSTBillsPaginated(page pagination.PageRequest, includeAll bool) (*pagination.PageResponse[models.USTBill], error) {
	base := s.store.DB().Model(&models.USTBill{})
	if !includeAll {
		base = base.Where("status = ?", models.USTBillStatusActive)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, dbError(err)
	}

	p, perPage := page.Values()
	var bills []models.USTBill
	if page.InRange(total) {
		if err := base.Scopes(pagination.Paginate(page)).Order("id ASC").Find(&bills).Error; err != nil {
			return nil, dbError(err)
		}
	}
	resp := pagination.NewPageResponse(bills, p, perPage, total)
	return &resp, nil
}

// GetUSTBillAvailability returns the number of unsold tokens.
func (s *ustbillService) GetUSTBillAvailability(id string) (int64, error) {
	bill, err := findUSTBill(s.store.DB(), id)
	if err != nil {
		return 0, err
	}
	return bill.Available(), nil
}

// CalculatePurchaseCost quotes tokens at the bill's issuance price.
func (s *ustbillService) CalculatePurchaseCost(id string, tokens int64) (int64, error) {
	if tokens <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidTokenAmount, "tokens must be greater than zero")
	}
	bill, err := findUSTBill(s.store.DB(), id)
	if err != nil {
		return 0, err
	}
	return mulChecked(tokens, bill.PurchasePrice)
}

// CancelUSTBill withdraws a bill. Every active holding is cancelled and its
// principal refunded in the same transaction.
func (s *ustbillService) CancelUSTBill(id string) (*models.USTBill, error) {
	var bill *models.USTBill
	var refunded int
	err := s.store.Atomic(func(tx *gorm.DB) error {
		var err error
		if bill, err = findUSTBill(forUpdate(tx), id); err != nil {
			return err
		}
		switch bill.Status {
		case models.USTBillStatusCancelled:
			return apperrors.ErrUSTBillCancelled
		case models.USTBillStatusMatured:
			return apperrors.ErrUSTBillMatured
		}

		holdings, err := activeHoldings(tx, bill.ID)
		if err != nil {
			return err
		}
		now := s.now()
		for i := range holdings {
			if err := refundHolding(tx, &holdings[i], now); err != nil {
				return err
			}
		}
		refunded = len(holdings)

		bill.Status = models.USTBillStatusCancelled
		if err := tx.Model(bill).Update("status", bill.Status).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("ustbill cancelled", "id", bill.ID, "refunded_holdings", refunded)
	return bill, nil
}

// UpdateMarketData sweeps every open bill against the clock: bills past
// maturity become matured, fully subscribed ones become sold out, and active
// holdings of matured bills are settled. Running it twice changes nothing
// the second time.
func (s *ustbillService) UpdateMarketData() (*SweepResult, error) {
	result := &SweepResult{}
	err := s.store.Atomic(func(tx *gorm.DB) error {
		now := s.now()

		var open []models.USTBill
		if err := forUpdate(tx).Where("status IN ?", []models.USTBillStatus{models.USTBillStatusActive, models.USTBillStatusSoldOut}).
			Order("id ASC").Find(&open).Error; err != nil {
			return dbError(err)
		}
		for i := range open {
			bill := &open[i]
			next := bill.Status
			switch {
			case bill.HasMatured(now):
				next = models.USTBillStatusMatured
				result.Matured++
			case bill.Status == models.USTBillStatusActive && bill.Available() == 0:
				next = models.USTBillStatusSoldOut
				result.SoldOut++
			}
			if next == bill.Status {
				continue
			}
			if err := tx.Model(bill).Update("status", next).Error; err != nil {
				return dbError(err)
			}
		}

		var matured []models.USTBill
		if err := tx.Where("status = ?", models.USTBillStatusMatured).Order("id ASC").Find(&matured).Error; err != nil {
			return dbError(err)
		}
		for i := range matured {
			holdings, err := activeHoldings(tx, matured[i].ID)
			if err != nil {
				return err
			}
			for j := range holdings {
				value, err := settleHolding(tx, &holdings[j], &matured[i], now)
				if err != nil {
					return err
				}
				result.SettledHoldings++
				result.Distributed += value
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("market data sweep completed",
		"matured", result.Matured,
		"sold_out", result.SoldOut,
		"settled_holdings", result.SettledHoldings,
		"distributed", result.Distributed,
	)
	return result, nil
}

func activeHoldings(tx *gorm.DB, ustbillID string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := forUpdate(tx).Where("ustbill_id = ? AND status = ?", ustbillID, models.HoldingStatusActive).
		Order("id ASC").Find(&holdings).Error; err != nil {
		return nil, dbError(err)
	}
	return holdings, nil
}

// settleHolding pays out a holding of a matured bill at its maturity value
// and returns the amount credited.
func settleHolding(tx *gorm.DB, h *models.Holding, bill *models.USTBill, now time.Time) (int64, error) {
	value := maturityValue(h, bill)
	user, err := findUser(forUpdate(tx), h.UserIdentity)
	if err != nil {
		return 0, err
	}
	balance, err := addChecked(user.WalletBalance, value)
	if err != nil {
		return 0, err
	}
	earned := user.TotalYieldEarned
	if gain := value - h.Principal(); gain > 0 {
		if earned, err = addChecked(earned, gain); err != nil {
			return 0, err
		}
	}

	if err := tx.Model(h).Updates(map[string]interface{}{
		"status":          models.HoldingStatusMatured,
		"current_value":   value,
		"projected_yield": 0,
		"settled_at":      now,
	}).Error; err != nil {
		return 0, dbError(err)
	}
	if err := updateUser(tx, user, map[string]interface{}{
		"wallet_balance":     balance,
		"total_yield_earned": earned,
	}); err != nil {
		return 0, err
	}
	return value, recordTransaction(tx, &models.Transaction{
		UserIdentity: user.Identity,
		Type:         models.TransactionTypeYieldDistribution,
		Amount:       value,
		BalanceAfter: balance,
		USTBillID:    stringPtr(bill.ID),
		HoldingID:    stringPtr(h.ID),
		Description:  "Maturity settlement for " + bill.CUSIP,
	})
}

// refundHolding cancels a holding and returns its principal to the owner.
func refundHolding(tx *gorm.DB, h *models.Holding, now time.Time) error {
	principal := h.Principal()
	user, err := findUser(forUpdate(tx), h.UserIdentity)
	if err != nil {
		return err
	}
	balance, err := addChecked(user.WalletBalance, principal)
	if err != nil {
		return err
	}
	invested := user.TotalInvested - principal
	if invested < 0 {
		invested = 0
	}

	if err := tx.Model(h).Updates(map[string]interface{}{
		"status":          models.HoldingStatusCancelled,
		"current_value":   principal,
		"projected_yield": 0,
		"settled_at":      now,
	}).Error; err != nil {
		return dbError(err)
	}
	if err := updateUser(tx, user, map[string]interface{}{
		"wallet_balance": balance,
		"total_invested": invested,
	}); err != nil {
		return err
	}
	return recordTransaction(tx, &models.Transaction{
		UserIdentity: user.Identity,
		Type:         models.TransactionTypeRefund,
		Amount:       principal,
		BalanceAfter: balance,
		USTBillID:    stringPtr(h.USTBillID),
		HoldingID:    stringPtr(h.ID),
		Description:  "Refund for cancelled UST bill",
	})
}
