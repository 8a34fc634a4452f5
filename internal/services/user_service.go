package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/models"
	"ustbills/internal/pagination"
	"ustbills/internal/validator"
)

// userService handles user profiles, wallet movements and KYC state.
type userService struct {
	store *database.Store
	now   func() time.Time
}

// NewUserService creates a new UserServicer.
func NewUserService(store *database.Store) UserServicer {
	return &userService{store: store, now: time.Now}
}

// RegisterUser creates the profile for identity with zero balances and
// pending KYC.
func (s *userService) RegisterUser(identity string, input RegisterUserInput) (*models.User, error) {
	if IsAnonymous(identity) {
		return nil, apperrors.ErrAnonymousCaller
	}

	email := strings.TrimSpace(input.Email)
	country := strings.ToUpper(strings.TrimSpace(input.Country))
	if !validator.ValidEmail(email) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidUserData, "email must look like local@domain.tld")
	}
	if !validator.ValidCountry(country) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidUserData, "country must be a 2 or 3 letter code")
	}
	var phone *string
	if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
		if !validator.ValidPhone(*input.Phone) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidUserData, "phone must have 10 to 15 digits")
		}
		phone = stringPtr(strings.TrimSpace(*input.Phone))
	}

	user := &models.User{
		Identity:  identity,
		Email:     strings.ToLower(email),
		Country:   country,
		Phone:     phone,
		KYCStatus: models.KYCStatusPending,
		IsActive:  true,
	}

	err := s.store.Atomic(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("identity = ?", identity).Count(&count).Error; err != nil {
			return dbError(err)
		}
		if count > 0 {
			return apperrors.ErrUserAlreadyExists
		}
		if err := tx.Create(user).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserProfile returns the profile with a lapsed verification reported as
// expired.
func (s *userService) GetUserProfile(identity string) (*models.User, error) {
	db := s.store.DB()
	user, err := findUser(db, identity)
	if err != nil {
		return nil, err
	}
	cfg, err := loadPlatformConfig(db)
	if err != nil {
		return nil, err
	}
	user.KYCStatus = effectiveKYCStatus(user, cfg, s.now())
	return user, nil
}

// UpdateEmail changes the caller's contact email.
func (s *userService) UpdateEmail(identity, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !validator.ValidEmail(email) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidUserData, "email must look like local@domain.tld")
	}

	var user *models.User
	err := s.store.Atomic(func(tx *gorm.DB) error {
		var err error
		if user, err = findUser(forUpdate(tx), identity); err != nil {
			return err
		}
		user.Email = strings.ToLower(email)
		return updateUser(tx, user, map[string]interface{}{"email": user.Email})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DepositFunds credits the caller's wallet and returns the new balance.
func (s *userService) DepositFunds(identity string, amount int64) (int64, error) {
	var balance int64
	err := s.store.Atomic(func(tx *gorm.DB) error {
		user, err := s.eligibleUser(tx, identity)
		if err != nil {
			return err
		}
		if amount <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be greater than zero")
		}
		if balance, err = addChecked(user.WalletBalance, amount); err != nil {
			return err
		}

		if err := updateUser(tx, user, map[string]interface{}{"wallet_balance": balance}); err != nil {
			return err
		}
		return recordTransaction(tx, &models.Transaction{
			UserIdentity: identity,
			Type:         models.TransactionTypeDeposit,
			Amount:       amount,
			BalanceAfter: balance,
			Description:  "Wallet deposit",
		})
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// WithdrawFunds debits the caller's wallet and returns the new balance.
func (s *userService) WithdrawFunds(identity string, amount int64) (int64, error) {
	var balance int64
	err := s.store.Atomic(func(tx *gorm.DB) error {
		user, err := s.eligibleUser(tx, identity)
		if err != nil {
			return err
		}
		if amount <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be greater than zero")
		}
		if amount > user.WalletBalance {
			return apperrors.ErrInsufficientFunds
		}
		balance = user.WalletBalance - amount

		if err := updateUser(tx, user, map[string]interface{}{"wallet_balance": balance}); err != nil {
			return err
		}
		return recordTransaction(tx, &models.Transaction{
			UserIdentity: identity,
			Type:         models.TransactionTypeWithdrawal,
			Amount:       amount,
			BalanceAfter: balance,
			Description:  "Wallet withdrawal",
		})
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// UpdateKYCStatus moves an identity between pending, verified and rejected.
// Rejection is terminal and verifying stamps a fresh verification time.
func (s *userService) UpdateKYCStatus(identity string, status models.KYCStatus) (*models.User, error) {
	switch status {
	case models.KYCStatusPending, models.KYCStatusVerified, models.KYCStatusRejected:
	default:
		return nil, apperrors.WithDetail(apperrors.ErrValidation, fmt.Sprintf("kyc status %q cannot be set", status))
	}

	var user *models.User
	err := s.store.Atomic(func(tx *gorm.DB) error {
		var err error
		if user, err = findUser(forUpdate(tx), identity); err != nil {
			return err
		}
		if user.KYCStatus == models.KYCStatusRejected && status != models.KYCStatusRejected {
			return apperrors.WithDetail(apperrors.ErrValidation, "a rejected identity cannot change kyc status")
		}

		fields := map[string]interface{}{"kyc_status": status}
		if status == models.KYCStatusVerified {
			now := s.now()
			user.KYCVerifiedAt = &now
			fields["kyc_verified_at"] = now
		}
		user.KYCStatus = status
		return updateUser(tx, user, fields)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetUserActive enables or suspends trading for identity.
func (s *userService) SetUserActive(identity string, active bool) (*models.User, error) {
	var user *models.User
	err := s.store.Atomic(func(tx *gorm.DB) error {
		var err error
		if user, err = findUser(forUpdate(tx), identity); err != nil {
			return err
		}
		user.IsActive = active
		return updateUser(tx, user, map[string]interface{}{"is_active": active})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// IsEligible reports whether identity may move funds right now. A missing
// profile is simply not eligible.
func (s *userService) IsEligible(identity string) (bool, error) {
	db := s.store.DB()
	user, err := findUser(db, identity)
	if err != nil {
		if apperrors.ErrUserNotFound.Is(err) {
			return false, nil
		}
		return false, err
	}
	cfg, err := loadPlatformConfig(db)
	if err != nil {
		return false, err
	}
	return checkEligible(user, cfg, s.now()) == nil, nil
}

// GetUserTransactions returns the caller's wallet ledger in creation order.
func (s *userService) GetUserTransactions(identity string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	db := s.store.DB()
	if _, err := findUser(db, identity); err != nil {
		return nil, err
	}

	query := db.Model(&models.Transaction{}).Where("user_identity = ?", identity)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dbError(err)
	}

	p, perPage := page.Values()
	var entries []models.Transaction
	if page.InRange(total) {
		if err := query.Scopes(pagination.Paginate(page)).Order("id ASC").Find(&entries).Error; err != nil {
			return nil, dbError(err)
		}
	}
	resp := pagination.NewPageResponse(entries, p, perPage, total)
	return &resp, nil
}

// eligibleUser loads identity and applies the KYC gate.
func (s *userService) eligibleUser(tx *gorm.DB, identity string) (*models.User, error) {
	user, err := findUser(forUpdate(tx), identity)
	if err != nil {
		return nil, err
	}
	cfg, err := loadPlatformConfig(tx)
	if err != nil {
		return nil, err
	}
	if err := checkEligible(user, cfg, s.now()); err != nil {
		return nil, err
	}
	return user, nil
}
