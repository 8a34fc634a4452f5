package services

import (
	"math"
	"testing"
	"time"

	"ustbills/internal/models"
	"ustbills/internal/pagination"
	"ustbills/internal/testutil"
)

func TestRegisterUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc := NewUserService(testutil.SetupTestStore(t))
		phone := "+1 (555) 123-4567"

		user, err := svc.RegisterUser("principal-a", RegisterUserInput{Email: "Alice@Example.com", Country: "us", Phone: &phone})
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" || user.Country != "US" {
			t.Errorf("expected normalized email/country, got %s/%s", user.Email, user.Country)
		}
		if user.KYCStatus != models.KYCStatusPending || !user.IsActive {
			t.Errorf("expected pending active user, got %s/%v", user.KYCStatus, user.IsActive)
		}
		if user.WalletBalance != 0 || user.TotalInvested != 0 || user.TotalYieldEarned != 0 {
			t.Error("expected zero balances")
		}
	})

	t.Run("duplicate_identity", func(t *testing.T) {
		svc := NewUserService(testutil.SetupTestStore(t))
		_, err := svc.RegisterUser("principal-a", RegisterUserInput{Email: "a@example.com", Country: "US"})
		testutil.AssertNoError(t, err)

		_, err = svc.RegisterUser("principal-a", RegisterUserInput{Email: "b@example.com", Country: "US"})
		testutil.AssertAppError(t, err, "USER_ALREADY_EXISTS")
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := NewUserService(testutil.SetupTestStore(t))
		_, err := svc.RegisterUser("2vxsx-fae", RegisterUserInput{Email: "a@example.com", Country: "US"})
		testutil.AssertAppError(t, err, "ANONYMOUS_CALLER")
	})

	badPhone := "12345"
	tests := []struct {
		name  string
		input RegisterUserInput
	}{
		{"bad_email", RegisterUserInput{Email: "not-an-email", Country: "US"}},
		{"empty_email", RegisterUserInput{Email: "", Country: "US"}},
		{"empty_country", RegisterUserInput{Email: "a@example.com", Country: ""}},
		{"long_country", RegisterUserInput{Email: "a@example.com", Country: "USAA"}},
		{"bad_phone", RegisterUserInput{Email: "a@example.com", Country: "US", Phone: &badPhone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(testutil.SetupTestStore(t))
			_, err := svc.RegisterUser("principal-b", tt.input)
			testutil.AssertAppError(t, err, "INVALID_USER_DATA")
		})
	}
}

func TestGetUserProfile(t *testing.T) {
	t.Run("not_found", func(t *testing.T) {
		svc := NewUserService(testutil.SetupTestStore(t))
		_, err := svc.GetUserProfile("nobody")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("lapsed_kyc_reads_as_expired_without_writing", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store).(*userService)
		user := testutil.CreateVerifiedUser(t, store.DB(), 0)
		svc.now = fixedClock(user.KYCVerifiedAt.Add(400 * day))

		profile, err := svc.GetUserProfile(user.Identity)
		testutil.AssertNoError(t, err)
		if profile.KYCStatus != models.KYCStatusExpired {
			t.Errorf("expected expired, got %s", profile.KYCStatus)
		}
		if stored := reloadUser(t, store.DB(), user.Identity); stored.KYCStatus != models.KYCStatusVerified {
			t.Errorf("expected stored status to stay verified, got %s", stored.KYCStatus)
		}
	})
}

func TestUpdateEmail(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewUserService(store)
	user := testutil.CreateTestUser(t, store.DB())

	updated, err := svc.UpdateEmail(user.Identity, "New@Example.org")
	testutil.AssertNoError(t, err)
	if updated.Email != "new@example.org" {
		t.Errorf("expected new@example.org, got %s", updated.Email)
	}

	_, err = svc.UpdateEmail(user.Identity, "broken")
	testutil.AssertAppError(t, err, "INVALID_USER_DATA")
	_, err = svc.UpdateEmail("nobody", "a@example.com")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestDepositFunds(t *testing.T) {
	t.Run("credits_wallet_and_records_entry", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateVerifiedUser(t, store.DB(), 0)

		balance, err := svc.DepositFunds(user.Identity, 1000)
		testutil.AssertNoError(t, err)
		if balance != 1000 {
			t.Errorf("expected balance 1000, got %d", balance)
		}

		var entry models.Transaction
		store.DB().Where("user_identity = ?", user.Identity).First(&entry)
		if entry.Type != models.TransactionTypeDeposit || entry.Amount != 1000 || entry.BalanceAfter != 1000 {
			t.Errorf("unexpected ledger entry %+v", entry)
		}
	})

	t.Run("rejects_non_positive_amount", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateVerifiedUser(t, store.DB(), 0)

		_, err := svc.DepositFunds(user.Identity, 0)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		_, err = svc.DepositFunds(user.Identity, -5)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("overflow", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateVerifiedUser(t, store.DB(), 10)

		_, err := svc.DepositFunds(user.Identity, math.MaxInt64)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		if got := reloadUser(t, store.DB(), user.Identity).WalletBalance; got != 10 {
			t.Errorf("expected balance unchanged at 10, got %d", got)
		}
	})

	t.Run("gated", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store).(*userService)

		pending := testutil.CreateTestUser(t, store.DB())
		_, err := svc.DepositFunds(pending.Identity, 100)
		testutil.AssertAppError(t, err, "KYC_NOT_VERIFIED")

		verified := testutil.CreateVerifiedUser(t, store.DB(), 0)
		svc.now = fixedClock(time.Now().Add(366 * day))
		_, err = svc.DepositFunds(verified.Identity, 100)
		testutil.AssertAppError(t, err, "KYC_EXPIRED")

		_, err = svc.DepositFunds("nobody", 100)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")

		if n := countTransactions(t, store.DB(), verified.Identity, models.TransactionTypeDeposit); n != 0 {
			t.Errorf("expected no deposits recorded, got %d", n)
		}
	})
}

func TestWithdrawFunds(t *testing.T) {
	t.Run("debits_wallet", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateVerifiedUser(t, store.DB(), 1000)

		balance, err := svc.WithdrawFunds(user.Identity, 400)
		testutil.AssertNoError(t, err)
		if balance != 600 {
			t.Errorf("expected 600, got %d", balance)
		}
		if n := countTransactions(t, store.DB(), user.Identity, models.TransactionTypeWithdrawal); n != 1 {
			t.Errorf("expected 1 withdrawal entry, got %d", n)
		}
	})

	t.Run("more_than_balance", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateVerifiedUser(t, store.DB(), 0)
		_, err := svc.DepositFunds(user.Identity, 1000)
		testutil.AssertNoError(t, err)

		_, err = svc.WithdrawFunds(user.Identity, 1001)
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
		if got := reloadUser(t, store.DB(), user.Identity).WalletBalance; got != 1000 {
			t.Errorf("expected balance unchanged at 1000, got %d", got)
		}
	})

	t.Run("inactive_user", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateVerifiedUser(t, store.DB(), 1000)
		_, err := svc.SetUserActive(user.Identity, false)
		testutil.AssertNoError(t, err)

		_, err = svc.WithdrawFunds(user.Identity, 10)
		testutil.AssertAppError(t, err, "TRADING_NOT_ALLOWED")
	})
}

func TestUpdateKYCStatus(t *testing.T) {
	t.Run("verify_stamps_time", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store).(*userService)
		now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		svc.now = fixedClock(now)
		user := testutil.CreateTestUser(t, store.DB())

		updated, err := svc.UpdateKYCStatus(user.Identity, models.KYCStatusVerified)
		testutil.AssertNoError(t, err)
		if updated.KYCVerifiedAt == nil || !updated.KYCVerifiedAt.Equal(now) {
			t.Errorf("expected verified_at %v, got %v", now, updated.KYCVerifiedAt)
		}
		eligible, err := svc.IsEligible(user.Identity)
		testutil.AssertNoError(t, err)
		if !eligible {
			t.Error("expected verified user to be eligible")
		}
	})

	t.Run("rejected_is_terminal", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateTestUser(t, store.DB())

		_, err := svc.UpdateKYCStatus(user.Identity, models.KYCStatusRejected)
		testutil.AssertNoError(t, err)
		_, err = svc.UpdateKYCStatus(user.Identity, models.KYCStatusVerified)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		_, err = svc.UpdateKYCStatus(user.Identity, models.KYCStatusRejected)
		testutil.AssertNoError(t, err)
	})

	t.Run("expired_cannot_be_set", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewUserService(store)
		user := testutil.CreateTestUser(t, store.DB())

		_, err := svc.UpdateKYCStatus(user.Identity, models.KYCStatusExpired)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("not_found", func(t *testing.T) {
		svc := NewUserService(testutil.SetupTestStore(t))
		_, err := svc.UpdateKYCStatus("nobody", models.KYCStatusVerified)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestIsEligible(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewUserService(store)

	eligible, err := svc.IsEligible("nobody")
	testutil.AssertNoError(t, err)
	if eligible {
		t.Error("expected missing user to be ineligible")
	}

	pending := testutil.CreateTestUser(t, store.DB())
	if eligible, _ := svc.IsEligible(pending.Identity); eligible {
		t.Error("expected pending user to be ineligible")
	}
}

func TestGetUserTransactions(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewUserService(store)
	user := testutil.CreateVerifiedUser(t, store.DB(), 0)
	for _, amount := range []int64{10, 20, 30} {
		_, err := svc.DepositFunds(user.Identity, amount)
		testutil.AssertNoError(t, err)
	}

	resp, err := svc.GetUserTransactions(user.Identity, pagination.NewPageRequest(1, 2))
	testutil.AssertNoError(t, err)
	if resp.Total != 3 || len(resp.Data) != 2 || !resp.HasNext {
		t.Fatalf("unexpected first page total=%d len=%d has_next=%v", resp.Total, len(resp.Data), resp.HasNext)
	}
	if resp.Data[0].Amount != 10 || resp.Data[1].Amount != 20 {
		t.Errorf("expected creation order, got %d, %d", resp.Data[0].Amount, resp.Data[1].Amount)
	}

	resp, err = svc.GetUserTransactions(user.Identity, pagination.NewPageRequest(2, 2))
	testutil.AssertNoError(t, err)
	if len(resp.Data) != 1 || resp.HasNext || resp.Data[0].BalanceAfter != 60 {
		t.Errorf("unexpected second page %+v", resp)
	}

	_, err = svc.GetUserTransactions("nobody", pagination.PageRequest{})
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
