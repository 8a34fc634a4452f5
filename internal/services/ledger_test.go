package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ustbills/internal/models"
	"ustbills/internal/testutil"
)

func TestCheckedArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		got, err := addChecked(40, 2)
		testutil.AssertNoError(t, err)
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
		_, err = addChecked(math.MaxInt64, 1)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("mul", func(t *testing.T) {
		got, err := mulChecked(5, 10)
		testutil.AssertNoError(t, err)
		if got != 50 {
			t.Errorf("expected 50, got %d", got)
		}
		if got, _ := mulChecked(0, math.MaxInt64); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
		_, err = mulChecked(math.MaxInt64/2+1, 2)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestIsAnonymous(t *testing.T) {
	for _, id := range []string{"", " ", "anonymous", "2vxsx-fae"} {
		if !IsAnonymous(id) {
			t.Errorf("expected %q to be anonymous", id)
		}
	}
	if IsAnonymous("rdmx6-jaaaa-aaaaa-aaadq-cai") {
		t.Error("expected a real identity not to be anonymous")
	}
}

func TestCheckEligible(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := models.DefaultPlatformConfig()
	verifiedAt := func(ago time.Duration) *time.Time {
		t := now.Add(-ago)
		return &t
	}

	tests := []struct {
		name     string
		user     models.User
		wantCode string
	}{
		{"verified", models.User{KYCStatus: models.KYCStatusVerified, KYCVerifiedAt: verifiedAt(day), IsActive: true}, ""},
		{"verified_on_last_day", models.User{KYCStatus: models.KYCStatusVerified, KYCVerifiedAt: verifiedAt(365 * day), IsActive: true}, ""},
		{"lapsed", models.User{KYCStatus: models.KYCStatusVerified, KYCVerifiedAt: verifiedAt(366 * day), IsActive: true}, "KYC_EXPIRED"},
		{"verified_without_timestamp", models.User{KYCStatus: models.KYCStatusVerified, IsActive: true}, "KYC_EXPIRED"},
		{"pending", models.User{KYCStatus: models.KYCStatusPending, IsActive: true}, "KYC_NOT_VERIFIED"},
		{"rejected", models.User{KYCStatus: models.KYCStatusRejected, IsActive: true}, "KYC_NOT_VERIFIED"},
		{"inactive", models.User{KYCStatus: models.KYCStatusVerified, KYCVerifiedAt: verifiedAt(day), IsActive: false}, "TRADING_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEligible(&tt.user, &cfg, now)
			if tt.wantCode == "" {
				testutil.AssertNoError(t, err)
				return
			}
			testutil.AssertAppError(t, err, tt.wantCode)
		})
	}
}

func TestValuation(t *testing.T) {
	purchase := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	bill := &models.USTBill{
		FaceValue:     102,
		PurchasePrice: 100,
		AnnualYield:   decimal.RequireFromString("0.05"),
		MaturityDate:  purchase.Add(73 * day),
	}
	flexible := &models.Holding{TokensOwned: 10, PurchasePricePerToken: 100, PurchaseDate: purchase, YieldOption: models.YieldOptionFlexible, Status: models.HoldingStatusActive}
	maturity := &models.Holding{TokensOwned: 10, PurchasePricePerToken: 100, PurchaseDate: purchase, YieldOption: models.YieldOptionMaturity, Status: models.HoldingStatusActive}

	t.Run("maturity_value", func(t *testing.T) {
		// 1000 * (1 + 0.05 * 73/365) = 1010
		if got := maturityValue(flexible, bill); got != 1010 {
			t.Errorf("expected 1010, got %d", got)
		}
		// 10 tokens redeemed at face value 102
		if got := maturityValue(maturity, bill); got != 1020 {
			t.Errorf("expected 1020, got %d", got)
		}
	})

	t.Run("value_at_maturity_is_maturity_value", func(t *testing.T) {
		for _, h := range []*models.Holding{flexible, maturity} {
			if got, want := valueAt(h, bill, bill.MaturityDate), maturityValue(h, bill); got != want {
				t.Errorf("%s: value at maturity %d, maturity value %d", h.YieldOption, got, want)
			}
		}
	})

	tests := []struct {
		name    string
		holding *models.Holding
		at      time.Time
		want    int64
	}{
		{"flexible_at_purchase", flexible, purchase, 1000},
		{"flexible_partial_day_truncates", flexible, purchase.Add(36*day + 23*time.Hour), 1004},
		{"flexible_at_maturity", flexible, bill.MaturityDate, 1010},
		{"flexible_stops_at_maturity", flexible, purchase.Add(200 * day), 1010},
		{"maturity_before_maturity", maturity, purchase.Add(72 * day), 1000},
		{"maturity_at_maturity_pays_face", maturity, bill.MaturityDate, 1020},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueAt(tt.holding, bill, tt.at); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}

	t.Run("closed_holding_keeps_stored_value", func(t *testing.T) {
		closed := *flexible
		closed.Status = models.HoldingStatusMatured
		closed.CurrentValue = 1234
		if got := currentValue(&closed, bill, purchase.Add(10*day)); got != 1234 {
			t.Errorf("expected 1234, got %d", got)
		}
	})
}

func TestWholeDaysAndPercentage(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := wholeDays(start, start.Add(47*time.Hour)); got != 1 {
		t.Errorf("expected 1 whole day, got %d", got)
	}
	if got := wholeDays(start, start.Add(-time.Hour)); got != 0 {
		t.Errorf("expected 0 for a past date, got %d", got)
	}
	if got := yieldPercentage(9, 1001); !got.Equal(decimal.RequireFromString("0.8991")) {
		t.Errorf("expected 0.8991, got %s", got)
	}
	if got := yieldPercentage(5, 0); !got.IsZero() {
		t.Errorf("expected zero percentage for zero value, got %s", got)
	}
	if got := platformFee(999, decimal.RequireFromString("0.005")); got != 4 {
		t.Errorf("expected fee 4, got %d", got)
	}
}

func TestForUpdate(t *testing.T) {
	lookup := func(tx *gorm.DB) *gorm.DB {
		var user models.User
		return forUpdate(tx).Where("identity = ?", "alice").First(&user)
	}

	t.Run("postgres_locks_selected_rows", func(t *testing.T) {
		db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=ustbills dbname=ustbills sslmode=disable"}), &gorm.Config{
			DryRun:               true,
			DisableAutomaticPing: true,
		})
		if err != nil {
			t.Fatalf("failed to open dry-run postgres: %v", err)
		}
		if sql := db.ToSQL(lookup); !strings.HasSuffix(sql, "FOR UPDATE") {
			t.Errorf("expected a FOR UPDATE query, got %q", sql)
		}
	})

	t.Run("sqlite_skips_locking_clause", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		if sql := store.DB().ToSQL(lookup); strings.Contains(sql, "FOR UPDATE") {
			t.Errorf("sqlite cannot lock rows, got %q", sql)
		}
	})
}
