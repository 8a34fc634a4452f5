package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDriver != "postgres" {
			t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
		}
		if cfg.TreasuryRequestTimeout != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", cfg.TreasuryRequestTimeout)
		}
		if cfg.Defaults.MinimumInvestment != 1 || cfg.Defaults.MaximumInvestment != 10000 {
			t.Errorf("unexpected investment bounds %d..%d", cfg.Defaults.MinimumInvestment, cfg.Defaults.MaximumInvestment)
		}
		if cfg.Defaults.PlatformFeePercentage.String() != "0.005" {
			t.Errorf("expected fee 0.005, got %s", cfg.Defaults.PlatformFeePercentage)
		}
		if cfg.Defaults.KYCExpiryDays != 365 {
			t.Errorf("expected 365 kyc days, got %d", cfg.Defaults.KYCExpiryDays)
		}
		if !cfg.SchedulerEnabled {
			t.Error("expected scheduler enabled by default")
		}
	})

	t.Run("admin_identities", func(t *testing.T) {
		t.Setenv("ADMIN_IDENTITIES", " alice , ,bob")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.AdminIdentities) != 2 || cfg.AdminIdentities[0] != "alice" || cfg.AdminIdentities[1] != "bob" {
			t.Errorf("unexpected admin identities %v", cfg.AdminIdentities)
		}
	})

	t.Run("sqlite_driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "SQLite")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDriver != "sqlite" {
			t.Errorf("expected sqlite, got %s", cfg.DBDriver)
		}
	})

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid_driver", "DB_DRIVER", "mysql"},
		{"invalid_timeout", "TREASURY_REQUEST_TIMEOUT", "soon"},
		{"negative_timeout", "TREASURY_REQUEST_TIMEOUT", "-1s"},
		{"invalid_scheduler_flag", "SCHEDULER_ENABLED", "maybe"},
		{"invalid_fee", "DEFAULT_PLATFORM_FEE_PERCENTAGE", "half"},
		{"invalid_redis_db", "REDIS_DB", "zero"},
		{"invalid_log_level", "LOG_LEVEL", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		def     bool
		want    bool
		wantErr bool
	}{
		{"", true, true, false},
		{"", false, false, false},
		{"TRUE", false, true, false},
		{"0", true, false, false},
		{"yes", false, false, true},
	}
	for _, tt := range tests {
		got, err := parseBool(tt.in, tt.def)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBool(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
