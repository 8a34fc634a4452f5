package services

import (
	"strings"
	"time"

	apperrors "ustbills/internal/errors"
	"ustbills/internal/models"
)

// anonymousIdentities are the identity strings that never name a real caller.
var anonymousIdentities = map[string]struct{}{
	"":          {},
	"anonymous": {},
	"2vxsx-fae": {},
}

// IsAnonymous reports whether identity is the anonymous caller.
func IsAnonymous(identity string) bool {
	_, ok := anonymousIdentities[strings.TrimSpace(identity)]
	return ok
}

// kycLapsed reports whether a verification older than the configured expiry
// window has lapsed at now.
func kycLapsed(user *models.User, cfg *models.PlatformConfig, now time.Time) bool {
	if user.KYCVerifiedAt == nil {
		return true
	}
	window := time.Duration(cfg.KYCExpiryDays) * 24 * time.Hour
	return now.Sub(*user.KYCVerifiedAt) > window
}

// effectiveKYCStatus is the status a reader should see. Expiry is derived at
// read time and never written back.
func effectiveKYCStatus(user *models.User, cfg *models.PlatformConfig, now time.Time) models.KYCStatus {
	if user.KYCStatus == models.KYCStatusVerified && kycLapsed(user, cfg, now) {
		return models.KYCStatusExpired
	}
	return user.KYCStatus
}

// checkEligible gates every money-moving operation.
func checkEligible(user *models.User, cfg *models.PlatformConfig, now time.Time) error {
	if !user.IsActive {
		return apperrors.ErrTradingNotAllowed
	}
	switch effectiveKYCStatus(user, cfg, now) {
	case models.KYCStatusVerified:
		return nil
	case models.KYCStatusExpired:
		return apperrors.ErrKYCExpired
	default:
		return apperrors.ErrKYCNotVerified
	}
}
