// Package validator provides the ledger's field validators, both as plain
// functions for the service layer and as custom tags for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	emailRegex   = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
	phoneRegex   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	countryRegex = regexp.MustCompile(`^[A-Za-z]{2,3}$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cusip", validateCUSIPTag)
		_ = v.RegisterValidation("country_code", validateCountryTag)
		_ = v.RegisterValidation("phone", validatePhoneTag)
		_ = v.RegisterValidation("kyc_status", validateKYCStatus)
		_ = v.RegisterValidation("yield_option", validateYieldOption)
	}
}

// ValidCUSIP reports whether s is a 9-character CUSIP with a correct check
// digit.
func ValidCUSIP(s string) bool {
	if len(s) != 9 {
		return false
	}
	check, ok := CUSIPCheckDigit(s[:8])
	return ok && s[8] == check
}

// CUSIPCheckDigit computes the check digit for an 8-character CUSIP base.
// Letters count 10..35 and '*', '@', '#' count 36..38; every second character
// is doubled and the digits of each value are summed.
func CUSIPCheckDigit(base string) (byte, bool) {
	if len(base) != 8 {
		return 0, false
	}
	sum := 0
	for i := 0; i < 8; i++ {
		v, ok := cusipValue(base[i])
		if !ok {
			return 0, false
		}
		if i%2 == 1 {
			v *= 2
		}
		sum += v/10 + v%10
	}
	return byte('0' + (10-sum%10)%10), true
}

func cusipValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	case c == '*':
		return 36, true
	case c == '@':
		return 37, true
	case c == '#':
		return 38, true
	}
	return 0, false
}

// ValidEmail requires a single '@' and a dotted domain.
func ValidEmail(s string) bool {
	return strings.Count(s, "@") == 1 && emailRegex.MatchString(s)
}

// ValidCountry accepts 2- or 3-letter country codes.
func ValidCountry(s string) bool {
	return countryRegex.MatchString(s)
}

// ValidPhone accepts 10 to 15 digits with an optional leading '+'. Spaces,
// dashes and parentheses are ignored.
func ValidPhone(s string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, s)
	return phoneRegex.MatchString(cleaned)
}

func validateCUSIPTag(fl validator.FieldLevel) bool {
	return ValidCUSIP(fl.Field().String())
}

func validateCountryTag(fl validator.FieldLevel) bool {
	return ValidCountry(fl.Field().String())
}

func validatePhoneTag(fl validator.FieldLevel) bool {
	return ValidPhone(fl.Field().String())
}

func validateKYCStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "verified", "rejected":
		return true
	}
	return false
}

func validateYieldOption(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "maturity", "flexible":
		return true
	}
	return false
}
