package services

import (
	"time"

	"github.com/shopspring/decimal"

	"ustbills/internal/models"
)

const daysPerYear = 365

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalYear    = decimal.NewFromInt(daysPerYear)
	decimalHundred = decimal.NewFromInt(100)
)

// wholeDays counts the whole days from from to to, truncated and never negative.
func wholeDays(from, to time.Time) int64 {
	if !to.After(from) {
		return 0
	}
	return int64(to.Sub(from) / (24 * time.Hour))
}

// accrue applies simple actual/365 interest to principal, rounding down.
func accrue(principal int64, rate decimal.Decimal, days int64) int64 {
	base := decimal.NewFromInt(principal)
	interest := base.Mul(rate).Mul(decimal.NewFromInt(days)).Div(decimalYear)
	return base.Add(interest).Floor().IntPart()
}

// termDays is the holding's whole-day term from purchase to maturity.
func termDays(h *models.Holding, bill *models.USTBill) int64 {
	return wholeDays(h.PurchaseDate, bill.MaturityDate)
}

// maturityValue is what a holding pays out at the bill's maturity date.
// Maturity-option holdings redeem at face value. Flexible holdings collect
// simple interest over the full term.
func maturityValue(h *models.Holding, bill *models.USTBill) int64 {
	if h.YieldOption == models.YieldOptionFlexible {
		return accrue(h.Principal(), bill.AnnualYield, termDays(h, bill))
	}
	return faceValue(h, bill)
}

// faceValue is the redemption amount of the tokens a holding owns.
func faceValue(h *models.Holding, bill *models.USTBill) int64 {
	return decimal.NewFromInt(h.TokensOwned).Mul(decimal.NewFromInt(bill.FaceValue)).IntPart()
}

// valueAt values an active holding at t.
//
// Flexible holdings accrue linearly from purchase toward maturity and stop
// accruing at maturity. Maturity-option holdings are carried at principal
// until maturity. At maturity both equal maturityValue.
func valueAt(h *models.Holding, bill *models.USTBill, t time.Time) int64 {
	if bill.HasMatured(t) {
		return maturityValue(h, bill)
	}
	if h.YieldOption == models.YieldOptionFlexible {
		return accrue(h.Principal(), bill.AnnualYield, wholeDays(h.PurchaseDate, t))
	}
	return h.Principal()
}

// currentValue is what a holding is worth at now. Settled or closed holdings
// keep the value they were closed at.
func currentValue(h *models.Holding, bill *models.USTBill, now time.Time) int64 {
	if h.Status != models.HoldingStatusActive {
		return h.CurrentValue
	}
	return valueAt(h, bill, now)
}

// yieldPercentage is projected / current * 100, rounded to four places.
func yieldPercentage(projected, current int64) decimal.Decimal {
	if current <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(projected).Div(decimal.NewFromInt(current)).Mul(decimalHundred).Round(4)
}
