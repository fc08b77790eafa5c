// Package metrics holds the pure rules that turn raw client figures into
// ratios and classifications. Nothing here performs I/O.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Severity tiers shared by credit utilization and risk indicators.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Credit health tiers.
const (
	CreditPoor = "poor"
	CreditFair = "fair"
	CreditGood = "good"
)

// Emergency fund tiers.
const (
	FundExcellent = "Excellent"
	FundGood      = "Good"
	FundLow       = "Low"
)

const (
	highThreshold   = 80.0
	mediumThreshold = 60.0

	fundExcellentAbove = 6.0
	fundGoodFrom       = 3.0
)

// ErrProfitabilityOutOfRange rejects scores outside the canonical 0-100 scale.
var ErrProfitabilityOutOfRange = errors.New("profitability score must be between 0 and 100")

// CreditUtilizationRate returns used/limit as a percentage, or 0 without a limit.
func CreditUtilizationRate(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return used / limit * 100
}

// NetPosition returns assets minus liabilities.
func NetPosition(assets, liabilities float64) float64 {
	return decimal.NewFromFloat(assets).Sub(decimal.NewFromFloat(liabilities)).InexactFloat64()
}

// RiskSeverity classifies a 0-100 rate.
func RiskSeverity(rate float64) string {
	switch {
	case rate > highThreshold:
		return SeverityHigh
	case rate > mediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// CreditHealth classifies a credit utilization rate with the severity thresholds.
func CreditHealth(rate float64) string {
	switch RiskSeverity(rate) {
	case SeverityHigh:
		return CreditPoor
	case SeverityMedium:
		return CreditFair
	default:
		return CreditGood
	}
}

// EmergencyFundRatio returns months of expenses covered by the fund.
func EmergencyFundRatio(fund, monthlyExpenses float64) float64 {
	if monthlyExpenses <= 0 {
		return 0
	}
	return fund / monthlyExpenses
}

// EmergencyFundStatus classifies months of coverage.
func EmergencyFundStatus(ratio float64) string {
	switch {
	case ratio > fundExcellentAbove:
		return FundExcellent
	case ratio >= fundGoodFrom:
		return FundGood
	default:
		return FundLow
	}
}

// ValidateProfitabilityScore rejects scores outside 0-100.
func ValidateProfitabilityScore(score float64) error {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return fmt.Errorf("%w: got %v", ErrProfitabilityOutOfRange, score)
	}
	return nil
}

// ScaleFraction converts a 0-1 fraction into the canonical 0-100 scale.
// Writers importing legacy fraction sources call it explicitly.
func ScaleFraction(fraction float64) float64 {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Sum adds monetary amounts without float drift.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}
