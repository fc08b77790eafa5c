package aggregation

import (
	"sort"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/metrics"
)

// Build turns a record set into the view model. It performs no I/O; now only
// anchors synthetic trend months.
func Build(set ClientRecordSet, now time.Time) ViewModel {
	hydrate(&set)
	in := set.ManualInputs
	calc := set.Calculated

	assets, liabilities := totals(set)
	derived := metrics.Derive(metrics.Inputs{
		TotalAssets:        assets,
		TotalLiabilities:   liabilities,
		CreditCardLimit:    in.CreditCardLimit,
		CreditCardUsed:     in.CreditCardUsed,
		EmergencyFund:      in.EmergencyFund,
		MonthlyExpenses:    in.MonthlyExpenses,
		MonthlyInflow:      in.MonthlyInflow,
		MonthlyOutflow:     in.MonthlyOutflow,
		ProfitabilityScore: calc.ProfitabilityScore,
	})
	if set.HasCalculated {
		derived.NetPosition = calc.NetPosition
		if set.Sources[SourceManualInputs] != SourceLoaded {
			// Without operator figures the upstream ratios are the only data.
			derived.CreditUtilizationRate = calc.CreditUtilizationRate
			derived.CreditUtilizationRisk = metrics.RiskSeverity(calc.CreditUtilizationRate)
			derived.CreditHealth = metrics.CreditHealth(calc.CreditUtilizationRate)
			derived.EmergencyFundRatio = calc.EmergencyFundRatio
			derived.EmergencyFundStatus = metrics.EmergencyFundStatus(calc.EmergencyFundRatio)
			derived.MonthlyNetCashflow = calc.MonthlyNetCashflow
			derived.SavingsRate = calc.SavingsRate
		}
	}

	holdings := append([]domain.ProductHolding{}, in.ProductHoldings...)
	dashboard := DashboardMetrics{
		ClientID:              set.Client.ID,
		ClientName:            set.Client.Name,
		Status:                set.Client.Status,
		RiskProfile:           set.Client.RiskProfile,
		RelationshipTier:      set.Client.RelationshipTier,
		TotalAssets:           assets,
		TotalLiabilities:      liabilities,
		NetPosition:           derived.NetPosition,
		CASABalance:           in.CASABalance,
		FixedDeposits:         in.FixedDeposits,
		InvestmentBalance:     in.InvestmentBalance,
		InsuranceCoverage:     in.InsuranceCoverage,
		CreditCardLimit:       in.CreditCardLimit,
		CreditCardUsed:        in.CreditCardUsed,
		CreditUtilizationRate: derived.CreditUtilizationRate,
		CreditUtilizationRisk: derived.CreditUtilizationRisk,
		CreditHealth:          derived.CreditHealth,
		ProfitabilityScore:    derived.ProfitabilityScore,
		EmergencyFundRatio:    derived.EmergencyFundRatio,
		EmergencyFundStatus:   derived.EmergencyFundStatus,
		AccountBalances:       in.AccountBalances,
		ProductHoldings:       holdings,
		ProductCount:          len(holdings),
	}

	summary := FinancialSummaryMetrics{
		ClientID:         set.Client.ID,
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		NetPosition:      derived.NetPosition,
		Assets: AssetBreakdown{
			CASA:          in.CASABalance,
			FixedDeposits: in.FixedDeposits,
			Investments:   in.InvestmentBalance,
			Insurance:     in.InsuranceCoverage,
		},
		MonthlyInflow:       in.MonthlyInflow,
		MonthlyOutflow:      in.MonthlyOutflow,
		MonthlyNetCashflow:  derived.MonthlyNetCashflow,
		SavingsRate:         derived.SavingsRate,
		DebtToIncome:        calc.DebtToIncome,
		EmergencyFund:       in.EmergencyFund,
		MonthlyExpenses:     in.MonthlyExpenses,
		EmergencyFundRatio:  derived.EmergencyFundRatio,
		EmergencyFundStatus: derived.EmergencyFundStatus,
		Behavior:            behaviorSummary(set.Behavior),
	}

	sources := make(map[string]SourceStatus, len(set.Sources))
	for k, v := range set.Sources {
		sources[k] = v
	}

	return ViewModel{
		SchemaVersion:    DefaultsSchemaVersion,
		Client:           set.Client,
		Dashboard:        dashboard,
		FinancialSummary: summary,
		Trends:           trendSeries(set, now),
		Derived:          derived,
		Sources:          sources,
	}
}

// SeriesValues projects one named series out of the trend points, ordered
// ascending by month. Unknown series yield an empty slice.
func SeriesValues(points []domain.MonthlyTrendPoint, series string) []TrendValue {
	sorted := append([]domain.MonthlyTrendPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	out := make([]TrendValue, 0, len(sorted))
	for _, p := range sorted {
		v, ok := p.Value(series)
		if !ok {
			continue
		}
		out = append(out, TrendValue{Month: p.Month, Value: v})
	}
	return out
}

// totals prefers the calculated figures and otherwise sums the manual ones.
func totals(set ClientRecordSet) (assets, liabilities float64) {
	if set.HasCalculated {
		return set.Calculated.TotalAssets, set.Calculated.TotalLiabilities
	}
	in := set.ManualInputs
	assets = metrics.Sum(in.CASABalance, in.FixedDeposits, in.InvestmentBalance)
	liabilities = metrics.Sum(in.TotalLiabilities, in.CreditCardUsed)
	return assets, liabilities
}

func trendSeries(set ClientRecordSet, now time.Time) TrendSeries {
	if len(set.Trends) == 0 {
		return TrendSeries{
			Points:    syntheticTrend(set.Client.ID, set.ManualInputs, now),
			Synthetic: true,
		}
	}
	points := append([]domain.MonthlyTrendPoint(nil), set.Trends...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return TrendSeries{Points: points}
}

func behaviorSummary(b domain.BehavioralData) BehaviorSummary {
	spending := make(map[string]float64, len(b.CategorizedSpending))
	for k, v := range b.CategorizedSpending {
		spending[k] = v
	}
	return BehaviorSummary{
		FundTransfers:       ChannelActivity{Count: b.FundTransferCount, Volume: b.FundTransferVolume},
		POS:                 ChannelActivity{Count: b.POSCount, Volume: b.POSVolume},
		ATM:                 ChannelActivity{Count: b.ATMCount, Volume: b.ATMVolume},
		FX:                  ChannelActivity{Count: b.FXCount, Volume: b.FXVolume},
		TotalTransactions:   b.FundTransferCount + b.POSCount + b.ATMCount + b.FXCount,
		TotalVolume:         metrics.Sum(b.FundTransferVolume, b.POSVolume, b.ATMVolume, b.FXVolume),
		CategorizedSpending: spending,
	}
}
