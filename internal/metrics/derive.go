package metrics

// Inputs are the merged raw figures the derived metrics are computed from.
type Inputs struct {
	TotalAssets        float64
	TotalLiabilities   float64
	CreditCardLimit    float64
	CreditCardUsed     float64
	EmergencyFund      float64
	MonthlyExpenses    float64
	MonthlyInflow      float64
	MonthlyOutflow     float64
	ProfitabilityScore float64
}

// DerivedMetrics are the ratios and tiers shown alongside the raw figures.
type DerivedMetrics struct {
	NetPosition           float64 `json:"net_position"`
	CreditUtilizationRate float64 `json:"credit_utilization_rate"`
	CreditUtilizationRisk string  `json:"credit_utilization_risk"`
	CreditHealth          string  `json:"credit_health"`
	EmergencyFundRatio    float64 `json:"emergency_fund_ratio"`
	EmergencyFundStatus   string  `json:"emergency_fund_status"`
	MonthlyNetCashflow    float64 `json:"monthly_net_cashflow"`
	SavingsRate           float64 `json:"savings_rate"`
	ProfitabilityScore    float64 `json:"profitability_score"`
}

// Derive computes every derived metric from in. It is deterministic.
func Derive(in Inputs) DerivedMetrics {
	utilization := CreditUtilizationRate(in.CreditCardUsed, in.CreditCardLimit)
	fundRatio := EmergencyFundRatio(in.EmergencyFund, in.MonthlyExpenses)
	cashflow := Sum(in.MonthlyInflow, -in.MonthlyOutflow)

	var savings float64
	if in.MonthlyInflow > 0 {
		savings = cashflow / in.MonthlyInflow * 100
	}

	return DerivedMetrics{
		NetPosition:           NetPosition(in.TotalAssets, in.TotalLiabilities),
		CreditUtilizationRate: utilization,
		CreditUtilizationRisk: RiskSeverity(utilization),
		CreditHealth:          CreditHealth(utilization),
		EmergencyFundRatio:    fundRatio,
		EmergencyFundStatus:   EmergencyFundStatus(fundRatio),
		MonthlyNetCashflow:    cashflow,
		SavingsRate:           savings,
		ProfitabilityScore:    in.ProfitabilityScore,
	}
}
