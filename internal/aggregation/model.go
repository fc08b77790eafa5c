package aggregation

import (
	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/metrics"
)

// Source names of the optional per-client inputs.
const (
	SourceManualInputs = "manual_financial_inputs"
	SourceCalculated   = "calculated_financial_data"
	SourceBehavior     = "transaction_behavior"
	SourceTrends       = "financial_trends"
)

// SourceStatus records how an optional source was resolved.
type SourceStatus string

const (
	SourceLoaded      SourceStatus = "loaded"
	SourceMissing     SourceStatus = "missing"
	SourceUnavailable SourceStatus = "unavailable"
)

// ClientRecordSet is the hydrated aggregate of a client and its optional
// sources. Every slice and map is non-nil once hydrated.
type ClientRecordSet struct {
	Client        domain.Client
	ManualInputs  domain.ManualFinancialInput
	Calculated    domain.CalculatedFinancialData
	HasCalculated bool
	Behavior      domain.BehavioralData
	Trends        []domain.MonthlyTrendPoint
	Sources       map[string]SourceStatus
}

// DashboardMetrics is the headline read model for a client.
type DashboardMetrics struct {
	ClientID              string                  `json:"client_id"`
	ClientName            string                  `json:"client_name"`
	Status                string                  `json:"status"`
	RiskProfile           string                  `json:"risk_profile"`
	RelationshipTier      string                  `json:"relationship_tier"`
	TotalAssets           float64                 `json:"total_assets"`
	TotalLiabilities      float64                 `json:"total_liabilities"`
	NetPosition           float64                 `json:"net_position"`
	CASABalance           float64                 `json:"casa_balance"`
	FixedDeposits         float64                 `json:"fixed_deposits"`
	InvestmentBalance     float64                 `json:"investment_balance"`
	InsuranceCoverage     float64                 `json:"insurance_coverage"`
	CreditCardLimit       float64                 `json:"credit_card_limit"`
	CreditCardUsed        float64                 `json:"credit_card_used"`
	CreditUtilizationRate float64                 `json:"credit_utilization_rate"`
	CreditUtilizationRisk string                  `json:"credit_utilization_risk"`
	CreditHealth          string                  `json:"credit_health"`
	ProfitabilityScore    float64                 `json:"profitability_score"`
	EmergencyFundRatio    float64                 `json:"emergency_fund_ratio"`
	EmergencyFundStatus   string                  `json:"emergency_fund_status"`
	AccountBalances       domain.AccountBalances  `json:"account_balances"`
	ProductHoldings       []domain.ProductHolding `json:"product_holdings"`
	ProductCount          int                     `json:"product_count"`
}

// ChannelActivity is a count and volume for one transaction channel.
type ChannelActivity struct {
	Count  int64   `json:"count"`
	Volume float64 `json:"volume"`
}

// BehaviorSummary groups channel activity and categorised spending.
type BehaviorSummary struct {
	FundTransfers       ChannelActivity    `json:"fund_transfers"`
	POS                 ChannelActivity    `json:"pos"`
	ATM                 ChannelActivity    `json:"atm"`
	FX                  ChannelActivity    `json:"fx"`
	TotalTransactions   int64              `json:"total_transactions"`
	TotalVolume         float64            `json:"total_volume"`
	CategorizedSpending map[string]float64 `json:"categorized_spending"`
}

// AssetBreakdown splits total assets by class.
type AssetBreakdown struct {
	CASA          float64 `json:"casa"`
	FixedDeposits float64 `json:"fixed_deposits"`
	Investments   float64 `json:"investments"`
	Insurance     float64 `json:"insurance"`
}

// FinancialSummaryMetrics is the cash-flow and balance-sheet read model.
type FinancialSummaryMetrics struct {
	ClientID            string          `json:"client_id"`
	TotalAssets         float64         `json:"total_assets"`
	TotalLiabilities    float64         `json:"total_liabilities"`
	NetPosition         float64         `json:"net_position"`
	Assets              AssetBreakdown  `json:"assets"`
	MonthlyInflow       float64         `json:"monthly_inflow"`
	MonthlyOutflow      float64         `json:"monthly_outflow"`
	MonthlyNetCashflow  float64         `json:"monthly_net_cashflow"`
	SavingsRate         float64         `json:"savings_rate"`
	DebtToIncome        float64         `json:"debt_to_income"`
	EmergencyFund       float64         `json:"emergency_fund"`
	MonthlyExpenses     float64         `json:"monthly_expenses"`
	EmergencyFundRatio  float64         `json:"emergency_fund_ratio"`
	EmergencyFundStatus string          `json:"emergency_fund_status"`
	Behavior            BehaviorSummary `json:"behavior"`
}

// TrendSeries is the ordered monthly series for a client. Synthetic is set
// when no stored points existed and placeholder months were fabricated.
type TrendSeries struct {
	Points    []domain.MonthlyTrendPoint `json:"points"`
	Synthetic bool                       `json:"synthetic"`
}

// TrendValue is one month of a single series.
type TrendValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// RiskIndicatorView is a stored indicator with its derived severity.
type RiskIndicatorView struct {
	Indicator   string  `json:"indicator"`
	Value       float64 `json:"value"`
	Severity    string  `json:"severity"`
	Description string  `json:"description,omitempty"`
}

// ViewModel is everything the presentation layer needs for one client.
// It is never persisted.
type ViewModel struct {
	SchemaVersion    int                     `json:"schema_version"`
	Client           domain.Client           `json:"client"`
	Dashboard        DashboardMetrics        `json:"dashboard"`
	FinancialSummary FinancialSummaryMetrics `json:"financial_summary"`
	Trends           TrendSeries             `json:"trends"`
	Derived          metrics.DerivedMetrics  `json:"derived"`
	Sources          map[string]SourceStatus `json:"sources"`
}
