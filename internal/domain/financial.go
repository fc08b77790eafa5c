package domain

import "time"

// AccountBalances splits balances across the four tracked balance classes.
type AccountBalances struct {
	CASA          float64 `json:"casa"`
	FixedDeposits float64 `json:"fixed_deposits"`
	Loans         float64 `json:"loans"`
	Cards         float64 `json:"cards"`
}

// ProductHolding is one product held by a client.
type ProductHolding struct {
	ProductName string     `json:"product_name"`
	ProductType string     `json:"product_type"`
	Balance     float64    `json:"balance"`
	Status      string     `json:"status"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
}

// ManualFinancialInput holds operator-entered balances and flows.
type ManualFinancialInput struct {
	ClientID          string           `json:"client_id"`
	CASABalance       float64          `json:"casa_balance"`
	FixedDeposits     float64          `json:"fixed_deposits"`
	InvestmentBalance float64          `json:"investment_balance"`
	InsuranceCoverage float64          `json:"insurance_coverage"`
	TotalLiabilities  float64          `json:"total_liabilities"`
	CreditCardLimit   float64          `json:"credit_card_limit"`
	CreditCardUsed    float64          `json:"credit_card_used"`
	MonthlyInflow     float64          `json:"monthly_inflow"`
	MonthlyOutflow    float64          `json:"monthly_outflow"`
	EmergencyFund     float64          `json:"emergency_fund"`
	MonthlyExpenses   float64          `json:"monthly_expenses"`
	AccountBalances   AccountBalances  `json:"account_balances"`
	ProductHoldings   []ProductHolding `json:"product_holdings"`
	UpdatedAt         *time.Time       `json:"updated_at,omitempty"`
}

// CalculatedFinancialData holds figures derived upstream. Profitability is on
// the canonical 0-100 scale.
type CalculatedFinancialData struct {
	ClientID              string     `json:"client_id"`
	TotalAssets           float64    `json:"total_assets"`
	TotalLiabilities      float64    `json:"total_liabilities"`
	NetPosition           float64    `json:"net_position"`
	CreditUtilizationRate float64    `json:"credit_utilization_rate"`
	ProfitabilityScore    float64    `json:"profitability_score"`
	EmergencyFundRatio    float64    `json:"emergency_fund_ratio"`
	DebtToIncome          float64    `json:"debt_to_income"`
	SavingsRate           float64    `json:"savings_rate"`
	MonthlyNetCashflow    float64    `json:"monthly_net_cashflow"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// BehavioralData summarises transaction activity per channel.
type BehavioralData struct {
	ClientID            string             `json:"client_id"`
	FundTransferCount   int64              `json:"fund_transfer_count"`
	FundTransferVolume  float64            `json:"fund_transfer_volume"`
	POSCount            int64              `json:"pos_count"`
	POSVolume           float64            `json:"pos_volume"`
	ATMCount            int64              `json:"atm_count"`
	ATMVolume           float64            `json:"atm_volume"`
	FXCount             int64              `json:"fx_count"`
	FXVolume            float64            `json:"fx_volume"`
	CategorizedSpending map[string]float64 `json:"categorized_spending"`
	UpdatedAt           *time.Time         `json:"updated_at,omitempty"`
}

// Trend series names.
const (
	SeriesCASA        = "casa"
	SeriesCards       = "cards"
	SeriesInvestments = "investments"
	SeriesLoans       = "loans"
)

// TrendSeriesTypes lists the tracked series in display order.
var TrendSeriesTypes = []string{SeriesCASA, SeriesCards, SeriesInvestments, SeriesLoans}

// MonthlyTrendPoint is one month of the four tracked series for a client.
type MonthlyTrendPoint struct {
	ClientID    string  `json:"client_id"`
	Month       string  `json:"month"`
	CASA        float64 `json:"casa"`
	Cards       float64 `json:"cards"`
	Investments float64 `json:"investments"`
	Loans       float64 `json:"loans"`
}

// Value returns the named series value, and false for unknown series.
func (p MonthlyTrendPoint) Value(series string) (float64, bool) {
	switch series {
	case SeriesCASA:
		return p.CASA, true
	case SeriesCards:
		return p.Cards, true
	case SeriesInvestments:
		return p.Investments, true
	case SeriesLoans:
		return p.Loans, true
	default:
		return 0, false
	}
}

// RiskIndicator is a named 0-100 risk reading for a client.
type RiskIndicator struct {
	ID          string     `json:"id,omitempty"`
	ClientID    string     `json:"client_id"`
	Indicator   string     `json:"indicator"`
	Value       float64    `json:"value"`
	Description string     `json:"description,omitempty"`
	RecordedAt  *time.Time `json:"recorded_at,omitempty"`
}

// Insight is a stored narrative generated for a client.
type Insight struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Narrative   string    `json:"narrative"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}
