package lifecycle

// ClientCollection holds the client identity records. It is always deleted
// last.
const ClientCollection = "clients"

// DependentCollections lists every per-client collection in deletion order.
// The order is fixed so reports and logs are reproducible.
var DependentCollections = []string{
	"liabilities_credit",
	"investments_portfolio",
	"transaction_behavior",
	"financial_summary",
	"dashboard_metrics",
	"financial_assets",
	"monthly_cashflow",
	"product_holdings",
	"relationship_profitability",
	"credit_utilization",
	"risk_indicators",
	"financial_trends",
	"asset_utilization",
	"emergency_fund_analysis",
	"recent_transactions_summary",
	"categorised_spending",
	"large_unusual_transactions",
	"fund_transfers",
	"atm_pos_activity",
	"fx_transactions",
	"manual_financial_inputs",
	"calculated_financial_data",
	"ai_insights",
}
