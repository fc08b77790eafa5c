package repository

import (
	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/store"
)

func clientProperties(c domain.Client) store.Record {
	props := store.Record{
		store.FieldID:          c.ID,
		"name":                 c.Name,
		"email":                c.Email,
		"phone":                c.Phone,
		"status":               c.Status,
		"risk_profile":         c.RiskProfile,
		"relationship_tier":    c.RelationshipTier,
		"age":                  c.Age,
		"gender":               c.Gender,
		"occupation":           c.Occupation,
		"income_bracket":       c.IncomeBracket,
		"location":             c.Location,
		"relationship_manager": c.RelationshipManager,
		"credit_score":         c.CreditScore,
		"dsr":                  c.DSR,
		"updated_at":           store.FormatTime(c.UpdatedAt),
	}
	if !c.CreatedAt.IsZero() {
		props["created_at"] = store.FormatTime(c.CreatedAt)
	}
	return props
}

func clientFromRecord(rec store.Record) domain.Client {
	c := domain.Client{
		ID:                  rec.String(store.FieldID),
		Name:                rec.String("name"),
		Email:               rec.String("email"),
		Phone:               rec.String("phone"),
		Status:              rec.String("status"),
		RiskProfile:         rec.String("risk_profile"),
		RelationshipTier:    rec.String("relationship_tier"),
		Age:                 int(store.ToInt64(rec["age"])),
		Gender:              rec.String("gender"),
		Occupation:          rec.String("occupation"),
		IncomeBracket:       rec.String("income_bracket"),
		Location:            rec.String("location"),
		RelationshipManager: rec.String("relationship_manager"),
		CreditScore:         int(store.ToInt64(rec["credit_score"])),
		DSR:                 rec.Float("dsr"),
	}
	if created := store.ToTimePtr(rec["created_at"]); created != nil {
		c.CreatedAt = *created
	}
	if updated := store.ToTimePtr(rec["updated_at"]); updated != nil {
		c.UpdatedAt = *updated
	}
	return c
}

func manualInputProperties(in domain.ManualFinancialInput) store.Record {
	holdings := make([]map[string]any, 0, len(in.ProductHoldings))
	for _, h := range in.ProductHoldings {
		holdings = append(holdings, map[string]any{
			"product_name": h.ProductName,
			"product_type": h.ProductType,
			"balance":      h.Balance,
			"status":       h.Status,
			"opened_at":    formatTimePtr(h.OpenedAt),
		})
	}
	return store.Record{
		store.FieldClientID:  in.ClientID,
		"casa_balance":       in.CASABalance,
		"fixed_deposits":     in.FixedDeposits,
		"investment_balance": in.InvestmentBalance,
		"insurance_coverage": in.InsuranceCoverage,
		"total_liabilities":  in.TotalLiabilities,
		"credit_card_limit":  in.CreditCardLimit,
		"credit_card_used":   in.CreditCardUsed,
		"monthly_inflow":     in.MonthlyInflow,
		"monthly_outflow":    in.MonthlyOutflow,
		"emergency_fund":     in.EmergencyFund,
		"monthly_expenses":   in.MonthlyExpenses,
		"account_balances": map[string]any{
			"casa":           in.AccountBalances.CASA,
			"fixed_deposits": in.AccountBalances.FixedDeposits,
			"loans":          in.AccountBalances.Loans,
			"cards":          in.AccountBalances.Cards,
		},
		"product_holdings": holdings,
		"updated_at":       formatTimePtr(in.UpdatedAt),
	}
}

func manualInputFromRecord(rec store.Record) domain.ManualFinancialInput {
	in := domain.ManualFinancialInput{
		ClientID:          rec.String(store.FieldClientID),
		CASABalance:       rec.Float("casa_balance"),
		FixedDeposits:     rec.Float("fixed_deposits"),
		InvestmentBalance: rec.Float("investment_balance"),
		InsuranceCoverage: rec.Float("insurance_coverage"),
		TotalLiabilities:  rec.Float("total_liabilities"),
		CreditCardLimit:   rec.Float("credit_card_limit"),
		CreditCardUsed:    rec.Float("credit_card_used"),
		MonthlyInflow:     rec.Float("monthly_inflow"),
		MonthlyOutflow:    rec.Float("monthly_outflow"),
		EmergencyFund:     rec.Float("emergency_fund"),
		MonthlyExpenses:   rec.Float("monthly_expenses"),
		UpdatedAt:         store.ToTimePtr(rec["updated_at"]),
	}
	if balances := toObject(rec["account_balances"]); balances != nil {
		in.AccountBalances = domain.AccountBalances{
			CASA:          store.ToFloat64(balances["casa"]),
			FixedDeposits: store.ToFloat64(balances["fixed_deposits"]),
			Loans:         store.ToFloat64(balances["loans"]),
			Cards:         store.ToFloat64(balances["cards"]),
		}
	}
	for _, item := range toObjects(rec["product_holdings"]) {
		in.ProductHoldings = append(in.ProductHoldings, domain.ProductHolding{
			ProductName: store.ToString(item["product_name"]),
			ProductType: store.ToString(item["product_type"]),
			Balance:     store.ToFloat64(item["balance"]),
			Status:      store.ToString(item["status"]),
			OpenedAt:    store.ToTimePtr(item["opened_at"]),
		})
	}
	return in
}

func calculatedProperties(d domain.CalculatedFinancialData) store.Record {
	return store.Record{
		store.FieldClientID:       d.ClientID,
		"total_assets":            d.TotalAssets,
		"total_liabilities":       d.TotalLiabilities,
		"net_position":            d.NetPosition,
		"credit_utilization_rate": d.CreditUtilizationRate,
		"profitability_score":     d.ProfitabilityScore,
		"emergency_fund_ratio":    d.EmergencyFundRatio,
		"debt_to_income":          d.DebtToIncome,
		"savings_rate":            d.SavingsRate,
		"monthly_net_cashflow":    d.MonthlyNetCashflow,
		"updated_at":              formatTimePtr(d.UpdatedAt),
	}
}

func calculatedFromRecord(rec store.Record) domain.CalculatedFinancialData {
	return domain.CalculatedFinancialData{
		ClientID:              rec.String(store.FieldClientID),
		TotalAssets:           rec.Float("total_assets"),
		TotalLiabilities:      rec.Float("total_liabilities"),
		NetPosition:           rec.Float("net_position"),
		CreditUtilizationRate: rec.Float("credit_utilization_rate"),
		ProfitabilityScore:    rec.Float("profitability_score"),
		EmergencyFundRatio:    rec.Float("emergency_fund_ratio"),
		DebtToIncome:          rec.Float("debt_to_income"),
		SavingsRate:           rec.Float("savings_rate"),
		MonthlyNetCashflow:    rec.Float("monthly_net_cashflow"),
		UpdatedAt:             store.ToTimePtr(rec["updated_at"]),
	}
}

func behavioralProperties(d domain.BehavioralData) store.Record {
	spending := make(map[string]any, len(d.CategorizedSpending))
	for category, amount := range d.CategorizedSpending {
		spending[category] = amount
	}
	return store.Record{
		store.FieldClientID:    d.ClientID,
		"fund_transfer_count":  d.FundTransferCount,
		"fund_transfer_volume": d.FundTransferVolume,
		"pos_count":            d.POSCount,
		"pos_volume":           d.POSVolume,
		"atm_count":            d.ATMCount,
		"atm_volume":           d.ATMVolume,
		"fx_count":             d.FXCount,
		"fx_volume":            d.FXVolume,
		"categorized_spending": spending,
		"updated_at":           formatTimePtr(d.UpdatedAt),
	}
}

func behavioralFromRecord(rec store.Record) domain.BehavioralData {
	d := domain.BehavioralData{
		ClientID:           rec.String(store.FieldClientID),
		FundTransferCount:  store.ToInt64(rec["fund_transfer_count"]),
		FundTransferVolume: rec.Float("fund_transfer_volume"),
		POSCount:           store.ToInt64(rec["pos_count"]),
		POSVolume:          rec.Float("pos_volume"),
		ATMCount:           store.ToInt64(rec["atm_count"]),
		ATMVolume:          rec.Float("atm_volume"),
		FXCount:            store.ToInt64(rec["fx_count"]),
		FXVolume:           rec.Float("fx_volume"),
		UpdatedAt:          store.ToTimePtr(rec["updated_at"]),
	}
	if spending := toObject(rec["categorized_spending"]); spending != nil {
		d.CategorizedSpending = make(map[string]float64, len(spending))
		for category, amount := range spending {
			d.CategorizedSpending[category] = store.ToFloat64(amount)
		}
	}
	return d
}

func trendPointProperties(p domain.MonthlyTrendPoint) store.Record {
	return store.Record{
		store.FieldClientID: p.ClientID,
		"month":             p.Month,
		"casa":              p.CASA,
		"cards":             p.Cards,
		"investments":       p.Investments,
		"loans":             p.Loans,
	}
}

func trendPointFromRecord(rec store.Record) domain.MonthlyTrendPoint {
	return domain.MonthlyTrendPoint{
		ClientID:    rec.String(store.FieldClientID),
		Month:       rec.String("month"),
		CASA:        rec.Float("casa"),
		Cards:       rec.Float("cards"),
		Investments: rec.Float("investments"),
		Loans:       rec.Float("loans"),
	}
}

func riskIndicatorProperties(ind domain.RiskIndicator) store.Record {
	props := store.Record{
		store.FieldClientID: ind.ClientID,
		"indicator":         ind.Indicator,
		"value":             ind.Value,
		"description":       ind.Description,
		"recorded_at":       formatTimePtr(ind.RecordedAt),
	}
	if ind.ID != "" {
		props[store.FieldID] = ind.ID
	}
	return props
}

func riskIndicatorFromRecord(rec store.Record) domain.RiskIndicator {
	return domain.RiskIndicator{
		ID:          rec.String(store.FieldID),
		ClientID:    rec.String(store.FieldClientID),
		Indicator:   rec.String("indicator"),
		Value:       rec.Float("value"),
		Description: rec.String("description"),
		RecordedAt:  store.ToTimePtr(rec["recorded_at"]),
	}
}

func insightProperties(in domain.Insight) store.Record {
	props := store.Record{
		store.FieldClientID: in.ClientID,
		"narrative":         in.Narrative,
		"model":             in.Model,
		"generated_at":      store.FormatTime(in.GeneratedAt),
	}
	if in.ID != "" {
		props[store.FieldID] = in.ID
	}
	return props
}

func insightFromRecord(rec store.Record) domain.Insight {
	in := domain.Insight{
		ID:        rec.String(store.FieldID),
		ClientID:  rec.String(store.FieldClientID),
		Narrative: rec.String("narrative"),
		Model:     rec.String("model"),
	}
	if generated := store.ToTimePtr(rec["generated_at"]); generated != nil {
		in.GeneratedAt = *generated
	}
	return in
}

func toObject(val any) map[string]any {
	switch v := val.(type) {
	case map[string]any:
		return v
	case store.Record:
		return v
	default:
		return nil
	}
}

func toObjects(val any) []map[string]any {
	switch v := val.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if obj := toObject(item); obj != nil {
				out = append(out, obj)
			}
		}
		return out
	default:
		return nil
	}
}
