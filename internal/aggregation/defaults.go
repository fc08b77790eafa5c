package aggregation

import (
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
)

// DefaultsSchemaVersion versions the zero-value table below. Bump it when a
// default shape changes so consumers can tell view models apart.
const DefaultsSchemaVersion = 1

// SyntheticTrendMonths is how many placeholder months are fabricated for a
// client without stored trend points.
const SyntheticTrendMonths = 6

func defaultManualInputs(clientID string) domain.ManualFinancialInput {
	return domain.ManualFinancialInput{
		ClientID:        clientID,
		ProductHoldings: []domain.ProductHolding{},
	}
}

func defaultCalculated(clientID string) domain.CalculatedFinancialData {
	return domain.CalculatedFinancialData{ClientID: clientID}
}

func defaultBehavior(clientID string) domain.BehavioralData {
	return domain.BehavioralData{
		ClientID:            clientID,
		CategorizedSpending: map[string]float64{},
	}
}

// hydrate replaces every nil collection left by partially filled records.
func hydrate(set *ClientRecordSet) {
	if set.ManualInputs.ProductHoldings == nil {
		set.ManualInputs.ProductHoldings = []domain.ProductHolding{}
	}
	if set.Behavior.CategorizedSpending == nil {
		set.Behavior.CategorizedSpending = map[string]float64{}
	}
	if set.Trends == nil {
		set.Trends = []domain.MonthlyTrendPoint{}
	}
	if set.Sources == nil {
		set.Sources = map[string]SourceStatus{}
	}
}

// syntheticTrend builds SyntheticTrendMonths months ending at the month of
// now, each repeating the current snapshot.
func syntheticTrend(clientID string, in domain.ManualFinancialInput, now time.Time) []domain.MonthlyTrendPoint {
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.MonthlyTrendPoint, 0, SyntheticTrendMonths)
	for i := SyntheticTrendMonths - 1; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		points = append(points, domain.MonthlyTrendPoint{
			ClientID:    clientID,
			Month:       month.Format("2006-01"),
			CASA:        in.CASABalance,
			Cards:       in.CreditCardUsed,
			Investments: in.InvestmentBalance,
			Loans:       in.TotalLiabilities,
		})
	}
	return points
}
