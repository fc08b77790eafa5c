package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/metrics"
	"github.com/vanshika/clientdesk/internal/service"
)

// Dataset contains a generated portfolio, one slice per collection.
type Dataset struct {
	Clients        []service.ClientInput            `json:"clients"`
	ManualInputs   []domain.ManualFinancialInput    `json:"manual_inputs"`
	Calculated     []domain.CalculatedFinancialData `json:"calculated"`
	Behavior       []domain.BehavioralData          `json:"behavior"`
	Trends         []domain.MonthlyTrendPoint       `json:"trends"`
	RiskIndicators []domain.RiskIndicator           `json:"risk_indicators"`
}

// Generator produces synthetic client portfolios.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumClients <= 0 {
		cfg.NumClients = DefaultConfig().NumClients
	}
	if cfg.NumClients > MaxClients {
		cfg.NumClients = MaxClients
	}
	if cfg.TrendMonths <= 0 {
		cfg.TrendMonths = DefaultConfig().TrendMonths
	}
	if cfg.MissingRecordChance < 0 {
		cfg.MissingRecordChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	cfg.Now = cfg.Now.UTC()

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises a portfolio. Some clients are deliberately left
// without optional records. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	var ds Dataset
	now := g.cfg.Now

	for i := 0; i < g.cfg.NumClients; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		client := g.randomClient(i, now)
		ds.Clients = append(ds.Clients, client)

		manual := g.randomManualInputs(client.ID, now)
		if !g.skip() {
			ds.ManualInputs = append(ds.ManualInputs, manual)
		}
		if !g.skip() {
			ds.Calculated = append(ds.Calculated, g.calculatedFrom(manual, now))
		}
		if !g.skip() {
			ds.Behavior = append(ds.Behavior, g.randomBehavior(client.ID))
		}
		if !g.skip() {
			ds.Trends = append(ds.Trends, g.trendFor(manual, now)...)
		}
		if !g.skip() {
			ds.RiskIndicators = append(ds.RiskIndicators, g.riskIndicatorsFor(manual, now)...)
		}
	}

	return ds, nil
}

func (g *Generator) skip() bool {
	return g.rand.Float64() < g.cfg.MissingRecordChance
}

func (g *Generator) randomClient(idx int, now time.Time) service.ClientInput {
	dob := time.Date(1950+g.rand.Intn(50), time.Month(1+g.rand.Intn(12)), 1+g.rand.Intn(28), 0, 0, 0, 0, time.UTC)
	id := fmt.Sprintf("%02d%02d%02d-%02d-%04d", dob.Year()%100, int(dob.Month()), dob.Day(), 1+g.rand.Intn(14), idx+1)
	createdAt := now.Add(-time.Duration(g.rand.Intn(3*365*24)) * time.Hour)
	updatedAt := createdAt.Add(time.Duration(g.rand.Intn(72)) * time.Hour)

	first := pick(g, g.nameFragments.first)
	last := pick(g, g.nameFragments.last)
	return service.ClientInput{
		ID:                  id,
		Name:                first + " " + last,
		Email:               fmt.Sprintf("%s.%s%d@%s", first, last, idx+1, pick(g, g.nameFragments.domains)),
		Phone:               fmt.Sprintf("+601%d%07d", g.rand.Intn(10), g.rand.Intn(10000000)),
		Status:              pick(g, []string{domain.StatusActive, domain.StatusActive, domain.StatusActive, domain.StatusDormant, domain.StatusHighRisk}),
		RiskProfile:         pick(g, []string{domain.RiskConservative, domain.RiskModerate, domain.RiskAggressive}),
		RelationshipTier:    pick(g, []string{"Mass", "Emerging Affluent", "Affluent", "Private"}),
		Age:                 now.Year() - dob.Year(),
		Gender:              pick(g, []string{"Female", "Male"}),
		Occupation:          pick(g, g.nameFragments.occupations),
		IncomeBracket:       pick(g, []string{"<5k", "5k-10k", "10k-20k", "20k+"}),
		Location:            pick(g, g.nameFragments.cities),
		RelationshipManager: pick(g, g.nameFragments.managers),
		CreditScore:         300 + g.rand.Intn(551),
		DSR:                 money(g.rand.Float64() * 70),
		CreatedAt:           &createdAt,
		UpdatedAt:           &updatedAt,
	}
}

func (g *Generator) randomManualInputs(clientID string, now time.Time) domain.ManualFinancialInput {
	casa := money(1000 + g.rand.Float64()*150000)
	fd := money(g.rand.Float64() * 300000)
	inv := money(g.rand.Float64() * 500000)
	loans := money(g.rand.Float64() * 400000)
	limit := money(float64(5+g.rand.Intn(46)) * 1000)
	used := money(limit * g.rand.Float64())
	inflow := money(3000 + g.rand.Float64()*30000)
	outflow := money(inflow * (0.5 + g.rand.Float64()*0.7))

	holdings := []domain.ProductHolding{
		{ProductName: "Savings Account", ProductType: "CASA", Balance: casa, Status: "Active"},
	}
	if fd > 0 {
		holdings = append(holdings, domain.ProductHolding{ProductName: "Fixed Deposit", ProductType: "Deposit", Balance: fd, Status: "Active"})
	}
	if loans > 100000 {
		opened := now.AddDate(-1-g.rand.Intn(10), 0, 0)
		holdings = append(holdings, domain.ProductHolding{ProductName: "Home Loan", ProductType: "Loan", Balance: loans, Status: "Active", OpenedAt: &opened})
	}

	return domain.ManualFinancialInput{
		ClientID:          clientID,
		CASABalance:       casa,
		FixedDeposits:     fd,
		InvestmentBalance: inv,
		InsuranceCoverage: money(g.rand.Float64() * 1000000),
		TotalLiabilities:  loans,
		CreditCardLimit:   limit,
		CreditCardUsed:    used,
		MonthlyInflow:     inflow,
		MonthlyOutflow:    outflow,
		EmergencyFund:     money(outflow * g.rand.Float64() * 9),
		MonthlyExpenses:   outflow,
		AccountBalances: domain.AccountBalances{
			CASA:          casa,
			FixedDeposits: fd,
			Loans:         loans,
			Cards:         used,
		},
		ProductHoldings: holdings,
	}
}

// calculatedFrom derives the upstream figures from the manual inputs so the
// two sources agree for generated clients.
func (g *Generator) calculatedFrom(in domain.ManualFinancialInput, now time.Time) domain.CalculatedFinancialData {
	assets := metrics.Sum(in.CASABalance, in.FixedDeposits, in.InvestmentBalance)
	liabilities := metrics.Sum(in.TotalLiabilities, in.CreditCardUsed)
	dti := 0.0
	if in.MonthlyInflow > 0 {
		dti = money(in.TotalLiabilities / 120 / in.MonthlyInflow * 100)
	}
	return domain.CalculatedFinancialData{
		ClientID:              in.ClientID,
		TotalAssets:           assets,
		TotalLiabilities:      liabilities,
		NetPosition:           metrics.NetPosition(assets, liabilities),
		CreditUtilizationRate: money(metrics.CreditUtilizationRate(in.CreditCardUsed, in.CreditCardLimit)),
		ProfitabilityScore:    money(g.rand.Float64() * 100),
		EmergencyFundRatio:    money(metrics.EmergencyFundRatio(in.EmergencyFund, in.MonthlyExpenses)),
		DebtToIncome:          dti,
		SavingsRate:           money((in.MonthlyInflow - in.MonthlyOutflow) / in.MonthlyInflow * 100),
		MonthlyNetCashflow:    money(in.MonthlyInflow - in.MonthlyOutflow),
	}
}

func (g *Generator) randomBehavior(clientID string) domain.BehavioralData {
	spending := make(map[string]float64, len(g.nameFragments.categories))
	for _, category := range g.nameFragments.categories {
		if g.rand.Float64() < 0.7 {
			spending[category] = money(g.rand.Float64() * 3000)
		}
	}
	transfers := int64(g.rand.Intn(60))
	pos := int64(g.rand.Intn(120))
	atm := int64(g.rand.Intn(20))
	fx := int64(g.rand.Intn(5))
	return domain.BehavioralData{
		ClientID:            clientID,
		FundTransferCount:   transfers,
		FundTransferVolume:  money(float64(transfers) * (50 + g.rand.Float64()*900)),
		POSCount:            pos,
		POSVolume:           money(float64(pos) * (10 + g.rand.Float64()*150)),
		ATMCount:            atm,
		ATMVolume:           money(float64(atm) * (50 + g.rand.Float64()*450)),
		FXCount:             fx,
		FXVolume:            money(float64(fx) * (100 + g.rand.Float64()*4900)),
		CategorizedSpending: spending,
	}
}

// trendFor walks backwards from the current balances with small monthly drift.
func (g *Generator) trendFor(in domain.ManualFinancialInput, now time.Time) []domain.MonthlyTrendPoint {
	months := g.cfg.TrendMonths
	points := make([]domain.MonthlyTrendPoint, months)
	casa, cards, inv, loans := in.CASABalance, in.CreditCardUsed, in.InvestmentBalance, in.TotalLiabilities
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := months - 1; i >= 0; i-- {
		points[i] = domain.MonthlyTrendPoint{
			ClientID:    in.ClientID,
			Month:       anchor.AddDate(0, i-months+1, 0).Format("2006-01"),
			CASA:        money(casa),
			Cards:       money(cards),
			Investments: money(inv),
			Loans:       money(loans),
		}
		casa *= 0.95 + g.rand.Float64()*0.1
		cards *= 0.9 + g.rand.Float64()*0.2
		inv *= 0.97 + g.rand.Float64()*0.06
		loans *= 1.005
	}
	return points
}

func (g *Generator) riskIndicatorsFor(in domain.ManualFinancialInput, now time.Time) []domain.RiskIndicator {
	recorded := now.Add(-time.Duration(g.rand.Intn(30*24)) * time.Hour)
	utilization := money(metrics.CreditUtilizationRate(in.CreditCardUsed, in.CreditCardLimit))
	return []domain.RiskIndicator{
		{
			ClientID:    in.ClientID,
			Indicator:   "credit_utilization",
			Value:       clampScore(utilization),
			Description: "Share of card limit in use",
			RecordedAt:  &recorded,
		},
		{
			ClientID:    in.ClientID,
			Indicator:   "liquidity_stress",
			Value:       money(g.rand.Float64() * 100),
			Description: "Outflow pressure against liquid balances",
			RecordedAt:  &recorded,
		},
	}
}

func pick(g *Generator, options []string) string {
	return options[g.rand.Intn(len(options))]
}

func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

type nameFragments struct {
	first       []string
	last        []string
	domains     []string
	cities      []string
	occupations []string
	managers    []string
	categories  []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:       []string{"Aina", "Farid", "Mei", "Ravi", "Siti", "Daniel", "Nurul", "Kumar", "Hui", "Amir", "Lina", "Jason"},
		last:        []string{"Rahman", "Tan", "Lim", "Nair", "Abdullah", "Wong", "Ismail", "Lee", "Chong", "Hassan"},
		domains:     []string{"example.com", "mail.com", "inbox.test"},
		cities:      []string{"Kuala Lumpur", "Penang", "Johor Bahru", "Ipoh", "Kuching", "Kota Kinabalu", "Melaka"},
		occupations: []string{"Engineer", "Doctor", "Business Owner", "Teacher", "Accountant", "Civil Servant", "Retired"},
		managers:    []string{"RM-001", "RM-002", "RM-003", "RM-004"},
		categories:  []string{"groceries", "dining", "travel", "utilities", "shopping", "healthcare"},
	}
}
