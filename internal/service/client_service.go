package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/metrics"
	"github.com/vanshika/clientdesk/internal/repository"
	"github.com/vanshika/clientdesk/internal/store"
)

// ClientRepository is the storage contract required by the client service.
type ClientRepository interface {
	CreateClient(ctx context.Context, c domain.Client) error
	UpdateClient(ctx context.Context, c domain.Client) error
	GetClient(ctx context.Context, clientID string) (domain.Client, error)
	ListClients(ctx context.Context, opts repository.ListClientsOptions) (domain.ClientListResult, error)
	ExportClients(ctx context.Context) ([]domain.Client, error)
	SaveManualInputs(ctx context.Context, in domain.ManualFinancialInput) error
	SaveCalculatedData(ctx context.Context, data domain.CalculatedFinancialData) error
	SaveBehavioralData(ctx context.Context, data domain.BehavioralData) error
	UpsertTrendPoint(ctx context.Context, p domain.MonthlyTrendPoint) error
	InsertRiskIndicator(ctx context.Context, ind domain.RiskIndicator) (domain.RiskIndicator, error)
}

// ClientService validates and normalises writes before delegating persistence
// to the repository.
type ClientService struct {
	repo  ClientRepository
	nowFn func() time.Time
}

// NewClientService constructs a ClientService.
func NewClientService(repo ClientRepository) *ClientService {
	return &ClientService{
		repo:  repo,
		nowFn: time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *ClientService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// ListClients retrieves paginated clients matching provided filters.
func (s *ClientService) ListClients(ctx context.Context, params ListClientsParams) (ClientsPage, error) {
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	offset := (page - 1) * pageSize

	result, err := s.repo.ListClients(ctx, repository.ListClientsOptions{
		Offset:      offset,
		Limit:       pageSize,
		Status:      params.Status,
		RiskProfile: params.RiskProfile,
		Search:      sanitizeString(params.Search),
		SortField:   params.SortField,
		SortOrder:   params.SortOrder,
	})
	if err != nil {
		return ClientsPage{}, err
	}

	return ClientsPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// GetClient fetches a single client.
func (s *ClientService) GetClient(ctx context.Context, clientID string) (domain.Client, error) {
	return s.repo.GetClient(ctx, clientID)
}

// ExportClients returns every client.
func (s *ClientService) ExportClients(ctx context.Context) ([]domain.Client, error) {
	return s.repo.ExportClients(ctx)
}

// CreateClient validates and inserts a new client.
func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (domain.Client, error) {
	client, err := s.buildClient(input)
	if err != nil {
		return domain.Client{}, err
	}
	if err := s.repo.CreateClient(ctx, client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

// UpdateClient replaces the mutable fields of an existing client. The
// creation timestamp is preserved.
func (s *ClientService) UpdateClient(ctx context.Context, input ClientInput) (domain.Client, error) {
	existing, err := s.repo.GetClient(ctx, input.ID)
	if err != nil {
		return domain.Client{}, err
	}
	client, err := s.buildClient(input)
	if err != nil {
		return domain.Client{}, err
	}
	client.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

// UpsertClient creates the client, or updates it when the id already exists.
func (s *ClientService) UpsertClient(ctx context.Context, input ClientInput) error {
	client, err := s.buildClient(input)
	if err != nil {
		return err
	}
	err = s.repo.CreateClient(ctx, client)
	if errors.Is(err, store.ErrDuplicateID) {
		return s.repo.UpdateClient(ctx, client)
	}
	return err
}

// SaveManualInputs stores operator-entered balances for an existing client.
func (s *ClientService) SaveManualInputs(ctx context.Context, in domain.ManualFinancialInput) error {
	if err := s.requireClient(ctx, in.ClientID); err != nil {
		return err
	}
	amounts := map[string]float64{
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
	}
	if err := requireNonNegative(amounts); err != nil {
		return err
	}
	holdings := make([]domain.ProductHolding, len(in.ProductHoldings))
	for i, p := range in.ProductHoldings {
		p.ProductName = sanitizeString(p.ProductName)
		if p.ProductName == "" {
			return invalid(fmt.Sprintf("product_holdings[%d].product_name", i), "is required")
		}
		holdings[i] = p
	}
	in.ProductHoldings = holdings
	now := s.nowFn().UTC()
	in.UpdatedAt = &now
	return s.repo.SaveManualInputs(ctx, in)
}

// SaveCalculatedData stores upstream-derived figures for an existing client.
// Profitability must already be on the 0-100 scale.
func (s *ClientService) SaveCalculatedData(ctx context.Context, data domain.CalculatedFinancialData) error {
	if err := s.requireClient(ctx, data.ClientID); err != nil {
		return err
	}
	if err := metrics.ValidateProfitabilityScore(data.ProfitabilityScore); err != nil {
		return invalid("profitability_score", "%v", err)
	}
	amounts := map[string]float64{
		"total_assets":            data.TotalAssets,
		"total_liabilities":       data.TotalLiabilities,
		"credit_utilization_rate": data.CreditUtilizationRate,
		"emergency_fund_ratio":    data.EmergencyFundRatio,
		"debt_to_income":          data.DebtToIncome,
	}
	if err := requireNonNegative(amounts); err != nil {
		return err
	}
	now := s.nowFn().UTC()
	data.UpdatedAt = &now
	return s.repo.SaveCalculatedData(ctx, data)
}

// SaveBehavioralData stores the transaction behaviour summary of an existing client.
func (s *ClientService) SaveBehavioralData(ctx context.Context, data domain.BehavioralData) error {
	if err := s.requireClient(ctx, data.ClientID); err != nil {
		return err
	}
	if data.FundTransferCount < 0 || data.POSCount < 0 || data.ATMCount < 0 || data.FXCount < 0 {
		return invalid("counts", "must not be negative")
	}
	amounts := map[string]float64{
		"fund_transfer_volume": data.FundTransferVolume,
		"pos_volume":           data.POSVolume,
		"atm_volume":           data.ATMVolume,
		"fx_volume":            data.FXVolume,
	}
	for category, v := range data.CategorizedSpending {
		amounts["categorized_spending."+category] = v
	}
	if err := requireNonNegative(amounts); err != nil {
		return err
	}
	if data.CategorizedSpending == nil {
		data.CategorizedSpending = map[string]float64{}
	}
	now := s.nowFn().UTC()
	data.UpdatedAt = &now
	return s.repo.SaveBehavioralData(ctx, data)
}

// RecordTrendPoint upserts one month of trend data for an existing client.
func (s *ClientService) RecordTrendPoint(ctx context.Context, p domain.MonthlyTrendPoint) error {
	if !validMonth(p.Month) {
		return invalid("month", "must be formatted as YYYY-MM")
	}
	if err := s.requireClient(ctx, p.ClientID); err != nil {
		return err
	}
	return s.repo.UpsertTrendPoint(ctx, p)
}

// RecordRiskIndicator stores a new 0-100 risk reading for an existing client.
func (s *ClientService) RecordRiskIndicator(ctx context.Context, ind domain.RiskIndicator) (domain.RiskIndicator, error) {
	ind.Indicator = sanitizeString(ind.Indicator)
	if ind.Indicator == "" {
		return domain.RiskIndicator{}, invalid("indicator", "is required")
	}
	if math.IsNaN(ind.Value) || ind.Value < 0 || ind.Value > 100 {
		return domain.RiskIndicator{}, invalid("value", "must be between 0 and 100")
	}
	if err := s.requireClient(ctx, ind.ClientID); err != nil {
		return domain.RiskIndicator{}, err
	}
	if ind.RecordedAt == nil {
		now := s.nowFn().UTC()
		ind.RecordedAt = &now
	}
	return s.repo.InsertRiskIndicator(ctx, ind)
}

func (s *ClientService) buildClient(input ClientInput) (domain.Client, error) {
	id := sanitizeString(input.ID)
	if !domain.ValidClientID(id) {
		return domain.Client{}, invalid("id", "must match NNNNNN-NN-NNNN")
	}
	name := sanitizeString(input.Name)
	if name == "" {
		return domain.Client{}, invalid("name", "is required")
	}
	email := normalizeEmail(input.Email)
	if email != "" && !emailRegex.MatchString(email) {
		return domain.Client{}, invalid("email", "is not a valid address")
	}

	status := sanitizeString(input.Status)
	if status == "" {
		status = domain.StatusActive
	}
	if !domain.ValidStatus(status) {
		return domain.Client{}, invalid("status", "unknown status %q", status)
	}
	profile := sanitizeString(input.RiskProfile)
	if profile == "" {
		profile = domain.RiskModerate
	}
	if !domain.ValidRiskProfile(profile) {
		return domain.Client{}, invalid("risk_profile", "unknown risk profile %q", profile)
	}
	if input.Age < 0 || input.CreditScore < 0 || input.DSR < 0 {
		return domain.Client{}, invalid("age", "numeric fields must not be negative")
	}

	now := s.nowFn().UTC()
	createdAt := now
	updatedAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}
	if input.UpdatedAt != nil {
		updatedAt = input.UpdatedAt.UTC()
	}

	return domain.Client{
		ID:                  id,
		Name:                name,
		Email:               email,
		Phone:               normalizePhone(input.Phone),
		Status:              status,
		RiskProfile:         profile,
		RelationshipTier:    sanitizeString(input.RelationshipTier),
		Age:                 input.Age,
		Gender:              sanitizeString(input.Gender),
		Occupation:          sanitizeString(input.Occupation),
		IncomeBracket:       sanitizeString(input.IncomeBracket),
		Location:            sanitizeString(input.Location),
		RelationshipManager: sanitizeString(input.RelationshipManager),
		CreditScore:         input.CreditScore,
		DSR:                 input.DSR,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

func (s *ClientService) requireClient(ctx context.Context, clientID string) error {
	if !domain.ValidClientID(clientID) {
		return invalid("client_id", "must match NNNNNN-NN-NNNN")
	}
	_, err := s.repo.GetClient(ctx, clientID)
	return err
}

func requireNonNegative(amounts map[string]float64) error {
	for field, v := range amounts {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(field, "must be a finite number")
		}
		if v < 0 {
			return invalid(field, "must not be negative")
		}
	}
	return nil
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
		if total > 0 && totalPages == 0 {
			totalPages = 1
		}
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
