package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/repository"
	"github.com/vanshika/clientdesk/internal/store"
)

const testClientID = "900101-14-5523"

var testNow = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

type stubRepository struct {
	mu         sync.Mutex
	clients    map[string]domain.Client
	manual     []domain.ManualFinancialInput
	calculated []domain.CalculatedFinancialData
	behavior   []domain.BehavioralData
	trends     []domain.MonthlyTrendPoint
	indicators []domain.RiskIndicator
	listResult domain.ClientListResult
	listOpts   repository.ListClientsOptions
	createErr  error
	saveErr    error
}

func newStubRepository(ids ...string) *stubRepository {
	repo := &stubRepository{clients: map[string]domain.Client{}}
	for _, id := range ids {
		repo.clients[id] = domain.Client{ID: id, Name: "Seed", CreatedAt: testNow.Add(-time.Hour)}
	}
	return repo
}

func (s *stubRepository) CreateClient(_ context.Context, c domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.clients[c.ID]; ok {
		return fmt.Errorf("create client %s: %w", c.ID, store.ErrDuplicateID)
	}
	s.clients[c.ID] = c
	return nil
}

func (s *stubRepository) UpdateClient(_ context.Context, c domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return fmt.Errorf("update client %s: %w", c.ID, store.ErrNotFound)
	}
	s.clients[c.ID] = c
	return nil
}

func (s *stubRepository) GetClient(_ context.Context, id string) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return domain.Client{}, fmt.Errorf("get client %s: %w", id, store.ErrNotFound)
	}
	return c, nil
}

func (s *stubRepository) ListClients(_ context.Context, opts repository.ListClientsOptions) (domain.ClientListResult, error) {
	s.listOpts = opts
	return s.listResult, nil
}

func (s *stubRepository) ExportClients(context.Context) ([]domain.Client, error) {
	return nil, nil
}

func (s *stubRepository) SaveManualInputs(_ context.Context, in domain.ManualFinancialInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.manual = append(s.manual, in)
	return nil
}

func (s *stubRepository) SaveCalculatedData(_ context.Context, data domain.CalculatedFinancialData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculated = append(s.calculated, data)
	return nil
}

func (s *stubRepository) SaveBehavioralData(_ context.Context, data domain.BehavioralData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.behavior = append(s.behavior, data)
	return nil
}

func (s *stubRepository) UpsertTrendPoint(_ context.Context, p domain.MonthlyTrendPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trends = append(s.trends, p)
	return nil
}

func (s *stubRepository) InsertRiskIndicator(_ context.Context, ind domain.RiskIndicator) (domain.RiskIndicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ind.ID = fmt.Sprintf("ind-%d", len(s.indicators)+1)
	s.indicators = append(s.indicators, ind)
	return ind, nil
}

func newTestService(repo ClientRepository) *ClientService {
	svc := NewClientService(repo)
	svc.WithClock(func() time.Time { return testNow })
	return svc
}

func TestClientService_CreateClientNormalizes(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)

	client, err := svc.CreateClient(context.Background(), ClientInput{
		ID:    " " + testClientID + " ",
		Name:  "  Aina   Rahman ",
		Email: "Aina.Rahman@Example.COM ",
		Phone: "+60 (12) 345-6789",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.ID != testClientID || client.Name != "Aina Rahman" {
		t.Fatalf("unexpected identity: %+v", client)
	}
	if client.Email != "aina.rahman@example.com" {
		t.Errorf("expected normalized email, got %s", client.Email)
	}
	if client.Phone != "+60123456789" {
		t.Errorf("expected normalized phone, got %s", client.Phone)
	}
	if client.Status != domain.StatusActive || client.RiskProfile != domain.RiskModerate {
		t.Errorf("expected default status and profile, got %s/%s", client.Status, client.RiskProfile)
	}
	if !client.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at from clock, got %v", client.CreatedAt)
	}
	if _, ok := repo.clients[testClientID]; !ok {
		t.Fatalf("expected client persisted")
	}
}

func TestClientService_CreateClientValidation(t *testing.T) {
	tests := []struct {
		name  string
		input ClientInput
		field string
	}{
		{"bad id", ClientInput{ID: "12345", Name: "A"}, "id"},
		{"missing name", ClientInput{ID: testClientID}, "name"},
		{"bad email", ClientInput{ID: testClientID, Name: "A", Email: "nope"}, "email"},
		{"bad status", ClientInput{ID: testClientID, Name: "A", Status: "Closed"}, "status"},
		{"bad profile", ClientInput{ID: testClientID, Name: "A", RiskProfile: "Reckless"}, "risk_profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newStubRepository())
			_, err := svc.CreateClient(context.Background(), tt.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestClientService_UpdateClientKeepsCreatedAt(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	updated, err := svc.UpdateClient(context.Background(), ClientInput{
		ID:     testClientID,
		Name:   "Aina R.",
		Status: domain.StatusDormant,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(testNow.Add(-time.Hour)) {
		t.Fatalf("expected created_at preserved, got %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(testNow) {
		t.Fatalf("expected updated_at stamped with the clock, got %v", updated.UpdatedAt)
	}
	if repo.clients[testClientID].Status != domain.StatusDormant {
		t.Fatalf("expected status persisted")
	}

	_, err = svc.UpdateClient(context.Background(), ClientInput{ID: "111111-11-1111", Name: "X"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientService_UpsertClient(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	if err := svc.UpsertClient(context.Background(), ClientInput{ID: testClientID, Name: "Renamed"}); err != nil {
		t.Fatalf("upsert existing: %v", err)
	}
	if repo.clients[testClientID].Name != "Renamed" {
		t.Fatalf("expected update on duplicate id")
	}
}

func TestClientService_ListClients(t *testing.T) {
	repo := newStubRepository()
	repo.listResult = domain.ClientListResult{
		Items: []domain.Client{{ID: testClientID}},
		Total: 101,
	}
	svc := newTestService(repo)

	page, err := svc.ListClients(context.Background(), ListClientsParams{Page: 3, PageSize: 500, Search: "  aina  "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listOpts.Limit != 200 || repo.listOpts.Offset != 400 {
		t.Fatalf("unexpected paging options: %+v", repo.listOpts)
	}
	if repo.listOpts.Search != "aina" {
		t.Fatalf("expected sanitized search, got %q", repo.listOpts.Search)
	}
	if page.Pagination.TotalPages != 1 || page.Pagination.TotalItems != 101 {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
}

func TestClientService_SaveManualInputs(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	err := svc.SaveManualInputs(context.Background(), domain.ManualFinancialInput{
		ClientID:    testClientID,
		CASABalance: 1000,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	saved := repo.manual[0]
	if saved.ProductHoldings == nil {
		t.Fatalf("expected product holdings defaulted to empty slice")
	}
	if saved.UpdatedAt == nil || !saved.UpdatedAt.Equal(testNow) {
		t.Fatalf("expected updated_at stamped, got %v", saved.UpdatedAt)
	}

	err = svc.SaveManualInputs(context.Background(), domain.ManualFinancialInput{
		ClientID:       testClientID,
		CreditCardUsed: -1,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "credit_card_used" {
		t.Fatalf("expected credit_card_used validation error, got %v", err)
	}

	err = svc.SaveManualInputs(context.Background(), domain.ManualFinancialInput{ClientID: "111111-11-1111"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown client, got %v", err)
	}
}

func TestClientService_SaveManualInputsLeavesCallerHoldingsUntouched(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	holdings := []domain.ProductHolding{{ProductName: "  Home   Loan ", ProductType: "Loan", Balance: 5000}}
	err := svc.SaveManualInputs(context.Background(), domain.ManualFinancialInput{
		ClientID:        testClientID,
		ProductHoldings: holdings,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := repo.manual[0].ProductHoldings[0].ProductName; got != "Home Loan" {
		t.Fatalf("expected sanitized product name stored, got %q", got)
	}
	if holdings[0].ProductName != "  Home   Loan " {
		t.Fatalf("caller holdings mutated: %q", holdings[0].ProductName)
	}

	err = svc.SaveManualInputs(context.Background(), domain.ManualFinancialInput{
		ClientID:        testClientID,
		ProductHoldings: []domain.ProductHolding{{ProductName: "   "}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "product_holdings[0].product_name" {
		t.Fatalf("expected product name validation error, got %v", err)
	}
}

func TestClientService_SaveCalculatedDataProfitability(t *testing.T) {
	tests := []struct {
		score   float64
		wantErr bool
	}{
		{0, false},
		{72.5, false},
		{100, false},
		{-0.5, true},
		{100.01, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			svc := newTestService(newStubRepository(testClientID))
			err := svc.SaveCalculatedData(context.Background(), domain.CalculatedFinancialData{
				ClientID:           testClientID,
				ProfitabilityScore: tt.score,
			})
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) || verr.Field != "profitability_score" {
					t.Fatalf("expected profitability validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestClientService_SaveBehavioralData(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	if err := svc.SaveBehavioralData(context.Background(), domain.BehavioralData{ClientID: testClientID, POSCount: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if repo.behavior[0].CategorizedSpending == nil {
		t.Fatalf("expected categorized spending defaulted to empty map")
	}

	err := svc.SaveBehavioralData(context.Background(), domain.BehavioralData{ClientID: testClientID, ATMCount: -2})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientService_RecordTrendPoint(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	for _, month := range []string{"2024-13", "2024-1", "24-01", ""} {
		err := svc.RecordTrendPoint(context.Background(), domain.MonthlyTrendPoint{ClientID: testClientID, Month: month})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "month" {
			t.Fatalf("month %q: expected month validation error, got %v", month, err)
		}
	}
	if err := svc.RecordTrendPoint(context.Background(), domain.MonthlyTrendPoint{ClientID: testClientID, Month: "2024-01", CASA: 10}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.trends) != 1 {
		t.Fatalf("expected one trend point stored, got %d", len(repo.trends))
	}
}

func TestClientService_RecordRiskIndicator(t *testing.T) {
	repo := newStubRepository(testClientID)
	svc := newTestService(repo)

	ind, err := svc.RecordRiskIndicator(context.Background(), domain.RiskIndicator{
		ClientID:  testClientID,
		Indicator: " credit  utilization ",
		Value:     85,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if ind.Indicator != "credit utilization" || ind.ID == "" {
		t.Fatalf("unexpected indicator: %+v", ind)
	}
	if ind.RecordedAt == nil || !ind.RecordedAt.Equal(testNow) {
		t.Fatalf("expected recorded_at stamped")
	}

	if _, err := svc.RecordRiskIndicator(context.Background(), domain.RiskIndicator{ClientID: testClientID, Indicator: "x", Value: 101}); err == nil {
		t.Fatalf("expected out-of-range value rejected")
	}
}

func TestClientService_WithMemoryStore(t *testing.T) {
	repo := repository.New(store.NewMemoryClient())
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.CreateClient(ctx, ClientInput{ID: testClientID, Name: "Aina"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateClient(ctx, ClientInput{ID: testClientID, Name: "Aina"}); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if err := svc.UpsertClient(ctx, ClientInput{ID: testClientID, Name: "Aina Rahman"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := svc.GetClient(ctx, testClientID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Aina Rahman" {
		t.Fatalf("expected upserted name, got %s", got.Name)
	}
}
