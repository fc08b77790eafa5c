package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/store"
)

func TestRepository_CreateAndGetClient(t *testing.T) {
	mem := store.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	client := domain.Client{
		ID:          "900101-14-5523",
		Name:        "Aina Rahman",
		Email:       "aina@example.com",
		Status:      domain.StatusActive,
		RiskProfile: domain.RiskModerate,
		Age:         34,
		CreditScore: 712,
		DSR:         32.5,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.CreateClient(context.Background(), client); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.Calls()
	if len(calls) != 1 || calls[0].Op != store.OpInsert || calls[0].Collection != CollectionClients {
		t.Fatalf("unexpected calls: %+v", calls)
	}

	got, err := repo.GetClient(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if got.Name != client.Name || got.Age != 34 || got.CreditScore != 712 || got.DSR != 32.5 {
		t.Fatalf("unexpected client: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, got.CreatedAt)
	}
}

func TestRepository_GetClientNotFound(t *testing.T) {
	repo := New(store.NewMemoryClient())
	_, err := repo.GetClient(context.Background(), "000000-00-0000")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_UpdateClientKeepsCreatedAt(t *testing.T) {
	repo := New(store.NewMemoryClient())
	ctx := context.Background()
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.CreateClient(ctx, domain.Client{ID: "900101-14-5523", Name: "A", CreatedAt: created}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpdateClient(ctx, domain.Client{ID: "900101-14-5523", Name: "B"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetClient(ctx, "900101-14-5523")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "B" {
		t.Fatalf("expected name B, got %s", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at preserved, got %v", got.CreatedAt)
	}
}

func TestRepository_ListClients(t *testing.T) {
	repo := New(store.NewMemoryClient())
	ctx := context.Background()
	clients := []domain.Client{
		{ID: "900101-14-0003", Name: "Chen Wei", Status: domain.StatusActive, RiskProfile: domain.RiskAggressive},
		{ID: "900101-14-0001", Name: "Aina Rahman", Status: domain.StatusActive, RiskProfile: domain.RiskModerate},
		{ID: "900101-14-0002", Name: "Bala Kumar", Status: domain.StatusDormant, RiskProfile: domain.RiskModerate},
	}
	for _, c := range clients {
		if err := repo.CreateClient(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := repo.ListClients(ctx, ListClientsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Total != 3 || len(all.Items) != 2 {
		t.Fatalf("expected total 3 with 2 items, got %d/%d", all.Total, len(all.Items))
	}
	if all.Items[0].ID != "900101-14-0001" {
		t.Fatalf("expected id order, got %s first", all.Items[0].ID)
	}

	active, err := repo.ListClients(ctx, ListClientsOptions{Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if active.Total != 2 {
		t.Fatalf("expected 2 active clients, got %d", active.Total)
	}

	search, err := repo.ListClients(ctx, ListClientsOptions{Search: "bala"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if search.Total != 1 || search.Items[0].Name != "Bala Kumar" {
		t.Fatalf("unexpected search result: %+v", search)
	}

	beyond, err := repo.ListClients(ctx, ListClientsOptions{Offset: 10})
	if err != nil {
		t.Fatalf("offset: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 3 {
		t.Fatalf("expected empty page with total 3, got %+v", beyond)
	}
}

func TestRepository_ManualInputsRoundTrip(t *testing.T) {
	repo := New(store.NewMemoryClient())
	ctx := context.Background()
	opened := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	in := domain.ManualFinancialInput{
		ClientID:        "900101-14-5523",
		CASABalance:     12000,
		FixedDeposits:   50000,
		CreditCardLimit: 10000,
		CreditCardUsed:  2500,
		AccountBalances: domain.AccountBalances{CASA: 12000, Cards: 2500},
		ProductHoldings: []domain.ProductHolding{
			{ProductName: "Platinum Card", ProductType: "card", Balance: 2500, Status: "active", OpenedAt: &opened},
		},
	}
	if err := repo.SaveManualInputs(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in.CASABalance = 15000
	if err := repo.SaveManualInputs(ctx, in); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.GetManualInputs(ctx, in.ClientID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CASABalance != 15000 {
		t.Fatalf("expected upserted casa 15000, got %v", got.CASABalance)
	}
	if got.AccountBalances.Cards != 2500 {
		t.Fatalf("expected card balance 2500, got %v", got.AccountBalances.Cards)
	}
	if len(got.ProductHoldings) != 1 || got.ProductHoldings[0].ProductName != "Platinum Card" {
		t.Fatalf("unexpected holdings: %+v", got.ProductHoldings)
	}
	if got.ProductHoldings[0].OpenedAt == nil || !got.ProductHoldings[0].OpenedAt.Equal(opened) {
		t.Fatalf("expected opened at %v, got %v", opened, got.ProductHoldings[0].OpenedAt)
	}
}

func TestRepository_BehavioralRoundTrip(t *testing.T) {
	repo := New(store.NewMemoryClient())
	ctx := context.Background()
	data := domain.BehavioralData{
		ClientID:            "900101-14-5523",
		POSCount:            42,
		POSVolume:           3100.75,
		CategorizedSpending: map[string]float64{"groceries": 800, "travel": 1200},
	}
	if err := repo.SaveBehavioralData(ctx, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.GetBehavioralData(ctx, data.ClientID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.POSCount != 42 || got.POSVolume != 3100.75 {
		t.Fatalf("unexpected behaviour: %+v", got)
	}
	if got.CategorizedSpending["travel"] != 1200 {
		t.Fatalf("expected travel 1200, got %v", got.CategorizedSpending["travel"])
	}
}

func TestRepository_TrendPointsOrderedAndUpserted(t *testing.T) {
	mem := store.NewMemoryClient()
	repo := New(mem)
	ctx := context.Background()
	id := "900101-14-5523"
	for _, month := range []string{"2024-03", "2024-01", "2024-02"} {
		if err := repo.UpsertTrendPoint(ctx, domain.MonthlyTrendPoint{ClientID: id, Month: month, CASA: 1}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := repo.UpsertTrendPoint(ctx, domain.MonthlyTrendPoint{ClientID: id, Month: "2024-02", CASA: 9}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if mem.Count(CollectionTrends) != 3 {
		t.Fatalf("expected one record per month, got %d", mem.Count(CollectionTrends))
	}

	points, err := repo.ListTrendPoints(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2024-01", "2024-02", "2024-03"}
	for i, p := range points {
		if p.Month != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, p.Month)
		}
	}
	if points[1].CASA != 9 {
		t.Fatalf("expected upserted casa 9, got %v", points[1].CASA)
	}
}

func TestRepository_LatestInsight(t *testing.T) {
	repo := New(store.NewMemoryClient())
	ctx := context.Background()
	id := "900101-14-5523"

	if _, err := repo.LatestInsight(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found before any insight, got %v", err)
	}

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	for _, in := range []domain.Insight{
		{ClientID: id, Narrative: "new", GeneratedAt: newer},
		{ClientID: id, Narrative: "old", GeneratedAt: older},
	} {
		if _, err := repo.InsertInsight(ctx, in); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	latest, err := repo.LatestInsight(ctx, id)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Narrative != "new" {
		t.Fatalf("expected newest narrative, got %s", latest.Narrative)
	}
	if latest.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestRepository_LatestInsightWithinSameSecond(t *testing.T) {
	repo := New(store.NewMemoryClient())
	ctx := context.Background()
	id := "900101-14-5523"

	first := time.Date(2024, 1, 1, 0, 0, 0, 100, time.UTC)
	second := first.Add(400 * time.Millisecond)
	for _, in := range []domain.Insight{
		{ClientID: id, Narrative: "first", GeneratedAt: first},
		{ClientID: id, Narrative: "second", GeneratedAt: second},
	} {
		if _, err := repo.InsertInsight(ctx, in); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	latest, err := repo.LatestInsight(ctx, id)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Narrative != "second" {
		t.Fatalf("expected second, got %s", latest.Narrative)
	}
	if !latest.GeneratedAt.Equal(second) {
		t.Fatalf("expected sub-second precision kept, got %v", latest.GeneratedAt)
	}
}

func TestRepository_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := New(store.NewMemoryClient().WithError(boom))
	if _, err := repo.ListRiskIndicators(context.Background(), "900101-14-5523"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
