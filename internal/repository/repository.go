package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/store"
)

// Collection names owned by the typed repository.
const (
	CollectionClients        = "clients"
	CollectionManualInputs   = "manual_financial_inputs"
	CollectionCalculated     = "calculated_financial_data"
	CollectionBehavior       = "transaction_behavior"
	CollectionTrends         = "financial_trends"
	CollectionRiskIndicators = "risk_indicators"
	CollectionInsights       = "ai_insights"
)

// ListClientsOptions defines filters and pagination for client listing.
type ListClientsOptions struct {
	Offset      int
	Limit       int
	Status      string
	RiskProfile string
	Search      string
	SortField   string
	SortOrder   string
}

// Repository encapsulates typed persistence over the record store.
type Repository struct {
	client store.Client
}

// New instantiates a Repository backed by the supplied store client.
func New(client store.Client) *Repository {
	return &Repository{client: client}
}

// CreateClient inserts a new client record.
func (r *Repository) CreateClient(ctx context.Context, c domain.Client) error {
	if c.ID == "" {
		return errors.New("client id is required")
	}
	if _, err := r.client.Insert(ctx, CollectionClients, clientProperties(c)); err != nil {
		return fmt.Errorf("create client %s: %w", c.ID, err)
	}
	return nil
}

// UpdateClient replaces the mutable fields of an existing client.
func (r *Repository) UpdateClient(ctx context.Context, c domain.Client) error {
	if c.ID == "" {
		return errors.New("client id is required")
	}
	patch := clientProperties(c)
	delete(patch, "created_at")
	if _, err := r.client.Update(ctx, CollectionClients, store.Filter{store.FieldID: c.ID}, patch); err != nil {
		return fmt.Errorf("update client %s: %w", c.ID, err)
	}
	return nil
}

// GetClient loads a single client. A missing client yields an error matching
// store.ErrNotFound.
func (r *Repository) GetClient(ctx context.Context, clientID string) (domain.Client, error) {
	rec, err := r.client.Get(ctx, CollectionClients, store.Filter{store.FieldID: clientID})
	if err != nil {
		return domain.Client{}, fmt.Errorf("get client %s: %w", clientID, err)
	}
	return clientFromRecord(rec), nil
}

// ListClients returns paginated clients matching the provided filters.
func (r *Repository) ListClients(ctx context.Context, opts ListClientsOptions) (domain.ClientListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	filter := store.Filter{}
	if status := strings.TrimSpace(opts.Status); status != "" {
		filter["status"] = status
	}
	if profile := strings.TrimSpace(opts.RiskProfile); profile != "" {
		filter["risk_profile"] = profile
	}

	records, err := r.client.GetMany(ctx, CollectionClients, filter, clientOrder(opts.SortField, opts.SortOrder))
	if err != nil {
		return domain.ClientListResult{}, fmt.Errorf("list clients query: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	var matched []domain.Client
	for _, rec := range records {
		c := clientFromRecord(rec)
		if search != "" && !clientMatchesSearch(c, search) {
			continue
		}
		matched = append(matched, c)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return domain.ClientListResult{Items: []domain.Client{}, Total: total}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return domain.ClientListResult{
		Items: matched[offset:end],
		Total: total,
	}, nil
}

// GetManualInputs loads the operator-entered figures for a client.
func (r *Repository) GetManualInputs(ctx context.Context, clientID string) (domain.ManualFinancialInput, error) {
	rec, err := r.client.Get(ctx, CollectionManualInputs, store.Filter{store.FieldClientID: clientID})
	if err != nil {
		return domain.ManualFinancialInput{}, fmt.Errorf("get manual inputs %s: %w", clientID, err)
	}
	return manualInputFromRecord(rec), nil
}

// SaveManualInputs upserts the single manual-input record of a client.
func (r *Repository) SaveManualInputs(ctx context.Context, in domain.ManualFinancialInput) error {
	if in.ClientID == "" {
		return errors.New("client id is required")
	}
	filter := store.Filter{store.FieldClientID: in.ClientID}
	if _, err := r.client.Upsert(ctx, CollectionManualInputs, filter, manualInputProperties(in)); err != nil {
		return fmt.Errorf("save manual inputs %s: %w", in.ClientID, err)
	}
	return nil
}

// GetCalculatedData loads the upstream-derived figures for a client.
func (r *Repository) GetCalculatedData(ctx context.Context, clientID string) (domain.CalculatedFinancialData, error) {
	rec, err := r.client.Get(ctx, CollectionCalculated, store.Filter{store.FieldClientID: clientID})
	if err != nil {
		return domain.CalculatedFinancialData{}, fmt.Errorf("get calculated data %s: %w", clientID, err)
	}
	return calculatedFromRecord(rec), nil
}

// SaveCalculatedData upserts the single calculated record of a client.
func (r *Repository) SaveCalculatedData(ctx context.Context, data domain.CalculatedFinancialData) error {
	if data.ClientID == "" {
		return errors.New("client id is required")
	}
	filter := store.Filter{store.FieldClientID: data.ClientID}
	if _, err := r.client.Upsert(ctx, CollectionCalculated, filter, calculatedProperties(data)); err != nil {
		return fmt.Errorf("save calculated data %s: %w", data.ClientID, err)
	}
	return nil
}

// GetBehavioralData loads the transaction behaviour summary for a client.
func (r *Repository) GetBehavioralData(ctx context.Context, clientID string) (domain.BehavioralData, error) {
	rec, err := r.client.Get(ctx, CollectionBehavior, store.Filter{store.FieldClientID: clientID})
	if err != nil {
		return domain.BehavioralData{}, fmt.Errorf("get behavioral data %s: %w", clientID, err)
	}
	return behavioralFromRecord(rec), nil
}

// SaveBehavioralData upserts the behaviour summary of a client.
func (r *Repository) SaveBehavioralData(ctx context.Context, data domain.BehavioralData) error {
	if data.ClientID == "" {
		return errors.New("client id is required")
	}
	filter := store.Filter{store.FieldClientID: data.ClientID}
	if _, err := r.client.Upsert(ctx, CollectionBehavior, filter, behavioralProperties(data)); err != nil {
		return fmt.Errorf("save behavioral data %s: %w", data.ClientID, err)
	}
	return nil
}

// ListTrendPoints returns the monthly trend series of a client, oldest first.
func (r *Repository) ListTrendPoints(ctx context.Context, clientID string) ([]domain.MonthlyTrendPoint, error) {
	records, err := r.client.GetMany(ctx, CollectionTrends,
		store.Filter{store.FieldClientID: clientID},
		&store.Order{Field: "month"},
	)
	if err != nil {
		return nil, fmt.Errorf("list trend points %s: %w", clientID, err)
	}
	points := make([]domain.MonthlyTrendPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, trendPointFromRecord(rec))
	}
	// Months are YYYY-MM, so lexical order is chronological.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points, nil
}

// UpsertTrendPoint writes one month of trend data keyed by (client, month).
func (r *Repository) UpsertTrendPoint(ctx context.Context, p domain.MonthlyTrendPoint) error {
	if p.ClientID == "" || p.Month == "" {
		return errors.New("client id and month are required")
	}
	filter := store.Filter{store.FieldClientID: p.ClientID, "month": p.Month}
	if _, err := r.client.Upsert(ctx, CollectionTrends, filter, trendPointProperties(p)); err != nil {
		return fmt.Errorf("upsert trend point %s/%s: %w", p.ClientID, p.Month, err)
	}
	return nil
}

// ListRiskIndicators returns the risk indicators of a client ordered by name.
func (r *Repository) ListRiskIndicators(ctx context.Context, clientID string) ([]domain.RiskIndicator, error) {
	records, err := r.client.GetMany(ctx, CollectionRiskIndicators,
		store.Filter{store.FieldClientID: clientID},
		&store.Order{Field: "indicator"},
	)
	if err != nil {
		return nil, fmt.Errorf("list risk indicators %s: %w", clientID, err)
	}
	out := make([]domain.RiskIndicator, 0, len(records))
	for _, rec := range records {
		out = append(out, riskIndicatorFromRecord(rec))
	}
	return out, nil
}

// InsertRiskIndicator stores a new risk reading.
func (r *Repository) InsertRiskIndicator(ctx context.Context, ind domain.RiskIndicator) (domain.RiskIndicator, error) {
	if ind.ClientID == "" || ind.Indicator == "" {
		return domain.RiskIndicator{}, errors.New("client id and indicator are required")
	}
	rec, err := r.client.Insert(ctx, CollectionRiskIndicators, riskIndicatorProperties(ind))
	if err != nil {
		return domain.RiskIndicator{}, fmt.Errorf("insert risk indicator %s: %w", ind.ClientID, err)
	}
	return riskIndicatorFromRecord(rec), nil
}

// InsertInsight stores a generated narrative.
func (r *Repository) InsertInsight(ctx context.Context, in domain.Insight) (domain.Insight, error) {
	if in.ClientID == "" {
		return domain.Insight{}, errors.New("client id is required")
	}
	rec, err := r.client.Insert(ctx, CollectionInsights, insightProperties(in))
	if err != nil {
		return domain.Insight{}, fmt.Errorf("insert insight %s: %w", in.ClientID, err)
	}
	return insightFromRecord(rec), nil
}

// LatestInsight returns the most recently generated narrative for a client.
func (r *Repository) LatestInsight(ctx context.Context, clientID string) (domain.Insight, error) {
	records, err := r.client.GetMany(ctx, CollectionInsights,
		store.Filter{store.FieldClientID: clientID},
		&store.Order{Field: "generated_at", Descending: true},
	)
	if err != nil {
		return domain.Insight{}, fmt.Errorf("latest insight %s: %w", clientID, err)
	}
	if len(records) == 0 {
		return domain.Insight{}, fmt.Errorf("latest insight %s: %w", clientID, store.ErrNotFound)
	}
	return insightFromRecord(records[0]), nil
}

// ExportClients returns every client ordered by id.
func (r *Repository) ExportClients(ctx context.Context) ([]domain.Client, error) {
	records, err := r.client.GetMany(ctx, CollectionClients, store.Filter{}, &store.Order{Field: store.FieldID})
	if err != nil {
		return nil, fmt.Errorf("export clients query: %w", err)
	}
	out := make([]domain.Client, 0, len(records))
	for _, rec := range records {
		out = append(out, clientFromRecord(rec))
	}
	return out, nil
}

func clientMatchesSearch(c domain.Client, search string) bool {
	return strings.Contains(strings.ToLower(c.ID), search) ||
		strings.Contains(strings.ToLower(c.Name), search) ||
		strings.Contains(strings.ToLower(c.Email), search)
}

func clientOrder(field, order string) *store.Order {
	desc := strings.EqualFold(order, "DESC")
	switch strings.ToLower(field) {
	case "name":
		return &store.Order{Field: "name", Descending: desc}
	case "creditscore":
		return &store.Order{Field: "credit_score", Descending: desc}
	case "dsr":
		return &store.Order{Field: "dsr", Descending: desc}
	case "createdat":
		return &store.Order{Field: "created_at", Descending: desc}
	case "updatedat":
		return &store.Order{Field: "updated_at", Descending: desc}
	default:
		return &store.Order{Field: store.FieldID, Descending: desc}
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return store.FormatTime(*t)
}
