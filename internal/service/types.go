package service

import (
	"fmt"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
)

// ClientInput is the inbound client payload. It stays separate from the
// storage model so normalisation happens in one place.
type ClientInput struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone,omitempty"`
	Status              string     `json:"status"`
	RiskProfile         string     `json:"risk_profile"`
	RelationshipTier    string     `json:"relationship_tier,omitempty"`
	Age                 int        `json:"age,omitempty"`
	Gender              string     `json:"gender,omitempty"`
	Occupation          string     `json:"occupation,omitempty"`
	IncomeBracket       string     `json:"income_bracket,omitempty"`
	Location            string     `json:"location,omitempty"`
	RelationshipManager string     `json:"relationship_manager,omitempty"`
	CreditScore         int        `json:"credit_score,omitempty"`
	DSR                 float64    `json:"dsr,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// ClientsPage represents paginated clients with metadata.
type ClientsPage struct {
	Items      []domain.Client
	Pagination PaginationMeta
}

// ListClientsParams defines filters for listing clients.
type ListClientsParams struct {
	Page        int
	PageSize    int
	Search      string
	Status      string
	RiskProfile string
	SortField   string
	SortOrder   string
}
