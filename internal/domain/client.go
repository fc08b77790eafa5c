package domain

import (
	"regexp"
	"time"
)

// Client statuses.
const (
	StatusActive   = "Active"
	StatusDormant  = "Dormant"
	StatusHighRisk = "High Risk"
)

// Risk profiles.
const (
	RiskConservative = "Conservative"
	RiskModerate     = "Moderate"
	RiskAggressive   = "Aggressive"
)

// ClientIDPattern is the national-ID shape every client key must follow.
var ClientIDPattern = regexp.MustCompile(`^\d{6}-\d{2}-\d{4}$`)

// ValidClientID reports whether id matches ClientIDPattern.
func ValidClientID(id string) bool {
	return ClientIDPattern.MatchString(id)
}

// ValidStatus reports whether s is a known client status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusDormant, StatusHighRisk:
		return true
	}
	return false
}

// ValidRiskProfile reports whether p is a known risk profile.
func ValidRiskProfile(p string) bool {
	switch p {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	}
	return false
}

// Client is the identity record every other per-client collection hangs off.
type Client struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	Status              string    `json:"status"`
	RiskProfile         string    `json:"risk_profile"`
	RelationshipTier    string    `json:"relationship_tier,omitempty"`
	Age                 int       `json:"age,omitempty"`
	Gender              string    `json:"gender,omitempty"`
	Occupation          string    `json:"occupation,omitempty"`
	IncomeBracket       string    `json:"income_bracket,omitempty"`
	Location            string    `json:"location,omitempty"`
	RelationshipManager string    `json:"relationship_manager,omitempty"`
	CreditScore         int       `json:"credit_score,omitempty"`
	DSR                 float64   `json:"dsr"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ClientListResult captures paginated client list results.
type ClientListResult struct {
	Items []Client
	Total int64
}
