package store

import (
	"context"
	"errors"
)

// Client defines the minimal contract the repositories need from the
// underlying record store. Collections are independent: no call spans more
// than one collection and no cross-collection transactions are offered.
type Client interface {
	// Get returns the first record matching filter, or ErrNotFound.
	Get(ctx context.Context, collection string, filter Filter) (Record, error)
	// GetMany returns every record matching filter, optionally ordered.
	GetMany(ctx context.Context, collection string, filter Filter, order *Order) ([]Record, error)
	// Insert stores a new record, assigning an "id" when the record has none.
	Insert(ctx context.Context, collection string, record Record) (Record, error)
	// Update merges patch into every record matching filter and returns the
	// first updated record. It returns ErrNotFound when nothing matches.
	Update(ctx context.Context, collection string, filter Filter, patch Record) (Record, error)
	// Upsert updates the records matching filter or inserts record merged
	// with filter when nothing matches.
	Upsert(ctx context.Context, collection string, filter Filter, record Record) (Record, error)
	// DeleteMany removes every record matching filter. Deleting from an empty
	// match is not an error.
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Record is a single stored document keyed by field name.
type Record map[string]any

// Filter is an equality filter: every key must equal the record's value.
type Filter map[string]any

// Order sorts GetMany results by a single field.
type Order struct {
	Field      string
	Descending bool
}

// Reserved field names pushed down to backends as indexed columns.
const (
	FieldID       = "id"
	FieldClientID = "client_id"
)

// Options configures a store client implementation.
type Options struct {
	Driver         string
	DSN            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrNotFound indicates no record matched the filter.
	ErrNotFound = errors.New("record not found")
	// ErrMissingDSN indicates the store DSN is not provided.
	ErrMissingDSN = errors.New("store DSN is required")
	// ErrUnknownDriver indicates an unsupported store driver name.
	ErrUnknownDriver = errors.New("unknown store driver")
	// ErrDuplicateID indicates an insert collided with an existing record id.
	ErrDuplicateID = errors.New("duplicate record id")
)

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	dst := make(Record, len(r))
	for k, v := range r {
		dst[k] = v
	}
	return dst
}

// String returns the field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	return ToString(r[field])
}

// Float returns the field as a float64. Absent and non-numeric values read as 0.
func (r Record) Float(field string) float64 {
	return ToFloat64(r[field])
}

// IsNotFound reports whether err signals a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
