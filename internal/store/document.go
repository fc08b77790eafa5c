package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// documentBackend is the narrow persistence surface each driver implements.
// Filtering beyond the pushed-down id/client_id keys, ordering and patch
// merging are handled once by documentClient.
type documentBackend interface {
	scan(ctx context.Context, collection string, p pushdown) ([]Record, error)
	insert(ctx context.Context, collection string, rec Record) error
	replace(ctx context.Context, collection string, rec Record) error
	remove(ctx context.Context, collection string, ids []string) (int64, error)
	removeByClient(ctx context.Context, collection, clientID string) (int64, error)
	ping(ctx context.Context) error
	close(ctx context.Context) error
}

// documentClient adapts a documentBackend to the Client contract.
type documentClient struct {
	backend documentBackend
	newID   func() string
}

func newDocumentClient(backend documentBackend) *documentClient {
	return &documentClient{
		backend: backend,
		newID:   uuid.NewString,
	}
}

func (c *documentClient) Get(ctx context.Context, collection string, filter Filter) (Record, error) {
	records, err := c.match(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("get %s: %w", collection, ErrNotFound)
	}
	return records[0], nil
}

func (c *documentClient) GetMany(ctx context.Context, collection string, filter Filter, order *Order) ([]Record, error) {
	records, err := c.match(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	SortRecords(records, order)
	return records, nil
}

func (c *documentClient) Insert(ctx context.Context, collection string, record Record) (Record, error) {
	rec := record.Clone()
	if rec == nil {
		rec = Record{}
	}
	if ToString(rec[FieldID]) == "" {
		rec[FieldID] = c.newID()
	}
	rec, err := normalizeRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	if err := c.backend.insert(ctx, collection, rec); err != nil {
		return nil, fmt.Errorf("insert %s %s: %w", collection, ToString(rec[FieldID]), err)
	}
	return rec.Clone(), nil
}

func (c *documentClient) Update(ctx context.Context, collection string, filter Filter, patch Record) (Record, error) {
	records, err := c.match(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("update %s: %w", collection, ErrNotFound)
	}

	var first Record
	for _, rec := range records {
		for k, v := range patch {
			if k == FieldID {
				continue
			}
			rec[k] = v
		}
		rec, err := normalizeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", collection, err)
		}
		if err := c.backend.replace(ctx, collection, rec); err != nil {
			return nil, fmt.Errorf("update %s %s: %w", collection, ToString(rec[FieldID]), err)
		}
		if first == nil {
			first = rec.Clone()
		}
	}
	return first, nil
}

func (c *documentClient) Upsert(ctx context.Context, collection string, filter Filter, record Record) (Record, error) {
	updated, err := c.Update(ctx, collection, filter, record)
	if err == nil {
		return updated, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	merged := record.Clone()
	if merged == nil {
		merged = Record{}
	}
	for k, v := range filter {
		merged[k] = v
	}
	return c.Insert(ctx, collection, merged)
}

func (c *documentClient) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	if clientID, ok := filter[FieldClientID].(string); ok && len(filter) == 1 {
		n, err := c.backend.removeByClient(ctx, collection, clientID)
		if err != nil {
			return 0, fmt.Errorf("delete %s for client %s: %w", collection, clientID, err)
		}
		return n, nil
	}

	records, err := c.match(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, ToString(rec[FieldID]))
	}
	n, err := c.backend.remove(ctx, collection, ids)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return n, nil
}

func (c *documentClient) VerifyConnectivity(ctx context.Context) error {
	return c.backend.ping(ctx)
}

func (c *documentClient) Close(ctx context.Context) error {
	return c.backend.close(ctx)
}

func (c *documentClient) match(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	candidates, err := c.backend.scan(ctx, collection, pushdownOf(filter))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	out := candidates[:0]
	for _, rec := range candidates {
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}
