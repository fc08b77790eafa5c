package store

import (
	"context"
	"sync"
)

// MemoryClient is an in-memory implementation of the Client interface used
// for tests and local demos. It records every call and supports per-collection
// fault injection so partial-failure paths can be exercised without a
// running database.
type MemoryClient struct {
	*documentClient
	data *memoryBackend

	mu           sync.Mutex
	calls        []ExecutedCall
	failures     map[string]error
	err          error
	connectivity error
}

// ExecutedCall captures an operation issued against the store.
type ExecutedCall struct {
	Op         string
	Collection string
	Filter     Filter
}

// Operation names recorded in ExecutedCall.Op.
const (
	OpGet        = "get"
	OpGetMany    = "getMany"
	OpInsert     = "insert"
	OpUpdate     = "update"
	OpUpsert     = "upsert"
	OpDeleteMany = "deleteMany"
)

// NewMemoryClient instantiates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	data := &memoryBackend{collections: make(map[string][]Record)}
	return &MemoryClient{
		documentClient: newDocumentClient(data),
		data:           data,
		failures:       make(map[string]error),
	}
}

// WithError configures the client to return err for every subsequent call.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// FailCollection makes every call against collection return err.
// Passing a nil err clears the fault.
func (m *MemoryClient) FailCollection(collection string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, collection)
	} else {
		m.failures[collection] = err
	}
	return m
}

func (m *MemoryClient) Get(ctx context.Context, collection string, filter Filter) (Record, error) {
	if err := m.record(OpGet, collection, filter); err != nil {
		return nil, err
	}
	return m.documentClient.Get(ctx, collection, filter)
}

func (m *MemoryClient) GetMany(ctx context.Context, collection string, filter Filter, order *Order) ([]Record, error) {
	if err := m.record(OpGetMany, collection, filter); err != nil {
		return nil, err
	}
	return m.documentClient.GetMany(ctx, collection, filter, order)
}

func (m *MemoryClient) Insert(ctx context.Context, collection string, record Record) (Record, error) {
	if err := m.record(OpInsert, collection, nil); err != nil {
		return nil, err
	}
	return m.documentClient.Insert(ctx, collection, record)
}

func (m *MemoryClient) Update(ctx context.Context, collection string, filter Filter, patch Record) (Record, error) {
	if err := m.record(OpUpdate, collection, filter); err != nil {
		return nil, err
	}
	return m.documentClient.Update(ctx, collection, filter, patch)
}

func (m *MemoryClient) Upsert(ctx context.Context, collection string, filter Filter, record Record) (Record, error) {
	if err := m.record(OpUpsert, collection, filter); err != nil {
		return nil, err
	}
	return m.documentClient.Upsert(ctx, collection, filter, record)
}

func (m *MemoryClient) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := m.record(OpDeleteMany, collection, filter); err != nil {
		return 0, err
	}
	return m.documentClient.DeleteMany(ctx, collection, filter)
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

// Calls returns a snapshot of executed operations.
func (m *MemoryClient) Calls() []ExecutedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedCall(nil), m.calls...)
}

// ResetCalls clears the call log.
func (m *MemoryClient) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Count returns the number of records held in collection.
func (m *MemoryClient) Count(collection string) int {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	return len(m.data.collections[collection])
}

func (m *MemoryClient) record(op, collection string, filter Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ExecutedCall{
		Op:         op,
		Collection: collection,
		Filter:     cloneFilter(filter),
	})
	if m.err != nil {
		return m.err
	}
	if err, ok := m.failures[collection]; ok {
		return err
	}
	return nil
}

type memoryBackend struct {
	mu          sync.Mutex
	collections map[string][]Record
}

func (b *memoryBackend) scan(_ context.Context, collection string, p pushdown) ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Record
	for _, rec := range b.collections[collection] {
		if p.id != "" && ToString(rec[FieldID]) != p.id {
			continue
		}
		if p.clientID != "" && ToString(rec[FieldClientID]) != p.clientID {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (b *memoryBackend) insert(_ context.Context, collection string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := ToString(rec[FieldID])
	for _, existing := range b.collections[collection] {
		if ToString(existing[FieldID]) == id {
			return ErrDuplicateID
		}
	}
	b.collections[collection] = append(b.collections[collection], rec.Clone())
	return nil
}

func (b *memoryBackend) replace(_ context.Context, collection string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := ToString(rec[FieldID])
	for i, existing := range b.collections[collection] {
		if ToString(existing[FieldID]) == id {
			b.collections[collection][i] = rec.Clone()
			return nil
		}
	}
	return ErrNotFound
}

func (b *memoryBackend) remove(_ context.Context, collection string, ids []string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	return b.filterOut(collection, func(rec Record) bool {
		_, ok := drop[ToString(rec[FieldID])]
		return ok
	}), nil
}

func (b *memoryBackend) removeByClient(_ context.Context, collection, clientID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filterOut(collection, func(rec Record) bool {
		return ToString(rec[FieldClientID]) == clientID
	}), nil
}

func (b *memoryBackend) filterOut(collection string, drop func(Record) bool) int64 {
	var kept []Record
	var removed int64
	for _, rec := range b.collections[collection] {
		if drop(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	b.collections[collection] = kept
	return removed
}

func (b *memoryBackend) ping(context.Context) error  { return nil }
func (b *memoryBackend) close(context.Context) error { return nil }
