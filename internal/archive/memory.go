package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/vanshika/clientdesk/internal/lifecycle"
)

// Memory keeps encoded reports in process, keyed like the other sinks.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemory instantiates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Store encodes and keeps the report.
func (m *Memory) Store(_ context.Context, report lifecycle.Report) error {
	data, err := encode(report)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[Key(report)] = data
	return nil
}

// Keys lists stored keys in lexical order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the stored bytes for key.
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
