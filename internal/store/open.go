package store

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNeo4j    = "neo4j"
)

// Open builds the Client selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverMemory:
		return NewMemoryClient(), nil
	case DriverSQLite, DriverPostgres:
		client, err := NewSQLClient(ctx, opts.Driver, opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	case DriverNeo4j:
		client, err := NewNeo4jClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
