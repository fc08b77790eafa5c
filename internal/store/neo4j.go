package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jClient keeps each record as a :Record node carrying its collection,
// id, clientId and the JSON payload. Bolt-compatible endpoints such as
// Neptune's openCypher work with the same driver.
type Neo4jClient struct {
	*documentClient
}

// NewNeo4jClient establishes a Bolt connection using the official Neo4j driver.
func NewNeo4jClient(ctx context.Context, opts Options) (*Neo4jClient, error) {
	if opts.DSN == "" {
		return nil, ErrMissingDSN
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.DSN, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	runner := &boltRunner{driver: driver, database: opts.Database}
	if _, err := runner.run(ctx, true, cypherEnsureIndex, nil); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("ensure record index: %w", err)
	}
	return newNeo4jClient(runner), nil
}

func newNeo4jClient(runner cypherRunner) *Neo4jClient {
	return &Neo4jClient{documentClient: newDocumentClient(&graphBackend{runner: runner})}
}

// cypherRunner executes a single statement and returns its rows.
type cypherRunner interface {
	run(ctx context.Context, write bool, cypher string, params map[string]any) ([]map[string]any, error)
	verify(ctx context.Context) error
	close(ctx context.Context) error
}

type boltRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (r *boltRunner) run(ctx context.Context, write bool, cypher string, params map[string]any) ([]map[string]any, error) {
	mode := neo4j.AccessModeRead
	if write {
		mode = neo4j.AccessModeWrite
	}
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for res.Next(ctx) {
		rec := res.Record()
		row := make(map[string]any, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			row[key] = value
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *boltRunner) verify(ctx context.Context) error { return r.driver.VerifyConnectivity(ctx) }
func (r *boltRunner) close(ctx context.Context) error  { return r.driver.Close(ctx) }

const (
	cypherEnsureIndex = `CREATE INDEX record_lookup IF NOT EXISTS FOR (r:Record) ON (r.collection, r.id)`

	cypherScan = `MATCH (r:Record {collection: $collection})
WHERE ($id = '' OR r.id = $id) AND ($clientId = '' OR r.clientId = $clientId)
RETURN r.payload AS payload
ORDER BY r.createdAt, r.id`

	cypherExists = `MATCH (r:Record {collection: $collection, id: $id})
RETURN count(r) AS n`

	cypherCreate = `CREATE (r:Record {
  collection: $collection,
  id: $id,
  clientId: $clientId,
  payload: $payload,
  createdAt: timestamp(),
  updatedAt: timestamp()
})`

	cypherReplace = `MATCH (r:Record {collection: $collection, id: $id})
SET r.clientId = $clientId, r.payload = $payload, r.updatedAt = timestamp()
RETURN count(r) AS n`

	cypherRemoveIDs = `MATCH (r:Record {collection: $collection})
WHERE r.id IN $ids
WITH collect(r) AS nodes, count(r) AS n
FOREACH (x IN nodes | DETACH DELETE x)
RETURN n`

	cypherRemoveClient = `MATCH (r:Record {collection: $collection, clientId: $clientId})
WITH collect(r) AS nodes, count(r) AS n
FOREACH (x IN nodes | DETACH DELETE x)
RETURN n`
)

type graphBackend struct {
	runner cypherRunner
}

func (b *graphBackend) scan(ctx context.Context, collection string, p pushdown) ([]Record, error) {
	rows, err := b.runner.run(ctx, false, cypherScan, map[string]any{
		"collection": collection,
		"id":         p.id,
		"clientId":   p.clientID,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		var rec Record
		if err := json.Unmarshal([]byte(ToString(row["payload"])), &rec); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *graphBackend) insert(ctx context.Context, collection string, rec Record) error {
	id := ToString(rec[FieldID])
	n, err := b.count(ctx, false, cypherExists, map[string]any{"collection": collection, "id": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateID
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = b.runner.run(ctx, true, cypherCreate, map[string]any{
		"collection": collection,
		"id":         id,
		"clientId":   ToString(rec[FieldClientID]),
		"payload":    string(payload),
	})
	return err
}

func (b *graphBackend) replace(ctx context.Context, collection string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	n, err := b.count(ctx, true, cypherReplace, map[string]any{
		"collection": collection,
		"id":         ToString(rec[FieldID]),
		"clientId":   ToString(rec[FieldClientID]),
		"payload":    string(payload),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *graphBackend) remove(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return b.count(ctx, true, cypherRemoveIDs, map[string]any{
		"collection": collection,
		"ids":        ids,
	})
}

func (b *graphBackend) removeByClient(ctx context.Context, collection, clientID string) (int64, error) {
	return b.count(ctx, true, cypherRemoveClient, map[string]any{
		"collection": collection,
		"clientId":   clientID,
	})
}

func (b *graphBackend) ping(ctx context.Context) error  { return b.runner.verify(ctx) }
func (b *graphBackend) close(ctx context.Context) error { return b.runner.close(ctx) }

func (b *graphBackend) count(ctx context.Context, write bool, cypher string, params map[string]any) (int64, error) {
	rows, err := b.runner.run(ctx, write, cypher, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return ToInt64(rows[0]["n"]), nil
}
