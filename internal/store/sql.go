package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"              // register sqlite as a database/sql driver
)

// Dialect names accepted by NewSQLClient.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var sqlOpen = sql.Open

type sqlDialect struct {
	name    string
	driver  string
	schema  []string
	dollars bool
}

var (
	sqliteDialect = sqlDialect{
		name:   DialectSQLite,
		driver: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS records (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				collection TEXT NOT NULL,
				id TEXT NOT NULL,
				client_id TEXT NOT NULL DEFAULT '',
				payload TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (collection, id)
			)`,
			`CREATE INDEX IF NOT EXISTS records_client_idx ON records (collection, client_id)`,
		},
	}
	postgresDialect = sqlDialect{
		name:   DialectPostgres,
		driver: "pgx",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS records (
				seq BIGSERIAL PRIMARY KEY,
				collection TEXT NOT NULL,
				id TEXT NOT NULL,
				client_id TEXT NOT NULL DEFAULT '',
				payload JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL,
				UNIQUE (collection, id)
			)`,
			`CREATE INDEX IF NOT EXISTS records_client_idx ON records (collection, client_id)`,
		},
		dollars: true,
	}
)

// SQLClient stores records as JSON documents in a single relational table,
// with id and client_id lifted into indexed columns.
type SQLClient struct {
	*documentClient
	db *sql.DB
}

// NewSQLClient opens a database/sql handle for the dialect, verifies it and
// ensures the records table exists.
func NewSQLClient(ctx context.Context, dialect string, opts Options) (*SQLClient, error) {
	d, err := dialectFor(dialect)
	if err != nil {
		return nil, err
	}
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	if d.name == DialectSQLite && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = filepath.Clean(dsn) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlOpen(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if opts.MaxConnections > 0 {
		db.SetMaxOpenConns(opts.MaxConnections)
	}
	if d.name == DialectSQLite {
		// A single writer avoids SQLITE_BUSY under the engine's concurrent fan-out.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure records table: %w", err)
		}
	}

	backend := &sqlBackend{db: db, dialect: d, now: time.Now}
	return &SQLClient{documentClient: newDocumentClient(backend), db: db}, nil
}

// DB exposes the underlying handle for integration hooks.
func (c *SQLClient) DB() *sql.DB { return c.db }

func dialectFor(name string) (sqlDialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case DialectSQLite, "sqlite3":
		return sqliteDialect, nil
	case DialectPostgres, "postgresql", "pgx":
		return postgresDialect, nil
	default:
		return sqlDialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
}

type sqlBackend struct {
	db      *sql.DB
	dialect sqlDialect
	now     func() time.Time
}

func (b *sqlBackend) scan(ctx context.Context, collection string, p pushdown) ([]Record, error) {
	query := `SELECT payload FROM records WHERE collection = ?`
	args := []any{collection}
	if p.id != "" {
		query += ` AND id = ?`
		args = append(args, p.id)
	}
	if p.clientID != "" {
		query += ` AND client_id = ?`
		args = append(args, p.clientID)
	}
	query += ` ORDER BY seq`

	rows, err := b.db.QueryContext(ctx, b.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (b *sqlBackend) insert(ctx context.Context, collection string, rec Record) error {
	id := ToString(rec[FieldID])
	var exists int
	err := b.db.QueryRowContext(ctx,
		b.rebind(`SELECT COUNT(1) FROM records WHERE collection = ? AND id = ?`),
		collection, id,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return ErrDuplicateID
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		b.rebind(`INSERT INTO records (collection, id, client_id, payload, updated_at) VALUES (?, ?, ?, ?, ?)`),
		collection, id, ToString(rec[FieldClientID]), string(payload), b.timestamp(),
	)
	return err
}

func (b *sqlBackend) replace(ctx context.Context, collection string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	res, err := b.db.ExecContext(ctx,
		b.rebind(`UPDATE records SET client_id = ?, payload = ?, updated_at = ? WHERE collection = ? AND id = ?`),
		ToString(rec[FieldClientID]), string(payload), b.timestamp(), collection, ToString(rec[FieldID]),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *sqlBackend) remove(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := b.db.ExecContext(ctx,
		b.rebind(`DELETE FROM records WHERE collection = ? AND id IN (`+placeholders+`)`),
		args...,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *sqlBackend) removeByClient(ctx context.Context, collection, clientID string) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		b.rebind(`DELETE FROM records WHERE collection = ? AND client_id = ?`),
		collection, clientID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *sqlBackend) ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *sqlBackend) close(context.Context) error {
	return b.db.Close()
}

func (b *sqlBackend) timestamp() any {
	now := b.now().UTC()
	if b.dialect.dollars {
		return now
	}
	return now.Format(time.RFC3339Nano)
}

// rebind rewrites ? placeholders into $n for dialects that need it.
func (b *sqlBackend) rebind(query string) string {
	if !b.dialect.dollars {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
