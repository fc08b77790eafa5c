package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type runnerCall struct {
	write  bool
	cypher string
	params map[string]any
}

type fakeRunner struct {
	calls []runnerCall
	rows  map[string][]map[string]any
	err   error
}

func (f *fakeRunner) run(_ context.Context, write bool, cypher string, params map[string]any) ([]map[string]any, error) {
	f.calls = append(f.calls, runnerCall{write: write, cypher: cypher, params: params})
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[cypher], nil
}

func (f *fakeRunner) verify(context.Context) error { return f.err }
func (f *fakeRunner) close(context.Context) error  { return nil }

func TestNeo4jClientGetDecodesPayload(t *testing.T) {
	runner := &fakeRunner{rows: map[string][]map[string]any{
		cypherScan: {{"payload": `{"id":"900101-14-5523","name":"Aina","client_id":""}`}},
	}}
	client := newNeo4jClient(runner)

	rec, err := client.Get(context.Background(), "clients", Filter{"id": "900101-14-5523"})
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if rec.String("name") != "Aina" {
		t.Fatalf("expected name Aina, got %s", rec.String("name"))
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected single query, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	if call.write {
		t.Fatalf("expected read access mode for scan")
	}
	if call.params["id"] != "900101-14-5523" || call.params["collection"] != "clients" {
		t.Fatalf("unexpected params: %+v", call.params)
	}
}

func TestNeo4jClientInsertWritesPayload(t *testing.T) {
	runner := &fakeRunner{rows: map[string][]map[string]any{
		cypherExists: {{"n": int64(0)}},
	}}
	client := newNeo4jClient(runner)

	if _, err := client.Insert(context.Background(), "ai_insights", Record{"client_id": "c1", "narrative": "ok"}); err != nil {
		t.Fatalf("insert returned error: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected exists check and create, got %d calls", len(runner.calls))
	}
	create := runner.calls[1]
	if !create.write || !strings.Contains(create.cypher, "CREATE (r:Record") {
		t.Fatalf("expected create statement, got %q", create.cypher)
	}
	if create.params["clientId"] != "c1" {
		t.Fatalf("expected clientId param c1, got %v", create.params["clientId"])
	}
	if !strings.Contains(ToString(create.params["payload"]), `"narrative":"ok"`) {
		t.Fatalf("expected payload JSON, got %v", create.params["payload"])
	}
}

func TestNeo4jClientInsertDuplicate(t *testing.T) {
	runner := &fakeRunner{rows: map[string][]map[string]any{
		cypherExists: {{"n": int64(1)}},
	}}
	client := newNeo4jClient(runner)
	_, err := client.Insert(context.Background(), "clients", Record{"id": "a"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestNeo4jClientDeleteByClient(t *testing.T) {
	runner := &fakeRunner{rows: map[string][]map[string]any{
		cypherRemoveClient: {{"n": int64(4)}},
	}}
	client := newNeo4jClient(runner)
	n, err := client.DeleteMany(context.Background(), "financial_trends", Filter{"client_id": "c1"})
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 deleted, got %d", n)
	}
	if runner.calls[0].params["clientId"] != "c1" {
		t.Fatalf("unexpected params: %+v", runner.calls[0].params)
	}
}

func TestNeo4jClientPropagatesErrors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("bolt down")}
	client := newNeo4jClient(runner)
	if _, err := client.GetMany(context.Background(), "clients", Filter{}, nil); err == nil {
		t.Fatalf("expected error from runner")
	}
	if err := client.VerifyConnectivity(context.Background()); err == nil {
		t.Fatalf("expected connectivity error")
	}
}
