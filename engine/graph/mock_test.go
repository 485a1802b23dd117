package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type mockResult struct {
	records []*neo4j.Record
	idx     int
	err     error
}

func newMockResult(recs ...*neo4j.Record) *mockResult {
	return &mockResult{records: recs, idx: -1}
}

func (r *mockResult) Next(_ context.Context) bool {
	r.idx++
	return r.idx < len(r.records)
}

func (r *mockResult) Record() *neo4j.Record {
	if r.idx < 0 || r.idx >= len(r.records) {
		return nil
	}
	return r.records[r.idx]
}

func (r *mockResult) Err() error { return r.err }

type mockSession struct {
	runResult *mockResult
	runErr    error
	writeErr  error
	closed    int
}

func (s *mockSession) Run(_ context.Context, _ string, _ map[string]any) (CypherResult, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	if s.runResult == nil {
		return newMockResult(), nil
	}
	return s.runResult, nil
}

func (s *mockSession) Close(_ context.Context) error {
	s.closed++
	return nil
}

func (s *mockSession) ExecuteWrite(_ context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return work(s)
}

type mockOpener struct {
	session CypherSession
}

func (o *mockOpener) OpenSession(_ context.Context) CypherSession {
	return o.session
}

// trackingTx records all cypher queries executed. Statements containing
// failOn return errFail.
type trackingTx struct {
	queries []string
	params  []map[string]any
	failOn  string
	errFail error
}

func (t *trackingTx) Run(_ context.Context, cypher string, params map[string]any) (CypherResult, error) {
	t.queries = append(t.queries, cypher)
	t.params = append(t.params, params)
	if t.failOn != "" && strings.Contains(cypher, t.failOn) {
		return nil, t.errFail
	}
	return newMockResult(), nil
}

type trackingSession struct {
	tx     *trackingTx
	closed int
}

func (s *trackingSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	return s.tx.Run(ctx, cypher, params)
}
func (s *trackingSession) Close(_ context.Context) error { s.closed++; return nil }
func (s *trackingSession) ExecuteWrite(_ context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return work(s.tx)
}

type trackingOpener struct {
	session *trackingSession
	opened  int
}

func (o *trackingOpener) OpenSession(_ context.Context) CypherSession {
	o.opened++
	return o.session
}

func newTrackingStore() (*GraphStore, *trackingTx, *trackingOpener) {
	tx := &trackingTx{}
	opener := &trackingOpener{session: &trackingSession{tx: tx}}
	return NewWithOpener(opener), tx, opener
}

func countRecord(typ string, n int64) *neo4j.Record {
	return &neo4j.Record{
		Keys:   []string{"type", "count"},
		Values: []any{typ, n},
	}
}
