// Package graph maps decoded export records onto the Neo4j property graph.
// Every write is an idempotent MERGE keyed on the label's uniqueness key;
// relationships are only created when both endpoints already exist.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphStore provides the load-side graph operations.
type GraphStore struct {
	opener SessionOpener
}

// New creates a GraphStore on a driver. database may be empty.
func New(driver neo4j.DriverWithContext, database string) *GraphStore {
	return NewWithOpener(DriverOpener{Driver: driver, Database: database})
}

// NewWithOpener creates a GraphStore on an arbitrary session source.
func NewWithOpener(opener SessionOpener) *GraphStore {
	return &GraphStore{opener: opener}
}

// Clear deletes every node and relationship in the database.
func (g *GraphStore) Clear(ctx context.Context) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	if _, err := sess.Run(ctx, `MATCH (n) DETACH DELETE n`, nil); err != nil {
		return fmt.Errorf("graph: clear: %w", err)
	}
	return nil
}

// Index is a single-property lookup index.
type Index struct {
	Name     string
	Label    string
	Property string
}

// Cypher returns the idempotent creation statement for the index.
func (i Index) Cypher() string {
	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)", i.Name, i.Label, i.Property)
}

// Indexes lists the lookup indexes created before loading.
var Indexes = []Index{
	{"product_id", "Product", "product_id"},
	{"event_id", "Event", "event_id"},
	{"trade_show_id", "TradeShow", "event_id"},
	{"rd_project_id", "RDProject", "project_id"},
	{"sale_customer", "Sale", "customer_type"},
	{"sale_id", "Sale", "sale_id"},
	{"battery_type", "BatteryType", "type"},
	{"image_filename", "Image", "filename"},
}

// EnsureIndexes creates every index in Indexes. A failing statement does not
// stop the others; it returns how many succeeded and the joined failures.
func (g *GraphStore) EnsureIndexes(ctx context.Context) (int, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	var (
		created int
		errs    []error
	)
	for _, idx := range Indexes {
		if _, err := sess.Run(ctx, idx.Cypher(), nil); err != nil {
			errs = append(errs, fmt.Errorf("graph: index %s: %w", idx.Name, err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

// Writer saves records on one open session. Each record is written in its
// own write transaction, so records already saved stay saved when a later
// one fails.
type Writer struct {
	sess    CypherSession
	written int
}

// Write opens a session, hands a Writer to fn and closes the session when fn
// returns. It reports how many records fn saved successfully.
func (g *GraphStore) Write(ctx context.Context, fn func(w *Writer) error) (int, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	w := &Writer{sess: sess}
	err := fn(w)
	return w.written, err
}

// statement is one parameterized Cypher statement.
type statement struct {
	cypher string
	params map[string]any
}

// record runs the statements of one record in a single write transaction.
func (w *Writer) record(ctx context.Context, stmts []statement) error {
	_, err := w.sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		for _, st := range stmts {
			if _, err := tx.Run(ctx, st.cypher, st.params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	w.written++
	return nil
}
