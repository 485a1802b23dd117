package graph

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// CypherResult is the subset of a Neo4j result stream the store reads.
type CypherResult interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// CypherRunner runs a single parameterized statement.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
}

// CypherSession is a scoped unit of database work. Callers must Close it.
// ExecuteWrite runs work in one write transaction, committed when work
// succeeds and rolled back otherwise. It makes a single attempt.
type CypherSession interface {
	CypherRunner
	Close(ctx context.Context) error
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error)
}

// SessionOpener hands out sessions. The production implementation wraps a
// driver; tests substitute recording fakes.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

// DriverOpener opens sessions on a Neo4j driver against one database.
// An empty Database uses the server default.
type DriverOpener struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// OpenSession implements SessionOpener.
func (o DriverOpener) OpenSession(ctx context.Context) CypherSession {
	cfg := neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: o.Database,
	}
	return &driverSession{sess: o.Driver.NewSession(ctx, cfg)}
}

// neo4jSession is the part of neo4j.SessionWithContext the adapter uses.
type neo4jSession interface {
	Run(ctx context.Context, cypher string, params map[string]any, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error)
	BeginTransaction(ctx context.Context, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ExplicitTransaction, error)
	Close(ctx context.Context) error
}

type driverSession struct {
	sess neo4jSession
}

func (s *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	res, err := s.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

// ExecuteWrite uses an explicit transaction rather than the driver's managed
// one, which would retry transient failures.
func (s *driverSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	tx, err := s.sess.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	out, err := work(txRunner{tx: tx})
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return nil, errors.Join(err, rbErr)
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

type txRunner struct {
	tx neo4j.ExplicitTransaction
}

func (t txRunner) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res, nil
}
