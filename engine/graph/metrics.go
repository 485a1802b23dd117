package graph

import (
	"context"
	"fmt"
)

// NodeCounts returns node counts grouped by label.
func (g *GraphStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := g.countBy(ctx, `MATCH (n) RETURN labels(n)[0] AS type, count(*) AS count`)
	if err != nil {
		return nil, fmt.Errorf("graph: node counts: %w", err)
	}
	return counts, nil
}

// RelationshipCounts returns relationship counts grouped by type.
func (g *GraphStore) RelationshipCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := g.countBy(ctx, `MATCH ()-[r]->() RETURN type(r) AS type, count(*) AS count`)
	if err != nil {
		return nil, fmt.Errorf("graph: relationship counts: %w", err)
	}
	return counts, nil
}

// countBy reads (type, count) rows into a map.
func (g *GraphStore) countBy(ctx context.Context, cypher string) (map[string]int64, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		typ, _ := rec.Get("type")
		cnt, _ := rec.Get("count")
		if t, ok := typ.(string); ok {
			if c, ok := cnt.(int64); ok {
				counts[t] = c
			}
		}
	}
	return counts, result.Err()
}
