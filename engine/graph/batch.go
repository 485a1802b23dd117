package graph

import (
	"context"

	"github.com/greenpower/powergraph/engine/domain"
)

// SaveProducts writes products on one session, stopping at the first error.
func (g *GraphStore) SaveProducts(ctx context.Context, items []domain.Product) (int, error) {
	return saveAll(ctx, g, items, (*Writer).SaveProduct)
}

// SaveTradeShows writes trade shows on one session.
func (g *GraphStore) SaveTradeShows(ctx context.Context, items []domain.TradeShow) (int, error) {
	return saveAll(ctx, g, items, (*Writer).SaveTradeShow)
}

// SaveEvents writes powered events on one session.
func (g *GraphStore) SaveEvents(ctx context.Context, items []domain.Event) (int, error) {
	return saveAll(ctx, g, items, (*Writer).SaveEvent)
}

// SaveRDProjects writes R&D projects on one session.
func (g *GraphStore) SaveRDProjects(ctx context.Context, items []domain.RDProject) (int, error) {
	return saveAll(ctx, g, items, (*Writer).SaveRDProject)
}

func saveAll[T any](ctx context.Context, g *GraphStore, items []T, save func(*Writer, context.Context, T) error) (int, error) {
	return g.Write(ctx, func(w *Writer) error {
		for _, it := range items {
			if err := save(w, ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
}
