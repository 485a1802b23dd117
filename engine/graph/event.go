package graph

import (
	"context"
	"fmt"

	"github.com/greenpower/powergraph/engine/domain"
	"github.com/greenpower/powergraph/pkg/normalize"
)

const (
	mergeEvent = `MERGE (e:Event {event_id: $event_id})
		SET e.name = $name,
		    e.type = $type,
		    e.location = $location,
		    e.date = $date,
		    e.attendees = $attendees,
		    e.runtime = $runtime,
		    e.fuel_saved = $fuel_saved,
		    e.co2_reduction = $co2_reduction`

	linkDeployed = `MATCH (e:Event {event_id: $event_id})
		MATCH (p:Product {product_id: $product_id})
		MERGE (p)-[r:DEPLOYED_AT]->(e)
		SET r.quantity = $quantity`
)

func eventStatements(ev domain.Event) []statement {
	stmts := []statement{{mergeEvent, map[string]any{
		"event_id":      ev.ID,
		"name":          ev.Name,
		"type":          ev.Type,
		"location":      ev.Location,
		"date":          ev.Date,
		"attendees":     ev.Attendees,
		"runtime":       ev.Runtime,
		"fuel_saved":    ev.FuelSaved,
		"co2_reduction": ev.CO2Reduction,
	}}}
	for _, m := range ev.ModelsUsed {
		// Bare ids deploy a single unit.
		q := normalize.ParseQuantity(m)
		stmts = append(stmts, statement{linkDeployed, map[string]any{
			"event_id":   ev.ID,
			"product_id": q.ID,
			"quantity":   int64(q.Count),
		}})
	}
	return stmts
}

// SaveEvent upserts a powered Event and its DEPLOYED_AT edges.
func (w *Writer) SaveEvent(ctx context.Context, ev domain.Event) error {
	if err := w.record(ctx, eventStatements(ev)); err != nil {
		return fmt.Errorf("graph: save event %s: %w", ev.ID, err)
	}
	return nil
}
