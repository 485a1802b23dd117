package graph

import (
	"context"
	"fmt"

	"github.com/greenpower/powergraph/engine/domain"
	"github.com/greenpower/powergraph/pkg/normalize"
)

const (
	mergeTradeShow = `MERGE (t:TradeShow {event_id: $event_id})
		SET t.name = $name,
		    t.type = $type,
		    t.location = $location,
		    t.date = $date,
		    t.leads_generated = $leads_generated,
		    t.total_sales = $total_sales`

	linkDisplayed = `MATCH (t:TradeShow {event_id: $event_id})
		MATCH (p:Product {product_id: $product_id})
		MERGE (p)-[:DISPLAYED_AT]->(t)`

	mergeSale = `MERGE (s:Sale {sale_id: $sale_id})
		SET s.customer_type = $customer_type,
		    s.units = $units,
		    s.total_revenue = $total_revenue
		WITH s
		MATCH (t:TradeShow {event_id: $event_id})
		MERGE (s)-[:SOLD_AT]->(t)`

	linkSaleProduct = `MATCH (s:Sale {sale_id: $sale_id})
		MATCH (p:Product {product_id: $product_id})
		MERGE (s)-[r:INCLUDES_PRODUCT]->(p)
		SET r.quantity = $quantity`
)

func tradeShowStatements(ts domain.TradeShow) []statement {
	stmts := []statement{{mergeTradeShow, map[string]any{
		"event_id":        ts.ID,
		"name":            ts.Name,
		"type":            ts.Type,
		"location":        ts.Location,
		"date":            ts.Date,
		"leads_generated": ts.LeadsGenerated,
		"total_sales":     normalize.ParseAmount(ts.TotalSales),
	}}}
	for _, id := range ts.ModelsDisplayed {
		stmts = append(stmts, statement{linkDisplayed, map[string]any{
			"event_id":   ts.ID,
			"product_id": id,
		}})
	}
	for _, s := range ts.Sales {
		if !s.Sold() {
			continue
		}
		stmts = append(stmts, saleStatements(ts.ID, s)...)
	}
	return stmts
}

// saleStatements upserts the Sale and links its line items. Entries without
// an explicit " x<n>" quantity are not linked.
func saleStatements(eventID string, s domain.SaleRecord) []statement {
	saleID := domain.SaleID(eventID, s.CustomerType)
	stmts := []statement{{mergeSale, map[string]any{
		"sale_id":       saleID,
		"customer_type": s.CustomerType,
		"units":         s.Units,
		"total_revenue": normalize.ParseAmount(s.TotalRevenue),
		"event_id":      eventID,
	}}}
	for _, item := range s.Products {
		q := normalize.ParseQuantity(item)
		if !q.Explicit() {
			continue
		}
		stmts = append(stmts, statement{linkSaleProduct, map[string]any{
			"sale_id":    saleID,
			"product_id": q.ID,
			"quantity":   int64(q.Count),
		}})
	}
	return stmts
}

// SaveTradeShow upserts a TradeShow with its DISPLAYED_AT edges and one Sale
// per customer type that sold at least one unit.
func (w *Writer) SaveTradeShow(ctx context.Context, ts domain.TradeShow) error {
	if err := w.record(ctx, tradeShowStatements(ts)); err != nil {
		return fmt.Errorf("graph: save trade show %s: %w", ts.ID, err)
	}
	return nil
}
