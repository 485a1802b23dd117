package graph

import (
	"context"
	"fmt"

	"github.com/greenpower/powergraph/engine/domain"
)

const (
	mergeProduct = `MERGE (p:Product {product_id: $product_id})
		SET p.name = $name,
		    p.category = $category,
		    p.continuous_power = $continuous_power,
		    p.peak_power = $peak_power,
		    p.battery_capacity = $battery_capacity,
		    p.battery_type = $battery_type,
		    p.solar_capacity = $solar_capacity,
		    p.total_cost = $total_cost,
		    p.avg_selling_price = $avg_selling_price,
		    p.margin_percentage = $margin_percentage,
		    p.co2_reduction = $co2_reduction,
		    p.rental_available = $rental_available`

	mergeBattery = `MERGE (b:BatteryType {type: $battery_type})
		WITH b
		MATCH (p:Product {product_id: $product_id})
		MERGE (p)-[:USES_BATTERY]->(b)`
)

func productStatements(p domain.Product) []statement {
	return []statement{
		{mergeProduct, map[string]any{
			"product_id":        p.ID,
			"name":              p.Name,
			"category":          p.Category,
			"continuous_power":  p.ContinuousPower,
			"peak_power":        p.PeakPower,
			"battery_capacity":  p.BatteryCapacity,
			"battery_type":      p.BatteryType,
			"solar_capacity":    p.SolarCapacity,
			"total_cost":        p.TotalCost,
			"avg_selling_price": p.AvgSellingPrice,
			"margin_percentage": p.MarginPercentage,
			"co2_reduction":     p.CO2Reduction,
			"rental_available":  p.RentalAvailable,
		}},
		{mergeBattery, map[string]any{
			"battery_type": p.BatteryType,
			"product_id":   p.ID,
		}},
	}
}

// SaveProduct upserts a Product, its BatteryType and the USES_BATTERY edge.
func (w *Writer) SaveProduct(ctx context.Context, p domain.Product) error {
	if err := w.record(ctx, productStatements(p)); err != nil {
		return fmt.Errorf("graph: save product %s: %w", p.ID, err)
	}
	return nil
}
