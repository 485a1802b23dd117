package domain

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// fieldReader looks up dotted paths in one record and remembers the first
// required path that is absent. A key present with a null value counts as
// present.
type fieldReader struct {
	rec    gjson.Result
	record string
	id     string
	err    error
}

func (f *fieldReader) need(path string) gjson.Result {
	if f.err != nil {
		return gjson.Result{}
	}
	v := f.rec.Get(path)
	if !v.Exists() {
		f.err = NewMissingFieldError(f.record, f.id, path)
	}
	return v
}

func (f *fieldReader) opt(path string) gjson.Result {
	return f.rec.Get(path)
}

// key reads the record's uniqueness key and tags later errors with it.
func (f *fieldReader) key(path string) string {
	f.id = f.need(path).String()
	return f.id
}

// DecodeProduct decodes a products entry. Every mapped field is required.
func DecodeProduct(rec gjson.Result) (Product, error) {
	f := &fieldReader{rec: rec, record: "product"}
	p := Product{
		ID:               f.key("product_id"),
		Name:             scalar(f.need("name")),
		Category:         scalar(f.need("category")),
		ContinuousPower:  scalar(f.need("power_output.continuous")),
		PeakPower:        scalar(f.need("power_output.peak")),
		BatteryCapacity:  scalar(f.need("specifications.battery_capacity")),
		BatteryType:      f.need("specifications.battery_type").String(),
		SolarCapacity:    scalar(f.need("specifications.solar_panel_capacity")),
		TotalCost:        scalar(f.need("private_cost_breakdown.private_total_cost")),
		AvgSellingPrice:  scalar(f.need("pricing.average_selling_price")),
		MarginPercentage: scalar(f.need("pricing.margin_percentage")),
		CO2Reduction:     scalar(f.need("co2_reduction")),
		RentalAvailable:  scalar(f.need("rental_available")),
	}
	if f.err != nil {
		return Product{}, f.err
	}
	return p, nil
}

// DecodeTradeShow decodes a trade_shows_exhibitions entry. Sales blocks are
// read for each of CustomerTypes that is present; a block that sold units
// must carry total_revenue. Units are kept as exported.
func DecodeTradeShow(rec gjson.Result) (TradeShow, error) {
	f := &fieldReader{rec: rec, record: "trade show"}
	ts := TradeShow{
		ID:             f.key("event_id"),
		Name:           scalar(f.need("event_name")),
		Type:           scalar(f.need("type")),
		Location:       scalar(f.need("location")),
		Date:           scalar(f.need("date")),
		LeadsGenerated: scalar(f.need("sales_data.leads_generated")),
		TotalSales:     scalar(f.need("sales_data.total_sales")),
	}
	f.need("greenpower_participation")
	ts.ModelsDisplayed = stringList(f.opt("greenpower_participation.models_displayed"))

	closed := f.need("sales_data.sales_closed")
	for _, ct := range CustomerTypes {
		block := closed.Get(ct)
		if !block.Exists() {
			continue
		}
		sale := SaleRecord{
			CustomerType: ct,
			Units:        scalar(block.Get("units")),
			Products:     stringList(block.Get("products")),
		}
		if sale.Sold() {
			sale.TotalRevenue = scalar(f.need("sales_data.sales_closed." + ct + ".total_revenue"))
		}
		ts.Sales = append(ts.Sales, sale)
	}
	if f.err != nil {
		return TradeShow{}, f.err
	}
	return ts, nil
}

// DecodeEvent decodes a powered_events entry. A missing attendees count is
// stored as NotAvailable.
func DecodeEvent(rec gjson.Result) (Event, error) {
	f := &fieldReader{rec: rec, record: "event"}
	ev := Event{
		ID:           f.key("event_id"),
		Name:         scalar(f.need("event_name")),
		Type:         scalar(f.need("type")),
		Location:     scalar(f.need("location")),
		Date:         scalar(f.need("date")),
		Attendees:    NotAvailable,
		Runtime:      scalar(f.need("power_deployment.runtime")),
		FuelSaved:    scalar(f.need("power_deployment.fuel_saved")),
		CO2Reduction: scalar(f.need("power_deployment.co2_reduction")),
		ModelsUsed:   stringList(f.need("power_deployment.models_used")),
	}
	if a := f.opt("power_deployment.attendees"); a.Exists() {
		ev.Attendees = scalar(a)
	}
	if f.err != nil {
		return Event{}, f.err
	}
	return ev, nil
}

// DecodeRDProject decodes an active_rd_projects entry. A missing
// projected_annual_savings is stored as NotAvailable.
func DecodeRDProject(rec gjson.Result) (RDProject, error) {
	f := &fieldReader{rec: rec, record: "R&D project"}
	p := RDProject{
		ID:               f.key("project_id"),
		Name:             scalar(f.need("project_name")),
		Status:           scalar(f.need("status")),
		Objective:        scalar(f.need("objective")),
		ProjectedSavings: NotAvailable,
		TargetProducts:   stringList(f.opt("target_products")),
	}
	if s := f.opt("projected_annual_savings"); s.Exists() {
		p.ProjectedSavings = scalar(s)
	}
	if f.err != nil {
		return RDProject{}, f.err
	}
	return p, nil
}

// scalar converts a JSON value to a property value. Integral numbers become
// int64 so counts round-trip as integers; objects are kept as raw JSON.
func scalar(v gjson.Result) Scalar {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return v.Str
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
		}
		return v.Num
	}
	if v.IsArray() {
		items := v.Array()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = scalar(it)
		}
		return out
	}
	return v.Raw
}

func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.String())
	}
	return out
}
