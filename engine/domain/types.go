// Package domain defines the export record shapes read by the loader and the
// required-key validation applied while decoding them. It is the validation
// gate between raw JSON documents and the graph mappers.
package domain

import "strconv"

// Top-level document keys, one array of records each.
const (
	KeyProducts   = "products"
	KeyTradeShows = "trade_shows_exhibitions"
	KeyEvents     = "powered_events"
	KeyRDProjects = "active_rd_projects"
)

// NotAvailable is stored when an optional descriptive field is absent.
const NotAvailable = "N/A"

// CustomerTypes is the fixed, ordered set of buyer segments recorded under
// sales_data.sales_closed of a trade show.
var CustomerTypes = []string{"particuliers", "entreprises", "collectivites"}

// Scalar is a JSON leaf value as stored on a node: string, int64, float64,
// bool or nil. Nested objects are kept as their raw JSON text.
type Scalar = any

// Product is one entry of the products export.
type Product struct {
	ID               string
	Name             Scalar
	Category         Scalar
	ContinuousPower  Scalar
	PeakPower        Scalar
	BatteryCapacity  Scalar
	BatteryType      string
	SolarCapacity    Scalar
	TotalCost        Scalar
	AvgSellingPrice  Scalar
	MarginPercentage Scalar
	CO2Reduction     Scalar
	RentalAvailable  Scalar
}

// TradeShow is one entry of trade_shows_exhibitions.
type TradeShow struct {
	ID              string
	Name            Scalar
	Type            Scalar
	Location        Scalar
	Date            Scalar
	LeadsGenerated  Scalar
	TotalSales      Scalar // raw; may be a currency-formatted string
	ModelsDisplayed []string
	Sales           []SaleRecord // one per entry of CustomerTypes present in the record
}

// SaleRecord is the closed-sales block for one customer type at a trade show.
type SaleRecord struct {
	CustomerType string
	Units        Scalar   // raw, as exported
	TotalRevenue Scalar   // raw; may be a currency-formatted string
	Products     []string // "<product_id> x<n>" shorthand
}

// Sold reports whether the block closed at least one unit. Numeric strings
// count by their value; any other non-number does not.
func (s SaleRecord) Sold() bool {
	switch u := s.Units.(type) {
	case int64:
		return u > 0
	case int:
		return u > 0
	case float64:
		return u > 0
	case string:
		f, err := strconv.ParseFloat(u, 64)
		return err == nil && f > 0
	}
	return false
}

// SaleID derives the Sale node key for a trade show and customer type.
func SaleID(eventID, customerType string) string {
	return eventID + "_" + customerType
}

// Event is one entry of powered_events.
type Event struct {
	ID           string
	Name         Scalar
	Type         Scalar
	Location     Scalar
	Date         Scalar
	Attendees    Scalar // NotAvailable when absent
	Runtime      Scalar
	FuelSaved    Scalar
	CO2Reduction Scalar
	ModelsUsed   []string // bare ids or "<id> x<n>" shorthand
}

// RDProject is one entry of active_rd_projects.
type RDProject struct {
	ID               string
	Name             Scalar
	Status           Scalar
	Objective        Scalar
	ProjectedSavings Scalar // NotAvailable when absent
	TargetProducts   []string
}
