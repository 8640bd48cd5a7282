package models

import "sort"

// ConsolidatedRow is a floor plan joined with its property, the shape every
// consolidated view (table, Excel export, CSV export) consumes.
type ConsolidatedRow struct {
	FloorPlanID   uint     `json:"floor_plan_id"`
	PropertyName  string   `json:"property_name"`
	IsSubject     bool     `json:"is_subject"`
	FloorPlan     string   `json:"floor_plan"`
	Bedrooms      *float64 `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFeet    *float64 `json:"square_feet,omitempty"`
	NumberOfUnits *float64 `json:"number_of_units,omitempty"`
	MarketRent    *float64 `json:"market_rent,omitempty"`
	RentPsf       *float64 `json:"rent_psf,omitempty"`
	AmcRent       *float64 `json:"amc_rent,omitempty"`
	BrokerRent    *float64 `json:"broker_rent,omitempty"`
	RecentLeases  string   `json:"recent_leases,omitempty"`
	DataSource    string   `json:"data_source"`
}

// OrderConsolidated sorts rows into the stable presentation order: subject
// property first, then remaining properties alphabetically. Ties keep their
// original (insertion) order.
func OrderConsolidated(rows []ConsolidatedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IsSubject != rows[j].IsSubject {
			return rows[i].IsSubject
		}
		return rows[i].PropertyName < rows[j].PropertyName
	})
}
