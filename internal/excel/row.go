package excel

// FloorPlanRow is one normalized record extracted from either vendor sheet.
// Fields a given vendor does not supply stay at their zero value.
type FloorPlanRow struct {
	PropertyName   string // competitor sheets only
	FloorPlanName  string
	Bedrooms       *float64
	Bathrooms      *float64
	SquareFeet     *float64
	NumberOfUnits  *float64
	UnitsAvailable *float64
	MarketRent     *float64
	InPlaceRent    *float64 // subject summary sheets only
	RecentLeases   string   // subject summary sheets only
}

// ParseResult is the output of a full sheet extraction.
type ParseResult struct {
	SheetName string
	Rows      []FloorPlanRow
	Stats     CoercionStats
}
