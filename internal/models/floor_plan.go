package models

import "time"

// FloorPlan is one normalized unit-type record extracted from a vendor
// spreadsheet. Numeric fields are pointers: a nil means the source cell was
// empty or unparseable, which is a valid state, not an error.
type FloorPlan struct {
	ID         uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID   *uint `gorm:"index" json:"report_id,omitempty"`
	PropertyID uint  `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"property_id"`
	ImportID   *uint `gorm:"index" json:"import_id,omitempty"`

	FloorPlanName string   `gorm:"type:varchar(255);not null" json:"floor_plan_name"`
	Bedrooms      *float64 `gorm:"type:decimal(4,1)" json:"bedrooms,omitempty"`
	Bathrooms     *float64 `gorm:"type:decimal(4,1)" json:"bathrooms,omitempty"`
	SquareFeet    *float64 `gorm:"type:decimal(10,2)" json:"square_feet,omitempty"`

	MarketRent     *float64 `gorm:"type:decimal(10,2)" json:"market_rent,omitempty"`
	UnitsAvailable *float64 `gorm:"type:decimal(10,2)" json:"units_available,omitempty"`
	NumberOfUnits  *float64 `gorm:"type:decimal(10,2)" json:"number_of_units,omitempty"`

	// Derived once at ingest from MarketRent / SquareFeet. Not recomputed on
	// later manual edits.
	RentPsf *float64 `gorm:"type:decimal(10,4)" json:"rent_psf,omitempty"`

	// AmcRent carries the subject sheet's in-place rent. The other two are
	// user-editable overlays, never sourced from spreadsheets.
	AmcRent       *float64 `gorm:"type:decimal(10,2)" json:"amc_rent,omitempty"`
	ManualAmcRent *float64 `gorm:"type:decimal(10,2)" json:"manual_amc_rent,omitempty"`
	BrokerRent    *float64 `gorm:"type:decimal(10,2)" json:"broker_rent,omitempty"`

	// Free-text passthrough from the subject summary sheet (recent leases).
	RediqColumnS string `gorm:"type:text" json:"rediq_column_s,omitempty"`

	DataSource ImportSource `gorm:"type:varchar(10);not null;index" json:"data_source"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (FloorPlan) TableName() string {
	return "floor_plans"
}
