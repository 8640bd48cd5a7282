package models

import "time"

// SearchResult is one candidate property produced by a search run.
type SearchResult struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SearchID uint `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"search_id"`

	PropertyName  string `gorm:"type:varchar(255);not null" json:"property_name"`
	Address       string `gorm:"type:varchar(255)" json:"address,omitempty"`
	City          string `gorm:"type:varchar(100)" json:"city,omitempty"`
	State         string `gorm:"type:varchar(10)" json:"state,omitempty"`
	ZipCode       string `gorm:"type:varchar(10)" json:"zip_code,omitempty"`
	Units         *int   `json:"units,omitempty"`
	PropertyClass string `gorm:"type:varchar(10)" json:"property_class,omitempty"`
	YearBuilt     *int   `json:"year_built,omitempty"`

	Price        *float64 `gorm:"type:decimal(14,2)" json:"price,omitempty"`
	PricePerUnit *float64 `gorm:"type:decimal(12,2)" json:"price_per_unit,omitempty"`

	OpportunityType OpportunityType `gorm:"type:varchar(30);not null;index" json:"opportunity_type"`
	UrgencyLevel    UrgencyLevel    `gorm:"type:varchar(20);not null;index" json:"urgency_level"`
	OccupancyRate   *float64        `gorm:"type:decimal(5,2)" json:"occupancy_rate,omitempty"`
	CapRate         *float64        `gorm:"type:decimal(5,2)" json:"cap_rate,omitempty"`
	DaysOnMarket    *int            `json:"days_on_market,omitempty"`
	Score           int             `gorm:"not null;default:0;index" json:"score"`

	DataSource string `gorm:"type:varchar(100)" json:"data_source,omitempty"`
	SourceURL  string `gorm:"type:text" json:"source_url,omitempty"`
	RawData    string `gorm:"type:text" json:"raw_data,omitempty"`

	Status ResultStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	Notes  string       `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// OpportunityType classifies why a property surfaced in a search
type OpportunityType string

const (
	OpportunityNewListing      OpportunityType = "new_listing"
	OpportunityUnderperforming OpportunityType = "underperforming"
	OpportunityDistressedSale  OpportunityType = "distressed_sale"
	OpportunityNewConstruction OpportunityType = "new_construction"
	OpportunityCompanyTarget   OpportunityType = "company_target"
)

// UrgencyLevel buckets results by how fast the opportunity moves
type UrgencyLevel string

const (
	UrgencyImmediate  UrgencyLevel = "immediate"
	UrgencyDeveloping UrgencyLevel = "developing"
	UrgencyFuture     UrgencyLevel = "future"
)

// ResultStatus is the review pipeline stage for a result
type ResultStatus string

const (
	ResultStatusNew       ResultStatus = "new"
	ResultStatusReviewing ResultStatus = "reviewing"
	ResultStatusContacted ResultStatus = "contacted"
	ResultStatusPursuing  ResultStatus = "pursuing"
	ResultStatusPassed    ResultStatus = "passed"
	ResultStatusClosed    ResultStatus = "closed"
)

// ValidResultStatus reports whether s is a known pipeline stage.
func ValidResultStatus(s string) bool {
	switch ResultStatus(s) {
	case ResultStatusNew, ResultStatusReviewing, ResultStatusContacted,
		ResultStatusPursuing, ResultStatusPassed, ResultStatusClosed:
		return true
	}
	return false
}

// TableName specifies the table name
func (SearchResult) TableName() string {
	return "search_results"
}
