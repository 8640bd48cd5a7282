package models

import "time"

// PropertySearch is a saved acquisition search with its execution state.
type PropertySearch struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string  `gorm:"type:varchar(255);not null" json:"name"`
	GeographicArea string  `gorm:"type:varchar(255);not null" json:"geographic_area"`
	PropertyClass  string  `gorm:"type:varchar(50);not null;default:'B- to A+'" json:"property_class"`
	MinUnits       int     `gorm:"not null;default:100" json:"min_units"`
	MaxUnits       *int    `json:"max_units,omitempty"`
	SearchDepth    string  `gorm:"type:varchar(10);not null;default:'quick'" json:"search_depth"`
	Timeframe      string  `gorm:"type:varchar(10);not null;default:'48h'" json:"timeframe"`

	Status       SearchStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ErrorMessage string       `gorm:"type:text" json:"error_message,omitempty"`

	TotalResults            int `gorm:"not null;default:0" json:"total_results"`
	ImmediateOpportunities  int `gorm:"not null;default:0" json:"immediate_opportunities"`
	DevelopingOpportunities int `gorm:"not null;default:0" json:"developing_opportunities"`
	FutureOpportunities     int `gorm:"not null;default:0" json:"future_opportunities"`

	IsRecurring       bool   `gorm:"not null;default:false;index" json:"is_recurring"`
	RecurringSchedule string `gorm:"type:varchar(100)" json:"recurring_schedule,omitempty"`

	StartedAt   *time.Time `gorm:"type:datetime" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"type:datetime" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_searches_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// SearchStatus is the search execution state
type SearchStatus string

const (
	SearchStatusPending   SearchStatus = "pending"
	SearchStatusRunning   SearchStatus = "running"
	SearchStatusCompleted SearchStatus = "completed"
	SearchStatusError     SearchStatus = "error"
)

// Search depth constants
const (
	SearchDepthQuick = "quick"
	SearchDepthDeep  = "deep"
)

// TableName specifies the table name
func (PropertySearch) TableName() string {
	return "property_searches"
}
