package models

import "time"

// MarketReport groups one AIQ upload and one RedIQ upload into a survey.
type MarketReport struct {
	ID                  uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string       `gorm:"type:varchar(255);not null" json:"name"`
	SubjectPropertyName string       `gorm:"type:varchar(255);not null" json:"subject_property_name"`
	Description         string       `gorm:"type:text" json:"description,omitempty"`
	Status              ReportStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	AiqImportID   *uint      `json:"aiq_import_id,omitempty"`
	RediqImportID *uint      `json:"rediq_import_id,omitempty"`
	CompletedAt   *time.Time `gorm:"type:datetime" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_reports_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// ReportStatus is the report lifecycle state
type ReportStatus string

const (
	ReportStatusDraft    ReportStatus = "draft"
	ReportStatusComplete ReportStatus = "complete"
	ReportStatusArchived ReportStatus = "archived"
)

// TableName specifies the table name
func (MarketReport) TableName() string {
	return "market_reports"
}

// ReportSummary is the list-view projection with derived completeness flags.
type ReportSummary struct {
	MarketReport
	HasAIQ         bool  `json:"has_aiq"`
	HasRedIQ       bool  `json:"has_rediq"`
	FloorPlanCount int64 `json:"floor_plan_count"`
	IsComplete     bool  `json:"is_complete"`
}
