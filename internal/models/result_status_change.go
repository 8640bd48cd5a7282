package models

import "time"

// ResultStatusChange records one transition of a search result through the
// review pipeline, so reviewers can see how a deal progressed.
type ResultStatusChange struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ResultID uint `gorm:"not null;index" json:"result_id"`
	SearchID uint `gorm:"not null;index" json:"search_id"`

	OldStatus ResultStatus `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus ResultStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	Note      string       `gorm:"type:text" json:"note,omitempty"`

	DetectedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (ResultStatusChange) TableName() string {
	return "result_status_changes"
}
