package models

import "time"

// ImportDeleteLog records imports physically deleted by retention cleanup
type ImportDeleteLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ImportID  uint      `gorm:"not null;index" json:"import_id"`
	Source    string    `gorm:"type:varchar(10)" json:"source"`
	FileName  string    `gorm:"type:varchar(255)" json:"file_name"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (ImportDeleteLog) TableName() string {
	return "import_delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonExpired       = "expired_retention"
	DeleteReasonReportRemoved = "report_removed"
	DeleteReasonManual        = "manual_deletion"
)
