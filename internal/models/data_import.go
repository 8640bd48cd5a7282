package models

import "time"

// DataImport tracks one spreadsheet upload through its lifecycle.
type DataImport struct {
	ID       uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID *uint        `gorm:"index" json:"report_id,omitempty"`
	Source   ImportSource `gorm:"type:varchar(10);not null;index" json:"source"`
	FileName string       `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize int64        `gorm:"not null;default:0" json:"file_size"`

	Status           ImportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RecordsImported  int          `gorm:"not null;default:0" json:"records_imported"`
	RecordsFailed    int          `gorm:"not null;default:0" json:"records_failed"`
	NullCoercions    int          `gorm:"not null;default:0" json:"null_coercions"`
	ErrorMessage     string       `gorm:"type:text" json:"error_message,omitempty"`
	ProcessingTimeMs *int64       `json:"processing_time_ms,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// ImportSource identifies which vendor spreadsheet an upload came from
type ImportSource string

const (
	ImportSourceAIQ   ImportSource = "AIQ"
	ImportSourceRedIQ ImportSource = "RedIQ"
)

// ImportStatus is the import lifecycle state
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusError      ImportStatus = "error"
)

// TableName specifies the table name
func (DataImport) TableName() string {
	return "data_imports"
}

// IsTerminal reports whether the import reached a final state.
// Error is terminal: failed imports are never retried, the file is re-uploaded.
func (d *DataImport) IsTerminal() bool {
	return d.Status == ImportStatusCompleted || d.Status == ImportStatusError
}
