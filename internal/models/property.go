package models

import "time"

// Property is a building that floor plan records attach to. Names are
// globally unique; concurrent imports converge on the same row via the
// unique index rather than a racy find-then-create.
type Property struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	IsSubject bool   `gorm:"not null;default:false;index" json:"is_subject"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}
