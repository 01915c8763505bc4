package model

import "time"

type Issue struct {
	ID          string     `gorm:"column:id;type:text;primaryKey"`
	Title       string     `gorm:"column:title;type:text;not null"`
	Description string     `gorm:"column:description;type:text;not null"`
	Intent      string     `gorm:"column:intent;type:text;not null;index"`
	Severity    int        `gorm:"column:severity;not null"`
	Status      string     `gorm:"column:status;type:text;not null;index"`
	PartID      string     `gorm:"column:part_id;type:text;index"`
	OrderID     string     `gorm:"column:order_id;type:text"`
	SourceEmail string     `gorm:"column:source_email;type:text"`
	Notes       string     `gorm:"column:notes;type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
	Version     int        `gorm:"column:version;not null;default:1"`
}

func (Issue) TableName() string {
	return "issues"
}
