package model

import "time"

type Email struct {
	Filename   string    `gorm:"column:filename;type:text;primaryKey"`
	Sender     string    `gorm:"column:sender;type:text;not null"`
	Subject    string    `gorm:"column:subject;type:text;not null"`
	Body       string    `gorm:"column:body;type:text;not null"`
	ReceivedAt time.Time `gorm:"column:received_at;not null"`

	Intent     string  `gorm:"column:intent;type:text;not null;index"`
	RiskScore  int     `gorm:"column:risk_score;not null"`
	Confidence float64 `gorm:"column:confidence;not null"`
	PartID     string  `gorm:"column:part_id;type:text;index"`
	OrderID    string  `gorm:"column:order_id;type:text"`
	OldValue   string  `gorm:"column:old_value;type:text"`
	NewValue   string  `gorm:"column:new_value;type:text"`
	Reasoning  string  `gorm:"column:reasoning;type:text"`

	ActionTaken string    `gorm:"column:action_taken;type:text"`
	IssueID     string    `gorm:"column:issue_id;type:text"`
	Processed   bool      `gorm:"column:processed;not null;default:0"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (Email) TableName() string {
	return "processed_emails"
}
