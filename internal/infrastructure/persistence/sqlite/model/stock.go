package model

import "time"

type StockLevel struct {
	PartID           string    `gorm:"column:part_id;type:text;primaryKey"`
	PartName         string    `gorm:"column:part_name;type:text;not null"`
	Warehouse        string    `gorm:"column:warehouse;type:text"`
	Quantity         int       `gorm:"column:quantity;not null"`
	Status           string    `gorm:"column:status;type:text;not null;index"`
	HoldReason       string    `gorm:"column:hold_reason;type:text"`
	ReorderThreshold int       `gorm:"column:reorder_threshold"`
	SupplierID       string    `gorm:"column:supplier_id;type:text"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"`
}

func (StockLevel) TableName() string {
	return "stock_levels"
}
