package model

type BOMLine struct {
	Model      string `gorm:"column:model;type:text;primaryKey"`
	PartID     string `gorm:"column:part_id;type:text;primaryKey;index"`
	PartName   string `gorm:"column:part_name;type:text;not null"`
	QtyPerUnit int    `gorm:"column:qty_per_unit;not null"`
}

func (BOMLine) TableName() string {
	return "bom_lines"
}
