package model

import "time"

type MaterialOrder struct {
	OrderID          string    `gorm:"column:order_id;type:text;primaryKey"`
	PartID           string    `gorm:"column:part_id;type:text;not null;index"`
	SupplierID       string    `gorm:"column:supplier_id;type:text;not null"`
	Quantity         int       `gorm:"column:quantity;not null"`
	UnitPrice        float64   `gorm:"column:unit_price;not null"`
	OrderDate        time.Time `gorm:"column:order_date;not null"`
	ExpectedDelivery time.Time `gorm:"column:expected_delivery;not null"`
	Status           string    `gorm:"column:status;type:text;not null"`
}

func (MaterialOrder) TableName() string {
	return "material_orders"
}

type SalesOrder struct {
	OrderID  string    `gorm:"column:order_id;type:text;primaryKey"`
	Model    string    `gorm:"column:model;type:text;not null;index"`
	Quantity int       `gorm:"column:quantity;not null"`
	DueDate  time.Time `gorm:"column:due_date;not null"`
	Status   string    `gorm:"column:status;type:text;not null"`
}

func (SalesOrder) TableName() string {
	return "sales_orders"
}

type Supplier struct {
	SupplierID   string `gorm:"column:supplier_id;type:text;primaryKey"`
	Name         string `gorm:"column:name;type:text;not null"`
	Email        string `gorm:"column:email;type:text;not null;index"`
	LeadTimeDays int    `gorm:"column:lead_time_days;not null"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
