package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrSupplierNotFound = errors.New("supplier not found")
)

type MaterialOrderRecord struct {
	OrderID          string    `json:"order_id"`
	PartID           string    `json:"part_id"`
	SupplierID       string    `json:"supplier_id"`
	Quantity         int       `json:"quantity"`
	UnitPrice        float64   `json:"unit_price"`
	OrderDate        time.Time `json:"order_date"`
	ExpectedDelivery time.Time `json:"expected_delivery"`
	Status           string    `json:"status"`
}

type SalesOrderRecord struct {
	OrderID  string    `json:"order_id"`
	Model    string    `json:"model"`
	Quantity int       `json:"quantity"`
	DueDate  time.Time `json:"due_date"`
	Status   string    `json:"status"`
}

type SupplierRecord struct {
	SupplierID   string `json:"supplier_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	LeadTimeDays int    `json:"lead_time_days"`
}

type OrderRepository interface {
	GetMaterialOrder(ctx context.Context, orderID string) (MaterialOrderRecord, error)
	ListMaterialOrdersByPart(ctx context.Context, partID string) ([]MaterialOrderRecord, error)
	GetSalesOrder(ctx context.Context, orderID string) (SalesOrderRecord, error)
	// ListOpenSalesOrdersBefore returns unfulfilled sales orders due strictly
	// before the cutoff; fulfillment checks treat their parts as reserved.
	ListOpenSalesOrdersBefore(ctx context.Context, cutoff time.Time) ([]SalesOrderRecord, error)
	GetSupplier(ctx context.Context, supplierID string) (SupplierRecord, error)
	GetSupplierByEmail(ctx context.Context, email string) (SupplierRecord, error)
}
