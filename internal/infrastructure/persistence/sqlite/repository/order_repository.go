package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"voltway/internal/errs"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/ports"
)

type OrderRepository struct {
	db *gorm.DB
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *OrderRepository) GetMaterialOrder(ctx context.Context, orderID string) (ports.MaterialOrderRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.MaterialOrderRecord{}, err
	}

	var row model.MaterialOrder
	if err := db.Where("order_id = ?", orderID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MaterialOrderRecord{}, fmt.Errorf("%w: %s", ports.ErrOrderNotFound, orderID)
		}
		return ports.MaterialOrderRecord{}, errs.Wrap(err, "query material order")
	}
	return materialOrderFromModel(row), nil
}

func (r *OrderRepository) ListMaterialOrdersByPart(ctx context.Context, partID string) ([]ports.MaterialOrderRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.MaterialOrder
	if err := db.
		Where("part_id = ?", partID).
		Order("expected_delivery asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query material orders by part")
	}

	items := make([]ports.MaterialOrderRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, materialOrderFromModel(row))
	}
	return items, nil
}

func (r *OrderRepository) GetSalesOrder(ctx context.Context, orderID string) (ports.SalesOrderRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SalesOrderRecord{}, err
	}

	var row model.SalesOrder
	if err := db.Where("order_id = ?", orderID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SalesOrderRecord{}, fmt.Errorf("%w: %s", ports.ErrOrderNotFound, orderID)
		}
		return ports.SalesOrderRecord{}, errs.Wrap(err, "query sales order")
	}
	return salesOrderFromModel(row), nil
}

func (r *OrderRepository) ListOpenSalesOrdersBefore(ctx context.Context, cutoff time.Time) ([]ports.SalesOrderRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.SalesOrder
	if err := db.
		Where("due_date < ? AND status NOT IN ?", cutoff, []string{"FULFILLED", "CANCELLED"}).
		Order("due_date asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query open sales orders")
	}

	items := make([]ports.SalesOrderRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, salesOrderFromModel(row))
	}
	return items, nil
}

func (r *OrderRepository) GetSupplier(ctx context.Context, supplierID string) (ports.SupplierRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SupplierRecord{}, err
	}

	var row model.Supplier
	if err := db.Where("supplier_id = ?", supplierID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SupplierRecord{}, fmt.Errorf("%w: %s", ports.ErrSupplierNotFound, supplierID)
		}
		return ports.SupplierRecord{}, errs.Wrap(err, "query supplier")
	}
	return supplierFromModel(row), nil
}

func (r *OrderRepository) GetSupplierByEmail(ctx context.Context, email string) (ports.SupplierRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SupplierRecord{}, err
	}

	var row model.Supplier
	if err := db.Where("lower(email) = ?", strings.ToLower(email)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SupplierRecord{}, fmt.Errorf("%w: %s", ports.ErrSupplierNotFound, email)
		}
		return ports.SupplierRecord{}, errs.Wrap(err, "query supplier by email")
	}
	return supplierFromModel(row), nil
}

func materialOrderFromModel(row model.MaterialOrder) ports.MaterialOrderRecord {
	return ports.MaterialOrderRecord{
		OrderID:          row.OrderID,
		PartID:           row.PartID,
		SupplierID:       row.SupplierID,
		Quantity:         row.Quantity,
		UnitPrice:        row.UnitPrice,
		OrderDate:        row.OrderDate,
		ExpectedDelivery: row.ExpectedDelivery,
		Status:           row.Status,
	}
}

func salesOrderFromModel(row model.SalesOrder) ports.SalesOrderRecord {
	return ports.SalesOrderRecord{
		OrderID:  row.OrderID,
		Model:    row.Model,
		Quantity: row.Quantity,
		DueDate:  row.DueDate,
		Status:   row.Status,
	}
}

func supplierFromModel(row model.Supplier) ports.SupplierRecord {
	return ports.SupplierRecord{
		SupplierID:   row.SupplierID,
		Name:         row.Name,
		Email:        row.Email,
		LeadTimeDays: row.LeadTimeDays,
	}
}
