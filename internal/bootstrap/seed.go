package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm/clause"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/ports"
)

// seedDocument is the fixture format consumed by init-db --seed. One YAML
// file may carry any mix of sections.
type seedDocument struct {
	Stock []struct {
		PartID           string `yaml:"part_id"`
		PartName         string `yaml:"part_name"`
		Warehouse        string `yaml:"warehouse"`
		Quantity         int    `yaml:"quantity"`
		Status           string `yaml:"status"`
		HoldReason       string `yaml:"hold_reason"`
		ReorderThreshold int    `yaml:"reorder_threshold"`
		SupplierID       string `yaml:"supplier_id"`
	} `yaml:"stock"`
	Suppliers []struct {
		SupplierID   string `yaml:"supplier_id"`
		Name         string `yaml:"name"`
		Email        string `yaml:"email"`
		LeadTimeDays int    `yaml:"lead_time_days"`
	} `yaml:"suppliers"`
	MaterialOrders []struct {
		OrderID          string    `yaml:"order_id"`
		PartID           string    `yaml:"part_id"`
		SupplierID       string    `yaml:"supplier_id"`
		Quantity         int       `yaml:"quantity"`
		UnitPrice        float64   `yaml:"unit_price"`
		OrderDate        time.Time `yaml:"order_date"`
		ExpectedDelivery time.Time `yaml:"expected_delivery"`
		Status           string    `yaml:"status"`
	} `yaml:"material_orders"`
	SalesOrders []struct {
		OrderID  string    `yaml:"order_id"`
		Model    string    `yaml:"model"`
		Quantity int       `yaml:"quantity"`
		DueDate  time.Time `yaml:"due_date"`
		Status   string    `yaml:"status"`
	} `yaml:"sales_orders"`
	BOM []struct {
		Model      string `yaml:"model"`
		PartID     string `yaml:"part_id"`
		PartName   string `yaml:"part_name"`
		QtyPerUnit int    `yaml:"qty_per_unit"`
	} `yaml:"bom"`
}

// Seed loads every YAML fixture in dir into the store. Rows upsert on their
// primary keys, so reseeding is idempotent.
func (a *App) Seed(ctx context.Context, dir string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.seed"))

	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return errs.Wrapf(err, "glob seed dir %s", dir)
	}
	if len(matches) == 0 {
		return errs.Wrapf(errors.New("no .yaml fixtures"), "seed dir %s", dir)
	}

	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return errs.Wrapf(err, "read seed file %s", path)
		}

		var doc seedDocument
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return errs.Wrapf(err, "decode seed file %s", path)
		}
		if err := a.applySeed(ctx, doc); err != nil {
			return errs.Wrapf(err, "apply seed file %s", path)
		}
		logging.Info(logCtx, "seed file applied", slog.String("file", filepath.Base(path)))
	}
	return nil
}

func (a *App) applySeed(ctx context.Context, doc seedDocument) error {
	db := a.DB.WithContext(ctx)
	upsert := clause.OnConflict{UpdateAll: true}
	now := time.Now().UTC()

	for _, row := range doc.Stock {
		status := row.Status
		if status == "" {
			status = ports.StockStatusNormal
		}
		if err := db.Clauses(upsert).Create(&model.StockLevel{
			PartID:           row.PartID,
			PartName:         row.PartName,
			Warehouse:        row.Warehouse,
			Quantity:         row.Quantity,
			Status:           status,
			HoldReason:       row.HoldReason,
			ReorderThreshold: row.ReorderThreshold,
			SupplierID:       row.SupplierID,
			UpdatedAt:        now,
		}).Error; err != nil {
			return errs.Wrap(err, "seed stock level")
		}
	}

	for _, row := range doc.Suppliers {
		if err := db.Clauses(upsert).Create(&model.Supplier{
			SupplierID:   row.SupplierID,
			Name:         row.Name,
			Email:        row.Email,
			LeadTimeDays: row.LeadTimeDays,
		}).Error; err != nil {
			return errs.Wrap(err, "seed supplier")
		}
	}

	for _, row := range doc.MaterialOrders {
		if err := db.Clauses(upsert).Create(&model.MaterialOrder{
			OrderID:          row.OrderID,
			PartID:           row.PartID,
			SupplierID:       row.SupplierID,
			Quantity:         row.Quantity,
			UnitPrice:        row.UnitPrice,
			OrderDate:        row.OrderDate,
			ExpectedDelivery: row.ExpectedDelivery,
			Status:           row.Status,
		}).Error; err != nil {
			return errs.Wrap(err, "seed material order")
		}
	}

	for _, row := range doc.SalesOrders {
		if err := db.Clauses(upsert).Create(&model.SalesOrder{
			OrderID:  row.OrderID,
			Model:    row.Model,
			Quantity: row.Quantity,
			DueDate:  row.DueDate,
			Status:   row.Status,
		}).Error; err != nil {
			return errs.Wrap(err, "seed sales order")
		}
	}

	for _, row := range doc.BOM {
		if err := db.Clauses(upsert).Create(&model.BOMLine{
			Model:      row.Model,
			PartID:     row.PartID,
			PartName:   row.PartName,
			QtyPerUnit: row.QtyPerUnit,
		}).Error; err != nil {
			return errs.Wrap(err, "seed bom line")
		}
	}

	return nil
}
