package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voltway/internal/errs"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/ports"
)

type StockRepository struct {
	db *gorm.DB
}

var _ ports.StockRepository = (*StockRepository)(nil)

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *StockRepository) GetPart(ctx context.Context, partID string) (ports.StockRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.StockRecord{}, err
	}

	var row model.StockLevel
	if err := db.Where("part_id = ?", partID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.StockRecord{}, fmt.Errorf("%w: %s", ports.ErrPartNotFound, partID)
		}
		return ports.StockRecord{}, errs.Wrap(err, "query stock by part")
	}
	return stockFromModel(row), nil
}

func (r *StockRepository) ListParts(ctx context.Context, partIDs []string) ([]ports.StockRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(partIDs) == 0 {
		return nil, nil
	}

	var rows []model.StockLevel
	if err := db.Where("part_id IN ?", partIDs).Order("part_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query stock by parts")
	}
	return stocksFromModels(rows), nil
}

func (r *StockRepository) ListAll(ctx context.Context) ([]ports.StockRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.StockLevel
	if err := db.Order("part_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query stock")
	}
	return stocksFromModels(rows), nil
}

func (r *StockRepository) ListBelow(ctx context.Context, threshold int) ([]ports.StockRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.StockLevel
	if err := db.
		Where("quantity < ?", threshold).
		Order("quantity asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query low stock")
	}
	return stocksFromModels(rows), nil
}

func (r *StockRepository) Summarize(ctx context.Context, lowThreshold int) (ports.StockSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.StockSummary{}, err
	}

	var rows []model.StockLevel
	if err := db.Find(&rows).Error; err != nil {
		return ports.StockSummary{}, errs.Wrap(err, "query stock for summary")
	}

	summary := ports.StockSummary{
		TotalParts:   len(rows),
		LowThreshold: lowThreshold,
	}
	for _, row := range rows {
		summary.TotalUnits += row.Quantity
		if row.Status == ports.StockStatusHold {
			summary.PartsOnHold++
		}
		if row.Quantity < lowThreshold {
			summary.PartsLow++
		}
	}
	return summary, nil
}

func (r *StockRepository) SetStatus(ctx context.Context, partID, status, reason string, at time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if status != ports.StockStatusHold {
		// Leaving HOLD clears the reason; a stale reason on NORMAL stock is
		// worse than none.
		reason = ""
	}
	result := db.Model(&model.StockLevel{}).
		Where("part_id = ?", partID).
		Updates(map[string]any{
			"status":      status,
			"hold_reason": reason,
			"updated_at":  at,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update stock status")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ports.ErrPartNotFound, partID)
	}
	return nil
}

func (r *StockRepository) Upsert(ctx context.Context, record ports.StockRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.StockLevel{
		PartID:           record.PartID,
		PartName:         record.PartName,
		Warehouse:        record.Warehouse,
		Quantity:         record.Quantity,
		Status:           record.Status,
		HoldReason:       record.HoldReason,
		ReorderThreshold: record.ReorderThreshold,
		SupplierID:       record.SupplierID,
		UpdatedAt:        record.UpdatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "part_id"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert stock level")
	}
	return nil
}

func stockFromModel(row model.StockLevel) ports.StockRecord {
	return ports.StockRecord{
		PartID:           row.PartID,
		PartName:         row.PartName,
		Warehouse:        row.Warehouse,
		Quantity:         row.Quantity,
		Status:           row.Status,
		HoldReason:       row.HoldReason,
		ReorderThreshold: row.ReorderThreshold,
		SupplierID:       row.SupplierID,
		UpdatedAt:        row.UpdatedAt,
	}
}

func stocksFromModels(rows []model.StockLevel) []ports.StockRecord {
	items := make([]ports.StockRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, stockFromModel(row))
	}
	return items
}
