package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"voltway/internal/errs"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/ports"
)

type BOMRepository struct {
	db *gorm.DB
}

var _ ports.BOMRepository = (*BOMRepository)(nil)

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *BOMRepository) ListByModel(ctx context.Context, modelName string) ([]ports.BOMLineRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.BOMLine
	if err := db.
		Where("model = ?", modelName).
		Order("part_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query bom by model")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrModelNotFound, modelName)
	}
	return bomLinesFromModels(rows), nil
}

func (r *BOMRepository) ListModelsUsingPart(ctx context.Context, partID string) ([]ports.BOMLineRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.BOMLine
	if err := db.
		Where("part_id = ?", partID).
		Order("model asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query bom by part")
	}
	return bomLinesFromModels(rows), nil
}

func bomLinesFromModels(rows []model.BOMLine) []ports.BOMLineRecord {
	items := make([]ports.BOMLineRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.BOMLineRecord{
			Model:      row.Model,
			PartID:     row.PartID,
			PartName:   row.PartName,
			QtyPerUnit: row.QtyPerUnit,
		})
	}
	return items
}
