package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"voltway/internal/domain/issue"
	"voltway/internal/errs"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/ports"
)

type IssueRepository struct {
	db *gorm.DB
}

var _ ports.IssueRepository = (*IssueRepository)(nil)

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *IssueRepository) Create(ctx context.Context, record ports.IssueRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := issueToModel(record)
	if row.Version == 0 {
		row.Version = 1
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert issue")
	}
	return nil
}

func (r *IssueRepository) Get(ctx context.Context, id string) (ports.IssueRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueRecord{}, err
	}

	var row model.Issue
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IssueRecord{}, fmt.Errorf("%w: %s", ports.ErrIssueNotFound, id)
		}
		return ports.IssueRecord{}, errs.Wrap(err, "query issue by id")
	}
	return issueFromModel(row), nil
}

func (r *IssueRepository) List(ctx context.Context, filter ports.IssueFilter) ([]ports.IssueRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Issue{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if intent := strings.TrimSpace(filter.Intent); intent != "" {
		query = query.Where("intent = ?", intent)
	}
	if partID := strings.TrimSpace(filter.PartID); partID != "" {
		query = query.Where("part_id = ?", partID)
	}
	if filter.Severity > 0 {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.Issue
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issues")
	}

	items := make([]ports.IssueRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, issueFromModel(row))
	}
	return items, nil
}

func (r *IssueRepository) CountWithIDPrefix(ctx context.Context, prefix string) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Issue{}).
		Where("id LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count issues by id prefix")
	}
	return int(count), nil
}

func (r *IssueRepository) FindOpenDuplicate(ctx context.Context, intent, partID, orderID string) (ports.IssueRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueRecord{}, err
	}

	var row model.Issue
	if err := db.
		Where("intent = ? AND part_id = ? AND order_id = ?", intent, partID, orderID).
		Where("status IN ?", []string{string(issue.StatusOpen), string(issue.StatusInProgress)}).
		Order("id asc").
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IssueRecord{}, ports.ErrIssueNotFound
		}
		return ports.IssueRecord{}, errs.Wrap(err, "query duplicate issue")
	}
	return issueFromModel(row), nil
}

func (r *IssueRepository) Update(ctx context.Context, record ports.IssueRecord, fromVersion int) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := issueToModel(record)
	row.Version = fromVersion + 1

	result := db.Model(&model.Issue{}).
		Where("id = ? AND version = ?", record.ID, fromVersion).
		Updates(map[string]any{
			"status":      row.Status,
			"notes":       row.Notes,
			"updated_at":  row.UpdatedAt,
			"resolved_at": row.ResolvedAt,
			"version":     row.Version,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue")
	}
	if result.RowsAffected == 0 {
		// Either the issue does not exist or a concurrent writer bumped the
		// version first; tell them apart for the caller.
		var count int64
		if err := db.Model(&model.Issue{}).Where("id = ?", record.ID).Count(&count).Error; err != nil {
			return errs.Wrap(err, "recheck issue existence")
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ports.ErrIssueNotFound, record.ID)
		}
		return fmt.Errorf("%w: %s", issue.ErrConflict, record.ID)
	}
	return nil
}

func (r *IssueRepository) Summarize(ctx context.Context) (ports.IssueSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueSummary{}, err
	}

	var rows []model.Issue
	if err := db.Find(&rows).Error; err != nil {
		return ports.IssueSummary{}, errs.Wrap(err, "query issues for summary")
	}

	summary := ports.IssueSummary{
		Total:      len(rows),
		ByStatus:   make(map[string]int),
		BySeverity: make(map[int]int),
		ByIntent:   make(map[string]int),
	}
	for _, row := range rows {
		summary.ByStatus[row.Status]++
		summary.ByIntent[row.Intent]++
		// Severity only matters while the issue still needs attention.
		if row.Status == string(issue.StatusOpen) || row.Status == string(issue.StatusInProgress) {
			summary.BySeverity[row.Severity]++
		}
	}
	return summary, nil
}

func issueToModel(record ports.IssueRecord) model.Issue {
	return model.Issue{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		Intent:      record.Intent,
		Severity:    record.Severity,
		Status:      record.Status,
		PartID:      record.PartID,
		OrderID:     record.OrderID,
		SourceEmail: record.SourceEmail,
		Notes:       record.Notes,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		ResolvedAt:  record.ResolvedAt,
		Version:     record.Version,
	}
}

func issueFromModel(row model.Issue) ports.IssueRecord {
	return ports.IssueRecord{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Intent:      row.Intent,
		Severity:    row.Severity,
		Status:      row.Status,
		PartID:      row.PartID,
		OrderID:     row.OrderID,
		SourceEmail: row.SourceEmail,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		ResolvedAt:  row.ResolvedAt,
		Version:     row.Version,
	}
}
