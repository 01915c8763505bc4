package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voltway/internal/errs"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/ports"
)

type EmailRepository struct {
	db *gorm.DB
}

var _ ports.EmailRepository = (*EmailRepository)(nil)

func NewEmailRepository(db *gorm.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

func (r *EmailRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *EmailRepository) Save(ctx context.Context, record ports.EmailRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := emailToModel(record)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "filename"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert email")
	}
	return nil
}

func (r *EmailRepository) Get(ctx context.Context, filename string) (ports.EmailRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.EmailRecord{}, err
	}

	var row model.Email
	if err := db.Where("filename = ?", filename).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EmailRecord{}, fmt.Errorf("%w: %s", ports.ErrEmailNotFound, filename)
		}
		return ports.EmailRecord{}, errs.Wrap(err, "query email by filename")
	}
	return emailFromModel(row), nil
}

func (r *EmailRepository) List(ctx context.Context, filter ports.EmailFilter) ([]ports.EmailRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Email{})
	if sender := strings.TrimSpace(filter.Sender); sender != "" {
		query = query.Where("sender = ?", sender)
	}
	if intent := strings.TrimSpace(filter.Intent); intent != "" {
		query = query.Where("intent = ?", intent)
	}
	if filter.MinRisk > 0 {
		query = query.Where("risk_score >= ?", filter.MinRisk)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.Email
	if err := query.Order("received_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query emails")
	}
	return emailsFromModels(rows), nil
}

func (r *EmailRepository) Search(ctx context.Context, query string, limit int) ([]ports.EmailRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := db.Model(&model.Email{}).
		Where("lower(sender) LIKE ? OR lower(subject) LIKE ? OR lower(body) LIKE ?", pattern, pattern, pattern)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []model.Email
	if err := q.Order("received_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "search emails")
	}
	return emailsFromModels(rows), nil
}

func (r *EmailRepository) Summarize(ctx context.Context) (ports.EmailSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.EmailSummary{}, err
	}

	var rows []model.Email
	if err := db.Find(&rows).Error; err != nil {
		return ports.EmailSummary{}, errs.Wrap(err, "query emails for summary")
	}

	summary := ports.EmailSummary{
		Total:    len(rows),
		ByIntent: make(map[string]int),
		ByRisk:   make(map[int]int),
	}
	for _, row := range rows {
		if row.Processed {
			summary.Processed++
		}
		summary.ByIntent[row.Intent]++
		summary.ByRisk[row.RiskScore]++
	}
	return summary, nil
}

func emailToModel(record ports.EmailRecord) model.Email {
	return model.Email{
		Filename:    record.Filename,
		Sender:      record.Sender,
		Subject:     record.Subject,
		Body:        record.Body,
		ReceivedAt:  record.ReceivedAt,
		Intent:      record.Intent,
		RiskScore:   record.RiskScore,
		Confidence:  record.Confidence,
		PartID:      record.PartID,
		OrderID:     record.OrderID,
		OldValue:    record.OldValue,
		NewValue:    record.NewValue,
		Reasoning:   record.Reasoning,
		ActionTaken: record.ActionTaken,
		IssueID:     record.IssueID,
		Processed:   record.Processed,
		ProcessedAt: record.ProcessedAt,
	}
}

func emailFromModel(row model.Email) ports.EmailRecord {
	return ports.EmailRecord{
		Filename:    row.Filename,
		Sender:      row.Sender,
		Subject:     row.Subject,
		Body:        row.Body,
		ReceivedAt:  row.ReceivedAt,
		Intent:      row.Intent,
		RiskScore:   row.RiskScore,
		Confidence:  row.Confidence,
		PartID:      row.PartID,
		OrderID:     row.OrderID,
		OldValue:    row.OldValue,
		NewValue:    row.NewValue,
		Reasoning:   row.Reasoning,
		ActionTaken: row.ActionTaken,
		IssueID:     row.IssueID,
		Processed:   row.Processed,
		ProcessedAt: row.ProcessedAt,
	}
}

func emailsFromModels(rows []model.Email) []ports.EmailRecord {
	items := make([]ports.EmailRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, emailFromModel(row))
	}
	return items
}
