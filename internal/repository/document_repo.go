package repository

import (
	"context"

	"invoicehub/internal/dto"
	"invoicehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.Document) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, companyID uuid.UUID, filter dto.DocumentFilter) ([]model.Document, int64, error)
	// UpdateVersionedTx applies updates iff the stored version still equals
	// expectedVersion, bumping version by one in the same statement. Returns
	// the number of matched rows: 0 means the token was stale (or the row is
	// gone) and the caller must treat the write as not applied.
	UpdateVersionedTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error)
	// ReplaceItemsTx swaps the full item set of a document.
	ReplaceItemsTx(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, items []model.DocumentItem) error
	AppendAuditTx(ctx context.Context, tx *gorm.DB, entry *model.AuditEntry) error
	DB() *gorm.DB
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepo{db: db} }

func (r *documentRepo) DB() *gorm.DB { return r.db }

func (r *documentRepo) Create(ctx context.Context, tx *gorm.DB, d *model.Document) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("AuditTrail", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&d).Error
	return &d, err
}

func (r *documentRepo) List(ctx context.Context, companyID uuid.UUID, filter dto.DocumentFilter) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Document{}).Where("company_id = ?", companyID)

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.DateFrom != "" {
		q = q.Where("issue_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("issue_date <= ?", filter.DateTo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("AuditTrail").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&docs).Error

	return docs, total, err
}

func (r *documentRepo) UpdateVersionedTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := tx.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *documentRepo) ReplaceItemsTx(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, items []model.DocumentItem) error {
	if err := tx.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.DocumentItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].DocumentID = documentID
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *documentRepo) AppendAuditTx(ctx context.Context, tx *gorm.DB, entry *model.AuditEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}
