package repository

import (
	"context"
	"time"

	"invoicehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	Create(ctx context.Context, d *model.Delivery) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error)
	FindByDocumentID(ctx context.Context, documentID uuid.UUID) (*model.Delivery, error)
	Update(ctx context.Context, d *model.Delivery) error
	// ListPendingRetries returns deliveries stuck in "error" whose
	// next_retry_at has elapsed, oldest first.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Delivery, error)
}

type deliveryRepo struct{ db *gorm.DB }

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository { return &deliveryRepo{db: db} }

func (r *deliveryRepo) Create(ctx context.Context, d *model.Delivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *deliveryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error) {
	var d model.Delivery
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *deliveryRepo) FindByDocumentID(ctx context.Context, documentID uuid.UUID) (*model.Delivery, error) {
	var d model.Delivery
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		First(&d).Error
	return &d, err
}

func (r *deliveryRepo) Update(ctx context.Context, d *model.Delivery) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *deliveryRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Delivery, error) {
	var deliveries []model.Delivery
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", "error", now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}
