package repository

import (
	"context"

	"invoicehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Update("active", false).Error
}
