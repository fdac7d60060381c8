package repository

import (
	"context"

	"invoicehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&c).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.Customer, error) {
	var customers []model.Customer
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Update("active", false).Error
}
