package service

import (
	"context"

	"invoicehub/internal/dto"
	"invoicehub/internal/model"
	"invoicehub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	Create(ctx context.Context, companyID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]dto.ProductResponse, error)
	Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, companyID, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}


func validateProductFields(unitPrice, taxRate decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return &ItemValidationError{Field: "unit_price", Detail: "must not be negative"}
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(oneHundred) {
		return &ItemValidationError{Field: "tax_rate", Detail: "must be between 0 and 100"}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, companyID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validateProductFields(req.UnitPrice, req.TaxRate); err != nil {
		return nil, err
	}
	p := &model.Product{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		TaxRate:     req.TaxRate,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, companyID, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, companyID, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.TaxRate != nil {
		p.TaxRate = *req.TaxRate
	}
	if err := validateProductFields(p.UnitPrice, p.TaxRate); err != nil {
		return nil, err
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, companyID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, companyID, id)
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		TaxRate:     p.TaxRate,
		Active:      p.Active,
	}
}
