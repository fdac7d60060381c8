package service

import (
	"context"

	"invoicehub/internal/dto"
	"invoicehub/internal/model"
	"invoicehub/internal/repository"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, companyID uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]dto.CustomerResponse, error)
	Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Deactivate(ctx context.Context, companyID, id uuid.UUID) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, companyID uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if req.Currency != nil && !validCurrencyCode(*req.Currency) {
		return nil, ErrInvalidCurrency
	}
	c := &model.Customer{
		CompanyID: companyID,
		Name:      req.Name,
		Email:     req.Email,
		Address:   req.Address,
		TaxID:     req.TaxID,
		Currency:  req.Currency,
		Active:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, companyID, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]dto.CustomerResponse, error) {
	customers, err := s.repo.List(ctx, companyID, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CustomerResponse, len(customers))
	for i := range customers {
		resp[i] = customerToResponse(&customers[i])
	}
	return resp, nil
}

func (s *customerService) Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if req.Currency != nil && !validCurrencyCode(*req.Currency) {
		return nil, ErrInvalidCurrency
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.TaxID != nil {
		c.TaxID = req.TaxID
	}
	if req.Currency != nil {
		c.Currency = req.Currency
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Deactivate(ctx context.Context, companyID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, companyID, id)
}

func customerToResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Email:    c.Email,
		Address:  c.Address,
		TaxID:    c.TaxID,
		Currency: c.Currency,
		Active:   c.Active,
	}
}
