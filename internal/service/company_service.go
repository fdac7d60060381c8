package service

import (
	"context"

	"invoicehub/internal/dto"
	"invoicehub/internal/model"
	"invoicehub/internal/repository"

	"github.com/google/uuid"
)

type CompanyService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	resp := companyToResponse(c)
	return &resp, nil
}

// Update changes settings only. The numbering counters are not writable here;
// they advance exclusively through document creation.
func (s *companyService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if req.Currency != "" && !validCurrencyCode(req.Currency) {
		return nil, ErrInvalidCurrency
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.TaxID != nil {
		c.TaxID = req.TaxID
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Currency != "" {
		c.Currency = req.Currency
	}
	if req.InvoicePrefix != "" {
		c.InvoicePrefix = req.InvoicePrefix
	}
	if req.QuotationPrefix != "" {
		c.QuotationPrefix = req.QuotationPrefix
	}
	if req.CreditNotePrefix != "" {
		c.CreditNotePrefix = req.CreditNotePrefix
	}
	if req.DebitNotePrefix != "" {
		c.DebitNotePrefix = req.DebitNotePrefix
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := companyToResponse(c)
	return &resp, nil
}

func companyToResponse(c *model.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		TaxID:    c.TaxID,
		Address:  c.Address,
		Email:    c.Email,
		Currency: c.Currency,

		InvoicePrefix:    c.InvoicePrefix,
		QuotationPrefix:  c.QuotationPrefix,
		CreditNotePrefix: c.CreditNotePrefix,
		DebitNotePrefix:  c.DebitNotePrefix,

		NextInvoiceNumber:    c.NextInvoiceNumber,
		NextQuotationNumber:  c.NextQuotationNumber,
		NextCreditNoteNumber: c.NextCreditNoteNumber,
		NextDebitNoteNumber:  c.NextDebitNoteNumber,
	}
}
