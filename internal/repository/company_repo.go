package repository

import (
	"context"
	"fmt"

	"invoicehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	Update(ctx context.Context, c *model.Company) error
	// NextDocumentNumber atomically increments the per-type counter and
	// returns the consumed value. Must be called inside the transaction that
	// persists the document, so a rollback releases nothing observable
	// (the counter gap is tolerated; a duplicate never is).
	NextDocumentNumber(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, docType model.DocumentType) (int64, error)
	DB() *gorm.DB
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) DB() *gorm.DB { return r.db }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *companyRepo) Update(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// counterColumn maps a document type to its counter column. Column names are
// fixed identifiers, never user input, so interpolation into SQL is safe.
func counterColumn(docType model.DocumentType) string {
	switch docType {
	case model.DocumentTypeQuotation:
		return "next_quotation_number"
	case model.DocumentTypeCreditNote:
		return "next_credit_note_number"
	case model.DocumentTypeDebitNote:
		return "next_debit_note_number"
	default:
		return "next_invoice_number"
	}
}

func (r *companyRepo) NextDocumentNumber(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, docType model.DocumentType) (int64, error) {
	col := counterColumn(docType)
	// Single-statement read-increment-write: the row lock taken by UPDATE
	// serializes concurrent issuers for the same company.
	query := fmt.Sprintf(
		"UPDATE companies SET %s = %s + 1, updated_at = NOW() WHERE id = ? RETURNING %s - 1",
		col, col, col,
	)
	var n int64
	err := tx.WithContext(ctx).Raw(query, companyID).Scan(&n).Error
	return n, err
}
