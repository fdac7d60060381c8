package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant root. Every customer, product, user and document
// belongs to exactly one company.
//
// The per-type numbering counters live here: issuing a document number is an
// atomic increment-and-return on the matching next_* column, executed inside
// the same transaction that persists the document. Counters only move
// forward; a rolled-back transaction leaves a gap, never a duplicate.
type Company struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"not null"`
	TaxID    *string   `gorm:"type:varchar(40);column:tax_id"`
	Address  *string
	Email    *string
	Currency string `gorm:"type:varchar(3);not null;default:'USD'"`

	InvoicePrefix    string `gorm:"type:varchar(10);not null;default:'INV-'"`
	QuotationPrefix  string `gorm:"type:varchar(10);not null;default:'QUO-'"`
	CreditNotePrefix string `gorm:"type:varchar(10);not null;default:'CRN-'"`
	DebitNotePrefix  string `gorm:"type:varchar(10);not null;default:'DBN-'"`

	NextInvoiceNumber    int64 `gorm:"not null;default:1"`
	NextQuotationNumber  int64 `gorm:"not null;default:1"`
	NextCreditNoteNumber int64 `gorm:"not null;default:1"`
	NextDebitNoteNumber  int64 `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Company) TableName() string { return "companies" }

// NumberPrefix returns the configured prefix for a document type.
func (c *Company) NumberPrefix(docType DocumentType) string {
	switch docType {
	case DocumentTypeQuotation:
		return c.QuotationPrefix
	case DocumentTypeCreditNote:
		return c.CreditNotePrefix
	case DocumentTypeDebitNote:
		return c.DebitNotePrefix
	default:
		return c.InvoicePrefix
	}
}
