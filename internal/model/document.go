package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentType discriminates the four billing document kinds sharing one table.
type DocumentType string

const (
	DocumentTypeQuotation  DocumentType = "quotation"
	DocumentTypeInvoice    DocumentType = "invoice"
	DocumentTypeCreditNote DocumentType = "credit_note"
	DocumentTypeDebitNote  DocumentType = "debit_note"
)

// Valid reports whether t is one of the four known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeQuotation, DocumentTypeInvoice, DocumentTypeCreditNote, DocumentTypeDebitNote:
		return true
	}
	return false
}

// DocumentStatus is the lifecycle state. The reachable set depends on the
// document type — see service.Transitions.
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "draft"
	StatusSent          DocumentStatus = "sent"
	StatusAccepted      DocumentStatus = "accepted"
	StatusRejected      DocumentStatus = "rejected"
	StatusExpired       DocumentStatus = "expired"
	StatusConverted     DocumentStatus = "converted"
	StatusPaid          DocumentStatus = "paid"
	StatusPartiallyPaid DocumentStatus = "partially_paid"
	StatusOverdue       DocumentStatus = "overdue"
	StatusCancelled     DocumentStatus = "cancelled"
	StatusApplied       DocumentStatus = "applied"
)

// CustomerSnapshot is the point-in-time copy of customer identity fields
// taken at document creation. Owned by the document: edits to the Customer
// row never propagate here. Re-snapshot happens only via the amendment path.
type CustomerSnapshot struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	TaxID   *string `gorm:"column:tax_id" json:"tax_id"`
}

// Document is one quotation / invoice / credit note / debit note.
//
// Number is assigned once at creation and never reused. Version is the
// optimistic-concurrency token: every write matches on it and bumps it.
// Subtotal/TaxTotal/Total are derived from Items and recomputed on every
// mutation — they are never accepted as input.
type Document struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID    `gorm:"type:uuid;not null;index:idx_documents_company_number,unique,priority:1;index"`
	Type      DocumentType `gorm:"type:varchar(20);not null;index"`
	Number    string       `gorm:"type:varchar(30);not null;index:idx_documents_company_number,unique,priority:2"`

	CustomerID *uuid.UUID       `gorm:"type:uuid;index"`
	Snapshot   CustomerSnapshot `gorm:"embedded;embeddedPrefix:snapshot_"`

	Currency string         `gorm:"type:varchar(3);not null"`
	Status   DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	Subtotal decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TaxTotal decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	// Calendar dates, no time-of-day semantics.
	IssueDate  datatypes.Date  `gorm:"not null"`
	DueDate    *datatypes.Date // invoices / debit notes
	ValidUntil *datatypes.Date // quotations

	// Free text — mutable in any status, not part of the frozen financial data.
	Notes *string
	Terms *string

	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items      []DocumentItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	AuditTrail []AuditEntry   `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// DisplayState is the derived editability badge. There is deliberately no
// stored flag backing this — it is a pure projection of status + audit trail.
type DisplayState string

const (
	DisplayEditable DisplayState = "editable"
	DisplayFrozen   DisplayState = "frozen"
	DisplayAmended  DisplayState = "amended"
)

// Display derives the document's presentation state.
func (d *Document) Display() DisplayState {
	if d.Status == StatusDraft {
		return DisplayEditable
	}
	if len(d.AuditTrail) > 0 {
		return DisplayAmended
	}
	return DisplayFrozen
}

// DocumentItem is one ordered line of a document. Position preserves the
// order the caller submitted. All monetary fields are in the document currency.
type DocumentItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	Position    int        `gorm:"not null"`
	Name        string     `gorm:"not null"`
	Description *string
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// AuditEntry records one sanctioned post-freeze edit. Append-only.
// Diff is a JSON object {field: {"from": …, "to": …}} over the financial
// fields that changed (items, currency, snapshot).
type AuditEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID uuid.UUID      `gorm:"type:uuid;index;not null"`
	Reason     string         `gorm:"not null"`
	Diff       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
}
