package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a reusable line-item template. When a document item references a
// product, name / unit price / tax rate are prefilled from here and then
// copied onto the item — later product edits never touch existing documents.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
