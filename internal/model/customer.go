package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a company-scoped billing counterpart.
// Currency, when set, takes precedence over the company default during
// document currency resolution.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"index;not null"`
	Email     *string
	Address   *string
	TaxID     *string `gorm:"type:varchar(40);column:tax_id"`
	Currency  *string `gorm:"type:varchar(3)"`
	Active    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
