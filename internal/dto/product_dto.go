package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price"  validate:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	Active      *bool            `json:"active"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Active      bool            `json:"active"`
}
