package dto

type CreateCustomerRequest struct {
	Name     string  `json:"name"     validate:"required,min=1,max=200"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Address  *string `json:"address"  validate:"omitempty,max=500"`
	TaxID    *string `json:"tax_id"   validate:"omitempty,max=40"`
	Currency *string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type UpdateCustomerRequest struct {
	Name     string  `json:"name"     validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Address  *string `json:"address"  validate:"omitempty,max=500"`
	TaxID    *string `json:"tax_id"   validate:"omitempty,max=40"`
	Currency *string `json:"currency" validate:"omitempty,len=3,uppercase"`
	Active   *bool   `json:"active"`
}

type CustomerResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	TaxID    *string `json:"tax_id"`
	Currency *string `json:"currency"`
	Active   bool    `json:"active"`
}
