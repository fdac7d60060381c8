package dto

type UpdateCompanyRequest struct {
	Name     string  `json:"name"     validate:"omitempty,min=1,max=200"`
	TaxID    *string `json:"tax_id"   validate:"omitempty,max=40"`
	Address  *string `json:"address"  validate:"omitempty,max=500"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Currency string  `json:"currency" validate:"omitempty,len=3,uppercase"`

	InvoicePrefix    string `json:"invoice_prefix"     validate:"omitempty,max=10"`
	QuotationPrefix  string `json:"quotation_prefix"   validate:"omitempty,max=10"`
	CreditNotePrefix string `json:"credit_note_prefix" validate:"omitempty,max=10"`
	DebitNotePrefix  string `json:"debit_note_prefix"  validate:"omitempty,max=10"`
}

// CompanyResponse exposes the numbering counters read-only; they advance only
// through document creation.
type CompanyResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	TaxID    *string `json:"tax_id"`
	Address  *string `json:"address"`
	Email    *string `json:"email"`
	Currency string  `json:"currency"`

	InvoicePrefix    string `json:"invoice_prefix"`
	QuotationPrefix  string `json:"quotation_prefix"`
	CreditNotePrefix string `json:"credit_note_prefix"`
	DebitNotePrefix  string `json:"debit_note_prefix"`

	NextInvoiceNumber    int64 `json:"next_invoice_number"`
	NextQuotationNumber  int64 `json:"next_quotation_number"`
	NextCreditNoteNumber int64 `json:"next_credit_note_number"`
	NextDebitNoteNumber  int64 `json:"next_debit_note_number"`
}
