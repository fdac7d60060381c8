package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// DocumentFilter is bound from the query string of GET /v1/documents.
type DocumentFilter struct {
	Type       string `form:"type"        validate:"omitempty,oneof=quotation invoice credit_note debit_note"`
	Status     string `form:"status"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	DateFrom   string `form:"date_from"   validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `form:"date_to"     validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// DocumentListItem is the compact row shape for list responses.
type DocumentListItem struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	Display      string          `json:"display"`
	IssueDate    string          `json:"issue_date"`
	Version      int             `json:"version"`
	CreatedAt    string          `json:"created_at"`
}

type DocumentListResponse struct {
	Data  []DocumentListItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemRequest is one submitted line. When product_id is set, name / unit
// price / tax rate are prefilled from the product and may be overridden.
type ItemRequest struct {
	ProductID   *string          `json:"product_id"  validate:"omitempty,uuid"`
	Name        string           `json:"name"        validate:"required_without=ProductID"`
	Description *string          `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"    validate:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price"  validate:"required_without=ProductID"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
}

type CreateDocumentRequest struct {
	Type       string        `json:"type"        validate:"required,oneof=quotation invoice credit_note debit_note"`
	CustomerID *string       `json:"customer_id" validate:"omitempty,uuid"`
	Items      []ItemRequest `json:"items"       validate:"dive"`
	// Currency is the explicit user choice; when empty the customer
	// preference and then the company default apply.
	Currency   string  `json:"currency"    validate:"omitempty,len=3"`
	IssueDate  string  `json:"issue_date"  validate:"omitempty,datetime=2006-01-02"`
	DueDate    *string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	ValidUntil *string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	Notes      *string `json:"notes"`
	Terms      *string `json:"terms"`
}

// UpdateDocumentRequest carries a draft edit. Nil pointers mean "leave as is".
// Non-draft documents reject financial changes here — use the amendment path.
type UpdateDocumentRequest struct {
	CustomerID *string        `json:"customer_id" validate:"omitempty,uuid"`
	Items      *[]ItemRequest `json:"items"       validate:"omitempty,dive"`
	Currency   *string        `json:"currency"    validate:"omitempty,len=3"`
	DueDate    *string        `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	ValidUntil *string        `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	Notes      *string        `json:"notes"`
	Terms      *string        `json:"terms"`
	// ExpectedVersion is the optimistic-concurrency token from the last read.
	ExpectedVersion int `json:"expected_version" validate:"required,min=1"`
}

type TransitionRequest struct {
	Status          string `json:"status" validate:"required"`
	ExpectedVersion int    `json:"expected_version" validate:"required,min=1"`
}

// AmendRequest is the sanctioned post-freeze edit. Changes are limited to
// the frozen financial fields; the reason lands verbatim in the audit trail.
type AmendRequest struct {
	Items      *[]ItemRequest `json:"items"    validate:"omitempty,dive"`
	Currency   *string        `json:"currency" validate:"omitempty,len=3"`
	// Resnapshot re-copies the current customer fields into the document snapshot.
	Resnapshot      bool   `json:"resnapshot"`
	Reason          string `json:"reason" validate:"required,min=5"`
	ExpectedVersion int    `json:"expected_version" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
}

type SnapshotResponse struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id"`
}

type AuditEntryResponse struct {
	ID        string      `json:"id"`
	Reason    string      `json:"reason"`
	Diff      interface{} `json:"diff"`
	CreatedAt string      `json:"created_at"`
}

type DocumentResponse struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Number     string               `json:"number"`
	CustomerID *string              `json:"customer_id"`
	Snapshot   SnapshotResponse     `json:"customer_snapshot"`
	Currency   string               `json:"currency"`
	Status     string               `json:"status"`
	Display    string               `json:"display"`
	Items      []ItemResponse       `json:"items"`
	Subtotal   decimal.Decimal      `json:"subtotal"`
	TaxTotal   decimal.Decimal      `json:"tax_total"`
	Total      decimal.Decimal      `json:"total"`
	IssueDate  string               `json:"issue_date"`
	DueDate    *string              `json:"due_date"`
	ValidUntil *string              `json:"valid_until"`
	Notes      *string              `json:"notes"`
	Terms      *string              `json:"terms"`
	AuditTrail []AuditEntryResponse `json:"audit_trail"`
	Version    int                  `json:"version"`
	CreatedAt  string               `json:"created_at"`
	UpdatedAt  string               `json:"updated_at"`
}
