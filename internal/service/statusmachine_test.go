package service

import (
	"testing"

	"invoicehub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_QuotationFlow(t *testing.T) {
	q := model.DocumentTypeQuotation

	assert.True(t, CanTransition(q, model.StatusDraft, model.StatusSent))
	assert.True(t, CanTransition(q, model.StatusSent, model.StatusAccepted))
	assert.True(t, CanTransition(q, model.StatusSent, model.StatusRejected))
	assert.True(t, CanTransition(q, model.StatusSent, model.StatusExpired))
	assert.True(t, CanTransition(q, model.StatusAccepted, model.StatusConverted))

	// No reverse edges, no skips.
	assert.False(t, CanTransition(q, model.StatusSent, model.StatusDraft))
	assert.False(t, CanTransition(q, model.StatusDraft, model.StatusAccepted))
	assert.False(t, CanTransition(q, model.StatusRejected, model.StatusSent))

	// Invoice-only statuses are unreachable for quotations.
	assert.False(t, CanTransition(q, model.StatusSent, model.StatusPaid))
}

func TestCanTransition_InvoiceFlow(t *testing.T) {
	inv := model.DocumentTypeInvoice

	assert.True(t, CanTransition(inv, model.StatusDraft, model.StatusSent))
	assert.True(t, CanTransition(inv, model.StatusSent, model.StatusPaid))
	assert.True(t, CanTransition(inv, model.StatusSent, model.StatusPartiallyPaid))
	assert.True(t, CanTransition(inv, model.StatusSent, model.StatusOverdue))
	assert.True(t, CanTransition(inv, model.StatusSent, model.StatusCancelled))
	assert.True(t, CanTransition(inv, model.StatusPartiallyPaid, model.StatusPaid))
	assert.True(t, CanTransition(inv, model.StatusPartiallyPaid, model.StatusCancelled))
	assert.True(t, CanTransition(inv, model.StatusOverdue, model.StatusCancelled))

	// An overdue invoice can only be cancelled; payment edges exist solely
	// from sent and partially_paid.
	assert.False(t, CanTransition(inv, model.StatusOverdue, model.StatusPaid))
	assert.False(t, CanTransition(inv, model.StatusOverdue, model.StatusPartiallyPaid))

	assert.False(t, CanTransition(inv, model.StatusPaid, model.StatusSent))
	assert.False(t, CanTransition(inv, model.StatusCancelled, model.StatusPaid))
	assert.False(t, CanTransition(inv, model.StatusSent, model.StatusAccepted))
}

func TestCanTransition_NoteFlow(t *testing.T) {
	for _, dt := range []model.DocumentType{model.DocumentTypeCreditNote, model.DocumentTypeDebitNote} {
		assert.True(t, CanTransition(dt, model.StatusDraft, model.StatusSent))
		assert.True(t, CanTransition(dt, model.StatusSent, model.StatusApplied))
		assert.False(t, CanTransition(dt, model.StatusSent, model.StatusPaid))
		assert.False(t, CanTransition(dt, model.StatusApplied, model.StatusSent))
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(model.DocumentTypeQuotation, model.StatusRejected))
	assert.True(t, IsTerminal(model.DocumentTypeQuotation, model.StatusConverted))
	assert.True(t, IsTerminal(model.DocumentTypeInvoice, model.StatusPaid))
	assert.True(t, IsTerminal(model.DocumentTypeInvoice, model.StatusCancelled))
	assert.True(t, IsTerminal(model.DocumentTypeCreditNote, model.StatusApplied))

	assert.False(t, IsTerminal(model.DocumentTypeInvoice, model.StatusSent))
	assert.False(t, IsTerminal(model.DocumentTypeInvoice, model.StatusPartiallyPaid))
	assert.False(t, IsTerminal(model.DocumentTypeQuotation, model.StatusDraft))
}

func TestValidateTransition_CompletenessGate(t *testing.T) {
	cid := uuid.New()
	complete := &model.Document{
		Type:       model.DocumentTypeInvoice,
		Status:     model.StatusDraft,
		Currency:   "USD",
		CustomerID: &cid,
		Items: []model.DocumentItem{{
			Name:      "consulting",
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(100),
		}},
	}
	assert.NoError(t, validateTransition(complete, model.StatusSent))

	// Missing items blocks leaving draft.
	noItems := *complete
	noItems.Items = nil
	var incomplete *IncompleteDocumentError
	err := validateTransition(&noItems, model.StatusSent)
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "items")

	// Invoices need a customer; credit notes do not.
	noCustomer := *complete
	noCustomer.CustomerID = nil
	err = validateTransition(&noCustomer, model.StatusSent)
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "customer")

	note := noCustomer
	note.Type = model.DocumentTypeCreditNote
	assert.NoError(t, validateTransition(&note, model.StatusSent))
}

func TestValidateTransition_RejectsUnknownEdge(t *testing.T) {
	doc := &model.Document{
		Type:   model.DocumentTypeInvoice,
		Status: model.StatusSent,
	}
	err := validateTransition(doc, model.StatusDraft)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, model.StatusSent, ite.From)
	assert.Equal(t, model.StatusDraft, ite.To)

	// Completeness is only checked when leaving draft: a sent invoice with no
	// items can still be cancelled.
	assert.NoError(t, validateTransition(doc, model.StatusCancelled))
}

func TestValidateTransition_TerminalStatusMessage(t *testing.T) {
	doc := &model.Document{
		Type:   model.DocumentTypeInvoice,
		Status: model.StatusPaid,
	}
	err := validateTransition(doc, model.StatusSent)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Contains(t, err.Error(), `"paid" is terminal`)

	// Non-terminal origins keep the plain message.
	doc.Status = model.StatusSent
	err = validateTransition(doc, model.StatusDraft)
	require.ErrorAs(t, err, &ite)
	assert.NotContains(t, err.Error(), "terminal")
}
