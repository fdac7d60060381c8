package service

// statusmachine.go — one generic transition table for all four document types.
// Transitions are explicit: a target not listed for the current state is
// rejected, no implicit skips. States with no outgoing edges are terminal.

import "invoicehub/internal/model"

// transitions maps document type → current status → reachable next statuses.
var transitions = map[model.DocumentType]map[model.DocumentStatus][]model.DocumentStatus{
	model.DocumentTypeQuotation: {
		model.StatusDraft:    {model.StatusSent},
		model.StatusSent:     {model.StatusAccepted, model.StatusRejected, model.StatusExpired},
		model.StatusAccepted: {model.StatusConverted},
	},
	model.DocumentTypeInvoice: {
		model.StatusDraft:         {model.StatusSent},
		model.StatusSent:          {model.StatusPaid, model.StatusPartiallyPaid, model.StatusOverdue, model.StatusCancelled},
		model.StatusPartiallyPaid: {model.StatusPaid, model.StatusCancelled},
		model.StatusOverdue:       {model.StatusCancelled},
	},
	model.DocumentTypeCreditNote: {
		model.StatusDraft: {model.StatusSent},
		model.StatusSent:  {model.StatusApplied},
	},
	model.DocumentTypeDebitNote: {
		model.StatusDraft: {model.StatusSent},
		model.StatusSent:  {model.StatusApplied},
	},
}

// CanTransition reports whether a document of the given type may move from → to.
func CanTransition(docType model.DocumentType, from, to model.DocumentStatus) bool {
	for _, next := range transitions[docType][from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions for the type.
func IsTerminal(docType model.DocumentType, status model.DocumentStatus) bool {
	return len(transitions[docType][status]) == 0
}

// checkComplete validates the invariants required to leave draft: items
// present, currency set, and a customer reference for invoices and quotations.
func checkComplete(doc *model.Document) error {
	var missing []string
	if len(doc.Items) == 0 {
		missing = append(missing, "items")
	}
	if doc.Currency == "" {
		missing = append(missing, "currency")
	}
	if doc.CustomerID == nil &&
		(doc.Type == model.DocumentTypeInvoice || doc.Type == model.DocumentTypeQuotation) {
		missing = append(missing, "customer")
	}
	if len(missing) > 0 {
		return &IncompleteDocumentError{Missing: missing}
	}
	return nil
}

// validateTransition is the full gate for a status change request: target
// must be reachable, and leaving draft additionally requires completeness.
func validateTransition(doc *model.Document, to model.DocumentStatus) error {
	if !CanTransition(doc.Type, doc.Status, to) {
		return &InvalidTransitionError{Type: doc.Type, From: doc.Status, To: to}
	}
	if doc.Status == model.StatusDraft {
		if err := checkComplete(doc); err != nil {
			return err
		}
	}
	return nil
}
