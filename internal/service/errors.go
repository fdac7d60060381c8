package service

import (
	"errors"
	"fmt"
	"strings"

	"invoicehub/internal/model"
)

// Caller-correctable errors of the document lifecycle. Handlers map these to
// HTTP statuses; none of them is fatal to the process.

var (
	// ErrMissingCurrency: no requested, customer, or company currency available.
	ErrMissingCurrency = errors.New("no currency could be resolved for the document")

	// ErrInvalidCurrency: a stored currency preference must be a valid
	// ISO 4217 code. Resolution skips invalid candidates, but writes reject them.
	ErrInvalidCurrency = errors.New("currency is not a valid ISO 4217 code")

	// ErrNotFound: unknown id / company pair. Deliberately does not reveal
	// whether the id exists under another tenant.
	ErrNotFound = errors.New("document not found")

	// ErrStorageUnavailable: the backing store rejected the transaction for
	// infrastructure reasons. Safe to retry — no number is consumed and no
	// partial write is visible if the transaction did not commit.
	ErrStorageUnavailable = errors.New("storage unavailable, retry the operation")
)

// InvalidTransitionError rejects a status change not present in the
// transition table. The request has no side effects.
type InvalidTransitionError struct {
	Type model.DocumentType
	From model.DocumentStatus
	To   model.DocumentStatus
}

func (e *InvalidTransitionError) Error() string {
	if IsTerminal(e.Type, e.From) {
		return fmt.Sprintf("%s cannot transition from %q to %q: %q is terminal", e.Type, e.From, e.To, e.From)
	}
	return fmt.Sprintf("%s cannot transition from %q to %q", e.Type, e.From, e.To)
}

// IncompleteDocumentError rejects leaving draft while required fields are missing.
type IncompleteDocumentError struct {
	Missing []string
}

func (e *IncompleteDocumentError) Error() string {
	return "document is incomplete: missing " + strings.Join(e.Missing, ", ")
}

// DocumentFrozenError rejects direct financial edits outside the amendment path.
type DocumentFrozenError struct {
	Status model.DocumentStatus
}

func (e *DocumentFrozenError) Error() string {
	return fmt.Sprintf("document is frozen in status %q; financial fields can only change through an amendment", e.Status)
}

// ConflictError signals a stale optimistic-concurrency token. The caller
// must re-read and retry; there is no last-write-wins on financial fields.
type ConflictError struct {
	ExpectedVersion int
	CurrentVersion  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("stale version %d, document is at version %d", e.ExpectedVersion, e.CurrentVersion)
}

// ItemValidationError rejects a malformed line item.
type ItemValidationError struct {
	Index  int
	Field  string
	Detail string
}

func (e *ItemValidationError) Error() string {
	return fmt.Sprintf("item %d: %s %s", e.Index, e.Field, e.Detail)
}
