package worker

// delivery_worker.go
// Processes render-and-deliver jobs from QueueDelivery.
// Renders the document PDF and hands the result to the email queue.
// Delivery state is tracked on a Delivery row; failures never touch the
// document lifecycle itself.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicehub/internal/infra"
	"invoicehub/internal/model"
	"invoicehub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// JobQueue is the slice of the dispatcher the delivery worker needs:
// forwarding to the email queue and dead-lettering exhausted jobs.
type JobQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
	DeadLetter(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int)
}

// DeliveryWorker renders PDFs for sent documents and enqueues the email job.
type DeliveryWorker struct {
	documentRepo   repository.DocumentRepository
	companyRepo    repository.CompanyRepository
	deliveryRepo   repository.DeliveryRepository
	dispatcher     JobQueue
	pdfStoragePath string
}

func NewDeliveryWorker(
	documentRepo repository.DocumentRepository,
	companyRepo repository.CompanyRepository,
	deliveryRepo repository.DeliveryRepository,
	dispatcher JobQueue,
	pdfStoragePath string,
) *DeliveryWorker {
	return &DeliveryWorker{
		documentRepo:   documentRepo,
		companyRepo:    companyRepo,
		deliveryRepo:   deliveryRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single delivery job:
//  1. Parse DeliveryJobPayload from the job envelope
//  2. Fetch document (with items) and company
//  3. Create a Delivery row with status="pending"
//  4. Render the PDF with retry (max 3 attempts)
//  5. Enqueue the email job pointing at the delivery row
func (w *DeliveryWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload DeliveryJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("delivery_worker: invalid payload")
		return
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		log.Error().Str("document_id", payload.DocumentID).Msg("delivery_worker: invalid document_id")
		return
	}
	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		log.Error().Str("company_id", payload.CompanyID).Msg("delivery_worker: invalid company_id")
		return
	}

	doc, err := w.documentRepo.FindByID(ctx, companyID, docID)
	if err != nil {
		log.Error().Err(err).Str("document_id", payload.DocumentID).Msg("delivery_worker: document not found")
		return
	}
	company, err := w.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Str("company_id", payload.CompanyID).Msg("delivery_worker: company not found")
		return
	}

	delivery := &model.Delivery{
		DocumentID: docID,
		ToEmail:    payload.ToEmail,
		Status:     "pending",
	}
	if err := w.deliveryRepo.Create(ctx, delivery); err != nil {
		log.Error().Err(err).Str("document_id", payload.DocumentID).Msg("delivery_worker: failed to create delivery")
		return
	}

	var pdfPath string
	renderErr := withRetry(ctx, MaxDeliveryRetries, func(attempt int) error {
		path, err := infra.GenerateDocumentPDF(doc, company, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("document_id", payload.DocumentID).
				Msg("delivery_worker: render attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})

	if renderErr != nil {
		log.Error().Err(renderErr).Str("document_id", payload.DocumentID).Msg("delivery_worker: render failed after all retries")
		delivery.Status = "error"
		errMsg := renderErr.Error()
		delivery.LastError = &errMsg
		delivery.RetryCount = MaxDeliveryRetries
		_ = w.deliveryRepo.Update(ctx, delivery)
		// Render retries happen inline; after the last one the job goes
		// straight to the DLQ — the cron only re-attempts email sends.
		w.dispatcher.DeadLetter(ctx, QueueDelivery, "delivery", raw,
			fmt.Sprintf("render failed after %d attempts: %s", MaxDeliveryRetries, errMsg),
			MaxDeliveryRetries)
		return
	}

	delivery.Status = "rendered"
	delivery.PDFPath = &pdfPath
	if err := w.deliveryRepo.Update(ctx, delivery); err != nil {
		log.Error().Err(err).Str("delivery_id", delivery.ID.String()).Msg("delivery_worker: failed to update delivery")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("document_id", payload.DocumentID).Msg("delivery_worker: PDF rendered")

	emailJob := EmailJobPayload{
		DeliveryID: delivery.ID.String(),
		ToEmail:    payload.ToEmail,
		Subject:    fmt.Sprintf("%s %s from %s", documentLabel(doc.Type), doc.Number, company.Name),
		Body: fmt.Sprintf("Please find attached %s %s.\nTotal: %s %s",
			documentLabel(doc.Type), doc.Number, doc.Total.StringFixed(2), doc.Currency),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", payload.ToEmail).Msg("delivery_worker: failed to enqueue email")
		return
	}
	log.Info().Str("email", payload.ToEmail).Msg("delivery_worker: email job enqueued")
}

func documentLabel(t model.DocumentType) string {
	switch t {
	case model.DocumentTypeQuotation:
		return "Quotation"
	case model.DocumentTypeCreditNote:
		return "Credit Note"
	case model.DocumentTypeDebitNote:
		return "Debit Note"
	default:
		return "Invoice"
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
