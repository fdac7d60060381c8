package worker

// email_worker.go
// Sends rendered documents by email through the SMTP circuit breaker.
// A failed send schedules a retry on the delivery row; the retry cron picks
// it up later. The breaker keeps a downed SMTP relay from being hammered.

import (
	"context"
	"encoding/json"
	"time"

	"invoicehub/internal/infra"
	"invoicehub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EmailWorker struct {
	mailer       *infra.Mailer
	cb           *infra.CircuitBreaker
	deliveryRepo repository.DeliveryRepository
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, deliveryRepo repository.DeliveryRepository) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, deliveryRepo: deliveryRepo}
}

// Process sends a single email job. The delivery row tracks the outcome.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}

	deliveryID, err := uuid.Parse(payload.DeliveryID)
	if err != nil {
		log.Error().Str("delivery_id", payload.DeliveryID).Msg("email_worker: invalid delivery_id")
		return
	}
	delivery, err := w.deliveryRepo.FindByID(ctx, deliveryID)
	if err != nil {
		log.Error().Err(err).Str("delivery_id", payload.DeliveryID).Msg("email_worker: delivery not found")
		return
	}

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendDocument(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})

	if sendErr != nil {
		delivery.RetryCount++
		errMsg := sendErr.Error()
		delivery.LastError = &errMsg
		delivery.Status = "error"
		nextRetry := time.Now().Add(computeRetryBackoff(delivery.RetryCount))
		delivery.NextRetryAt = &nextRetry
		_ = w.deliveryRepo.Update(ctx, delivery)
		log.Warn().
			Err(sendErr).
			Str("delivery_id", payload.DeliveryID).
			Int("retry_count", delivery.RetryCount).
			Msg("email_worker: send failed, scheduled for retry")
		return
	}

	delivery.Status = "sent"
	delivery.LastError = nil
	delivery.NextRetryAt = nil
	_ = w.deliveryRepo.Update(ctx, delivery)
	log.Info().Str("email", payload.ToEmail).Str("delivery_id", payload.DeliveryID).Msg("email_worker: sent")
}
