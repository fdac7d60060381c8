package worker

// retry_cron.go
// Background goroutine that periodically re-attempts SMTP sends for
// deliveries stuck in status='error' with a next_retry_at in the past.
// Uses the Circuit Breaker to avoid hammering a downed relay.

import (
	"context"
	"fmt"
	"time"

	"invoicehub/internal/infra"
	"invoicehub/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxDeliveryRetries is the cap before a delivery lands in the DLQ.
	MaxDeliveryRetries = 3
)

// computeRetryBackoff returns the wait before the next attempt: 1m, 2m, 4m …
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	return time.Duration(1<<uint(retryCount-1)) * time.Minute
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	DeliveryRepo repository.DeliveryRepository
	Mailer       *infra.Mailer
	CB           *infra.CircuitBreaker
	RDB          *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries failed deliveries, and re-attempts the send through the CB.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed relay
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	deliveries, err := cfg.DeliveryRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(deliveries) == 0 {
		return
	}

	log.Info().Int("count", len(deliveries)).Msg("retry_cron: processing failed deliveries")

	for i := range deliveries {
		delivery := &deliveries[i]

		// Check CB state before each send — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}
		if delivery.PDFPath == nil {
			continue
		}

		sendErr := cfg.CB.Execute(func() error {
			return cfg.Mailer.SendDocument(delivery.ToEmail,
				"Your document", "Please find your document attached.", *delivery.PDFPath)
		})

		if sendErr != nil {
			delivery.RetryCount++
			errMsg := sendErr.Error()
			delivery.LastError = &errMsg

			if delivery.RetryCount >= MaxDeliveryRetries {
				delivery.NextRetryAt = nil
				log.Error().
					Str("delivery_id", delivery.ID.String()).
					Str("document_id", delivery.DocumentID.String()).
					Int("retries", delivery.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				payload := fmt.Sprintf(`{"delivery_id":"%s","document_id":"%s"}`, delivery.ID, delivery.DocumentID)
				SendToDLQ(ctx, cfg.RDB, QueueEmail, "email", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxDeliveryRetries, errMsg),
					delivery.RetryCount)
			} else {
				nextRetry := time.Now().Add(computeRetryBackoff(delivery.RetryCount))
				delivery.NextRetryAt = &nextRetry
				log.Warn().
					Str("delivery_id", delivery.ID.String()).
					Int("retry_count", delivery.RetryCount).
					Time("next_retry_at", nextRetry).
					Msg("retry_cron: send failed, scheduled next attempt")
			}

			_ = cfg.DeliveryRepo.Update(ctx, delivery)
			continue
		}

		delivery.Status = "sent"
		delivery.LastError = nil
		delivery.NextRetryAt = nil
		_ = cfg.DeliveryRepo.Update(ctx, delivery)
		log.Info().Str("delivery_id", delivery.ID.String()).Msg("retry_cron: delivery recovered")
	}
}
