package model

import (
	"time"

	"github.com/google/uuid"
)

// Delivery tracks the async render-and-email pipeline for a sent document.
// Status: "pending" | "rendered" | "sent" | "error"
// Delivery state is fully decoupled from the document lifecycle: a failed
// delivery never blocks or mutates the document itself.
type Delivery struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID uuid.UUID `gorm:"type:uuid;index;not null"`
	ToEmail    string    `gorm:"not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath *string `gorm:"column:pdf_path"`
	// Retry fields — used by retry_cron to re-attempt failed SMTP sends
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Delivery) TableName() string { return "deliveries" }
