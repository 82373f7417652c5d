package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents a scanned invoice or timesheet and the state of its
// extraction pipeline.
type Document struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	FileName         string           `db:"file_name" json:"file_name"`
	OriginalName     string           `db:"original_name" json:"original_name"`
	FileType         FileType         `db:"file_type" json:"file_type"`
	FileSize         int64            `db:"file_size" json:"file_size"`
	S3Bucket         string           `db:"s3_bucket" json:"s3_bucket"`
	S3Key            string           `db:"s3_key" json:"s3_key"`
	ContentType      string           `db:"content_type" json:"content_type"`
	InvoiceType      InvoiceType      `db:"invoice_type" json:"invoice_type"`
	InvoiceInfo      json.RawMessage  `db:"invoice_info" json:"invoice_info"`
	Status           ExtractionStatus `db:"status" json:"status"`
	ExtractError     string           `db:"extract_error" json:"extract_error"`
	ExtractAttempts  int              `db:"extract_attempts" json:"extract_attempts"`
	OCREngine        string           `db:"ocr_engine" json:"ocr_engine"`
	ExtractorModel   string           `db:"extractor_model" json:"extractor_model"`
	ReconcilerModel  string           `db:"reconciler_model" json:"reconciler_model"`
	DetectedLanguage string           `db:"detected_language" json:"detected_language"`
	CreatedBy        uuid.UUID        `db:"created_by" json:"created_by"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
	ExtractedAt      *time.Time       `db:"extracted_at" json:"extracted_at"`
}
