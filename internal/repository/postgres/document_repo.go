package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"feldbeleg/internal/domain"
	"feldbeleg/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, file_name, original_name, file_type, file_size,
		s3_bucket, s3_key, content_type,
		invoice_type, invoice_info, status, extract_error, extract_attempts,
		ocr_engine, extractor_model, reconciler_model, detected_language,
		created_by, created_at, updated_at, extracted_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12, $13,
		$14, $15, $16, $17,
		$18, $19, $20, $21
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.FileName, doc.OriginalName, doc.FileType, doc.FileSize,
		doc.S3Bucket, doc.S3Key, doc.ContentType,
		doc.InvoiceType, doc.InvoiceInfo, doc.Status, doc.ExtractError, doc.ExtractAttempts,
		doc.OCREngine, doc.ExtractorModel, doc.ReconcilerModel, doc.DetectedLanguage,
		doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt, doc.ExtractedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, filter port.DocumentListFilter, offset, limit int) ([]domain.Document, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.InvoiceType != "" {
		args = append(args, filter.InvoiceType)
		where += fmt.Sprintf(" AND invoice_type = $%d", len(args))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		where += fmt.Sprintf(" AND created_by = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM documents %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	var docs []domain.Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			file_name = $1, original_name = $2, file_type = $3, file_size = $4,
			s3_bucket = $5, s3_key = $6, content_type = $7,
			invoice_type = $8, status = $9, updated_at = $10
		 WHERE id = $11`,
		doc.FileName, doc.OriginalName, doc.FileType, doc.FileSize,
		doc.S3Bucket, doc.S3Key, doc.ContentType,
		doc.InvoiceType, doc.Status, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) UpdateExtraction(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			invoice_type = $1, invoice_info = $2, status = $3,
			extract_error = $4, extract_attempts = $5,
			ocr_engine = $6, extractor_model = $7, reconciler_model = $8,
			detected_language = $9, extracted_at = $10, updated_at = $11
		 WHERE id = $12`,
		doc.InvoiceType, doc.InvoiceInfo, doc.Status,
		doc.ExtractError, doc.ExtractAttempts,
		doc.OCREngine, doc.ExtractorModel, doc.ReconcilerModel,
		doc.DetectedLanguage, doc.ExtractedAt, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateExtraction: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued atomically flips a batch of queued documents to processing and
// returns them. Concurrent workers skip rows another worker already claimed.
func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE documents SET status = $1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM documents WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ExtractionStatusProcessing, time.Now().UTC(),
		domain.ExtractionStatusNotExtracted, limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
