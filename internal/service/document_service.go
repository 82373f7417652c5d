package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"feldbeleg/internal/classify"
	"feldbeleg/internal/domain"
	"feldbeleg/internal/extract"
	"feldbeleg/internal/port"
	"feldbeleg/internal/validate"
)

const defaultMaxExtractAttempts = 5

// UploadDocumentInput is the DTO for uploading a scanned document.
type UploadDocumentInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	CreatedBy   uuid.UUID
}

// UpdateDocumentInput carries manual corrections to an extracted document.
// Nil fields are left untouched.
type UpdateDocumentInput struct {
	InvoiceType *domain.InvoiceType
	InvoiceInfo map[string]any
}

// DocumentService defines the document management and extraction contract.
type DocumentService interface {
	Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	Update(ctx context.Context, docID uuid.UUID, input *UpdateDocumentInput) (*domain.Document, error)
	List(ctx context.Context, filter port.DocumentListFilter, offset, limit int) ([]domain.Document, int, error)
	GetDownloadURL(ctx context.Context, docID uuid.UUID) (string, error)
	RetryExtract(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	Delete(ctx context.Context, docID uuid.UUID) error
	ExtractDocument(ctx context.Context, doc *domain.Document, maxAttempts int)
}

type documentService struct {
	docRepo    port.DocumentRepository
	storage    port.ObjectStorage
	reader     port.TextReader
	classifier *classify.Classifier
	extractor  port.InvoiceExtractor
	validator  *validate.Validator

	bucket          string
	maxFileSize     int64
	presignExpiry   int64
	extractorModel  string
	reconcilerModel string
}

// DocumentServiceParams bundles the collaborators of a DocumentService.
type DocumentServiceParams struct {
	DocRepo    port.DocumentRepository
	Storage    port.ObjectStorage
	Reader     port.TextReader
	Classifier *classify.Classifier
	Extractor  port.InvoiceExtractor
	Validator  *validate.Validator

	Bucket          string
	MaxFileSizeMB   int64
	PresignExpiry   int64
	ExtractorModel  string
	ReconcilerModel string
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(p DocumentServiceParams) DocumentService {
	return &documentService{
		docRepo:         p.DocRepo,
		storage:         p.Storage,
		reader:          p.Reader,
		classifier:      p.Classifier,
		extractor:       p.Extractor,
		validator:       p.Validator,
		bucket:          p.Bucket,
		maxFileSize:     p.MaxFileSizeMB * 1024 * 1024,
		presignExpiry:   p.PresignExpiry,
		extractorModel:  p.ExtractorModel,
		reconcilerModel: p.ReconcilerModel,
	}
}

func (s *documentService) Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error) {
	fileType, ok := domain.AllowedContentTypes[input.ContentType]
	if !ok {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
		fileType, ok = domain.AllowedExtensions[ext]
		if !ok {
			return nil, domain.ErrUnsupportedFileType
		}
	}
	if s.maxFileSize > 0 && input.Size > s.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	docID := uuid.New()
	key := fmt.Sprintf("documents/%s/%s.%s", time.Now().UTC().Format("2006/01"), docID, fileType)

	contentType := input.ContentType
	if contentType == "" {
		contentType = domain.AllowedFileTypes[fileType]
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        input.Body,
		ContentType: contentType,
		Size:        input.Size,
	}); err != nil {
		log.Printf("documentService.Upload: upload failed for %s: %v", input.FileName, err)
		return nil, domain.ErrUploadFailed
	}

	doc := &domain.Document{
		ID:           docID,
		FileName:     fmt.Sprintf("%s.%s", docID, fileType),
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     input.Size,
		S3Bucket:     s.bucket,
		S3Key:        key,
		ContentType:  contentType,
		Status:       domain.ExtractionStatusNotExtracted,
		CreatedBy:    input.CreatedBy,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	log.Printf("documentService.Upload: document %s stored at s3://%s/%s", doc.ID, s.bucket, key)
	return doc, nil
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

// Update applies manual field corrections after extraction. A corrected
// payload runs through the same validation as extracted output so edits stay
// canonical.
func (s *documentService) Update(ctx context.Context, docID uuid.UUID, input *UpdateDocumentInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if input.InvoiceType != nil {
		switch *input.InvoiceType {
		case domain.InvoiceTypeTimesheet, domain.InvoiceTypeExpense, domain.InvoiceTypeReceipt:
			doc.InvoiceType = *input.InvoiceType
		default:
			return nil, domain.ErrUnknownInvoiceType
		}
	}

	if input.InvoiceInfo != nil {
		if doc.InvoiceType == "" {
			return nil, domain.ErrUnknownInvoiceType
		}
		result, err := s.validator.Validate(doc.InvoiceType, input.InvoiceInfo)
		if err != nil {
			return nil, err
		}
		payload, err := result.MarshalInfo()
		if err != nil {
			return nil, err
		}
		doc.InvoiceInfo = payload
	}

	if err := s.docRepo.UpdateExtraction(ctx, doc); err != nil {
		return nil, err
	}
	log.Printf("documentService.Update: document %s fields corrected", doc.ID)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, filter port.DocumentListFilter, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, filter, offset, limit)
}

func (s *documentService) GetDownloadURL(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.presignExpiry)
}

// RetryExtract puts a failed document back on the extraction queue.
func (s *documentService) RetryExtract(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.ExtractionStatusProcessing {
		return doc, nil
	}
	doc.Status = domain.ExtractionStatusNotExtracted
	doc.ExtractError = ""
	if err := s.docRepo.UpdateExtraction(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
		log.Printf("documentService.Delete: removing s3://%s/%s: %v", doc.S3Bucket, doc.S3Key, err)
	}
	return s.docRepo.Delete(ctx, docID)
}

// ExtractDocument runs the full pipeline for one document: download, OCR,
// classification, model extraction and field validation. It records the
// outcome on the document row instead of returning an error so the queue
// worker can fire and forget.
func (s *documentService) ExtractDocument(ctx context.Context, doc *domain.Document, maxAttempts int) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxExtractAttempts
	}

	fileBytes, err := s.storage.Download(ctx, doc.S3Bucket, doc.S3Key)
	if err != nil {
		s.failExtraction(ctx, doc, fmt.Sprintf("downloading file: %v", err))
		return
	}

	ocrResult, err := s.reader.GetText(ctx, fileBytes, doc.ContentType)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDocument) {
			s.failExtraction(ctx, doc, "document contains no readable text")
			return
		}
		s.failExtraction(ctx, doc, fmt.Sprintf("reading text: %v", err))
		return
	}
	doc.OCREngine = s.reader.Engine()
	doc.DetectedLanguage = ocrResult.Language

	invoiceType := s.classifier.Classify(ocrResult.Text, ocrResult.Language)
	doc.InvoiceType = invoiceType

	template, err := extract.BuildPrompt(invoiceType)
	if err != nil {
		s.failExtraction(ctx, doc, fmt.Sprintf("building prompt: %v", err))
		return
	}

	output, err := s.extractor.Extract(ctx, port.ExtractInput{
		OCRText:     ocrResult.Text,
		Image:       fileBytes,
		ContentType: doc.ContentType,
		Template:    template,
	})
	if err != nil {
		s.handleExtractError(ctx, doc, err, maxAttempts)
		return
	}

	result, err := s.validator.Validate(invoiceType, output.Record)
	if err != nil {
		s.failExtraction(ctx, doc, fmt.Sprintf("validating fields: %v", err))
		return
	}
	info, err := result.MarshalInfo()
	if err != nil {
		s.failExtraction(ctx, doc, fmt.Sprintf("encoding result: %v", err))
		return
	}

	now := time.Now().UTC()
	doc.InvoiceInfo = info
	doc.Status = domain.ExtractionStatusCompleted
	doc.ExtractError = ""
	doc.ExtractorModel = output.Model
	if doc.ExtractorModel == "" {
		doc.ExtractorModel = s.extractorModel
	}
	doc.ReconcilerModel = s.reconcilerModel
	doc.ExtractedAt = &now

	if err := s.docRepo.UpdateExtraction(ctx, doc); err != nil {
		log.Printf("documentService.ExtractDocument: failed to save results for %s: %v", doc.ID, err)
		return
	}
	log.Printf("documentService.ExtractDocument: document %s extracted as %s", doc.ID, invoiceType)
}

// handleExtractError requeues rate-limited documents that still have attempts
// left and permanently fails everything else.
func (s *documentService) handleExtractError(ctx context.Context, doc *domain.Document, extractErr error, maxAttempts int) {
	var rlErr *extract.RateLimitError
	if errors.As(extractErr, &rlErr) && doc.ExtractAttempts < maxAttempts {
		doc.Status = domain.ExtractionStatusNotExtracted
		doc.ExtractError = fmt.Sprintf("rate limited by %s, queued for retry", rlErr.Provider)
		if err := s.docRepo.UpdateExtraction(ctx, doc); err != nil {
			log.Printf("documentService.handleExtractError: failed to requeue document %s: %v", doc.ID, err)
		} else {
			log.Printf("documentService.handleExtractError: document %s requeued after rate limit (attempt %d)", doc.ID, doc.ExtractAttempts)
		}
		return
	}
	s.failExtraction(ctx, doc, fmt.Sprintf("extracting fields: %v", extractErr))
}

func (s *documentService) failExtraction(ctx context.Context, doc *domain.Document, errMsg string) {
	log.Printf("documentService.failExtraction: document %s failed: %s", doc.ID, errMsg)
	doc.Status = domain.ExtractionStatusFailed
	doc.ExtractError = errMsg
	if err := s.docRepo.UpdateExtraction(ctx, doc); err != nil {
		log.Printf("documentService.failExtraction: failed to update status for %s: %v", doc.ID, err)
	}
}
