package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"feldbeleg/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// DocumentListFilter narrows document listings.
type DocumentListFilter struct {
	Status      domain.ExtractionStatus
	InvoiceType domain.InvoiceType
	CreatedBy   *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, filter DocumentListFilter, offset, limit int) ([]domain.Document, int, error)
	Update(ctx context.Context, doc *domain.Document) error
	UpdateExtraction(ctx context.Context, doc *domain.Document) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error)
	Delete(ctx context.Context, docID uuid.UUID) error
}
