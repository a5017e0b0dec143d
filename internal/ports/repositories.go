package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gestio/internal/domain"
)

// SpecificationRepository stores top-level specifications.
type SpecificationRepository interface {
	ListSpecifications(ctx context.Context) ([]domain.Specification, error)
	GetSpecification(ctx context.Context, id uuid.UUID) (domain.Specification, error)
	CreateSpecification(ctx context.Context, title, description string) (domain.Specification, error)
	DeleteSpecification(ctx context.Context, id uuid.UUID) error
}

// FeatureRepository stores the feature nodes of a specification.
type FeatureRepository interface {
	ListFeatures(ctx context.Context, specID uuid.UUID) ([]domain.Feature, error)
	GetFeature(ctx context.Context, id uuid.UUID) (domain.Feature, error)
	CreateFeature(ctx context.Context, f domain.Feature) (domain.Feature, error)
	UpdateFeature(ctx context.Context, f domain.Feature) (domain.Feature, error)
	DeleteFeature(ctx context.Context, id uuid.UUID) error
}

// DocumentFilter narrows document listings. Zero values match all.
type DocumentFilter struct {
	Type   domain.DocType
	Status domain.Status
}

// DocumentRepository stores quotes, invoices and contracts with their
// line items and (for contracts) milestones.
type DocumentRepository interface {
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error)
	// CreateDocument persists the document and allocates its sequential
	// number atomically within the same transaction.
	CreateDocument(ctx context.Context, d domain.Document) (domain.Document, error)
	UpdateDocument(ctx context.Context, d domain.Document) (domain.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	// AddPayment inserts the payment row and bumps the document's paid
	// amount in one transaction, returning the new paid total.
	AddPayment(ctx context.Context, p domain.Payment) (decimal.Decimal, error)
	UpdateMilestone(ctx context.Context, m domain.Milestone) (domain.Milestone, error)
	CreateMilestone(ctx context.Context, m domain.Milestone) (domain.Milestone, error)
}
