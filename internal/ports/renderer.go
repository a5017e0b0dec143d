package ports

import (
	"context"

	"gestio/internal/domain"
)

// Renderer is the external PDF/document generation collaborator. It only
// ever sees the renderable view models; layout is its problem.
type Renderer interface {
	RenderDocument(ctx context.Context, view domain.DocumentView) error
	RenderSpecification(ctx context.Context, view domain.SpecificationView) error
}
