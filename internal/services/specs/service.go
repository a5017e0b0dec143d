package specs

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

// Service orchestrates specifications and their feature trees.
type Service struct {
	specs    ports.SpecificationRepository
	features ports.FeatureRepository
}

func New(specs ports.SpecificationRepository, features ports.FeatureRepository) *Service {
	return &Service{specs: specs, features: features}
}

func (s *Service) List(ctx context.Context) ([]domain.Specification, error) {
	return s.specs.ListSpecifications(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Specification, error) {
	return s.specs.GetSpecification(ctx, id)
}

func (s *Service) Create(ctx context.Context, title, description string) (domain.Specification, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Specification{}, &domain.ValidationError{Msg: "specification title is required"}
	}
	return s.specs.CreateSpecification(ctx, title, description)
}

// Delete removes a specification; the database cascades to its features.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.specs.DeleteSpecification(ctx, id)
}

func (s *Service) Features(ctx context.Context, specID uuid.UUID) ([]domain.Feature, error) {
	if _, err := s.specs.GetSpecification(ctx, specID); err != nil {
		return nil, err
	}
	return s.features.ListFeatures(ctx, specID)
}

// AddFeature creates a feature under the specification. Order index is
// assigned from the existing siblings (max + 1, or 0). Level defaults
// to 1 and parent to root when unset.
func (s *Service) AddFeature(ctx context.Context, specID uuid.UUID, title, description string, level int, parentID *uuid.UUID) (domain.Feature, error) {
	if level == 0 {
		level = 1
	}
	if err := domain.ValidateNewFeature(title, level); err != nil {
		return domain.Feature{}, err
	}
	if _, err := s.specs.GetSpecification(ctx, specID); err != nil {
		return domain.Feature{}, err
	}
	existing, err := s.features.ListFeatures(ctx, specID)
	if err != nil {
		return domain.Feature{}, err
	}
	siblings := existing[:0:0]
	for _, f := range existing {
		if sameParent(f.ParentID, parentID) {
			siblings = append(siblings, f)
		}
	}
	feature := domain.Feature{
		SpecificationID: specID,
		Title:           title,
		Description:     description,
		OrderIndex:      domain.NextOrderIndex(siblings),
		Level:           level,
		ParentID:        parentID,
	}
	return s.features.CreateFeature(ctx, feature)
}

// UpdateFeature applies a partial update. The repository write happens
// only after the patch validates, so a rejected patch leaves the stored
// feature untouched.
func (s *Service) UpdateFeature(ctx context.Context, id uuid.UUID, patch domain.FeaturePatch) (domain.Feature, error) {
	current, err := s.features.GetFeature(ctx, id)
	if err != nil {
		return domain.Feature{}, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return domain.Feature{}, err
	}
	return s.features.UpdateFeature(ctx, updated)
}

// ToggleFeature flips completion on a single feature. No cascade to
// children or parents.
func (s *Service) ToggleFeature(ctx context.Context, id uuid.UUID) (domain.Feature, error) {
	current, err := s.features.GetFeature(ctx, id)
	if err != nil {
		return domain.Feature{}, err
	}
	return s.features.UpdateFeature(ctx, domain.ToggleCompletion(current))
}

// DeleteFeature removes one feature. Children are not deleted or
// re-parented; display falls back to root for them.
func (s *Service) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	return s.features.DeleteFeature(ctx, id)
}

func (s *Service) Progress(ctx context.Context, specID uuid.UUID) (domain.Progress, error) {
	features, err := s.Features(ctx, specID)
	if err != nil {
		return domain.Progress{}, err
	}
	return domain.ComputeProgress(features), nil
}

// View builds the renderable view model for the external renderer.
func (s *Service) View(ctx context.Context, specID uuid.UUID) (domain.SpecificationView, error) {
	spec, err := s.specs.GetSpecification(ctx, specID)
	if err != nil {
		return domain.SpecificationView{}, err
	}
	features, err := s.features.ListFeatures(ctx, specID)
	if err != nil {
		return domain.SpecificationView{}, err
	}
	return domain.RenderSpecification(spec, features), nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
