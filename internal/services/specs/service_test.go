package specs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestio/internal/domain"
)

// fakeStore is an in-memory SpecificationRepository plus
// FeatureRepository.
type fakeStore struct {
	specs    map[uuid.UUID]domain.Specification
	features map[uuid.UUID]domain.Feature
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		specs:    make(map[uuid.UUID]domain.Specification),
		features: make(map[uuid.UUID]domain.Feature),
	}
}

func (s *fakeStore) ListSpecifications(_ context.Context) ([]domain.Specification, error) {
	var out []domain.Specification
	for _, spec := range s.specs {
		out = append(out, spec)
	}
	return out, nil
}

func (s *fakeStore) GetSpecification(_ context.Context, id uuid.UUID) (domain.Specification, error) {
	spec, ok := s.specs[id]
	if !ok {
		return domain.Specification{}, domain.ErrNotFound
	}
	return spec, nil
}

func (s *fakeStore) CreateSpecification(_ context.Context, title, description string) (domain.Specification, error) {
	spec := domain.Specification{ID: uuid.New(), Title: title, Description: description}
	s.specs[spec.ID] = spec
	return spec, nil
}

func (s *fakeStore) DeleteSpecification(_ context.Context, id uuid.UUID) error {
	if _, ok := s.specs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.specs, id)
	for fid, f := range s.features {
		if f.SpecificationID == id {
			delete(s.features, fid)
		}
	}
	return nil
}

func (s *fakeStore) ListFeatures(_ context.Context, specID uuid.UUID) ([]domain.Feature, error) {
	var out []domain.Feature
	for _, f := range s.features {
		if f.SpecificationID == specID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) GetFeature(_ context.Context, id uuid.UUID) (domain.Feature, error) {
	f, ok := s.features[id]
	if !ok {
		return domain.Feature{}, domain.ErrNotFound
	}
	return f, nil
}

func (s *fakeStore) CreateFeature(_ context.Context, f domain.Feature) (domain.Feature, error) {
	f.ID = uuid.New()
	s.features[f.ID] = f
	return f, nil
}

func (s *fakeStore) UpdateFeature(_ context.Context, f domain.Feature) (domain.Feature, error) {
	if _, ok := s.features[f.ID]; !ok {
		return domain.Feature{}, domain.ErrNotFound
	}
	s.features[f.ID] = f
	return f, nil
}

func (s *fakeStore) DeleteFeature(_ context.Context, id uuid.UUID) error {
	if _, ok := s.features[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.features, id)
	return nil
}

func newService(t *testing.T) (*Service, *fakeStore, domain.Specification) {
	t.Helper()
	store := newFakeStore()
	svc := New(store, store)
	spec, err := svc.Create(context.Background(), "Platform rewrite", "")
	require.NoError(t, err)
	return svc, store, spec
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := New(newFakeStore(), newFakeStore())
	_, err := svc.Create(context.Background(), "   ", "desc")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestAddFeatureAssignsOrderIndexPerSiblingGroup(t *testing.T) {
	svc, _, spec := newService(t)
	ctx := context.Background()

	first, err := svc.AddFeature(ctx, spec.ID, "Auth", "", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, first.Level)

	second, err := svc.AddFeature(ctx, spec.ID, "Billing", "", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.OrderIndex)

	// Children start their own sequence.
	child, err := svc.AddFeature(ctx, spec.ID, "Login", "", 2, &first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, child.OrderIndex)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, first.ID, *child.ParentID)

	third, err := svc.AddFeature(ctx, spec.ID, "Reports", "", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, third.OrderIndex)
}

func TestAddFeatureDefaultsAndValidation(t *testing.T) {
	svc, _, spec := newService(t)
	ctx := context.Background()

	f, err := svc.AddFeature(ctx, spec.ID, "Auth", "", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Level)

	_, err = svc.AddFeature(ctx, spec.ID, "", "", 1, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.AddFeature(ctx, spec.ID, "Deep", "", 4, nil)
	require.Error(t, err)

	_, err = svc.AddFeature(ctx, uuid.New(), "Auth", "", 1, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateFeatureValidatesBeforeWrite(t *testing.T) {
	svc, store, spec := newService(t)
	ctx := context.Background()

	f, err := svc.AddFeature(ctx, spec.ID, "Auth", "", 1, nil)
	require.NoError(t, err)

	empty := "  "
	_, err = svc.UpdateFeature(ctx, f.ID, domain.FeaturePatch{Title: &empty})
	require.Error(t, err)
	assert.Equal(t, "Auth", store.features[f.ID].Title)

	title := "Authentication"
	desc := "Login and sessions"
	got, err := svc.UpdateFeature(ctx, f.ID, domain.FeaturePatch{Title: &title, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Authentication", got.Title)
	assert.Equal(t, "Authentication", store.features[f.ID].Title)
}

func TestToggleFeatureRoundTrip(t *testing.T) {
	svc, store, spec := newService(t)
	ctx := context.Background()

	f, err := svc.AddFeature(ctx, spec.ID, "Auth", "", 1, nil)
	require.NoError(t, err)
	require.False(t, f.IsCompleted)

	got, err := svc.ToggleFeature(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.True(t, store.features[f.ID].IsCompleted)

	got, err = svc.ToggleFeature(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
}

func TestProgress(t *testing.T) {
	svc, _, spec := newService(t)
	ctx := context.Background()

	for i, title := range []string{"Auth", "Billing", "Reports"} {
		f, err := svc.AddFeature(ctx, spec.ID, title, "", 1, nil)
		require.NoError(t, err)
		if i < 2 {
			_, err = svc.ToggleFeature(ctx, f.ID)
			require.NoError(t, err)
		}
	}

	p, err := svc.Progress(ctx, spec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 67, p.Percentage)
}

func TestViewNestsFeatures(t *testing.T) {
	svc, _, spec := newService(t)
	ctx := context.Background()

	root, err := svc.AddFeature(ctx, spec.ID, "Auth", "", 1, nil)
	require.NoError(t, err)
	_, err = svc.AddFeature(ctx, spec.ID, "Login", "", 2, &root.ID)
	require.NoError(t, err)

	view, err := svc.View(ctx, spec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform rewrite", view.Title)
	require.Len(t, view.Sections, 1)
	require.Len(t, view.Sections[0].Items, 1)
	assert.Equal(t, "Login", view.Sections[0].Items[0].Title)
}

func TestDeleteSpecificationCascades(t *testing.T) {
	svc, store, spec := newService(t)
	ctx := context.Background()

	_, err := svc.AddFeature(ctx, spec.ID, "Auth", "", 1, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, spec.ID))
	assert.Empty(t, store.features)
	_, err = svc.Get(ctx, spec.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
