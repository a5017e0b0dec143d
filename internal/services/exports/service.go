package exports

import (
	"context"

	"github.com/google/uuid"

	"gestio/internal/ports"
)

// Service enqueues and tracks export jobs.
type Service struct {
	jobs ports.JobRepository
}

func New(jobs ports.JobRepository) *Service {
	return &Service{jobs: jobs}
}

func (s *Service) Enqueue(ctx context.Context, kind ports.ExportKind, targetID uuid.UUID) (string, error) {
	return s.jobs.Enqueue(ctx, kind, targetID)
}

func (s *Service) Status(ctx context.Context, jobID string) (status, reason string, err error) {
	return s.jobs.JobStatus(ctx, jobID)
}
