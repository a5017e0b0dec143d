package ports

import (
	"context"

	"github.com/google/uuid"
)

// ExportKind says what an export job renders.
type ExportKind string

const (
	ExportDocument      ExportKind = "document"
	ExportSpecification ExportKind = "specification"
)

// ExportJob is a queued request to render a document or specification.
type ExportJob struct {
	ID       string
	Kind     ExportKind
	TargetID uuid.UUID
}

// JobRepository supports claiming and updating export jobs.
type JobRepository interface {
	Enqueue(ctx context.Context, kind ExportKind, targetID uuid.UUID) (jobID string, err error)
	ClaimNext(ctx context.Context) (job ExportJob, found bool, err error)
	JobStatus(ctx context.Context, jobID string) (status string, reason string, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJob(ctx context.Context, jobID string) error
}
