package exportrunner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

// Processor performs the render work for a claimed export job.
type Processor interface {
	Process(ctx context.Context, job ports.ExportJob) error
}

// ViewProcessor builds the renderable view model for the job's target
// and hands it to the external renderer.
type ViewProcessor struct {
	Docs     ports.DocumentRepository
	Specs    ports.SpecificationRepository
	Features ports.FeatureRepository
	Renderer ports.Renderer
	Clock    clockwork.Clock
}

func (p ViewProcessor) Process(ctx context.Context, job ports.ExportJob) error {
	switch job.Kind {
	case ports.ExportDocument:
		doc, err := p.Docs.GetDocument(ctx, job.TargetID)
		if err != nil {
			return err
		}
		return p.Renderer.RenderDocument(ctx, domain.RenderDocument(&doc, p.Clock.Now()))
	case ports.ExportSpecification:
		spec, err := p.Specs.GetSpecification(ctx, job.TargetID)
		if err != nil {
			return err
		}
		features, err := p.Features.ListFeatures(ctx, job.TargetID)
		if err != nil {
			return err
		}
		return p.Renderer.RenderSpecification(ctx, domain.RenderSpecification(spec, features))
	default:
		return fmt.Errorf("unknown export kind %q", job.Kind)
	}
}

// NoopRenderer satisfies the renderer port for local runs without a
// rendering backend attached.
type NoopRenderer struct{}

func (NoopRenderer) RenderDocument(context.Context, domain.DocumentView) error { return nil }

func (NoopRenderer) RenderSpecification(context.Context, domain.SpecificationView) error {
	return nil
}

// Run starts worker goroutines that claim export jobs and process them.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, concurrency int, pollInterval time.Duration) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.ExportJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						log.Printf("export claim error: %v", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					log.Printf("export worker %d: job %s failed: %v", idx, job.ID, err)
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					log.Printf("export worker %d: complete err: %v", idx, err)
				}
			}
		}(i)
	}
}

// ProcessInline marks a specific job running and processes it
// synchronously with the same logic the background workers use.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, job ports.ExportJob) error {
	if err := repo.StartJob(ctx, job.ID); err != nil {
		return err
	}
	if err := processor.Process(ctx, job); err != nil {
		_ = repo.MarkFailed(ctx, job.ID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, job.ID)
}
