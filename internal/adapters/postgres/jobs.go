package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

// JobRepository for export jobs.

func (db *DB) Enqueue(ctx context.Context, kind ports.ExportKind, targetID uuid.UUID) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO export_jobs (kind, target_id)
		VALUES ($1, $2)
		RETURNING id
	`, string(kind), targetID).Scan(&id)
	return id, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it
// running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.ExportJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var kind string
	err = tx.QueryRow(ctx, `
		SELECT id, kind, target_id FROM export_jobs
		WHERE status = 'queued'
		ORDER BY queued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&job.ID, &kind, &job.TargetID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}
	job.Kind = ports.ExportKind(kind)

	if _, err = tx.Exec(ctx, `
		UPDATE export_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
	`, job.ID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) JobStatus(ctx context.Context, jobID string) (string, string, error) {
	var status string
	var reason *string
	err := db.Pool.QueryRow(ctx, `SELECT status, reason FROM export_jobs WHERE id = $1`, jobID).
		Scan(&status, &reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", domain.ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	if reason == nil {
		return status, "", nil
	}
	return status, *reason, nil
}

func (db *DB) StartJob(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tag, err := db.Pool.Exec(ctx, `
		UPDATE export_jobs
		SET status='running', started_at=COALESCE(started_at, now()), attempts=attempts+1
		WHERE id=$1 AND status='queued'
	`, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE export_jobs SET status='completed', finished_at=now() WHERE id=$1
	`, jobID)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE export_jobs SET status='failed', finished_at=now(), reason=$2 WHERE id=$1
	`, jobID, reason)
	return err
}
