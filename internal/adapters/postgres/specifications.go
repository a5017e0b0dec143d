package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gestio/internal/domain"
)

// SpecificationRepository

func (db *DB) ListSpecifications(ctx context.Context) ([]domain.Specification, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM specifications
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Specification
	for rows.Next() {
		var s domain.Specification
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) GetSpecification(ctx context.Context, id uuid.UUID) (domain.Specification, error) {
	var s domain.Specification
	err := db.Pool.QueryRow(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM specifications WHERE id = $1
	`, id).Scan(&s.ID, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, domain.ErrNotFound
	}
	return s, err
}

func (db *DB) CreateSpecification(ctx context.Context, title, description string) (domain.Specification, error) {
	var s domain.Specification
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO specifications (title, description)
		VALUES ($1, $2)
		RETURNING id, title, description, created_at, updated_at
	`, title, description).Scan(&s.ID, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// DeleteSpecification removes the specification; features cascade via
// the foreign key.
func (db *DB) DeleteSpecification(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM specifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FeatureRepository

const featureColumns = `id, specification_id, title, description, order_index, level, parent_id, is_completed, created_at`

func scanFeature(row pgx.Row) (domain.Feature, error) {
	var f domain.Feature
	err := row.Scan(&f.ID, &f.SpecificationID, &f.Title, &f.Description,
		&f.OrderIndex, &f.Level, &f.ParentID, &f.IsCompleted, &f.CreatedAt)
	return f, err
}

func (db *DB) ListFeatures(ctx context.Context, specID uuid.UUID) ([]domain.Feature, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+featureColumns+`
		FROM features
		WHERE specification_id = $1
		ORDER BY order_index, created_at
	`, specID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (db *DB) GetFeature(ctx context.Context, id uuid.UUID) (domain.Feature, error) {
	f, err := scanFeature(db.Pool.QueryRow(ctx, `
		SELECT `+featureColumns+` FROM features WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return f, domain.ErrNotFound
	}
	return f, err
}

func (db *DB) CreateFeature(ctx context.Context, f domain.Feature) (domain.Feature, error) {
	created, err := scanFeature(db.Pool.QueryRow(ctx, `
		INSERT INTO features (specification_id, title, description, order_index, level, parent_id, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+featureColumns+`
	`, f.SpecificationID, f.Title, f.Description, f.OrderIndex, f.Level, f.ParentID, f.IsCompleted))
	return created, err
}

func (db *DB) UpdateFeature(ctx context.Context, f domain.Feature) (domain.Feature, error) {
	updated, err := scanFeature(db.Pool.QueryRow(ctx, `
		UPDATE features
		SET title = $2, description = $3, level = $4, parent_id = $5, is_completed = $6
		WHERE id = $1
		RETURNING `+featureColumns+`
	`, f.ID, f.Title, f.Description, f.Level, f.ParentID, f.IsCompleted))
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, domain.ErrNotFound
	}
	return updated, err
}

// DeleteFeature removes a single feature. Children keep their parent_id;
// tree traversal treats them as roots from then on.
func (db *DB) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
