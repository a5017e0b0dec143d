package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gestio/internal/domain"
)

const milestoneColumns = `id, contract_id, title, description, due_date, amount::text, status, completion_date, payment_date`

func scanMilestone(row pgx.Row) (domain.Milestone, error) {
	var m domain.Milestone
	var amount string
	err := row.Scan(&m.ID, &m.ContractID, &m.Title, &m.Description,
		&m.DueDate, &amount, &m.Status, &m.CompletionDate, &m.PaymentDate)
	if err != nil {
		return m, err
	}
	m.Amount, err = decimal.NewFromString(amount)
	return m, err
}

func (db *DB) listMilestones(ctx context.Context, contractID uuid.UUID) ([]domain.Milestone, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+milestoneColumns+`
		FROM milestones WHERE contract_id = $1
		ORDER BY due_date, created_at
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (db *DB) CreateMilestone(ctx context.Context, m domain.Milestone) (domain.Milestone, error) {
	return scanMilestone(db.Pool.QueryRow(ctx, `
		INSERT INTO milestones (contract_id, title, description, due_date, amount, status)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		RETURNING `+milestoneColumns+`
	`, m.ContractID, m.Title, m.Description, m.DueDate, m.Amount.String(), string(m.Status)))
}

// UpdateMilestone patches a single milestone row; the contract's other
// milestones are untouched.
func (db *DB) UpdateMilestone(ctx context.Context, m domain.Milestone) (domain.Milestone, error) {
	updated, err := scanMilestone(db.Pool.QueryRow(ctx, `
		UPDATE milestones
		SET title = $2, description = $3, due_date = $4, amount = $5::numeric,
			status = $6, completion_date = $7, payment_date = $8
		WHERE id = $1
		RETURNING `+milestoneColumns+`
	`, m.ID, m.Title, m.Description, m.DueDate, m.Amount.String(),
		string(m.Status), m.CompletionDate, m.PaymentDate))
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, domain.ErrNotFound
	}
	return updated, err
}
