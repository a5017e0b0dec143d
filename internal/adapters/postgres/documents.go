package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gestio/internal/domain"
	"gestio/internal/ports"
)

// DocumentRepository. Money columns are NUMERIC; they travel as text on
// the wire and are parsed into decimals on scan.

const documentColumns = `
	id, doc_type, number, title,
	client_name, client_email, client_phone, client_address,
	status, subtotal::text, discount::text, tax::text, total::text, paid_amount::text,
	issue_date, due_date, valid_until, signed_at, created_at, updated_at`

func scanDocument(row pgx.Row) (domain.Document, error) {
	var d domain.Document
	var subtotal, discount, tax, total, paid string
	err := row.Scan(&d.ID, &d.Type, &d.Number, &d.Title,
		&d.Client.Name, &d.Client.Email, &d.Client.Phone, &d.Client.Address,
		&d.Status, &subtotal, &discount, &tax, &total, &paid,
		&d.IssueDate, &d.DueDate, &d.ValidUntil, &d.SignedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, err
	}
	if d.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return d, err
	}
	if d.Discount, err = decimal.NewFromString(discount); err != nil {
		return d, err
	}
	if d.Tax, err = decimal.NewFromString(tax); err != nil {
		return d, err
	}
	if d.Total, err = decimal.NewFromString(total); err != nil {
		return d, err
	}
	if d.PaidAmount, err = decimal.NewFromString(paid); err != nil {
		return d, err
	}
	return d, nil
}

func (db *DB) ListDocuments(ctx context.Context, filter ports.DocumentFilter) ([]domain.Document, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE ($1 = '' OR doc_type = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`, string(filter.Type), string(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := db.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	d, err := scanDocument(db.Pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return d, domain.ErrNotFound
	}
	if err != nil {
		return d, err
	}
	if err := db.loadChildren(ctx, &d); err != nil {
		return d, err
	}
	return d, nil
}

func (db *DB) loadChildren(ctx context.Context, d *domain.Document) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, description, quantity::text, unit_price::text, total::text
		FROM line_items WHERE document_id = $1
		ORDER BY position
	`, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	d.Items = nil
	for rows.Next() {
		var it domain.LineItem
		var qty, price, total string
		if err := rows.Scan(&it.ID, &it.Description, &qty, &price, &total); err != nil {
			return err
		}
		if it.Quantity, err = decimal.NewFromString(qty); err != nil {
			return err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return err
		}
		if it.Total, err = decimal.NewFromString(total); err != nil {
			return err
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if d.Type != domain.TypeContract {
		return nil
	}
	d.Milestones, err = db.listMilestones(ctx, d.ID)
	return err
}

// CreateDocument inserts the document, its items and milestones in one
// transaction, allocating the next sequence number for (type, year) so
// concurrent creation cannot produce duplicate numbers.
func (db *DB) CreateDocument(ctx context.Context, d domain.Document) (created domain.Document, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return created, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	year := d.IssueDate.Year()
	var seq int
	err = tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, year, last)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, year) DO UPDATE SET last = document_sequences.last + 1
		RETURNING last
	`, string(d.Type), year).Scan(&seq)
	if err != nil {
		return created, err
	}
	number := domain.FormatNumber(d.Type.NumberPrefix(), year, seq)

	created, err = scanDocument(tx.QueryRow(ctx, `
		INSERT INTO documents (doc_type, number, title,
			client_name, client_email, client_phone, client_address,
			status, subtotal, discount, tax, total, paid_amount,
			issue_date, due_date, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10::numeric, $11::numeric, $12::numeric, $13::numeric, $14, $15, $16)
		RETURNING `+documentColumns+`
	`, string(d.Type), number, d.Title,
		d.Client.Name, d.Client.Email, d.Client.Phone, d.Client.Address,
		string(d.Status), d.Subtotal.String(), d.Discount.String(), d.Tax.String(),
		d.Total.String(), d.PaidAmount.String(),
		d.IssueDate, d.DueDate, d.ValidUntil))
	if err != nil {
		return created, err
	}

	if err = insertItems(ctx, tx, created.ID, d.Items); err != nil {
		return created, err
	}
	created.Items = d.Items

	for i, m := range d.Milestones {
		var ms domain.Milestone
		ms, err = scanMilestone(tx.QueryRow(ctx, `
			INSERT INTO milestones (contract_id, title, description, due_date, amount, status)
			VALUES ($1, $2, $3, $4, $5::numeric, $6)
			RETURNING `+milestoneColumns+`
		`, created.ID, m.Title, m.Description, m.DueDate, m.Amount.String(), string(m.Status)))
		if err != nil {
			return created, err
		}
		d.Milestones[i] = ms
	}
	created.Milestones = d.Milestones
	return created, nil
}

// UpdateDocument replaces the editable columns and the full item set.
func (db *DB) UpdateDocument(ctx context.Context, d domain.Document) (updated domain.Document, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return updated, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	updated, err = scanDocument(tx.QueryRow(ctx, `
		UPDATE documents
		SET title = $2,
			client_name = $3, client_email = $4, client_phone = $5, client_address = $6,
			subtotal = $7::numeric, discount = $8::numeric, tax = $9::numeric, total = $10::numeric,
			due_date = $11, valid_until = $12, updated_at = now()
		WHERE id = $1
		RETURNING `+documentColumns+`
	`, d.ID, d.Title,
		d.Client.Name, d.Client.Email, d.Client.Phone, d.Client.Address,
		d.Subtotal.String(), d.Discount.String(), d.Tax.String(), d.Total.String(),
		d.DueDate, d.ValidUntil))
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, domain.ErrNotFound
	}
	if err != nil {
		return updated, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM line_items WHERE document_id = $1`, d.ID); err != nil {
		return updated, err
	}
	if err = insertItems(ctx, tx, d.ID, d.Items); err != nil {
		return updated, err
	}
	updated.Items = d.Items
	updated.Milestones = d.Milestones
	return updated, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, docID uuid.UUID, items []domain.LineItem) error {
	for i := range items {
		err := tx.QueryRow(ctx, `
			INSERT INTO line_items (document_id, description, quantity, unit_price, total, position)
			VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6)
			RETURNING id
		`, docID, items[i].Description, items[i].Quantity.String(),
			items[i].UnitPrice.String(), items[i].Total.String(), i).Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus writes the new status; signing a contract also stamps
// signed_at.
func (db *DB) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE documents
		SET status = $2,
			signed_at = CASE WHEN $2 = 'signed' THEN now() ELSE signed_at END,
			updated_at = now()
		WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddPayment inserts the payment row and bumps paid_amount atomically,
// returning the new paid total.
func (db *DB) AddPayment(ctx context.Context, p domain.Payment) (paid decimal.Decimal, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return paid, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO payments (document_id, amount, paid_on)
		VALUES ($1, $2::numeric, $3)
	`, p.DocumentID, p.Amount.String(), p.PaidOn); err != nil {
		return paid, err
	}
	var total string
	err = tx.QueryRow(ctx, `
		UPDATE documents
		SET paid_amount = paid_amount + $2::numeric, updated_at = now()
		WHERE id = $1
		RETURNING paid_amount::text
	`, p.DocumentID, p.Amount.String()).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return paid, domain.ErrNotFound
	}
	if err != nil {
		return paid, err
	}
	return decimal.NewFromString(total)
}
