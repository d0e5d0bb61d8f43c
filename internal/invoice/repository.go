package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the invoice does not exist.
	ErrNotFound = errors.New("invoice: not found")
	// ErrNumberTaken indicates the invoice number is already in use.
	ErrNumberTaken = errors.New("invoice: number already in use")
	// ErrBadTransition indicates the status change is not allowed.
	ErrBadTransition = errors.New("invoice: status transition not allowed")
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, number, status, issue_date, due_date,
	customer_id, customer_name, customer_gstin, customer_address, customer_state,
	regime, sub_total, total_gst, total_discount, grand_total, created_at, updated_at`

const lineColumns = `id, invoice_id, position, product_id, name, hsn_code,
	price, rate_bps, unit, quantity, discount_bps,
	discount_amount, taxable_amount, tax_amount, total`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Status, &inv.IssueDate, &inv.DueDate,
		&inv.CustomerID, &inv.CustomerName, &inv.CustomerGSTIN, &inv.CustomerAddress, &inv.CustomerState,
		&inv.Regime, &inv.SubTotal, &inv.TotalGST, &inv.TotalDiscount, &inv.GrandTotal,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}

// NextNumber advances the per-year counter and formats the invoice number.
func (r *Repository) NextNumber(ctx context.Context, prefix string, year int) (string, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoice_sequences (year, last_seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_seq = invoice_sequences.last_seq + 1
		RETURNING last_seq`, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("invoice: next number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq), nil
}

// Save persists an invoice and its ordered lines in one transaction.
func (r *Repository) Save(ctx context.Context, inv Invoice) (Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Invoice{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved, err := scanInvoice(tx.QueryRow(ctx, `
		INSERT INTO invoices (number, status, issue_date, due_date,
			customer_id, customer_name, customer_gstin, customer_address, customer_state,
			regime, sub_total, total_gst, total_discount, grand_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING `+invoiceColumns,
		inv.Number, inv.Status, inv.IssueDate, inv.DueDate,
		inv.CustomerID, inv.CustomerName, inv.CustomerGSTIN, inv.CustomerAddress, inv.CustomerState,
		inv.Regime, inv.SubTotal, inv.TotalGST, inv.TotalDiscount, inv.GrandTotal,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Invoice{}, ErrNumberTaken
		}
		return Invoice{}, err
	}

	saved.Lines = make([]Line, 0, len(inv.Lines))
	for i, line := range inv.Lines {
		var persisted Line
		err := tx.QueryRow(ctx, `
			INSERT INTO invoice_lines (invoice_id, position, product_id, name, hsn_code,
				price, rate_bps, unit, quantity, discount_bps,
				discount_amount, taxable_amount, tax_amount, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING `+lineColumns,
			saved.ID, int32(i), line.ProductID, line.Name, line.HSNCode,
			line.Price, line.RateBps, line.Unit, line.Quantity, line.DiscountBps,
			line.DiscountAmount, line.TaxableAmount, line.TaxAmount, line.Total,
		).Scan(
			&persisted.ID, &persisted.InvoiceID, &persisted.Position, &persisted.ProductID,
			&persisted.Name, &persisted.HSNCode, &persisted.Price, &persisted.RateBps,
			&persisted.Unit, &persisted.Quantity, &persisted.DiscountBps,
			&persisted.DiscountAmount, &persisted.TaxableAmount, &persisted.TaxAmount, &persisted.Total,
		)
		if err != nil {
			return Invoice{}, err
		}
		saved.Lines = append(saved.Lines, persisted)
	}

	if err := tx.Commit(ctx); err != nil {
		return Invoice{}, err
	}
	return saved, nil
}

// Get returns an invoice with its lines in saved order.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	if err != nil {
		return Invoice{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+lineColumns+` FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`, id)
	if err != nil {
		return Invoice{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line Line
		if err := rows.Scan(
			&line.ID, &line.InvoiceID, &line.Position, &line.ProductID,
			&line.Name, &line.HSNCode, &line.Price, &line.RateBps,
			&line.Unit, &line.Quantity, &line.DiscountBps,
			&line.DiscountAmount, &line.TaxableAmount, &line.TaxAmount, &line.Total,
		); err != nil {
			return Invoice{}, err
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv, rows.Err()
}

// List returns invoice headers, newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status, limit, offset int32) ([]Invoice, int64, error) {
	where := ``
	args := []any{limit, offset}
	if status != "" {
		where = `WHERE status = $3`
		args = append(args, status)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices `+where+` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices := make([]Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM invoices`
	countArgs := []any{}
	if status != "" {
		countQuery += ` WHERE status = $1`
		countArgs = append(countArgs, status)
	}
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// UpdateStatus moves an invoice from one status to another. The transition is
// applied only when the current status matches.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `
		UPDATE invoices SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+invoiceColumns,
		id, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if probeErr := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); probeErr != nil {
			return Invoice{}, probeErr
		}
		if !exists {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, ErrBadTransition
	}
	return inv, err
}

// Delete removes an invoice and its lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
