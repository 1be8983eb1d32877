package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"modena-payment-service/internal/domain"
	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/domain/ports/repository"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on orders.modena_application_id.
const uniqueViolation = "23505"

// PostgresOrderRepo implements repository.OrderRepository against the store
// database.
//
// Expected schema:
//
//	orders (id BIGINT PK, status TEXT, payment_method TEXT, currency TEXT,
//	        total NUMERIC, needs_payment BOOLEAN, cart_session TEXT,
//	        billing_first_name TEXT, billing_last_name TEXT, billing_email TEXT,
//	        billing_phone TEXT, billing_address_1 TEXT, billing_address_2 TEXT,
//	        billing_city TEXT, billing_state TEXT,
//	        modena_application_id TEXT, modena_payment_method TEXT,
//	        paid_at TIMESTAMPTZ)
//	order_lines (id BIGSERIAL PK, order_id BIGINT, kind TEXT, name TEXT, product_id BIGINT,
//	             variation_id BIGINT, quantity INT, total NUMERIC, total_tax NUMERIC)
//	order_notes (order_id BIGINT, note TEXT, created_at TIMESTAMPTZ)
//	UNIQUE INDEX ON orders (modena_application_id) WHERE modena_application_id IS NOT NULL
type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepo constructs the repo.
func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

func (r *PostgresOrderRepo) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	const orderSQL = `
SELECT id, status, payment_method, currency, total, needs_payment, cart_session,
       billing_first_name, billing_last_name, billing_email, billing_phone,
       billing_address_1, billing_address_2, billing_city, billing_state,
       COALESCE(modena_application_id, ''), COALESCE(modena_payment_method, '')
FROM orders
WHERE id = $1;
`
	var (
		o      model.Order
		status string
		total  decimal.Decimal
	)
	row := r.pool.QueryRow(ctx, orderSQL, id)
	if err := row.Scan(
		&o.ID, &status, &o.PaymentMethod, &o.Currency, &total, &o.NeedsPayment, &o.CartSession,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.Email, &o.Billing.Phone,
		&o.Billing.Address1, &o.Billing.Address2, &o.Billing.City, &o.Billing.State,
		&o.ApplicationID, &o.MethodLabel,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("postgres FindByID order scan: %w", err)
	}
	o.Status = model.OrderStatus(status)
	o.Total = total

	const linesSQL = `
SELECT kind, name, product_id, variation_id, quantity, total, total_tax
FROM order_lines
WHERE order_id = $1
ORDER BY id;
`
	rows, err := r.pool.Query(ctx, linesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("postgres FindByID order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line model.OrderLine
			kind string
		)
		if err := rows.Scan(&kind, &line.Name, &line.ProductID, &line.VariationID,
			&line.Quantity, &line.Total, &line.TotalTax); err != nil {
			return nil, fmt.Errorf("postgres FindByID order line scan: %w", err)
		}
		line.Kind = model.LineKind(kind)
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres FindByID order lines: %w", err)
	}

	return &o, nil
}

func (r *PostgresOrderRepo) MarkPending(ctx context.Context, id int64, note string) error {
	const sql = `
UPDATE orders SET status = 'pending' WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("postgres MarkPending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return r.AddOrderNote(ctx, id, note)
}

// MarkPaid flips the needs-payment gate in a single conditional update. Only
// the winning invocation appends the paid note; every later one sees zero
// rows affected and reports false.
func (r *PostgresOrderRepo) MarkPaid(ctx context.Context, id int64, note string) (bool, error) {
	const sql = `
UPDATE orders
SET status = 'processing', needs_payment = FALSE, paid_at = $2
WHERE id = $1 AND needs_payment;
`
	tag, err := r.pool.Exec(ctx, sql, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres MarkPaid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := r.AddOrderNote(ctx, id, note); err != nil {
		return true, err
	}
	return true, nil
}

func (r *PostgresOrderRepo) SaveApplicationMeta(ctx context.Context, id int64, applicationID, methodLabel string) error {
	const sql = `
UPDATE orders
SET modena_application_id = $2, modena_payment_method = $3
WHERE id = $1
  AND (modena_application_id IS NULL OR modena_application_id = $2);
`
	tag, err := r.pool.Exec(ctx, sql, id, applicationID, methodLabel)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrMetadataConflict
		}
		return fmt.Errorf("postgres SaveApplicationMeta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// The order already carries a different application id; metadata is
		// write-once per attempt.
		return domain.ErrMetadataConflict
	}
	return nil
}

func (r *PostgresOrderRepo) AddOrderNote(ctx context.Context, id int64, note string) error {
	const sql = `
INSERT INTO order_notes (order_id, note, created_at) VALUES ($1, $2, $3);
`
	if _, err := r.pool.Exec(ctx, sql, id, note, time.Now()); err != nil {
		return fmt.Errorf("postgres AddOrderNote: %w", err)
	}
	return nil
}

// Ensure interface compliance at compile time
var _ repository.OrderRepository = (*PostgresOrderRepo)(nil)
