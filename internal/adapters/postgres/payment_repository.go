package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, patient_id, amount, currency, payment_method, reference_number, status,
	transaction_id, metadata, completed_at, created_at, updated_at`

type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) ports.PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

// CreatePayment saves a new payment and fills in its generated fields.
func (r *PaymentRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (
				patient_id, amount, currency, payment_method, reference_number, status,
				transaction_id, metadata, completed_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			  RETURNING id, created_at, updated_at`

	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := r.q.QueryRow(ctx, query,
		p.PatientID,
		p.Amount,
		p.Currency,
		p.PaymentMethod,
		p.ReferenceNumber,
		p.Status,
		p.TransactionID,
		p.Metadata,
		p.CompletedAt,
		createdAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if violatedConstraint(err) == "payments_reference_number_key" {
			return domain.NewDuplicateError("payment reference", p.ReferenceNumber)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// FindByReference retrieves a payment by its reference number
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference_number = $1`

	p, err := scanPayment(r.q.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewPaymentNotFoundError(reference)
	}
	return p, err
}

func (r *PaymentRepository) FindByPatientID(ctx context.Context, patientID string, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  WHERE patient_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query payments by patient_id: %w", err)
	}
	return collectPayments(rows)
}

func (r *PaymentRepository) FindLatestVerified(ctx context.Context, patientID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  WHERE patient_id = $1 AND status = $2
			  ORDER BY completed_at DESC NULLS LAST, id DESC
			  LIMIT 1`

	p, err := scanPayment(r.q.QueryRow(ctx, query, patientID, domain.StatusVerified))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PaymentRepository) FindStalePending(ctx context.Context, method domain.PaymentMethod, createdBefore time.Time, limit int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  WHERE status = $1 AND payment_method = $2 AND created_at < $3
			  ORDER BY created_at ASC
			  LIMIT $4`

	rows, err := r.q.Query(ctx, query, domain.StatusPending, method, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending payments: %w", err)
	}
	return collectPayments(rows)
}

// TransitionStatus performs the status change as one conditional UPDATE so
// that concurrent verifications of the same reference cannot both apply.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, reference string, t domain.StatusTransition) (*domain.Payment, bool, error) {
	query := `UPDATE payments
			  SET status = $2,
				  transaction_id = COALESCE($3, transaction_id),
				  metadata = metadata || $4::jsonb,
				  completed_at = COALESCE($5, completed_at),
				  updated_at = NOW()
			  WHERE reference_number = $1 AND status = ANY($6) AND status <> $2
			  RETURNING ` + paymentColumns

	from := make([]string, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, string(s))
	}
	metadata := t.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	p, err := scanPayment(r.q.QueryRow(ctx, query,
		reference,
		t.To,
		t.TransactionID,
		metadata,
		t.CompletedAt,
		from,
	))
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to transition payment %s: %w", reference, err)
	}

	current, err := r.FindByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func collectPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning rows: %w", err)
	}
	return results, nil
}

// scanPayment scans a pgx.Row into a domain.Payment. pgx.ErrNoRows is
// returned unwrapped so callers can map it to their own not-found rule.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.PatientID,
		&p.Amount,
		&p.Currency,
		&p.PaymentMethod,
		&p.ReferenceNumber,
		&p.Status,
		&p.TransactionID,
		&p.Metadata,
		&p.CompletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	return &p, nil
}
