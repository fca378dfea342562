package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/jackc/pgx/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type ResultRepository struct {
	q Executor
}

func NewResultRepository(db *DB) ports.ResultRepository {
	return &ResultRepository{q: db.Pool}
}

func (r *ResultRepository) CreateResult(ctx context.Context, res *domain.Result) error {
	query := `INSERT INTO results (
				access_code, patient_id, test_type, test_date, result_data, expires_at, is_paid, access_count)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at`

	var resultData any
	if len(res.ResultData) > 0 {
		resultData = []byte(res.ResultData)
	}

	err := r.q.QueryRow(ctx, query,
		res.AccessCode,
		res.PatientID,
		res.TestType,
		res.TestDate.Time,
		resultData,
		res.ExpiresAt,
		res.IsPaid,
		res.AccessCount,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if violatedConstraint(err) == "results_access_code_key" {
			return domain.NewDuplicateError("access code", res.AccessCode)
		}
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *ResultRepository) FindByAccessCode(ctx context.Context, code string) (*domain.Result, error) {
	query := `SELECT id, access_code, patient_id, test_type, test_date, result_data,
				expires_at, is_paid, access_count, created_at
			  FROM results
			  WHERE access_code = $1`

	var (
		res      domain.Result
		testDate time.Time
		data     []byte
	)
	err := r.q.QueryRow(ctx, query, code).Scan(
		&res.ID,
		&res.AccessCode,
		&res.PatientID,
		&res.TestType,
		&testDate,
		&data,
		&res.ExpiresAt,
		&res.IsPaid,
		&res.AccessCount,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	res.TestDate = openapi_types.Date{Time: testDate}
	if data != nil {
		res.ResultData = json.RawMessage(data)
	}
	return &res, nil
}

func (r *ResultRepository) ExistsAccessCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM results WHERE access_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check access code existence: %w", err)
	}
	return exists, nil
}

func (r *ResultRepository) IncrementAccessCount(ctx context.Context, code string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`UPDATE results SET access_count = access_count + 1 WHERE access_code = $1 RETURNING access_count`,
		code,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewInvalidCodeError()
		}
		return 0, fmt.Errorf("failed to increment access count: %w", err)
	}
	return count, nil
}
