package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

type SettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) ports.SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) FindActive(ctx context.Context) (*domain.PaymentSetting, error) {
	query := `SELECT id, access_code_price, currency, bank_name, account_name, account_number,
				opay_public_key, opay_secret_key, opay_merchant_id, enable_opay, is_active,
				updated_by, created_at, updated_at
			  FROM payment_settings
			  WHERE is_active`

	var s domain.PaymentSetting
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&s.ID,
		&s.AccessCodePrice,
		&s.Currency,
		&s.BankName,
		&s.AccountName,
		&s.AccountNumber,
		&s.OpayPublicKey,
		&s.OpaySecretKey,
		&s.OpayMerchantID,
		&s.EnableOpay,
		&s.IsActive,
		&s.UpdatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan payment settings: %w", err)
	}
	return &s, nil
}

// ReplaceActive swaps the active settings row inside one transaction.
func (r *SettingsRepository) ReplaceActive(ctx context.Context, s *domain.PaymentSetting) error {
	return r.db.WithTx(ctx, func(q Executor) error {
		if _, err := q.Exec(ctx, `UPDATE payment_settings SET is_active = FALSE, updated_at = NOW() WHERE is_active`); err != nil {
			return fmt.Errorf("failed to deactivate payment settings: %w", err)
		}

		query := `INSERT INTO payment_settings (
					access_code_price, currency, bank_name, account_name, account_number,
					opay_public_key, opay_secret_key, opay_merchant_id, enable_opay, is_active, updated_by)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10)
				  RETURNING id, is_active, created_at, updated_at`

		err := q.QueryRow(ctx, query,
			s.AccessCodePrice,
			s.Currency,
			s.BankName,
			s.AccountName,
			s.AccountNumber,
			s.OpayPublicKey,
			s.OpaySecretKey,
			s.OpayMerchantID,
			s.EnableOpay,
			s.UpdatedBy,
		).Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert payment settings: %w", err)
		}
		return nil
	})
}
