package service

import (
	"context"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/shopspring/decimal"
)

// SettingsDefaults apply when no payment setting row is active.
type SettingsDefaults struct {
	AccessCodePrice decimal.Decimal
	Currency        string
	EnableOpay      bool
	Credentials     domain.GatewayCredentials
}

type UpdateSettingsCommand struct {
	AccessCodePrice decimal.Decimal
	Currency        string
	BankName        string
	AccountName     string
	AccountNumber   string
	OpayPublicKey   string
	OpaySecretKey   string
	OpayMerchantID  string
	EnableOpay      bool
}

type SettingsService struct {
	repo     ports.SettingsRepository
	defaults SettingsDefaults
	recorder *Recorder
}

func NewSettingsService(repo ports.SettingsRepository, defaults SettingsDefaults, recorder *Recorder) *SettingsService {
	return &SettingsService{
		repo:     repo,
		defaults: defaults,
		recorder: recorder,
	}
}

// Active returns the active setting row, or one built from the defaults.
func (s *SettingsService) Active(ctx context.Context) (*domain.PaymentSetting, error) {
	setting, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		return setting, nil
	}
	return &domain.PaymentSetting{
		AccessCodePrice: s.defaults.AccessCodePrice,
		Currency:        s.defaults.Currency,
		EnableOpay:      s.defaults.EnableOpay,
	}, nil
}

// GatewayCredentials prefers the keys stored on the active setting and
// falls back to the deployment configuration.
func (s *SettingsService) GatewayCredentials(ctx context.Context) (domain.GatewayCredentials, error) {
	setting, err := s.repo.FindActive(ctx)
	if err != nil {
		return domain.GatewayCredentials{}, err
	}
	if setting != nil {
		if creds := setting.Credentials(); creds.Complete() {
			return creds, nil
		}
	}
	return s.defaults.Credentials, nil
}

// View returns the full setting to administrators and the redacted view to
// everyone else.
func (s *SettingsService) View(ctx context.Context, actor domain.Actor) (any, error) {
	setting, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return setting, nil
	}
	return setting.Redacted(), nil
}

func (s *SettingsService) Public(ctx context.Context) (domain.PublicPaymentSetting, error) {
	setting, err := s.Active(ctx)
	if err != nil {
		return domain.PublicPaymentSetting{}, err
	}
	return setting.Redacted(), nil
}

// Update replaces the active setting. Gateway keys left empty keep their
// current value so the secret never has to be sent back to the client.
func (s *SettingsService) Update(ctx context.Context, actor domain.Actor, cmd UpdateSettingsCommand) (*domain.PaymentSetting, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError()
	}
	if cmd.AccessCodePrice.IsNegative() {
		return nil, domain.NewValidationError("access code price cannot be negative")
	}
	if cmd.Currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	current, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	updatedBy := actor.UserID
	next := &domain.PaymentSetting{
		AccessCodePrice: cmd.AccessCodePrice,
		Currency:        cmd.Currency,
		BankName:        cmd.BankName,
		AccountName:     cmd.AccountName,
		AccountNumber:   cmd.AccountNumber,
		OpayPublicKey:   cmd.OpayPublicKey,
		OpaySecretKey:   cmd.OpaySecretKey,
		OpayMerchantID:  cmd.OpayMerchantID,
		EnableOpay:      cmd.EnableOpay,
		UpdatedBy:       &updatedBy,
	}
	if current != nil {
		if next.OpayPublicKey == "" {
			next.OpayPublicKey = current.OpayPublicKey
		}
		if next.OpaySecretKey == "" {
			next.OpaySecretKey = current.OpaySecretKey
		}
		if next.OpayMerchantID == "" {
			next.OpayMerchantID = current.OpayMerchantID
		}
	}

	if err := s.repo.ReplaceActive(ctx, next); err != nil {
		return nil, err
	}

	s.recorder.Audit(ctx, actor, domain.ActionSettingsUpdated, domain.EntitySetting, itoa(next.ID), map[string]any{
		"accessCodePrice": next.AccessCodePrice.String(),
		"currency":        next.Currency,
		"enableOpay":      next.EnableOpay,
	})

	return next, nil
}
