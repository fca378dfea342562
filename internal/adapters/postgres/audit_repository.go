package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
)

// AuditRepository only ever inserts.
type AuditRepository struct {
	q Executor
}

func NewAuditRepository(db *DB) ports.AuditRepository {
	return &AuditRepository{q: db.Pool}
}

func (r *AuditRepository) Append(ctx context.Context, e *domain.AuditLogEntry) error {
	query := `INSERT INTO audit_logs (user_id, action, entity_type, entity_id, details, ip_address)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, created_at`

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}

	err := r.q.QueryRow(ctx, query,
		e.UserID,
		e.Action,
		e.EntityType,
		e.EntityID,
		details,
		e.IPAddress,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
