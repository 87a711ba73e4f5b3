package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so services
// can share query helpers across transactional and standalone calls.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AuditService records the append-only activity trail. Log writes
// through the caller's querier: pass the open transaction of the
// triggering mutation so the audit row commits and rolls back with it.
type AuditService interface {
	Log(ctx context.Context, q Querier, entityType, entityID, action, details string) error
	ListAuditLogs(ctx context.Context) ([]AuditLog, error)
}

type auditService struct {
	pool *pgxpool.Pool
}

func NewAuditService(pool *pgxpool.Pool) AuditService {
	return &auditService{pool: pool}
}

func (s *auditService) Log(ctx context.Context, q Querier, entityType, entityID, action, details string) error {
	if q == nil {
		q = s.pool
	}
	var detailsPtr *string
	if details != "" {
		detailsPtr = &details
	}
	_, err := q.Exec(ctx, `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, details)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), entityType, entityID, action, detailsPtr,
	)
	if err != nil {
		return fmt.Errorf("append audit log for %s %s: %w", entityType, entityID, err)
	}
	return nil
}

// ListAuditLogs returns the most recent 100 entries, newest first.
func (s *auditService) ListAuditLogs(ctx context.Context) ([]AuditLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, entity_type, entity_id, action, details
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT 100`,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.EntityType, &l.EntityID, &l.Action, &l.Details); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
