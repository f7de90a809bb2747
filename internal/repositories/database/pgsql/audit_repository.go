package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
	"github.com/planlane/project_delivery_app/internal/utils/pagination"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(db *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

const auditColumns = `audit_id, project_id, entity_type, entity_id, actor_id, from_state, to_state, authorized, reason, occurred_at`

func scanAuditEntry(row pgx.Row) (*domain.AuditEntry, error) {
	var e domain.AuditEntry
	err := row.Scan(
		&e.AuditID,
		&e.ProjectID,
		&e.EntityType,
		&e.EntityID,
		&e.ActorID,
		&e.FromState,
		&e.ToState,
		&e.Authorized,
		&e.Reason,
		&e.OccurredAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ListAuditByProject pages newest-first on (occurred_at, audit_id) so rows
// sharing a timestamp cannot be skipped across pages.
func (r *PgxAuditRepository) ListAuditByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE project_id = $1
		ORDER BY occurred_at DESC, audit_id DESC
		LIMIT $2;
	`
	args := []any{projectID, limit + 1}

	if nextToken != nil {
		cursorAt, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		query = `
			SELECT ` + auditColumns + `
			FROM audit_entries
			WHERE project_id = $1 AND (occurred_at, audit_id) < ($2, $3)
			ORDER BY occurred_at DESC, audit_id DESC
			LIMIT $4;
		`
		args = []any{projectID, cursorAt, cursorID, limit + 1}
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, *e)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating audit rows: %w", rows.Err())
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.OccurredAt, last.AuditID)
		token = &t
	}
	return entries, token, nil
}

func (r *PgxAuditRepository) ListAuditByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY occurred_at DESC, audit_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, *e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", rows.Err())
	}
	return entries, nil
}
