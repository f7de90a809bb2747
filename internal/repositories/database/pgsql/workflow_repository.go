package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
)

// entityTable maps a tracked entity type to the table holding its row.
type entityTable struct {
	table    string
	idColumn string
}

var entityTables = map[domain.EntityType]entityTable{
	domain.EntityMilestone:   {table: "milestones", idColumn: "milestone_id"},
	domain.EntityDeliverable: {table: "deliverables", idColumn: "deliverable_id"},
	domain.EntityTimesheet:   {table: "timesheets", idColumn: "timesheet_id"},
	domain.EntityExpense:     {table: "expenses", idColumn: "expense_id"},
	domain.EntityVariation:   {table: "variations", idColumn: "variation_id"},
}

type PgxWorkflowRepository struct {
	BaseRepository
}

func newPgxWorkflowRepository(db *pgxpool.Pool) portsrepo.WorkflowRepositoryFacade {
	return &PgxWorkflowRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.WorkflowRepositoryFacade = (*PgxWorkflowRepository)(nil)

func (r *PgxWorkflowRepository) FindWorkflowItem(ctx context.Context, entityType domain.EntityType, entityID string) (*domain.WorkflowItem, error) {
	et, ok := entityTables[entityType]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q: %w", entityType, apperrors.ErrValidation)
	}

	item := domain.WorkflowItem{
		EntityType: entityType,
		EntityID:   entityID,
	}

	if entityType == domain.EntityExpense {
		query := `SELECT project_id, status, version, chargeable_to_customer FROM expenses WHERE expense_id = $1;`
		err := r.Pool.QueryRow(ctx, query, entityID).Scan(&item.ProjectID, &item.Status, &item.Version, &item.Context.ChargeableToCustomer)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("failed to load expense workflow row: %w", err)
		}
	} else {
		query := fmt.Sprintf(`SELECT project_id, status, version FROM %s WHERE %s = $1;`, et.table, et.idColumn)
		err := r.Pool.QueryRow(ctx, query, entityID).Scan(&item.ProjectID, &item.Status, &item.Version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("failed to load %s workflow row: %w", et.table, err)
		}
	}

	approvals, err := r.listDecisions(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	item.Approvals = approvals
	return &item, nil
}

func (r *PgxWorkflowRepository) listDecisions(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.ApprovalDecision, error) {
	query := `
		SELECT decision_id, entity_type, entity_id, role, actor_id, decision, to_state, decided_at
		FROM approval_decisions
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY decided_at;
	`
	rows, err := r.Pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval decisions: %w", err)
	}
	defer rows.Close()

	decisions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ApprovalDecision, error) {
		var d domain.ApprovalDecision
		err := row.Scan(&d.DecisionID, &d.EntityType, &d.EntityID, &d.Role, &d.ActorID, &d.Decision, &d.ToState, &d.DecidedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect approval decision rows: %w", err)
	}
	return decisions, nil
}

func (r *PgxWorkflowRepository) ApplyTransition(ctx context.Context, item domain.WorkflowItem, toState domain.WorkflowStatus, decision *domain.ApprovalDecision, entry domain.AuditEntry) error {
	et, ok := entityTables[item.EntityType]
	if !ok {
		return fmt.Errorf("unknown entity type %q: %w", item.EntityType, apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	update := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE %s = $4 AND version = $5;
	`, et.table, et.idColumn)
	cmdTag, err := tx.Exec(ctx, update, toState, entry.OccurredAt, entry.ActorID, item.EntityID, item.Version)
	if err != nil {
		return fmt.Errorf("failed to apply transition on %s: %w", et.table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, tx, et.table, et.idColumn, item.EntityID)
	}

	if toState == domain.StatusImplemented && item.EntityType == domain.EntityVariation {
		if _, err := tx.Exec(ctx, `UPDATE variations SET implemented_at = $1 WHERE variation_id = $2;`, entry.OccurredAt, item.EntityID); err != nil {
			return fmt.Errorf("failed to stamp variation implemented_at: %w", err)
		}
	}

	if decision != nil {
		if err := insertDecision(ctx, tx, *decision); err != nil {
			return err
		}
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxWorkflowRepository) RecordDecision(ctx context.Context, item domain.WorkflowItem, decision domain.ApprovalDecision, entry domain.AuditEntry) error {
	et, ok := entityTables[item.EntityType]
	if !ok {
		return fmt.Errorf("unknown entity type %q: %w", item.EntityType, apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Touch the row under the version guard without changing status or
	// version, so a concurrent transition is detected.
	touch := fmt.Sprintf(`
		UPDATE %s
		SET last_updated_at = $1, last_updated_by = $2
		WHERE %s = $3 AND version = $4;
	`, et.table, et.idColumn)
	cmdTag, err := tx.Exec(ctx, touch, decision.DecidedAt, decision.ActorID, item.EntityID, item.Version)
	if err != nil {
		return fmt.Errorf("failed to guard decision on %s: %w", et.table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, tx, et.table, et.idColumn, item.EntityID)
	}

	if err := insertDecision(ctx, tx, decision); err != nil {
		return err
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertDecision(ctx context.Context, tx pgx.Tx, decision domain.ApprovalDecision) error {
	query := `
		INSERT INTO approval_decisions (decision_id, entity_type, entity_id, role, actor_id, decision, to_state, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		decision.DecisionID,
		decision.EntityType,
		decision.EntityID,
		decision.Role,
		decision.ActorID,
		decision.Decision,
		decision.ToState,
		decision.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval decision: %w", err)
	}
	return nil
}

func insertAuditEntry(ctx context.Context, tx pgx.Tx, entry domain.AuditEntry) error {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	query := `
		INSERT INTO audit_entries (audit_id, project_id, entity_type, entity_id, actor_id, from_state, to_state, authorized, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		entry.AuditID,
		entry.ProjectID,
		entry.EntityType,
		entry.EntityID,
		entry.ActorID,
		entry.FromState,
		entry.ToState,
		entry.Authorized,
		entry.Reason,
		entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}
