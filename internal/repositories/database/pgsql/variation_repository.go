package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
)

type PgxVariationRepository struct {
	BaseRepository
}

func newPgxVariationRepository(db *pgxpool.Pool) portsrepo.VariationRepositoryFacade {
	return &PgxVariationRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.VariationRepositoryFacade = (*PgxVariationRepository)(nil)

const variationColumns = `variation_id, project_id, title, rationale, status, diff, implemented_at, created_at, created_by, last_updated_at, last_updated_by, version`

func scanVariation(row pgx.Row) (*domain.Variation, error) {
	var v domain.Variation
	var diffJSON []byte
	err := row.Scan(
		&v.VariationID,
		&v.ProjectID,
		&v.Title,
		&v.Rationale,
		&v.Status,
		&diffJSON,
		&v.ImplementedAt,
		&v.CreatedAt,
		&v.CreatedBy,
		&v.LastUpdatedAt,
		&v.LastUpdatedBy,
		&v.Version,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(diffJSON, &v.Diff); err != nil {
		return nil, fmt.Errorf("failed to decode variation diff: %w", err)
	}
	return &v, nil
}

func (r *PgxVariationRepository) SaveVariation(ctx context.Context, variation domain.Variation) error {
	diffJSON, err := json.Marshal(variation.Diff)
	if err != nil {
		return fmt.Errorf("failed to encode variation diff: %w", err)
	}
	query := `
		INSERT INTO variations (variation_id, project_id, title, rationale, status, diff, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = r.Pool.Exec(ctx, query,
		variation.VariationID,
		variation.ProjectID,
		variation.Title,
		variation.Rationale,
		variation.Status,
		diffJSON,
		variation.CreatedAt,
		variation.CreatedBy,
		variation.LastUpdatedAt,
		variation.LastUpdatedBy,
		variation.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("variation %s already exists: %w", variation.VariationID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save variation: %w", err)
	}
	return nil
}

func (r *PgxVariationRepository) FindVariationByID(ctx context.Context, variationID string) (*domain.Variation, error) {
	query := `SELECT ` + variationColumns + ` FROM variations WHERE variation_id = $1;`
	variation, err := scanVariation(r.Pool.QueryRow(ctx, query, variationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find variation by ID %s: %w", variationID, err)
	}
	return variation, nil
}

func (r *PgxVariationRepository) ListVariationsByProject(ctx context.Context, projectID string) ([]domain.Variation, error) {
	query := `SELECT ` + variationColumns + ` FROM variations WHERE project_id = $1 ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations: %w", err)
	}
	defer rows.Close()

	variations := []domain.Variation{}
	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variation row: %w", err)
		}
		variations = append(variations, *v)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating variation rows: %w", rows.Err())
	}
	return variations, nil
}

func (r *PgxVariationRepository) UpdateVariation(ctx context.Context, variation domain.Variation, expectedVersion int64) error {
	diffJSON, err := json.Marshal(variation.Diff)
	if err != nil {
		return fmt.Errorf("failed to encode variation diff: %w", err)
	}
	query := `
		UPDATE variations
		SET title = $1, rationale = $2, diff = $3, last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE variation_id = $6 AND version = $7;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		variation.Title,
		variation.Rationale,
		diffJSON,
		variation.LastUpdatedAt,
		variation.LastUpdatedBy,
		variation.VariationID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update variation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, r.Pool, "variations", "variation_id", variation.VariationID)
	}
	return nil
}

// ImplementVariation moves the variation to implemented and applies every
// row of the plan mutation in one transaction. Any failure rolls the whole
// thing back, leaving the variation approved and the plan untouched.
func (r *PgxVariationRepository) ImplementVariation(ctx context.Context, variation domain.Variation, mutation domain.PlanMutation, entry domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	move := `
		UPDATE variations
		SET status = $1, implemented_at = $2, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE variation_id = $4 AND version = $5;
	`
	cmdTag, err := tx.Exec(ctx, move, domain.StatusImplemented, entry.OccurredAt, entry.ActorID, variation.VariationID, variation.Version)
	if err != nil {
		return fmt.Errorf("failed to move variation to implemented: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, tx, "variations", "variation_id", variation.VariationID)
	}

	for _, m := range mutation.AddMilestones {
		if err := insertMilestoneTx(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, d := range mutation.AddDeliverables {
		if err := insertDeliverableTx(ctx, tx, d); err != nil {
			return err
		}
	}
	for _, m := range mutation.UpdateMilestones {
		if err := updateMilestoneTx(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, d := range mutation.UpdateDeliverables {
		if err := updateDeliverableTx(ctx, tx, d); err != nil {
			return err
		}
	}
	for _, id := range mutation.RemoveDeliverableIDs {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM deliverables WHERE deliverable_id = $1;`, id)
		if err != nil {
			return fmt.Errorf("failed to remove deliverable %s: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("deliverable %s not found: %w", id, apperrors.ErrNotFound)
		}
	}
	for _, id := range mutation.RemoveMilestoneIDs {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM milestones WHERE milestone_id = $1;`, id)
		if err != nil {
			return fmt.Errorf("failed to remove milestone %s: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("milestone %s not found: %w", id, apperrors.ErrNotFound)
		}
	}

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertMilestoneTx(ctx context.Context, tx pgx.Tx, m domain.Milestone) error {
	baselineID, startDate, endDate, effortHours, value, takenAt, takenBy := milestoneSnapshotArgs(m)
	query := `
		INSERT INTO milestones (milestone_id, project_id, component_id, name, description, status, start_date, end_date, effort_hours, value, soft_closed,
			baseline_id, baseline_start_date, baseline_end_date, baseline_effort_hours, baseline_value, baseline_taken_at, baseline_taken_by,
			created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := tx.Exec(ctx, query,
		m.MilestoneID, m.ProjectID, m.ComponentID, m.Name, m.Description, m.Status, m.StartDate, m.EndDate, m.EffortHours, m.Value, m.SoftClosed,
		baselineID, startDate, endDate, effortHours, value, takenAt, takenBy,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("milestone %s already exists: %w", m.MilestoneID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert milestone %s: %w", m.MilestoneID, err)
	}
	return nil
}

func insertDeliverableTx(ctx context.Context, tx pgx.Tx, d domain.Deliverable) error {
	baselineID, dueDate, effortHours, value, takenAt, takenBy := deliverableSnapshotArgs(d)
	query := `
		INSERT INTO deliverables (deliverable_id, project_id, milestone_id, name, description, status, due_date, effort_hours, value, soft_closed,
			baseline_id, baseline_due_date, baseline_effort_hours, baseline_value, baseline_taken_at, baseline_taken_by,
			created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := tx.Exec(ctx, query,
		d.DeliverableID, d.ProjectID, d.MilestoneID, d.Name, d.Description, d.Status, d.DueDate, d.EffortHours, d.Value, d.SoftClosed,
		baselineID, dueDate, effortHours, value, takenAt, takenBy,
		d.CreatedAt, d.CreatedBy, d.LastUpdatedAt, d.LastUpdatedBy, d.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("deliverable %s already exists: %w", d.DeliverableID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert deliverable %s: %w", d.DeliverableID, err)
	}
	return nil
}

func updateMilestoneTx(ctx context.Context, tx pgx.Tx, m domain.Milestone) error {
	baselineID, startDate, endDate, effortHours, value, takenAt, takenBy := milestoneSnapshotArgs(m)
	query := `
		UPDATE milestones
		SET component_id = $1, name = $2, description = $3, start_date = $4, end_date = $5, effort_hours = $6, value = $7, soft_closed = $8,
			baseline_id = $9, baseline_start_date = $10, baseline_end_date = $11, baseline_effort_hours = $12, baseline_value = $13, baseline_taken_at = $14, baseline_taken_by = $15,
			last_updated_at = $16, last_updated_by = $17, version = version + 1
		WHERE milestone_id = $18 AND version = $19;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ComponentID, m.Name, m.Description, m.StartDate, m.EndDate, m.EffortHours, m.Value, m.SoftClosed,
		baselineID, startDate, endDate, effortHours, value, takenAt, takenBy,
		m.LastUpdatedAt, m.LastUpdatedBy, m.MilestoneID, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone %s: %w", m.MilestoneID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, tx, "milestones", "milestone_id", m.MilestoneID)
	}
	return nil
}

func updateDeliverableTx(ctx context.Context, tx pgx.Tx, d domain.Deliverable) error {
	baselineID, dueDate, effortHours, value, takenAt, takenBy := deliverableSnapshotArgs(d)
	query := `
		UPDATE deliverables
		SET milestone_id = $1, name = $2, description = $3, due_date = $4, effort_hours = $5, value = $6, soft_closed = $7,
			baseline_id = $8, baseline_due_date = $9, baseline_effort_hours = $10, baseline_value = $11, baseline_taken_at = $12, baseline_taken_by = $13,
			last_updated_at = $14, last_updated_by = $15, version = version + 1
		WHERE deliverable_id = $16 AND version = $17;
	`
	cmdTag, err := tx.Exec(ctx, query,
		d.MilestoneID, d.Name, d.Description, d.DueDate, d.EffortHours, d.Value, d.SoftClosed,
		baselineID, dueDate, effortHours, value, takenAt, takenBy,
		d.LastUpdatedAt, d.LastUpdatedBy, d.DeliverableID, d.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update deliverable %s: %w", d.DeliverableID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, tx, "deliverables", "deliverable_id", d.DeliverableID)
	}
	return nil
}
