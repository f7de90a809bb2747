package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
)

type PgxBaselineRepository struct {
	BaseRepository
}

func newPgxBaselineRepository(db *pgxpool.Pool) portsrepo.BaselineRepositoryFacade {
	return &PgxBaselineRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.BaselineRepositoryFacade = (*PgxBaselineRepository)(nil)

func (r *PgxBaselineRepository) FindBaselineByProject(ctx context.Context, projectID string) (*domain.Baseline, error) {
	query := `
		SELECT baseline_id, project_id, committed_at, committed_by
		FROM baselines
		WHERE project_id = $1;
	`
	var b domain.Baseline
	err := r.Pool.QueryRow(ctx, query, projectID).Scan(
		&b.BaselineID,
		&b.ProjectID,
		&b.CommittedAt,
		&b.CommittedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find baseline for project %s: %w", projectID, err)
	}
	return &b, nil
}

// CommitBaseline writes the baseline record and stamps the snapshots onto
// every plan entity in one transaction. The unique index on project_id makes
// a concurrent double-commit lose cleanly.
func (r *PgxBaselineRepository) CommitBaseline(ctx context.Context, baseline domain.Baseline, milestones []domain.Milestone, deliverables []domain.Deliverable) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insert := `
		INSERT INTO baselines (baseline_id, project_id, committed_at, committed_by)
		VALUES ($1, $2, $3, $4);
	`
	_, err = tx.Exec(ctx, insert, baseline.BaselineID, baseline.ProjectID, baseline.CommittedAt, baseline.CommittedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %s: %w", baseline.ProjectID, apperrors.ErrAlreadyBaselined)
		}
		return fmt.Errorf("failed to insert baseline record: %w", err)
	}

	milestoneStamp := `
		UPDATE milestones
		SET baseline_id = $1, baseline_start_date = $2, baseline_end_date = $3, baseline_effort_hours = $4, baseline_value = $5, baseline_taken_at = $6, baseline_taken_by = $7
		WHERE milestone_id = $8 AND version = $9;
	`
	for _, m := range milestones {
		if m.Baseline == nil {
			return fmt.Errorf("milestone %s missing snapshot: %w", m.MilestoneID, apperrors.ErrValidation)
		}
		b := m.Baseline
		cmdTag, err := tx.Exec(ctx, milestoneStamp, b.BaselineID, b.StartDate, b.EndDate, b.EffortHours, b.Value, b.TakenAt, b.TakenBy, m.MilestoneID, m.Version)
		if err != nil {
			return fmt.Errorf("failed to stamp milestone %s baseline: %w", m.MilestoneID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return staleOrMissing(ctx, tx, "milestones", "milestone_id", m.MilestoneID)
		}
	}

	deliverableStamp := `
		UPDATE deliverables
		SET baseline_id = $1, baseline_due_date = $2, baseline_effort_hours = $3, baseline_value = $4, baseline_taken_at = $5, baseline_taken_by = $6
		WHERE deliverable_id = $7 AND version = $8;
	`
	for _, d := range deliverables {
		if d.Baseline == nil {
			return fmt.Errorf("deliverable %s missing snapshot: %w", d.DeliverableID, apperrors.ErrValidation)
		}
		b := d.Baseline
		cmdTag, err := tx.Exec(ctx, deliverableStamp, b.BaselineID, b.DueDate, b.EffortHours, b.Value, b.TakenAt, b.TakenBy, d.DeliverableID, d.Version)
		if err != nil {
			return fmt.Errorf("failed to stamp deliverable %s baseline: %w", d.DeliverableID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return staleOrMissing(ctx, tx, "deliverables", "deliverable_id", d.DeliverableID)
		}
	}

	return r.Commit(ctx, tx)
}
