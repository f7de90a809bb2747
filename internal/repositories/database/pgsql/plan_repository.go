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
	"github.com/shopspring/decimal"
)

type PgxPlanRepository struct {
	db *pgxpool.Pool
}

func newPgxPlanRepository(db *pgxpool.Pool) portsrepo.PlanRepositoryFacade {
	return &PgxPlanRepository{db: db}
}

var _ portsrepo.PlanRepositoryFacade = (*PgxPlanRepository)(nil)

const milestoneColumns = `milestone_id, project_id, component_id, name, description, status, start_date, end_date, effort_hours, value, soft_closed,
	baseline_id, baseline_start_date, baseline_end_date, baseline_effort_hours, baseline_value, baseline_taken_at, baseline_taken_by,
	created_at, created_by, last_updated_at, last_updated_by, version`

const deliverableColumns = `deliverable_id, project_id, milestone_id, name, description, status, due_date, effort_hours, value, soft_closed,
	baseline_id, baseline_due_date, baseline_effort_hours, baseline_value, baseline_taken_at, baseline_taken_by,
	created_at, created_by, last_updated_at, last_updated_by, version`

// snapshotCols holds the nullable baseline columns shared by milestone and
// deliverable rows. A null baseline_id means the entity is not baselined.
type snapshotCols struct {
	BaselineID  *string
	StartDate   *time.Time
	EndDate     *time.Time
	DueDate     *time.Time
	EffortHours *decimal.Decimal
	Value       *decimal.Decimal
	TakenAt     *time.Time
	TakenBy     *string
}

func (c snapshotCols) toSnapshot() *domain.BaselineSnapshot {
	if c.BaselineID == nil {
		return nil
	}
	snap := &domain.BaselineSnapshot{
		BaselineID: *c.BaselineID,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		DueDate:    c.DueDate,
	}
	if c.EffortHours != nil {
		snap.EffortHours = *c.EffortHours
	}
	if c.Value != nil {
		snap.Value = *c.Value
	}
	if c.TakenAt != nil {
		snap.TakenAt = *c.TakenAt
	}
	if c.TakenBy != nil {
		snap.TakenBy = *c.TakenBy
	}
	return snap
}

func scanMilestone(row pgx.Row) (*domain.Milestone, error) {
	var m domain.Milestone
	var snap snapshotCols
	err := row.Scan(
		&m.MilestoneID,
		&m.ProjectID,
		&m.ComponentID,
		&m.Name,
		&m.Description,
		&m.Status,
		&m.StartDate,
		&m.EndDate,
		&m.EffortHours,
		&m.Value,
		&m.SoftClosed,
		&snap.BaselineID,
		&snap.StartDate,
		&snap.EndDate,
		&snap.EffortHours,
		&snap.Value,
		&snap.TakenAt,
		&snap.TakenBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return nil, err
	}
	m.Baseline = snap.toSnapshot()
	return &m, nil
}

func scanDeliverable(row pgx.Row) (*domain.Deliverable, error) {
	var d domain.Deliverable
	var snap snapshotCols
	err := row.Scan(
		&d.DeliverableID,
		&d.ProjectID,
		&d.MilestoneID,
		&d.Name,
		&d.Description,
		&d.Status,
		&d.DueDate,
		&d.EffortHours,
		&d.Value,
		&d.SoftClosed,
		&snap.BaselineID,
		&snap.DueDate,
		&snap.EffortHours,
		&snap.Value,
		&snap.TakenAt,
		&snap.TakenBy,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
		&d.Version,
	)
	if err != nil {
		return nil, err
	}
	d.Baseline = snap.toSnapshot()
	return &d, nil
}

func milestoneSnapshotArgs(m domain.Milestone) (baselineID *string, startDate, endDate *time.Time, effortHours, value *decimal.Decimal, takenAt *time.Time, takenBy *string) {
	if m.Baseline == nil {
		return nil, nil, nil, nil, nil, nil, nil
	}
	b := m.Baseline
	return &b.BaselineID, b.StartDate, b.EndDate, &b.EffortHours, &b.Value, &b.TakenAt, &b.TakenBy
}

func deliverableSnapshotArgs(d domain.Deliverable) (baselineID *string, dueDate *time.Time, effortHours, value *decimal.Decimal, takenAt *time.Time, takenBy *string) {
	if d.Baseline == nil {
		return nil, nil, nil, nil, nil, nil
	}
	b := d.Baseline
	return &b.BaselineID, b.DueDate, &b.EffortHours, &b.Value, &b.TakenAt, &b.TakenBy
}

func (r *PgxPlanRepository) SaveComponent(ctx context.Context, component domain.Component) error {
	query := `
		INSERT INTO components (component_id, project_id, parent_component_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		component.ComponentID,
		component.ProjectID,
		component.ParentComponentID,
		component.Name,
		component.CreatedAt,
		component.CreatedBy,
		component.LastUpdatedAt,
		component.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("component already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save component: %w", err)
	}
	return nil
}

func (r *PgxPlanRepository) FindComponentByID(ctx context.Context, componentID string) (*domain.Component, error) {
	query := `
		SELECT component_id, project_id, parent_component_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM components
		WHERE component_id = $1;
	`
	var c domain.Component
	err := r.db.QueryRow(ctx, query, componentID).Scan(
		&c.ComponentID,
		&c.ProjectID,
		&c.ParentComponentID,
		&c.Name,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find component by ID %s: %w", componentID, err)
	}
	return &c, nil
}

func (r *PgxPlanRepository) ListComponentsByProject(ctx context.Context, projectID string) ([]domain.Component, error) {
	query := `
		SELECT component_id, project_id, parent_component_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM components
		WHERE project_id = $1
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	components, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Component, error) {
		var c domain.Component
		err := row.Scan(&c.ComponentID, &c.ProjectID, &c.ParentComponentID, &c.Name, &c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect component rows: %w", err)
	}
	return components, nil
}

func (r *PgxPlanRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	baselineID, startDate, endDate, effortHours, value, takenAt, takenBy := milestoneSnapshotArgs(milestone)
	query := `
		INSERT INTO milestones (milestone_id, project_id, component_id, name, description, status, start_date, end_date, effort_hours, value, soft_closed,
			baseline_id, baseline_start_date, baseline_end_date, baseline_effort_hours, baseline_value, baseline_taken_at, baseline_taken_by,
			created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.db.Exec(ctx, query,
		milestone.MilestoneID,
		milestone.ProjectID,
		milestone.ComponentID,
		milestone.Name,
		milestone.Description,
		milestone.Status,
		milestone.StartDate,
		milestone.EndDate,
		milestone.EffortHours,
		milestone.Value,
		milestone.SoftClosed,
		baselineID, startDate, endDate, effortHours, value, takenAt, takenBy,
		milestone.CreatedAt,
		milestone.CreatedBy,
		milestone.LastUpdatedAt,
		milestone.LastUpdatedBy,
		milestone.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("milestone %s already exists: %w", milestone.MilestoneID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save milestone: %w", err)
	}
	return nil
}

func (r *PgxPlanRepository) FindMilestoneByID(ctx context.Context, milestoneID string) (*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE milestone_id = $1;`
	milestone, err := scanMilestone(r.db.QueryRow(ctx, query, milestoneID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find milestone by ID %s: %w", milestoneID, err)
	}
	return milestone, nil
}

func (r *PgxPlanRepository) ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE project_id = $1 ORDER BY created_at;`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	milestones := []domain.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone row: %w", err)
		}
		milestones = append(milestones, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating milestone rows: %w", rows.Err())
	}
	return milestones, nil
}

func (r *PgxPlanRepository) UpdateMilestone(ctx context.Context, milestone domain.Milestone, expectedVersion int64) error {
	baselineID, startDate, endDate, effortHours, value, takenAt, takenBy := milestoneSnapshotArgs(milestone)
	query := `
		UPDATE milestones
		SET component_id = $1, name = $2, description = $3, start_date = $4, end_date = $5, effort_hours = $6, value = $7, soft_closed = $8,
			baseline_id = $9, baseline_start_date = $10, baseline_end_date = $11, baseline_effort_hours = $12, baseline_value = $13, baseline_taken_at = $14, baseline_taken_by = $15,
			last_updated_at = $16, last_updated_by = $17, version = version + 1
		WHERE milestone_id = $18 AND version = $19;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		milestone.ComponentID,
		milestone.Name,
		milestone.Description,
		milestone.StartDate,
		milestone.EndDate,
		milestone.EffortHours,
		milestone.Value,
		milestone.SoftClosed,
		baselineID, startDate, endDate, effortHours, value, takenAt, takenBy,
		milestone.LastUpdatedAt,
		milestone.LastUpdatedBy,
		milestone.MilestoneID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, r.db, "milestones", "milestone_id", milestone.MilestoneID)
	}
	return nil
}

func (r *PgxPlanRepository) DeleteMilestone(ctx context.Context, milestoneID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM milestones WHERE milestone_id = $1;`, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("milestone not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxPlanRepository) SaveDeliverable(ctx context.Context, deliverable domain.Deliverable) error {
	baselineID, dueDate, effortHours, value, takenAt, takenBy := deliverableSnapshotArgs(deliverable)
	query := `
		INSERT INTO deliverables (deliverable_id, project_id, milestone_id, name, description, status, due_date, effort_hours, value, soft_closed,
			baseline_id, baseline_due_date, baseline_effort_hours, baseline_value, baseline_taken_at, baseline_taken_by,
			created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.db.Exec(ctx, query,
		deliverable.DeliverableID,
		deliverable.ProjectID,
		deliverable.MilestoneID,
		deliverable.Name,
		deliverable.Description,
		deliverable.Status,
		deliverable.DueDate,
		deliverable.EffortHours,
		deliverable.Value,
		deliverable.SoftClosed,
		baselineID, dueDate, effortHours, value, takenAt, takenBy,
		deliverable.CreatedAt,
		deliverable.CreatedBy,
		deliverable.LastUpdatedAt,
		deliverable.LastUpdatedBy,
		deliverable.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("deliverable %s already exists: %w", deliverable.DeliverableID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save deliverable: %w", err)
	}
	return nil
}

func (r *PgxPlanRepository) FindDeliverableByID(ctx context.Context, deliverableID string) (*domain.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE deliverable_id = $1;`
	deliverable, err := scanDeliverable(r.db.QueryRow(ctx, query, deliverableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deliverable by ID %s: %w", deliverableID, err)
	}
	return deliverable, nil
}

func (r *PgxPlanRepository) ListDeliverablesByProject(ctx context.Context, projectID string) ([]domain.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE project_id = $1 ORDER BY created_at;`
	return r.queryDeliverables(ctx, query, projectID)
}

func (r *PgxPlanRepository) ListDeliverablesByMilestone(ctx context.Context, milestoneID string) ([]domain.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE milestone_id = $1 ORDER BY created_at;`
	return r.queryDeliverables(ctx, query, milestoneID)
}

func (r *PgxPlanRepository) queryDeliverables(ctx context.Context, query string, arg any) ([]domain.Deliverable, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliverables: %w", err)
	}
	defer rows.Close()

	deliverables := []domain.Deliverable{}
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deliverable row: %w", err)
		}
		deliverables = append(deliverables, *d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating deliverable rows: %w", rows.Err())
	}
	return deliverables, nil
}

func (r *PgxPlanRepository) UpdateDeliverable(ctx context.Context, deliverable domain.Deliverable, expectedVersion int64) error {
	baselineID, dueDate, effortHours, value, takenAt, takenBy := deliverableSnapshotArgs(deliverable)
	query := `
		UPDATE deliverables
		SET milestone_id = $1, name = $2, description = $3, due_date = $4, effort_hours = $5, value = $6, soft_closed = $7,
			baseline_id = $8, baseline_due_date = $9, baseline_effort_hours = $10, baseline_value = $11, baseline_taken_at = $12, baseline_taken_by = $13,
			last_updated_at = $14, last_updated_by = $15, version = version + 1
		WHERE deliverable_id = $16 AND version = $17;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		deliverable.MilestoneID,
		deliverable.Name,
		deliverable.Description,
		deliverable.DueDate,
		deliverable.EffortHours,
		deliverable.Value,
		deliverable.SoftClosed,
		baselineID, dueDate, effortHours, value, takenAt, takenBy,
		deliverable.LastUpdatedAt,
		deliverable.LastUpdatedBy,
		deliverable.DeliverableID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update deliverable: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, r.db, "deliverables", "deliverable_id", deliverable.DeliverableID)
	}
	return nil
}

func (r *PgxPlanRepository) DeleteDeliverable(ctx context.Context, deliverableID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM deliverables WHERE deliverable_id = $1;`, deliverableID)
	if err != nil {
		return fmt.Errorf("failed to delete deliverable: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("deliverable not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
