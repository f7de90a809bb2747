package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planlane/project_delivery_app/internal/apperrors"
	"github.com/planlane/project_delivery_app/internal/core/domain"
	portsrepo "github.com/planlane/project_delivery_app/internal/core/ports/repositories"
)

type PgxProjectRepository struct {
	db *pgxpool.Pool
}

func newPgxProjectRepository(db *pgxpool.Pool) portsrepo.ProjectRepositoryFacade {
	return &PgxProjectRepository{db: db}
}

var _ portsrepo.ProjectRepositoryFacade = (*PgxProjectRepository)(nil)

const projectColumns = `project_id, organisation_id, name, description, status, created_at, created_by, last_updated_at, last_updated_by, version`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ProjectID,
		&p.OrganisationID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
		&p.Version,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	query := `
		INSERT INTO projects (project_id, organisation_id, name, description, status, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		project.ProjectID,
		project.OrganisationID,
		project.Name,
		project.Description,
		project.Status,
		project.CreatedAt,
		project.CreatedBy,
		project.LastUpdatedAt,
		project.LastUpdatedBy,
		project.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = $1;`
	project, err := scanProject(r.db.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project by ID %s: %w", projectID, err)
	}
	return project, nil
}

func (r *PgxProjectRepository) ListProjectsByOrganisation(ctx context.Context, organisationID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE organisation_id = $1 ORDER BY created_at DESC;`
	rows, err := r.db.Query(ctx, query, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects by organisation: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *PgxProjectRepository) ListProjectsByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	query := `
		SELECT p.project_id, p.organisation_id, p.name, p.description, p.status, p.created_at, p.created_by, p.last_updated_at, p.last_updated_by, p.version
		FROM projects p
		JOIN project_memberships m ON m.project_id = p.project_id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects by user: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

func collectProjects(rows pgx.Rows) ([]domain.Project, error) {
	projects := []domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", rows.Err())
	}
	return projects, nil
}

func (r *PgxProjectRepository) UpdateProjectStatus(ctx context.Context, projectID string, status domain.ProjectStatus, updatedBy string, expectedVersion int64) error {
	query := `
		UPDATE projects
		SET status = $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE project_id = $4 AND version = $5;
	`
	cmdTag, err := r.db.Exec(ctx, query, status, time.Now(), updatedBy, projectID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, r.db, "projects", "project_id", projectID)
	}
	return nil
}

func (r *PgxProjectRepository) UpsertProjectMembership(ctx context.Context, membership domain.ProjectMembership) error {
	query := `
		INSERT INTO project_memberships (user_id, project_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, project_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.db.Exec(ctx, query,
		membership.UserID,
		membership.ProjectID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project membership: %w", err)
	}
	return nil
}

func (r *PgxProjectRepository) FindProjectMembership(ctx context.Context, userID, projectID string) (*domain.ProjectMembership, error) {
	query := `
		SELECT user_id, project_id, role, joined_at
		FROM project_memberships
		WHERE user_id = $1 AND project_id = $2;
	`
	var m domain.ProjectMembership
	err := r.db.QueryRow(ctx, query, userID, projectID).Scan(
		&m.UserID,
		&m.ProjectID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project membership: %w", err)
	}
	return &m, nil
}

func (r *PgxProjectRepository) ListProjectMembers(ctx context.Context, projectID string) ([]domain.ProjectMembership, error) {
	query := `
		SELECT user_id, project_id, role, joined_at
		FROM project_memberships
		WHERE project_id = $1
		ORDER BY joined_at;
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project members: %w", err)
	}
	defer rows.Close()

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProjectMembership, error) {
		var m domain.ProjectMembership
		err := row.Scan(&m.UserID, &m.ProjectID, &m.Role, &m.JoinedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect project member rows: %w", err)
	}
	return members, nil
}

func (r *PgxProjectRepository) RemoveProjectMembership(ctx context.Context, userID, projectID string) error {
	query := `DELETE FROM project_memberships WHERE user_id = $1 AND project_id = $2;`
	cmdTag, err := r.db.Exec(ctx, query, userID, projectID)
	if err != nil {
		return fmt.Errorf("failed to remove project membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("project membership not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxProjectRepository) FindWorkflowSettings(ctx context.Context, projectID string) (*domain.WorkflowSettings, error) {
	query := `
		SELECT project_id, rules, created_at, created_by, last_updated_at, last_updated_by, version
		FROM workflow_settings
		WHERE project_id = $1;
	`
	var s domain.WorkflowSettings
	var rulesJSON []byte
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&s.ProjectID,
		&rulesJSON,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
		&s.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find workflow settings for project %s: %w", projectID, err)
	}
	if err := json.Unmarshal(rulesJSON, &s.Rules); err != nil {
		return nil, fmt.Errorf("failed to decode workflow settings rules: %w", err)
	}
	return &s, nil
}

func (r *PgxProjectRepository) SaveWorkflowSettings(ctx context.Context, settings domain.WorkflowSettings) error {
	rulesJSON, err := json.Marshal(settings.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode workflow settings rules: %w", err)
	}

	// First save inserts at version 1; subsequent saves are version-checked
	// updates against the version the caller read.
	update := `
		UPDATE workflow_settings
		SET rules = $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE project_id = $4 AND version = $5;
	`
	cmdTag, err := r.db.Exec(ctx, update, rulesJSON, settings.LastUpdatedAt, settings.LastUpdatedBy, settings.ProjectID, settings.Version)
	if err != nil {
		return fmt.Errorf("failed to update workflow settings: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	insert := `
		INSERT INTO workflow_settings (project_id, rules, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, 1);
	`
	_, err = r.db.Exec(ctx, insert, settings.ProjectID, rulesJSON, settings.CreatedAt, settings.CreatedBy, settings.LastUpdatedAt, settings.LastUpdatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("workflow settings for project %s changed concurrently: %w", settings.ProjectID, apperrors.ErrStaleVersion)
		}
		return fmt.Errorf("failed to insert workflow settings: %w", err)
	}
	return nil
}
