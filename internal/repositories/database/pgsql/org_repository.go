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

type PgxOrgRepository struct {
	db *pgxpool.Pool
}

func newPgxOrgRepository(db *pgxpool.Pool) portsrepo.OrgRepositoryFacade {
	return &PgxOrgRepository{db: db}
}

var _ portsrepo.OrgRepositoryFacade = (*PgxOrgRepository)(nil)

const orgColumns = `organisation_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanOrganisation(row pgx.Row) (*domain.Organisation, error) {
	var o domain.Organisation
	err := row.Scan(
		&o.OrganisationID,
		&o.Name,
		&o.IsActive,
		&o.CreatedAt,
		&o.CreatedBy,
		&o.LastUpdatedAt,
		&o.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PgxOrgRepository) SaveOrganisation(ctx context.Context, org domain.Organisation) error {
	query := `
		INSERT INTO organisations (organisation_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		org.OrganisationID,
		org.Name,
		org.IsActive,
		org.CreatedAt,
		org.CreatedBy,
		org.LastUpdatedAt,
		org.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("organisation already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save organisation: %w", err)
	}
	return nil
}

func (r *PgxOrgRepository) FindOrganisationByID(ctx context.Context, organisationID string) (*domain.Organisation, error) {
	query := `SELECT ` + orgColumns + ` FROM organisations WHERE organisation_id = $1;`
	org, err := scanOrganisation(r.db.QueryRow(ctx, query, organisationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organisation by ID %s: %w", organisationID, err)
	}
	return org, nil
}

func (r *PgxOrgRepository) ListOrganisationsByUserID(ctx context.Context, userID string) ([]domain.Organisation, error) {
	query := `
		SELECT o.organisation_id, o.name, o.is_active, o.created_at, o.created_by, o.last_updated_at, o.last_updated_by
		FROM organisations o
		JOIN org_memberships m ON m.organisation_id = o.organisation_id
		WHERE m.user_id = $1
		ORDER BY o.name;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query organisations for user: %w", err)
	}
	defer rows.Close()

	orgs := []domain.Organisation{}
	for rows.Next() {
		org, err := scanOrganisation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organisation row: %w", err)
		}
		orgs = append(orgs, *org)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating organisation rows: %w", rows.Err())
	}
	return orgs, nil
}

func (r *PgxOrgRepository) UpsertOrgMembership(ctx context.Context, membership domain.OrgMembership) error {
	query := `
		INSERT INTO org_memberships (user_id, organisation_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, organisation_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.db.Exec(ctx, query,
		membership.UserID,
		membership.OrganisationID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert org membership: %w", err)
	}
	return nil
}

func (r *PgxOrgRepository) FindOrgMembership(ctx context.Context, userID, organisationID string) (*domain.OrgMembership, error) {
	query := `
		SELECT user_id, organisation_id, role, joined_at
		FROM org_memberships
		WHERE user_id = $1 AND organisation_id = $2;
	`
	var m domain.OrgMembership
	err := r.db.QueryRow(ctx, query, userID, organisationID).Scan(
		&m.UserID,
		&m.OrganisationID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find org membership: %w", err)
	}
	return &m, nil
}

func (r *PgxOrgRepository) ListOrgMembers(ctx context.Context, organisationID string) ([]domain.OrgMembership, error) {
	query := `
		SELECT user_id, organisation_id, role, joined_at
		FROM org_memberships
		WHERE organisation_id = $1
		ORDER BY joined_at;
	`
	rows, err := r.db.Query(ctx, query, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query org members: %w", err)
	}
	defer rows.Close()

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrgMembership, error) {
		var m domain.OrgMembership
		err := row.Scan(&m.UserID, &m.OrganisationID, &m.Role, &m.JoinedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect org member rows: %w", err)
	}
	return members, nil
}

func (r *PgxOrgRepository) RemoveOrgMembership(ctx context.Context, userID, organisationID string) error {
	query := `DELETE FROM org_memberships WHERE user_id = $1 AND organisation_id = $2;`
	cmdTag, err := r.db.Exec(ctx, query, userID, organisationID)
	if err != nil {
		return fmt.Errorf("failed to remove org membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("org membership not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
