package services

import (
	"context"

	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// TenancySvcFacade resolves a user's effective project-level access.
//
// Resolution never caches across requests: a role change between a caller's
// read and write must be honoured, so every mutation re-resolves.
type TenancySvcFacade interface {
	// ResolveAccess computes the effective role for (userID, projectID) in
	// priority order: system-admin flag, organisation owner/admin override,
	// explicit project membership, denied. Unknown projects resolve to
	// RoleNone/SourceDenied rather than an error.
	ResolveAccess(ctx context.Context, userID, projectID string) (domain.EffectiveAccess, error)

	// RequireRole resolves access and returns apperrors.ErrForbidden unless
	// the effective role is one of the allowed roles (RoleAdmin always
	// passes). Returns apperrors.ErrNotFound for unknown projects so callers
	// surface a uniform 404.
	RequireRole(ctx context.Context, userID, projectID string, allowed ...domain.ProjectRole) (domain.EffectiveAccess, error)
}
