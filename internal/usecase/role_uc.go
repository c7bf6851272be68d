package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"notification-service/internal/claims"
	"notification-service/internal/domain"
	"notification-service/internal/repository"
	xerrors "notification-service/pkg/xerrors"
)

// Caller is the authenticated identity invoking a privileged
// operation, as read from its token claims.
type Caller struct {
	UserID string
	Role   domain.Role
}

// RoleUsecase is the privileged role-assignment service: it writes the
// role into the claims store (full replace) and merges it into the
// profile record.
type RoleUsecase struct {
	users  repository.UserRepository
	claims claims.Store
}

func NewRoleUsecase(users repository.UserRepository, claimsStore claims.Store) *RoleUsecase {
	return &RoleUsecase{users: users, claims: claimsStore}
}

// AssignRole validates the caller and the request, then propagates the
// new role to both stores. Returns the success message, or a typed
// *xerrors.RoleError that surfaces directly to the caller.
func (uc *RoleUsecase) AssignRole(ctx context.Context, caller Caller, targetUserID string, role domain.Role) (string, error) {
	if caller.UserID == "" {
		return "", xerrors.NewRoleError(xerrors.CodeUnauthenticated,
			"You must be authenticated to call this function.")
	}
	if caller.Role != domain.RoleAdmin {
		return "", xerrors.NewRoleError(xerrors.CodePermissionDenied,
			"Only admins can assign roles.")
	}
	if targetUserID == "" || role == "" {
		return "", xerrors.NewRoleError(xerrors.CodeInvalidArgument,
			"You must provide both uid and role")
	}
	if !domain.ValidRole(role) {
		return "", xerrors.NewRoleError(xerrors.CodeInvalidArgument,
			fmt.Sprintf("Invalid role. Allowed roles are: %s", allowedRoleList()))
	}

	if err := uc.claims.SetRoleClaim(ctx, targetUserID, string(role)); err != nil {
		log.Printf("⚠️ [role] set claim for %s failed: %v", targetUserID, err)
		return "", xerrors.NewRoleError(xerrors.CodeInternal,
			"Failed to assign role. Check service logs.")
	}
	if err := uc.users.UpdateRole(ctx, targetUserID, role); err != nil {
		log.Printf("⚠️ [role] profile merge for %s failed: %v", targetUserID, err)
		return "", xerrors.NewRoleError(xerrors.CodeInternal,
			"Failed to assign role. Check service logs.")
	}

	// The caller's own session is untouched: new permissions appear on
	// their next token refresh.
	return fmt.Sprintf("Role '%s' assigned to user %s", role, targetUserID), nil
}

func allowedRoleList() string {
	names := make([]string, 0, len(domain.AllowedRoles))
	for _, r := range domain.AllowedRoles {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
