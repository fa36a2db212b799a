package app

import (
	"fmt"
	"slices"

	"github.com/societyq/societyq/internal/domain"
)

// Authorize is the tenant-isolation boundary: it decides whether an actor may
// act on entities belonging to the given society, optionally requiring one of
// the given roles. Every mutating transition and every scoped read funnels
// through this predicate.
//
// Rules, in order: an unscoped admin is always allowed; an actor whose home
// society differs from the target is denied regardless of role; an actor
// whose role is not among the required roles is denied.
func Authorize(actor domain.Actor, societyID string, roles ...domain.Role) error {
	if actor.SuperAdmin() {
		return nil
	}
	if actor.SocietyID != societyID {
		return &domain.ForbiddenError{
			Reason: fmt.Sprintf("actor belongs to society %q, not %q", actor.SocietyID, societyID),
		}
	}
	if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
		return &domain.ForbiddenError{
			Reason: fmt.Sprintf("role %s is not permitted for this operation", actor.Role),
		}
	}
	return nil
}
