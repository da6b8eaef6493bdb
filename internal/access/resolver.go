package access

import (
	"log/slog"
	"slices"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
)

type Resolver struct {
	policy Policy
}

func NewResolver(policy Policy) *Resolver {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &Resolver{policy: policy}
}

// Authorize reports whether caller holds at least one of required within
// the organization. An empty required list authorizes nobody.
func (r *Resolver) Authorize(caller *Caller, required []Role, orgID int64) bool {
	for _, held := range caller.RolesIn(orgID) {
		if slices.Contains(required, held) {
			return true
		}
	}

	return false
}

// Allowed is Authorize against the roles the policy assigns to op.
func (r *Resolver) Allowed(caller *Caller, op Operation, orgID int64) bool {
	return r.Authorize(caller, r.policy[op], orgID)
}

// Require returns an Unauthorized error unless the caller may run op in orgID.
func (r *Resolver) Require(caller *Caller, op Operation, orgID int64) error {
	if r.Allowed(caller, op, orgID) {
		return nil
	}

	var userID int64
	if caller != nil {
		userID = caller.UserID
	}

	slog.Warn("access denied", "op", op, "user_id", userID, "organization_id", orgID)

	return apperr.Unauthorized(string(op), "caller may not perform %s in organization %d", op, orgID)
}
