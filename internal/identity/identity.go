// Package identity maps a session token to a user and gates workflows by
// role.
package identity

import (
	"context"
	"strings"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/store"
)

// Resolver looks up the user behind a session token. The token is the
// email stored in the session at login.
type Resolver struct {
	users *store.Repo[domain.User]
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{users: store.NewRepo[domain.User](st, domain.Users)}
}

// Resolve returns the user for token, or false when the token is empty or
// no longer matches a user.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.User, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}
	u, ok := r.users.GetBy(ctx, "email", token)
	if !ok {
		return nil, false
	}
	return &u, true
}

// HasRole reports whether u holds one of roles.
func HasRole(u *domain.User, roles ...string) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Require fails with Unauthenticated for a nil user and Forbidden when the
// user holds none of roles. No roles means any signed-in user.
func Require(u *domain.User, roles ...string) error {
	if u == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if len(roles) == 0 || HasRole(u, roles...) {
		return nil
	}
	return apperr.Forbidden("access denied, required role: " + strings.Join(roles, " or "))
}
