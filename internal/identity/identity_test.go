package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/store"
)

func TestResolve(t *testing.T) {
	st, err := store.NewCSVStore(t.TempDir())
	require.NoError(t, err)
	users := store.NewRepo[domain.User](st, domain.Users)
	require.NoError(t, users.Insert(context.Background(), domain.User{
		ID: "1", Name: "Mai", Email: "staff@demo.com", Password: "123456", Role: domain.RoleStaff,
	}))

	r := NewResolver(st)
	u, ok := r.Resolve(context.Background(), "staff@demo.com")
	require.True(t, ok)
	assert.Equal(t, domain.RoleStaff, u.Role)

	_, ok = r.Resolve(context.Background(), "")
	assert.False(t, ok)
	_, ok = r.Resolve(context.Background(), "ghost@demo.com")
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	staff := &domain.User{Role: domain.RoleStaff}

	assert.True(t, apperr.Is(Require(nil), apperr.KindUnauthenticated))
	assert.NoError(t, Require(staff))
	assert.NoError(t, Require(staff, domain.RoleStaff, domain.RoleManager))
	assert.True(t, apperr.Is(Require(staff, domain.RoleManager), apperr.KindForbidden))
	assert.False(t, HasRole(nil, domain.RoleCustomer))
}

func TestTokenStore(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewTokenStore(time.Hour, clock)

	token, expires := s.Issue("customer@demo.com")
	assert.NotEmpty(t, token)
	assert.Equal(t, now.Add(time.Hour), expires)

	email, ok, expired := s.Consume(token)
	assert.True(t, ok)
	assert.False(t, expired)
	assert.Equal(t, "customer@demo.com", email)

	_, ok, _ = s.Consume(token)
	assert.False(t, ok, "tokens are single use")

	stale, _ := s.Issue("customer@demo.com")
	now = now.Add(2 * time.Hour)
	_, ok, expired = s.Consume(stale)
	assert.False(t, ok)
	assert.True(t, expired)

	s.Issue("a@demo.com")
	now = now.Add(30 * time.Minute)
	s.Issue("b@demo.com")
	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}
