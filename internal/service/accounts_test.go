package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Register(f.ctx, "Nam", " nam@demo.com ", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "4", u.ID)
	assert.Equal(t, domain.RoleCustomer, u.Role)

	_, err = f.svc.Register(f.ctx, "Nam", "nam@demo.com", "secret", "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = f.svc.Register(f.ctx, "Nam", "nam@demo", "secret", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Login(f.ctx, "nam@demo.com", "nope")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	_, err = f.svc.Login(f.ctx, "who@demo.com", "secret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	got, err := f.svc.Login(f.ctx, "nam@demo.com", " secret ")
	require.NoError(t, err)
	assert.Equal(t, "Nam", got.Name)

	current, ok := f.svc.CurrentUser(f.ctx, "nam@demo.com")
	require.True(t, ok)
	assert.Equal(t, "4", current.ID)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	var sent []PasswordResetEvent
	require.NoError(t, f.svc.Bus().Subscribe(TopicPasswordReset, func(e PasswordResetEvent) { sent = append(sent, e) }))

	_, err := f.svc.ForgotPassword(f.ctx, "ghost@demo.com")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	req, err := f.svc.ForgotPassword(f.ctx, "customer@demo.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.Link, "/reset-password?token="))
	require.Len(t, sent, 1)
	assert.Equal(t, req.Link, sent[0].Link)

	require.NoError(t, f.svc.ResetPassword(f.ctx, req.Token, "brand-new"))
	_, err = f.svc.Login(f.ctx, "customer@demo.com", "brand-new")
	require.NoError(t, err)

	assert.True(t, apperr.Is(f.svc.ResetPassword(f.ctx, req.Token, "again"), apperr.KindValidation), "tokens are single use")

	stale, err := f.svc.ForgotPassword(f.ctx, "customer@demo.com")
	require.NoError(t, err)
	f.now = f.now.Add(61 * time.Minute)
	err = f.svc.ResetPassword(f.ctx, stale.Token, "late")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestManagerResetsCustomerPassword(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.ResetCustomerPassword(f.ctx, "customer@demo.com", ""))
	_, err := f.svc.Login(f.ctx, "customer@demo.com", domain.DefaultPassword)
	require.NoError(t, err)

	assert.True(t, apperr.Is(f.svc.ResetCustomerPassword(f.ctx, "staff@demo.com", "x"), apperr.KindNotFound))
}
