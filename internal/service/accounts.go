package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// ResetRequest is returned by ForgotPassword.
type ResetRequest struct {
	Token string `json:"-"`
	Link  string `json:"resetLink"`
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, name, email, password, phone string) (*domain.User, error) {
	name, err := validate.Required(name, "name")
	if err != nil {
		return nil, err
	}
	if email, err = validate.Required(email, "email"); err != nil {
		return nil, err
	}
	if email, err = validate.Email(email); err != nil {
		return nil, err
	}
	if password, err = validate.Required(password, "password"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users.Exists(ctx, "email", email) {
		return nil, apperr.Conflict("email %s is already registered", email)
	}
	u := domain.User{
		ID:       s.users.NextID(ctx),
		Name:     name,
		Email:    email,
		Password: password,
		Phone:    strings.TrimSpace(phone),
		Role:     domain.RoleCustomer,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, storageFault(err, "register")
	}
	zap.L().Info("customer registered", zap.String("namespace", "service"), zap.String("email", email))
	return &u, nil
}

// Login checks the credentials and returns the user. Passwords are stored
// and compared as plain text.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	u, ok := s.users.GetBy(ctx, "email", email)
	if !ok {
		return nil, apperr.Unauthenticated("email is not registered")
	}
	if u.Password != password {
		return nil, apperr.Unauthenticated("wrong password")
	}
	return &u, nil
}

// ForgotPassword issues a one hour reset token for a registered email and
// publishes the reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*ResetRequest, error) {
	email = strings.TrimSpace(email)
	u, ok := s.users.GetBy(ctx, "email", email)
	if !ok {
		return nil, apperr.NotFound("email %s is not registered", email)
	}
	token, _ := s.tokens.Issue(email)
	link := "/reset-password?token=" + url.QueryEscape(token)
	s.publish(TopicPasswordReset, PasswordResetEvent{Email: email, Name: u.Name, Link: link})
	return &ResetRequest{Token: token, Link: link}, nil
}

// ResetPassword consumes token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	newPassword, err := validate.Required(newPassword, "new password")
	if err != nil {
		return err
	}
	email, ok, expired := s.tokens.Consume(token)
	if expired {
		return apperr.Validation("reset token has expired, request a new one")
	}
	if !ok {
		return apperr.Validation("invalid or expired reset token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users.Exists(ctx, "email", email) {
		return apperr.NotFound("email %s is not registered", email)
	}
	return storageFault(s.users.PatchBy(ctx, "email", email, domain.Row{"password": newPassword}), "reset password")
}
