package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// StaffInput creates a staff member and the matching user account.
type StaffInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Roles    []string
}

// StaffPatch carries the staff fields to change.
type StaffPatch struct {
	Name     *string
	Role     *string
	Status   *string
	Schedule *string
}

func (s *Service) ListStaff(ctx context.Context) []domain.Staff {
	return s.staff.All(ctx)
}

// CreateStaff adds a user of role staff and its staff record. Phone and
// email must be unused.
func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (*domain.Staff, error) {
	name, err := validate.Required(in.Name, "name")
	if err != nil {
		return nil, err
	}
	phone, err := validate.Required(in.Phone, "phone")
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if email, err = validate.Email(email); err != nil {
			return nil, err
		}
	}
	password := in.Password
	if password == "" {
		password = domain.DefaultPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users.Exists(ctx, "phone", phone) {
		return nil, apperr.Conflict("phone %s is already registered", phone)
	}
	if email != "" && s.users.Exists(ctx, "email", email) {
		return nil, apperr.Conflict("email %s is already registered", email)
	}

	userID := s.users.NextID(ctx)
	if email == "" {
		email = fmt.Sprintf("staff%s@cafedesk.local", userID)
	}
	user := domain.User{ID: userID, Name: name, Email: email, Password: password, Phone: phone, Role: domain.RoleStaff}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, storageFault(err, "create staff account")
	}

	title := "Staff"
	if len(in.Roles) > 0 {
		title = strings.Join(in.Roles, ", ")
	}
	member := domain.Staff{
		ID:     s.staff.NextID(ctx),
		Name:   name,
		Role:   title,
		Email:  email,
		Phone:  phone,
		Status: domain.StaffActive,
	}
	if err := s.staff.Insert(ctx, member); err != nil {
		return nil, storageFault(err, "create staff record")
	}
	zap.L().Info("staff created",
		zap.String("namespace", "service"),
		zap.String("staff_id", member.ID),
		zap.String("email", email))
	return &member, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id string, p StaffPatch) error {
	updates := domain.Row{}
	if p.Name != nil {
		name, err := validate.Required(*p.Name, "name")
		if err != nil {
			return err
		}
		updates["name"] = name
	}
	if p.Role != nil {
		updates["role"] = *p.Role
	}
	if p.Status != nil {
		if _, err := validate.OneOf(*p.Status, domain.StaffStatuses, "staff status"); err != nil {
			return err
		}
		updates["status"] = *p.Status
	}
	if p.Schedule != nil {
		updates["schedule"] = *p.Schedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.staff.Get(ctx, id)
	if !ok {
		return apperr.NotFound("staff %s not found", id)
	}
	if len(updates) == 0 {
		return nil
	}
	if err := s.staff.Patch(ctx, id, updates); err != nil {
		return storageFault(err, "update staff")
	}
	if name, ok := updates["name"]; ok && member.Email != "" {
		return storageFault(s.users.PatchBy(ctx, "email", member.Email, domain.Row{"name": name}), "rename staff account")
	}
	return nil
}
