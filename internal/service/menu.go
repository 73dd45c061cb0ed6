package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// MenuItemInput creates a menu item.
type MenuItemInput struct {
	Name        string
	Category    string
	Price       interface{}
	Image       string
	Description string
	Status      string
}

// MenuItemPatch carries the fields to change; nil fields are left alone.
type MenuItemPatch struct {
	Name        *string
	Category    *string
	Price       interface{}
	Image       *string
	Description *string
	Status      *string
}

func (s *Service) ListMenu(ctx context.Context) []domain.MenuItem {
	return s.menu.All(ctx)
}

func (s *Service) CreateMenuItem(ctx context.Context, in MenuItemInput) (*domain.MenuItem, error) {
	name, err := validate.Required(in.Name, "name")
	if err != nil {
		return nil, err
	}
	category, err := validate.Required(in.Category, "category")
	if err != nil {
		return nil, err
	}
	price, err := validate.PositiveNumber(in.Price, "price")
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.MenuAvailable
	}
	if _, err := validate.OneOf(status, domain.MenuStatuses, "menu status"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item := domain.MenuItem{
		ID:          s.menu.NextID(ctx),
		Name:        name,
		Category:    category,
		Price:       price,
		Image:       strings.TrimSpace(in.Image),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
	}
	if err := s.menu.Insert(ctx, item); err != nil {
		return nil, storageFault(err, "create menu item")
	}
	return &item, nil
}

func (s *Service) UpdateMenuItem(ctx context.Context, id string, p MenuItemPatch) error {
	updates := domain.Row{}
	if p.Name != nil {
		name, err := validate.Required(*p.Name, "name")
		if err != nil {
			return err
		}
		updates["name"] = name
	}
	if p.Category != nil {
		updates["category"] = *p.Category
	}
	if p.Price != nil {
		price, err := validate.PositiveNumber(p.Price, "price")
		if err != nil {
			return err
		}
		updates["price"] = fmt.Sprint(price)
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Image != nil {
		updates["image"] = *p.Image
	}
	if p.Status != nil {
		if _, err := validate.OneOf(*p.Status, domain.MenuStatuses, "menu status"); err != nil {
			return err
		}
		updates["status"] = *p.Status
	}
	if len(updates) == 0 {
		return apperr.Validation("nothing to update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.menu.Exists(ctx, "id", id) {
		return apperr.NotFound("menu item %s not found", id)
	}
	return storageFault(s.menu.Patch(ctx, id, updates), "update menu item")
}

// DeleteMenuItem removes an item, or hides it when order history
// references it. hidden reports which happened.
func (s *Service) DeleteMenuItem(ctx context.Context, id string) (hidden bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.menu.Exists(ctx, "id", id) {
		return false, apperr.NotFound("menu item %s not found", id)
	}
	if s.details.Exists(ctx, "menu_item_id", id) {
		return true, storageFault(s.menu.Patch(ctx, id, domain.Row{"status": domain.MenuUnavailable}), "hide menu item")
	}
	return false, storageFault(s.menu.Remove(ctx, id), "delete menu item")
}
