package cafeapi

import (
	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type menuItemPayload struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       interface{} `json:"price"`
	Image       string      `json:"image"`
	Description string      `json:"description"`
	Status      string      `json:"status" validate:"omitempty,oneof=available unavailable"`
}

type menuItemUpdatePayload struct {
	Name        *string     `json:"name"`
	Category    *string     `json:"category"`
	Price       interface{} `json:"price"`
	Image       *string     `json:"image"`
	Description *string     `json:"description"`
	Status      *string     `json:"status" validate:"omitempty,oneof=available unavailable"`
}

func registerMenuRoutes() {
	webserver.ApiGET("/menu-items", listMenuItems)
	webserver.ApiPOST("/menu-items", createMenuItem)
	webserver.ApiPUT("/menu-items/:id", updateMenuItem)
	webserver.ApiDELETE("/menu-items/:id", deleteMenuItem)
}

func listMenuItems(c echo.Context) error {
	return ok(c, "", echo.Map{"items": svc.ListMenu(c.Request().Context())})
}

func createMenuItem(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload menuItemPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	item, err := svc.CreateMenuItem(c.Request().Context(), service.MenuItemInput{
		Name:        payload.Name,
		Category:    payload.Category,
		Price:       payload.Price,
		Image:       payload.Image,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "menu item created", echo.Map{"item": item})
}

func updateMenuItem(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload menuItemUpdatePayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	id := c.Param("id")
	err := svc.UpdateMenuItem(c.Request().Context(), id, service.MenuItemPatch{
		Name:        payload.Name,
		Category:    payload.Category,
		Price:       payload.Price,
		Image:       payload.Image,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "menu item updated", echo.Map{"id": id})
}

func deleteMenuItem(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	id := c.Param("id")
	hidden, err := svc.DeleteMenuItem(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	if hidden {
		return ok(c, "menu item is referenced by orders and was marked unavailable", echo.Map{"id": id, "hidden": true})
	}
	return ok(c, "menu item deleted", echo.Map{"id": id, "hidden": false})
}
