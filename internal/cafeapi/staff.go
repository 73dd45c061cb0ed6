package cafeapi

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type staffPayload struct {
	Name     string   `json:"name" validate:"required"`
	Phone    string   `json:"phone" validate:"required"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type staffUpdatePayload struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Schedule *string `json:"schedule"`
}

type customerPasswordPayload struct {
	NewPassword string `json:"newPassword"`
}

func registerStaffRoutes() {
	webserver.ApiGET("/staff", listStaff)
	webserver.ApiPOST("/staff", createStaff)
	webserver.ApiPUT("/staff/:id", updateStaff)
	webserver.ApiGET("/customers", listCustomers)
	webserver.ApiPOST("/customers/:email/reset-password", resetCustomerPassword)
}

func listStaff(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"staff": svc.ListStaff(c.Request().Context())})
}

func createStaff(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload staffPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	member, err := svc.CreateStaff(c.Request().Context(), service.StaffInput{
		Name:     payload.Name,
		Phone:    payload.Phone,
		Email:    payload.Email,
		Password: payload.Password,
		Roles:    payload.Roles,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "staff account created", echo.Map{"staff": member})
}

func updateStaff(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload staffUpdatePayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	id := c.Param("id")
	err := svc.UpdateStaff(c.Request().Context(), id, service.StaffPatch{
		Name:     payload.Name,
		Role:     payload.Role,
		Status:   payload.Status,
		Schedule: payload.Schedule,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "staff updated", echo.Map{"id": id})
}

func listCustomers(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"customers": svc.ListCustomers(c.Request().Context())})
}

// resetCustomerPassword falls back to the default password when the body
// carries none.
func resetCustomerPassword(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload customerPasswordPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil {
		email = c.Param("email")
	}
	if err := svc.ResetCustomerPassword(c.Request().Context(), email, payload.NewPassword); err != nil {
		return failErr(c, err)
	}
	return ok(c, "customer password reset", echo.Map{"email": email})
}
