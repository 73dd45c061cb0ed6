package cafeapi

import (
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type tablePayload struct {
	Number   interface{} `json:"number"`
	Capacity interface{} `json:"capacity"`
}

type tableStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// tableAssignPayload accepts orderId as a string or a number; it may be
// omitted to seat walk-ins.
type tableAssignPayload struct {
	OrderID interface{} `json:"orderId"`
}

func registerTableRoutes() {
	webserver.ApiGET("/tables", listTables)
	webserver.ApiPOST("/tables", createTable)
	webserver.ApiPUT("/tables/:id/status", updateTableStatus)
	webserver.ApiPOST("/tables/:id/assign", assignTable)
	webserver.ApiPOST("/tables/:id/clear", clearTable)
}

func listTables(c echo.Context) error {
	return ok(c, "", echo.Map{"tables": svc.ListTables(c.Request().Context())})
}

func createTable(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload tablePayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	table, err := svc.CreateTable(c.Request().Context(), payload.Number, payload.Capacity)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "table created", echo.Map{"table": table})
}

func updateTableStatus(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload tableStatusPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	table, err := svc.UpdateTableStatus(c.Request().Context(), c.Param("id"), payload.Status)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "table status updated", echo.Map{"table": table})
}

func assignTable(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload tableAssignPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	table, err := svc.AssignTable(c.Request().Context(), c.Param("id"), cast.ToString(payload.OrderID))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "table assigned", echo.Map{"table": table})
}

func clearTable(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	table, err := svc.ClearTable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "table cleared", echo.Map{"table": table})
}
