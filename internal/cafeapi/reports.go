package cafeapi

import (
	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type shiftReportPayload struct {
	ActualCash      interface{}            `json:"actualCash"`
	Notes           string                 `json:"notes"`
	EquipmentStatus map[string]interface{} `json:"equipmentStatus"`
}

func registerReportRoutes() {
	webserver.ApiGET("/revenue", revenueReport)
	webserver.ApiGET("/popular-items", popularItems)
	webserver.ApiPOST("/shift-report", shiftReport)
}

func revenueReport(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	report := svc.Revenue(c.Request().Context())
	return ok(c, "", echo.Map{"daily": report.Daily, "totals": report.Totals})
}

func popularItems(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"items": svc.PopularItems(c.Request().Context())})
}

func shiftReport(c echo.Context) error {
	u, err := authorize(c, domain.RoleStaff)
	if err != nil {
		return failErr(c, err)
	}
	var payload shiftReportPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	report, err := svc.ShiftReport(c.Request().Context(), u, service.ShiftInput{
		ActualCash:      payload.ActualCash,
		Notes:           payload.Notes,
		EquipmentStatus: payload.EquipmentStatus,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "shift report saved", echo.Map{"report": report, "cashMatched": report.CashMatched})
}
