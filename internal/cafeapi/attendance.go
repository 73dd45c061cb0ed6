package cafeapi

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

const (
	actionClockIn  = "clock_in"
	actionClockOut = "clock_out"
)

type clockPayload struct {
	Action string `json:"action" form:"action" validate:"required,oneof=clock_in clock_out"`
}

func registerAttendanceRoutes() {
	webserver.ApiPOST("/clock-in-out", clockInOut)
	webserver.ApiGET("/attendance", listAttendance)
}

func clockInOut(c echo.Context) error {
	u, err := authorize(c, domain.RoleStaff)
	if err != nil {
		return failErr(c, err)
	}
	var payload clockPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	ctx := c.Request().Context()
	switch payload.Action {
	case actionClockIn:
		rec, err := svc.ClockIn(ctx, u)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, fmt.Sprintf("clocked in at %s", rec.ClockIn), echo.Map{"attendance": rec})
	case actionClockOut:
		rec, err := svc.ClockOut(ctx, u)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, fmt.Sprintf("clocked out at %s, worked %.2fh", rec.ClockOut, rec.Hours), echo.Map{"attendance": rec})
	}
	return failErr(c, apperr.Validation("unknown action %q", payload.Action))
}

func listAttendance(c echo.Context) error {
	u, err := authorize(c, domain.RoleStaff)
	if err != nil {
		return failErr(c, err)
	}
	summary, err := svc.ListAttendance(c.Request().Context(), u)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{
		"attendance": summary.Records,
		"summary": echo.Map{
			"totalHours":     summary.TotalHours,
			"daysWorked":     summary.DaysWorked,
			"avgHoursPerDay": summary.AvgHoursPerDay,
		},
	})
}
