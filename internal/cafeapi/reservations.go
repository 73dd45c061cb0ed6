package cafeapi

import (
	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type reservationPayload struct {
	Date   string      `json:"date" validate:"required"`
	Time   string      `json:"time" validate:"required"`
	Guests interface{} `json:"guests" validate:"required"`
	Notes  string      `json:"notes"`
}

type reservationStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func registerReservationRoutes() {
	webserver.ApiPOST("/create-reservation", createReservation)
	webserver.ApiGET("/reservations", listReservations)
	webserver.ApiPUT("/reservations/:id/status", updateReservationStatus)
}

func createReservation(c echo.Context) error {
	u, err := authorize(c)
	if err != nil {
		return failErr(c, err)
	}
	var payload reservationPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	view, err := svc.CreateReservation(c.Request().Context(), u, service.ReservationRequest{
		Date:   payload.Date,
		Time:   payload.Time,
		Guests: payload.Guests,
		Notes:  payload.Notes,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "reservation request received, the cafe will confirm shortly", echo.Map{
		"reservationId": view.ID,
		"tableNumber":   view.TableNumber,
	})
}

func listReservations(c echo.Context) error {
	reservations, err := svc.ListReservations(c.Request().Context(), currentUser(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"reservations": reservations})
}

func updateReservationStatus(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload reservationStatusPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	r, err := svc.UpdateReservationStatus(c.Request().Context(), c.Param("id"), payload.Status)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "reservation updated", echo.Map{"reservation": r})
}
