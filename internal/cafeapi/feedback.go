package cafeapi

import (
	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type feedbackPayload struct {
	FoodRating    interface{} `json:"foodRating"`
	ServiceRating interface{} `json:"serviceRating"`
	Comment       string      `json:"comment"`
}

type feedbackResponsePayload struct {
	Response string `json:"response" validate:"required"`
}

func registerFeedbackRoutes() {
	webserver.ApiGET("/feedback", listFeedback)
	webserver.ApiPOST("/feedback/:id/respond", respondFeedback)
	webserver.ApiPOST("/submit-feedback", submitFeedback)
}

func listFeedback(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"feedback": svc.ListFeedback(c.Request().Context())})
}

// submitFeedback accepts the rating form or the same fields as JSON.
func submitFeedback(c echo.Context) error {
	u, err := authorize(c)
	if err != nil {
		return failErr(c, err)
	}
	var payload feedbackPayload
	if isFormRequest(c) {
		payload = feedbackPayload{
			FoodRating:    c.FormValue("foodRating"),
			ServiceRating: c.FormValue("serviceRating"),
			Comment:       c.FormValue("comment"),
		}
	} else if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	fb, err := svc.SubmitFeedback(c.Request().Context(), u, payload.FoodRating, payload.ServiceRating, payload.Comment)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "thank you for your feedback", echo.Map{"feedbackId": fb.ID})
}

func respondFeedback(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload feedbackResponsePayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	id := c.Param("id")
	if err := svc.RespondFeedback(c.Request().Context(), id, payload.Response); err != nil {
		return failErr(c, err)
	}
	return ok(c, "response saved", echo.Map{"id": id})
}
