// Package cafeapi exposes the cafe workflows as JSON endpoints under /api.
package cafeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

var (
	svc     *service.Service
	options Options
)

// Options tunes handler behavior.
type Options struct {
	// ExposeResetLink returns the password reset link in the response
	// instead of relying on mail delivery.
	ExposeResetLink bool
}

// Init registers every route against s. webserver.Init must run first.
func Init(s *service.Service, opts Options) {
	svc = s
	options = opts
	registerAccountRoutes()
	registerMenuRoutes()
	registerOrderRoutes()
	registerTableRoutes()
	registerReservationRoutes()
	registerInventoryRoutes()
	registerStaffRoutes()
	registerFeedbackRoutes()
	registerPromotionRoutes()
	registerReportRoutes()
	registerAttendanceRoutes()
}

// ok writes a success envelope. fields are merged next to success and
// message.
func ok(c echo.Context, message string, fields echo.Map) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	body := echo.Map{
		"success": false,
		"code":    code,
		"message": message,
	}
	if detail != nil {
		body["detail"] = detail
	}
	return c.JSON(status, body)
}

// failErr converts a workflow error into the failure envelope.
func failErr(c echo.Context, err error) error {
	e := apperr.As(err)
	if e.Kind == apperr.KindStorage {
		zap.L().Error("request failed with storage fault",
			zap.String("namespace", "api"),
			zap.String("path", c.Path()),
			zap.Error(err))
		return fail(c, e.Status(), "STORAGE_ERROR", e.Message, nil)
	}
	return fail(c, e.Status(), strings.ToUpper(e.Kind.String()), e.Message, nil)
}

// currentUser resolves the session cookie to a user, or nil.
func currentUser(c echo.Context) *domain.User {
	u, found := svc.CurrentUser(c.Request().Context(), webserver.SessionEmail(c))
	if !found {
		return nil
	}
	return u
}

// authorize returns the session user when it holds one of roles. No roles
// means any signed-in user.
func authorize(c echo.Context, roles ...string) (*domain.User, error) {
	u := currentUser(c)
	if err := identity.Require(u, roles...); err != nil {
		return nil, err
	}
	return u, nil
}

// bindPayload binds the request body and runs the struct validate tags.
// The first failing field wins.
func bindPayload(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		return apperr.Validation("unable to parse request")
	}
	if err := c.Validate(payload); err != nil {
		return apperr.Validation("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
