package cafeapi

import (
	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/webserver"
)

type loginPayload struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerPayload struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Phone    string `json:"phone" form:"phone"`
}

type forgotPasswordPayload struct {
	Email string `json:"email" form:"email" validate:"required"`
}

type resetPasswordPayload struct {
	Token       string `json:"token" form:"token" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"required"`
}

func registerAccountRoutes() {
	webserver.ApiPOST("/login", login)
	webserver.ApiGET("/logout", logout)
	webserver.ApiPOST("/logout", logout)
	webserver.ApiGET("/me", me)
	webserver.ApiPOST("/register", register)
	webserver.ApiPOST("/forgot-password", forgotPassword)
	webserver.ApiPOST("/reset-password", resetPassword)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	u, err := svc.Login(c.Request().Context(), payload.Email, payload.Password)
	if err != nil {
		return failErr(c, err)
	}
	if err := webserver.SetSession(c, u.Email, u.Role); err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"role": u.Role})
}

func logout(c echo.Context) error {
	if err := webserver.ClearSession(c); err != nil {
		return failErr(c, err)
	}
	return ok(c, "signed out", nil)
}

func me(c echo.Context) error {
	u, err := authorize(c)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"user": u})
}

func register(c echo.Context) error {
	var payload registerPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	u, err := svc.Register(c.Request().Context(), payload.Name, payload.Email, payload.Password, payload.Phone)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "registration successful", echo.Map{"user": u})
}

func forgotPassword(c echo.Context) error {
	var payload forgotPasswordPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	req, err := svc.ForgotPassword(c.Request().Context(), payload.Email)
	if err != nil {
		return failErr(c, err)
	}
	if !options.ExposeResetLink {
		return ok(c, "a reset link has been sent to your email", nil)
	}
	return ok(c, "reset link created", echo.Map{"resetLink": req.Link})
}

func resetPassword(c echo.Context) error {
	var payload resetPasswordPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	if err := svc.ResetPassword(c.Request().Context(), payload.Token, payload.NewPassword); err != nil {
		return failErr(c, err)
	}
	return ok(c, "password has been reset", nil)
}
