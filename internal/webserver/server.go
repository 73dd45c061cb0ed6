// Package webserver hosts the echo instance and the /api route group.
// Handler packages register their routes through ApiGET and friends after
// Init has been called.
package webserver

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/config"
)

const (
	SessionName = "cafedesk_session"
	// SessionEmailKey holds the signed-in user's email inside the session.
	SessionEmailKey = "user_email"
	SessionRoleKey  = "role"
)

var server *WebServer

type WebServer struct {
	root *echo.Echo
	api  *echo.Group
	addr string
}

// CustomValidator plugs go-playground/validator into echo's c.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// NewValidator reports fields by their json names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Init builds the process-wide server. Calling it again replaces the
// previous instance, which tests rely on.
func Init(cfg *config.AppConfig) {
	server = NewWebServer(cfg)
}

func NewWebServer(cfg *config.AppConfig) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	if cfg.System.Debug {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("request",
				zap.String("namespace", "web"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	store := sessions.NewCookieStore([]byte(cfg.Web.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.Web.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	return &WebServer{
		root: e,
		api:  e.Group("/api"),
		addr: cfg.ListenAddr(),
	}
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// Handler exposes the router, mainly for httptest.
func Handler() http.Handler {
	return server.root
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("web server listening on %s", server.addr)
		errCh <- server.root.Start(server.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.root.Shutdown(shutdownCtx); err != nil {
			zap.S().Errorf("web server shutdown error: %v", err)
			return err
		}
		return nil
	}
}

// SessionEmail returns the email stored in the request session, if any.
func SessionEmail(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	email, _ := sess.Values[SessionEmailKey].(string)
	return email
}

// SetSession stores the signed-in user in the session cookie.
func SetSession(c echo.Context, email, role string) error {
	// A cookie signed with an old secret still yields a fresh session.
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return err
	}
	sess.Values[SessionEmailKey] = email
	sess.Values[SessionRoleKey] = role
	return sess.Save(c.Request(), c.Response())
}

// ClearSession expires the session cookie.
func ClearSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
