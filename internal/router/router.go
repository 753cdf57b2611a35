package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"coursemarket/internal/auth"
	"coursemarket/internal/config"
	apperr "coursemarket/internal/errors"
	"coursemarket/internal/handler"
	"coursemarket/internal/logging"
	"coursemarket/internal/metrics"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Course   *handler.CourseHandler
	Purchase *handler.PurchaseHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log logrus.FieldLogger, guard *auth.Guard, h Handlers) {
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(log, cfg.IsDevelopment())
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/admin/signup", h.Auth.SignupAdmin)
	api.POST("/admin/login", h.Auth.LoginAdmin)
	api.POST("/user/signup", h.Auth.SignupUser)
	api.POST("/user/login", h.Auth.LoginUser)
	api.GET("/courses", h.Course.ListPublic)
	api.GET("/courses/:courseId", h.Course.Get)

	// Any signed-in identity
	api.GET("/me", h.Auth.Me, RequireIdentity(guard, ""))

	// Admin routes
	admin := api.Group("/admin/courses", RequireIdentity(guard, auth.KindAdmin))
	admin.POST("", h.Course.Create)
	admin.GET("", h.Course.ListOwned)
	admin.PUT("/:courseId", h.Course.Update)
	admin.DELETE("/:courseId", h.Course.Delete)

	// User routes
	user := api.Group("/user/courses", RequireIdentity(guard, auth.KindUser))
	user.POST("/purchase", h.Purchase.Purchase)
	user.GET("", h.Purchase.ListPurchased)
}

// RequireIdentity verifies the bearer token and requires kind; an empty kind
// accepts admins and users alike. The identity is stored under
// handler.IdentityKey and on the request context.
func RequireIdentity(guard *auth.Guard, kind auth.Kind) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		// No prefix so the whole header reaches ParseTokenFunc and the
		// scheme check stays in auth.ExtractBearer.
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ContextKey:  handler.IdentityKey,
		ParseTokenFunc: func(c echo.Context, header string) (interface{}, error) {
			id, err := guard.Authenticate(header, kind)
			if err != nil {
				return nil, err
			}
			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), id)))
			return id, nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			var appErr *apperr.AppError
			if !errors.As(err, &appErr) {
				appErr = apperr.ErrMissingToken
			}
			metrics.ObserveAuthFailure(strings.ToLower(appErr.Code))
			return appErr
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
