package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"conftix/internal/config"
	"conftix/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	orderHandler *handler.OrderHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Account routes (public). Login and registration accept a `next`
	// redirect target which is echoed back on success.
	e.GET("/accounts/login", authHandler.LoginForm)
	e.POST("/accounts/login", authHandler.Login)
	e.GET("/accounts/register", authHandler.RegisterForm)
	e.POST("/accounts/register", authHandler.Register)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication)
	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	// Profile routes
	secured.GET("/profile", profileHandler.GetProfile)
	secured.GET("/profile/edit", profileHandler.GetEditForm)
	secured.POST("/profile/edit", profileHandler.UpdateProfile)

	// Order and billing routes
	secured.POST("/orders", orderHandler.CreateOrder)
	secured.GET("/orders/:id", orderHandler.GetOrder)
	secured.POST("/orders/:id/pay", orderHandler.PayOrder)
	secured.POST("/orders/:id/refund", orderHandler.RefundOrder)
	secured.POST("/tickets/:id/refund", orderHandler.RefundTicket)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
