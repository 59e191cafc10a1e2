package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/metrics"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	middleware "github.com/Skotchmaster/sweet_shop/pkg/middleware/auth"
)

const Version = "1.0.0"

type Deps struct {
	AuthHandler  *AuthHTTP
	SweetHandler *SweetHTTP
	JWTSecret    []byte
	DB           *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, transport.HealthResponse{Status: "healthy", Version: Version})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", metrics.Handler())

	authMW := middleware.NewBearerAuth(d.JWTSecret)

	auth := e.Group("/api/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	sweets := e.Group("/api/sweets", authMW.RequireAuth)
	sweets.GET("", d.SweetHandler.ListSweets)
	sweets.POST("/search", d.SweetHandler.SearchSweets)
	sweets.GET("/:id", d.SweetHandler.GetSweet)
	sweets.POST("/:id/purchase", d.SweetHandler.Purchase)

	// Admin routes share the group so its not-found handler stays auth-only.
	sweets.POST("", d.SweetHandler.CreateSweet, authMW.RequireAdmin)
	sweets.PUT("/:id", d.SweetHandler.UpdateSweet, authMW.RequireAdmin)
	sweets.DELETE("/:id", d.SweetHandler.DeleteSweet, authMW.RequireAdmin)
	sweets.POST("/:id/restock", d.SweetHandler.Restock, authMW.RequireAdmin)

	e.GET("/api/purchases", d.SweetHandler.History, authMW.RequireAuth)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
