package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sumire/bugtracker/internal/service"
)

// RouterConfig holds the options that shape the HTTP surface.
type RouterConfig struct {
	// AllowedOrigin is the UI origin permitted by CORS.
	AllowedOrigin string
	// Debug exposes fault detail in 500 responses.
	Debug bool
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the echo instance serving the bug API.
func NewRouter(cfg RouterConfig, bugs *service.BugService) *echo.Echo {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Debug)

	metrics := NewMetrics(cfg.Registry)

	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	if cfg.AllowedOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  []string{cfg.AllowedOrigin},
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderAccept, echo.HeaderContentType},
			ExposeHeaders: []string{echo.HeaderXRequestID},
			MaxAge:        300,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	bugHandler := NewBugHandler(bugs)

	api := e.Group("/api/bugs")
	api.GET("", bugHandler.List)
	api.GET("/", bugHandler.List)
	api.POST("", bugHandler.Create)
	api.POST("/", bugHandler.Create)
	api.PUT("/:id", bugHandler.Update)
	api.DELETE("/:id", bugHandler.Delete)

	return e
}
