package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/biblioteca/library-system/internal/api/docs"
	"github.com/biblioteca/library-system/internal/api/handler"
	"github.com/biblioteca/library-system/internal/api/middleware"
	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth       ports.AuthService
	Catalog    ports.CatalogService
	Loans      ports.LoanService
	Users      ports.UserService
	Dashboards ports.DashboardService
	Audit      ports.AuditService
}

// Options configure cross-cutting router behaviour.
type Options struct {
	JWTSecret string
	// LoginLimiter throttles /auth/login; nil disables throttling.
	LoginLimiter middleware.Limiter
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check
	// Registerer receives the HTTP request metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title                       Library API
// @version                     1.0
// @description                 Catalog, loans and accounts for the university library.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(opts.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "library",
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || p == "/health" || p == "/health/ready"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	bookHandler := handler.NewBookHandler(svc.Catalog)
	loanHandler := handler.NewLoanHandler(svc.Loans)
	userHandler := handler.NewUserHandler(svc.Users)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboards, svc.Audit)
	authMiddleware := middleware.Auth(opts.JWTSecret, svc.Auth)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	if opts.LoginLimiter != nil {
		e.POST("/auth/login", authHandler.Login, middleware.LoginRateLimit(opts.LoginLimiter, opts.Logger))
	} else {
		e.POST("/auth/login", authHandler.Login)
	}

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", authMiddleware)
	v1.GET("/me", userHandler.Me)
	v1.GET("/books", bookHandler.List)
	v1.GET("/books/categories", bookHandler.Categories)
	v1.GET("/books/:id", bookHandler.Get)
	v1.POST("/books/:id/loans", loanHandler.Create)
	v1.GET("/loans/mine", loanHandler.Mine)
	v1.GET("/loans/:id", loanHandler.Get)
	v1.POST("/loans/:id/return", loanHandler.Return)
	v1.GET("/dashboard", dashboardHandler.Student)

	// --- Admin routes ---
	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))
	admin.POST("/books", bookHandler.Create)
	admin.PUT("/books/:id", bookHandler.Update)
	admin.DELETE("/books/:id", bookHandler.Delete)
	admin.POST("/books/:id/availability", bookHandler.AdjustAvailability)
	admin.GET("/loans", loanHandler.List)
	admin.POST("/loans", loanHandler.CreateForStudent)
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.POST("/users/:id/toggle-role", userHandler.ToggleRole)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/dashboard", dashboardHandler.Admin)
	admin.GET("/logs", dashboardHandler.Logs)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
