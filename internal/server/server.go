// Package server assembles the echo instance that serves the party builder.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/poppy/config"
	"github.com/Ramsey-B/poppy/internal/handlers"
	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/health"
	"github.com/Ramsey-B/poppy/pkg/middleware"
	"github.com/Ramsey-B/poppy/pkg/repositories"
)

// Options are the collaborators the server is built from
type Options struct {
	Config     *config.Config
	Logger     ectologger.Logger
	DataSource *database.DataSource
	Renderer   echo.Renderer
	Emitter    events.Emitter
	Health     *health.Checker
}

// New builds the echo instance with every route registered
func New(opts Options) *echo.Echo {
	cfg := opts.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = opts.Renderer
	e.HTTPErrorHandler = middleware.Error(opts.Logger)

	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context(), middleware.Logger(opts.Logger), middleware.Metrics())

	e.Static("/static", cfg.StaticDir)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	opts.Health.RegisterRoutes(e)

	ds := opts.DataSource
	referenceRepo := repositories.NewReferenceRepository(ds, opts.Logger)
	relationshipRepo := repositories.NewRelationshipRepository(ds, opts.Logger)
	partyRepo := repositories.NewPartyRepository(ds, opts.Logger)
	customizedRepo := repositories.NewCustomizedPokemonRepository(ds, opts.Logger)
	learnsetRepo := repositories.NewLearnsetRepository(ds, opts.Logger)
	maintenanceRepo := repositories.NewMaintenanceRepository(ds, opts.Logger)

	root := e.Group("")
	api := e.Group(middleware.APIPrefix)

	handlers.NewPageHandler(referenceRepo, relationshipRepo, partyRepo, customizedRepo).RegisterRoutes(root)
	handlers.NewPartyHandler(partyRepo, opts.Emitter, opts.Logger).RegisterRoutes(root)
	handlers.NewCustomizedPokemonHandler(customizedRepo, partyRepo, opts.Emitter, opts.Logger).RegisterRoutes(root)
	handlers.NewMaintenanceHandler(maintenanceRepo, opts.Emitter, opts.Logger).RegisterRoutes(root)
	handlers.NewLearnsetHandler(learnsetRepo).RegisterRoutes(api)

	return e
}

// HTTPServer wraps e in an http.Server sized from the configuration
func HTTPServer(cfg *config.Config, e *echo.Echo) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           e,
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
