package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/repositories"
)

// MaintenanceHandler handles whole database operations
type MaintenanceHandler struct {
	maintenanceRepo repositories.MaintenanceRepo
	emitter         events.Emitter
	logger          ectologger.Logger
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenanceRepo repositories.MaintenanceRepo, emitter events.Emitter, logger ectologger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceRepo: maintenanceRepo,
		emitter:         emitter,
		logger:          logger,
	}
}

// RegisterRoutes registers maintenance routes
func (h *MaintenanceHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/reset/database", h.Reset)
}

// Reset restores every table to the sample data
func (h *MaintenanceHandler) Reset(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.maintenanceRepo.Reset(ctx); err != nil {
		return err
	}

	h.logger.WithContext(ctx).Warn("Database was reset to the sample data")
	h.emitter.Emit(ctx, events.DatabaseReset, "database", nil)

	return SeeOther(c, "/")
}
