package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// MaintenanceRepository runs whole database operations
type MaintenanceRepository struct {
	*Repository
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(ds *database.DataSource, logger ectologger.Logger) *MaintenanceRepository {
	return &MaintenanceRepository{
		Repository: NewRepository(ds, logger),
	}
}

// Reset truncates every table and reloads the sample data
func (r *MaintenanceRepository) Reset(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "MaintenanceRepository.Reset")
	defer span.End()

	if _, err := r.ds.Call(ctx, procReset); err != nil {
		return database.ToHTTPError(err, "An error occurred while resetting the database.")
	}

	r.logger.WithContext(ctx).Info("Database has been reset")
	return nil
}
