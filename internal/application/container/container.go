// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/bleonardo0/cobi-sub002/internal/application/services"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	persistence "github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/persistence/database"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateless singletons except TrackingService,
	// which carries the orphaned-end counter and key locks)
	TrackingService   *services.TrackingService
	AnalyticsService  *services.AnalyticsService
	TrendService      *services.TrendService
	ConversionService *services.ConversionService
	AuthService       *services.AuthService
	AdminService      *services.AdminService

	// Infrastructure
	DB          *database.DB
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(db *database.DB, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	sessionRepo := persistence.NewSQLSessionRepository(db, logger)
	menuViewRepo := persistence.NewSQLMenuViewRepository(db, logger)
	modelViewRepo := persistence.NewSQLModelViewRepository(db, logger)
	catalog := persistence.NewSQLModelCatalog(db, logger)
	orderSource := persistence.NewSQLOrderSource(db, logger)

	trackingService := services.NewTrackingService(sessionRepo, menuViewRepo, modelViewRepo, logger, perfTracker)

	return &Container{
		TrackingService:   trackingService,
		AnalyticsService:  services.NewAnalyticsService(modelViewRepo, catalog, logger, perfTracker),
		TrendService:      services.NewTrendService(modelViewRepo, catalog, logger, perfTracker),
		ConversionService: services.NewConversionService(modelViewRepo, orderSource, catalog, logger, perfTracker),
		AuthService:       services.NewAuthService(logger, perfTracker),
		AdminService:      services.NewAdminService(sessionRepo, menuViewRepo, modelViewRepo, trackingService, logger, perfTracker),

		DB:          db,
		Logger:      logger,
		PerfTracker: perfTracker,
	}
}
