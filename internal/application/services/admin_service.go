package services

import (
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
)

// AdminService serves the operator surface: destructive resets and
// operational metrics.
type AdminService struct {
	sessions    analytics.SessionRepository
	menuViews   analytics.MenuViewRepository
	modelViews  analytics.ModelViewRepository
	tracking    *TrackingService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAdminService creates a new admin service
func NewAdminService(
	sessions analytics.SessionRepository,
	menuViews analytics.MenuViewRepository,
	modelViews analytics.ModelViewRepository,
	tracking *TrackingService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AdminService {
	return &AdminService{
		sessions:    sessions,
		menuViews:   menuViews,
		modelViews:  modelViews,
		tracking:    tracking,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Reset deletes every stored event for a restaurant, or everything when
// restaurantID is empty. Irreversible; guarded by the operator JWT at
// the HTTP layer.
func (s *AdminService) Reset(restaurantID string) error {
	marker := s.perfTracker.StartOperation("admin:reset", restaurantID)
	defer marker.Complete()

	if restaurantID == "" {
		if err := s.modelViews.DeleteAll(); err != nil {
			marker.SetError(err)
			return err
		}
		if err := s.menuViews.DeleteAll(); err != nil {
			marker.SetError(err)
			return err
		}
		if err := s.sessions.DeleteAll(); err != nil {
			marker.SetError(err)
			return err
		}
		s.logger.System().Warn("All analytics data reset")
		marker.SetSuccess(true)
		return nil
	}

	if err := s.modelViews.DeleteByRestaurant(restaurantID); err != nil {
		marker.SetError(err)
		return err
	}
	if err := s.menuViews.DeleteByRestaurant(restaurantID); err != nil {
		marker.SetError(err)
		return err
	}
	if err := s.sessions.DeleteByRestaurant(restaurantID); err != nil {
		marker.SetError(err)
		return err
	}

	s.logger.System().Warn("Restaurant analytics data reset", "restaurantId", restaurantID)
	marker.SetSuccess(true)
	return nil
}

// MetricsReport is the admin metrics payload.
type MetricsReport struct {
	OrphanedEnds int64                          `json:"orphanedEnds"`
	Uptime       string                         `json:"uptime"`
	Operations   []performance.OperationSummary `json:"operations"`
	GeneratedAt  time.Time                      `json:"generatedAt"`
}

// Metrics returns the operational counters and performance summary.
func (s *AdminService) Metrics() *MetricsReport {
	return &MetricsReport{
		OrphanedEnds: s.tracking.OrphanedEndCount(),
		Uptime:       s.perfTracker.Uptime().String(),
		Operations:   s.perfTracker.Summary(),
		GeneratedAt:  time.Now().UTC(),
	}
}
