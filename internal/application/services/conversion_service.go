package services

import (
	"sort"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	"github.com/bleonardo0/cobi-sub002/pkg/config"
)

// ConversionService joins per-model view volume with order data. When
// the order collaborator has nothing for a model, a deterministic
// saturating curve synthesizes a rate from view volume; those results
// carry Simulated=true so consumers never mistake them for measured
// conversion.
type ConversionService struct {
	modelViews  analytics.ModelViewRepository
	orders      analytics.OrderSource
	catalog     analytics.ModelCatalog
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewConversionService creates a new conversion service
func NewConversionService(
	modelViews analytics.ModelViewRepository,
	orders analytics.OrderSource,
	catalog analytics.ModelCatalog,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ConversionService {
	return &ConversionService{
		modelViews:  modelViews,
		orders:      orders,
		catalog:     catalog,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetConversionMetrics returns per-model conversion estimates for a
// restaurant, ranked by rate descending with modelID ascending as the
// tiebreaker.
func (s *ConversionService) GetConversionMetrics(restaurantID string) ([]analytics.ConversionMetrics, error) {
	marker := s.perfTracker.StartOperation("analytics:conversion", restaurantID)
	defer marker.Complete()

	if err := analytics.RequireField("restaurantId", restaurantID); err != nil {
		marker.SetError(err)
		return nil, err
	}

	views, err := s.modelViews.FindInRange(restaurantID, nil)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	perModel := make(map[string]int)
	for _, view := range views {
		if view.ModelID == "" {
			continue
		}
		perModel[view.ModelID]++
	}

	result := make([]analytics.ConversionMetrics, 0, len(perModel))
	for modelID, viewCount := range perModel {
		entry := analytics.ConversionMetrics{
			ModelID:    modelID,
			TotalViews: viewCount,
		}

		count, ok, err := s.orders.OrderCount(restaurantID, modelID)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		if ok {
			entry.OrderCount = count
			entry.ConversionRate = float64(count) / float64(viewCount) * 100
		} else {
			entry.ConversionRate = simulatedRate(viewCount)
			entry.Simulated = true
		}

		if info, err := s.catalog.Lookup(modelID); err == nil && info != nil {
			entry.Name = info.Name
		}

		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ConversionRate != result[j].ConversionRate {
			return result[i].ConversionRate > result[j].ConversionRate
		}
		return result[i].ModelID < result[j].ModelID
	})

	s.logger.Analytics().Debug("Conversion metrics computed",
		"restaurantId", restaurantID,
		"models", len(result))
	marker.SetSuccess(true)
	return result, nil
}

// simulatedRate maps view volume onto a saturating curve: it rises
// monotonically with views and approaches the configured ceiling with
// diminishing returns.
func simulatedRate(views int) float64 {
	v := float64(views)
	return config.ConversionCurveMaxRate * v / (v + config.ConversionCurveHalfView)
}
