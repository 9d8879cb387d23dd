// Package services provides application-level orchestration services
package services

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bleonardo0/cobi-sub002/internal/domain/analytics"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/security"
	"github.com/google/uuid"
)

const keyStripes = 64

// keyedMutex serializes operations per key without a global lock.
// Keys hash onto a fixed set of stripes; distinct keys on the same
// stripe contend, which is acceptable, but the same key always
// serializes.
type keyedMutex struct {
	stripes [keyStripes]sync.Mutex
}

func (m *keyedMutex) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	mu := &m.stripes[h.Sum32()%keyStripes]
	mu.Lock()
	return mu
}

// TrackingService ingests raw interaction events from client viewers.
// Every write is reconciled against existing state so out-of-order and
// duplicate client calls degrade gracefully instead of erroring.
type TrackingService struct {
	sessions    analytics.SessionRepository
	menuViews   analytics.MenuViewRepository
	modelViews  analytics.ModelViewRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	viewLocks    keyedMutex // keyed on sessionID|modelID
	sessionLocks keyedMutex // keyed on sessionID
	orphanEnds   atomic.Int64

	now func() time.Time
}

// NewTrackingService creates a new tracking service
func NewTrackingService(
	sessions analytics.SessionRepository,
	menuViews analytics.MenuViewRepository,
	modelViews analytics.ModelViewRepository,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *TrackingService {
	return &TrackingService{
		sessions:    sessions,
		menuViews:   menuViews,
		modelViews:  modelViews,
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// OrphanedEndCount returns how many end signals arrived with no
// matching start since boot. Operational metric only, never an API error.
func (s *TrackingService) OrphanedEndCount() int64 {
	return s.orphanEnds.Load()
}

func resolveDeviceType(deviceType analytics.DeviceType, userAgent string) analytics.DeviceType {
	if deviceType.IsValid() {
		return deviceType
	}
	return analytics.InferDeviceType(userAgent)
}

// StartSession registers a new browsing session. A blank sessionID gets
// a server-generated id; a blank or unknown deviceType is inferred from
// the user agent. Calling it twice with the same id is a no-op.
func (s *TrackingService) StartSession(restaurantID, sessionID string, deviceType analytics.DeviceType, userAgent string) (*analytics.Session, error) {
	marker := s.perfTracker.StartOperation("track:session_start", restaurantID)
	defer marker.Complete()

	if err := analytics.RequireField("restaurantId", restaurantID); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session := &analytics.Session{
		ID:           sessionID,
		RestaurantID: restaurantID,
		DeviceType:   resolveDeviceType(deviceType, userAgent),
		UserAgent:    userAgent,
		StartTime:    s.now().UTC(),
	}

	mu := s.sessionLocks.lock(sessionID)
	defer mu.Unlock()

	if err := s.sessions.Create(session); err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Tracking().Debug("Session started",
		"sessionId", sessionID,
		"restaurantId", restaurantID,
		"deviceType", session.DeviceType)
	marker.SetSuccess(true)
	return session, nil
}

// RecordMenuView stores a menu page open event. A sessionID that was
// never started is tolerated; the event still counts.
func (s *TrackingService) RecordMenuView(restaurantID, sessionID string, deviceType analytics.DeviceType, userAgent, pageURL, referrer string) (*analytics.MenuView, error) {
	marker := s.perfTracker.StartOperation("track:menu_view", restaurantID)
	defer marker.Complete()

	if err := analytics.RequireField("restaurantId", restaurantID); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if err := analytics.RequireField("sessionId", sessionID); err != nil {
		marker.SetError(err)
		return nil, err
	}

	view := &analytics.MenuView{
		ID:           security.GenerateULID(),
		RestaurantID: restaurantID,
		SessionID:    sessionID,
		DeviceType:   resolveDeviceType(deviceType, userAgent),
		PageURL:      pageURL,
		Referrer:     referrer,
		Timestamp:    s.now().UTC(),
	}

	if err := s.menuViews.Store(view); err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Tracking().Debug("Menu view recorded",
		"menuViewId", view.ID,
		"sessionId", sessionID,
		"restaurantId", restaurantID)
	marker.SetSuccess(true)
	return view, nil
}

// StartModelView opens a model presentation. When the same session
// already has an open view of the same model, that view is first closed
// with its elapsed seconds so at most one view per (model, session)
// pair is ever open.
func (s *TrackingService) StartModelView(modelID, restaurantID, sessionID string, interactionType analytics.InteractionType, deviceType analytics.DeviceType) (*analytics.ModelView, error) {
	marker := s.perfTracker.StartOperation("track:model_view_start", restaurantID)
	defer marker.Complete()

	if err := s.requireViewKey(modelID, restaurantID, sessionID); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if interactionType == "" {
		interactionType = analytics.InteractionView
	}
	if !interactionType.IsValid() {
		err := &analytics.InvalidArgumentError{Field: "interactionType"}
		marker.SetError(err)
		return nil, err
	}
	if !deviceType.IsValid() {
		deviceType = analytics.DeviceDesktop
	}

	now := s.now().UTC()

	mu := s.viewLocks.lock(sessionID + "|" + modelID)
	defer mu.Unlock()

	open, err := s.modelViews.FindOpen(modelID, sessionID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	if open != nil {
		elapsed := int(now.Sub(open.Timestamp).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		if err := s.modelViews.Close(open.ID, elapsed, now); err != nil {
			marker.SetError(err)
			return nil, err
		}
		s.logger.Tracking().Debug("Reconciled open view before new start",
			"modelViewId", open.ID,
			"modelId", modelID,
			"sessionId", sessionID,
			"elapsedSeconds", elapsed)
	}

	view := &analytics.ModelView{
		ID:              security.GenerateULID(),
		ModelID:         modelID,
		RestaurantID:    restaurantID,
		SessionID:       sessionID,
		InteractionType: interactionType,
		DeviceType:      deviceType,
		Timestamp:       now,
	}
	if err := s.modelViews.Store(view); err != nil {
		marker.SetError(err)
		return nil, err
	}

	if err := s.sessions.AppendModelViewed(sessionID, modelID); err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	return view, nil
}

// EndModelView closes the most recent view for the key with the
// client-reported duration. Repeats patch the same record. An end with
// no matching start still produces a closed record; that case bumps the
// orphaned-end counter and is never an error.
func (s *TrackingService) EndModelView(modelID, restaurantID, sessionID string, viewDuration int) (*analytics.ModelView, error) {
	marker := s.perfTracker.StartOperation("track:model_view_end", restaurantID)
	defer marker.Complete()

	if err := s.requireViewKey(modelID, restaurantID, sessionID); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if viewDuration < 0 {
		viewDuration = 0
	}

	now := s.now().UTC()

	mu := s.viewLocks.lock(sessionID + "|" + modelID)
	defer mu.Unlock()

	recent, err := s.modelViews.FindMostRecent(modelID, restaurantID, sessionID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	if recent != nil {
		if err := s.modelViews.Close(recent.ID, viewDuration, now); err != nil {
			marker.SetError(err)
			return nil, err
		}
		recent.ViewDuration = &viewDuration
		recent.EndedAt = &now
		marker.SetSuccess(true)
		return recent, nil
	}

	// End without a start: record a closed view so the signal is kept.
	startedAt := now.Add(-time.Duration(viewDuration) * time.Second)
	view := &analytics.ModelView{
		ID:              security.GenerateULID(),
		ModelID:         modelID,
		RestaurantID:    restaurantID,
		SessionID:       sessionID,
		InteractionType: analytics.InteractionView,
		DeviceType:      analytics.DeviceDesktop,
		Timestamp:       startedAt,
		ViewDuration:    &viewDuration,
		EndedAt:         &now,
	}
	if err := s.modelViews.Store(view); err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.orphanEnds.Add(1)
	s.logger.Tracking().Warn("Model view end arrived without matching start",
		"modelId", modelID,
		"sessionId", sessionID,
		"restaurantId", restaurantID,
		"orphanedEnds", s.orphanEnds.Load())

	marker.SetSuccess(true)
	return view, nil
}

// EndSession closes a session with its client-reported total duration.
// Idempotent; an unknown session id degrades to a closed session row.
func (s *TrackingService) EndSession(sessionID, restaurantID string, duration int) (*analytics.Session, error) {
	marker := s.perfTracker.StartOperation("track:session_end", restaurantID)
	defer marker.Complete()

	if err := analytics.RequireField("sessionId", sessionID); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if err := analytics.RequireField("restaurantId", restaurantID); err != nil {
		marker.SetError(err)
		return nil, err
	}
	if duration < 0 {
		duration = 0
	}

	mu := s.sessionLocks.lock(sessionID)
	defer mu.Unlock()

	session, err := s.sessions.End(sessionID, restaurantID, duration, s.now().UTC())
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Tracking().Debug("Session ended",
		"sessionId", sessionID,
		"restaurantId", restaurantID,
		"totalDuration", duration)
	marker.SetSuccess(true)
	return session, nil
}

func (s *TrackingService) requireViewKey(modelID, restaurantID, sessionID string) error {
	if err := analytics.RequireField("modelId", modelID); err != nil {
		return err
	}
	if err := analytics.RequireField("restaurantId", restaurantID); err != nil {
		return err
	}
	return analytics.RequireField("sessionId", sessionID)
}
