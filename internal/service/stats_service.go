package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/events"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

const allWardsScope = "all"

// StatsService computes dashboard counters and keeps them cached.
type StatsService struct {
	complaints repository.ComplaintRepository
	cache      repository.StatsCache
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsService builds the service. A nil cache computes stats on every call.
func NewStatsService(complaints repository.ComplaintRepository, cache repository.StatsCache, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{complaints: complaints, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Stats returns counters over every complaint for administrators and over
// their own ward for ward administrators.
func (s *StatsService) Stats(ctx context.Context, caller domain.Principal) (*domain.ComplaintStats, error) {
	switch p := caller.(type) {
	case domain.Admin:
		return s.cached(ctx, allWardsScope, func() (*domain.ComplaintStats, error) {
			return s.computeAll(ctx)
		})
	case domain.WardAdmin:
		return s.cached(ctx, wardScopeKey(p.Ward), func() (*domain.ComplaintStats, error) {
			return s.computeWard(ctx, p.Ward)
		})
	case domain.Anonymous:
		return nil, apperrors.NewUnauthorized("authentication required")
	default:
		return nil, apperrors.NewForbidden("dashboard stats require an administrator")
	}
}

// Refresh recomputes the all-wards stats and stores them.
func (s *StatsService) Refresh(ctx context.Context) error {
	stats, err := s.computeAll(ctx)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, allWardsScope, stats, s.ttl)
}

// RegisterHandlers drops cached stats whenever a complaint changes.
func (s *StatsService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || s.cache == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventComplaintSubmitted,
		events.EventComplaintStatusChanged,
		events.EventComplaintRemoved,
	} {
		dispatcher.Subscribe(eventType, s.handleComplaintChanged)
	}
}

func (s *StatsService) handleComplaintChanged(ctx context.Context, _ events.Event) error {
	return s.cache.Invalidate(ctx)
}

func (s *StatsService) cached(ctx context.Context, scope string, compute func() (*domain.ComplaintStats, error)) (*domain.ComplaintStats, error) {
	if s.cache != nil {
		stats, ok, err := s.cache.Get(ctx, scope)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.String("scope", scope), zap.Error(err))
		} else if ok {
			return stats, nil
		}
	}

	stats, err := compute()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, scope, stats, s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("scope", scope), zap.Error(err))
		}
	}
	return stats, nil
}

func (s *StatsService) computeAll(ctx context.Context) (*domain.ComplaintStats, error) {
	rows, err := s.complaints.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	return s.tally(rows), nil
}

func (s *StatsService) computeWard(ctx context.Context, ward string) (*domain.ComplaintStats, error) {
	rows, err := listInWard(ctx, s.complaints, ward, repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	return s.tally(rows), nil
}

func (s *StatsService) tally(rows []domain.Complaint) *domain.ComplaintStats {
	stats := domain.NewComplaintStats(s.now())
	for i := range rows {
		stats.Add(&rows[i])
	}
	return stats
}

func wardScopeKey(ward string) string {
	if token, ok := domain.WardToken(ward); ok {
		return "ward:" + token
	}
	return "ward:" + strings.ToLower(strings.TrimSpace(ward))
}
