package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/events"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// ActivityService records complaint events into the activity feed.
type ActivityService struct {
	dispatcher events.Dispatcher
	stream     repository.ActivityStream
	logger     *zap.Logger
}

// NewActivityService creates the service. A nil stream only logs events.
func NewActivityService(dispatcher events.Dispatcher, stream repository.ActivityStream, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		stream:     stream,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventComplaintSubmitted, a.handleComplaintSubmitted)
	a.dispatcher.Subscribe(events.EventComplaintStatusChanged, a.handleComplaintStatusChanged)
	a.dispatcher.Subscribe(events.EventComplaintRemoved, a.handleComplaintRemoved)
}

// Latest returns the newest feed entries first.
func (a *ActivityService) Latest(ctx context.Context, caller domain.Principal, count int64) ([]domain.ActivityEntry, error) {
	switch caller.(type) {
	case domain.Admin:
	case domain.Anonymous:
		return nil, apperrors.NewUnauthorized("authentication required")
	default:
		return nil, apperrors.NewForbidden("activity feed requires an administrator")
	}
	if a.stream == nil {
		return []domain.ActivityEntry{}, nil
	}
	if count <= 0 || count > 200 {
		count = 50
	}
	entries, err := a.stream.Latest(ctx, count)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (a *ActivityService) handleComplaintSubmitted(ctx context.Context, event events.Event) error {
	a.logger.Info("ComplaintSubmitted", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	entry := entryFor(event)
	if p, ok := event.Payload.(events.ComplaintSubmittedPayload); ok {
		entry.Ward = p.Ward
		entry.Detail = fmt.Sprintf("%s: %s", p.Category, p.Title)
	}
	return a.append(ctx, entry)
}

func (a *ActivityService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	a.logger.Info("ComplaintStatusChanged", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	entry := entryFor(event)
	if p, ok := event.Payload.(events.ComplaintStatusChangedPayload); ok {
		entry.Ward = p.Ward
		entry.Detail = fmt.Sprintf("%s -> %s", p.OldStatus, p.NewStatus)
	}
	return a.append(ctx, entry)
}

func (a *ActivityService) handleComplaintRemoved(ctx context.Context, event events.Event) error {
	a.logger.Info("ComplaintRemoved", zap.String("complaint_id", event.ComplaintID))
	entry := entryFor(event)
	if p, ok := event.Payload.(events.ComplaintRemovedPayload); ok {
		entry.Ward = p.Ward
	}
	return a.append(ctx, entry)
}

func (a *ActivityService) append(ctx context.Context, entry domain.ActivityEntry) error {
	if a.stream == nil {
		return nil
	}
	if _, err := a.stream.Append(ctx, entry); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func entryFor(event events.Event) domain.ActivityEntry {
	entry := domain.ActivityEntry{
		Type:        string(event.Type),
		ComplaintID: event.ComplaintID,
		ActorRole:   event.Actor.Role,
		OccurredAt:  event.Timestamp,
	}
	if event.Actor.UserID != nil {
		entry.ActorID = *event.Actor.UserID
	}
	return entry
}
