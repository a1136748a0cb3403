package worker

import (
	"github.com/wardwatch/grievance-service/internal/events"
	"github.com/wardwatch/grievance-service/internal/service"
)

// StartActivityWorker registers the activity feed and stats invalidation handlers.
func StartActivityWorker(dispatcher events.Dispatcher, activity *service.ActivityService, stats *service.StatsService) {
	if activity != nil {
		activity.RegisterHandlers()
	}
	if stats != nil {
		stats.RegisterHandlers(dispatcher)
	}
}
