package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/wardwatch/grievance-service/internal/api/dto"
	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/domain"
)

// ActivityFeed reads the complaint activity stream.
type ActivityFeed interface {
	Latest(ctx context.Context, caller domain.Principal, count int64) ([]domain.ActivityEntry, error)
}

// AdminHandler serves administrator-only views.
type AdminHandler struct {
	activity ActivityFeed
}

// NewAdminHandler constructs handler.
func NewAdminHandler(activity ActivityFeed) *AdminHandler {
	return &AdminHandler{activity: activity}
}

// Activity GET /admin/activity.
func (h *AdminHandler) Activity(c *fiber.Ctx) error {
	entries, err := h.activity.Latest(c.UserContext(), auth.PrincipalFromContext(c), int64(parseInt(c.Query("count"), 0)))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ActivityEntryResponse{
			ID:          entry.ID,
			Type:        entry.Type,
			ComplaintID: entry.ComplaintID,
			ActorID:     entry.ActorID,
			ActorRole:   entry.ActorRole,
			Ward:        entry.Ward,
			Detail:      entry.Detail,
			OccurredAt:  entry.OccurredAt,
		})
	}
	return c.JSON(fiber.Map{"success": true, "count": len(items), "activity": items})
}
