package dto

import (
	"time"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// CoordinatesPayload is a lat/lng pair as sent by clients.
type CoordinatesPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateComplaintRequest payload. Multipart requests carry coordinates as a
// JSON encoded string field.
type CreateComplaintRequest struct {
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Category         domain.ComplaintCategory `json:"category"`
	Location         string                   `json:"location"`
	Coordinates      *CoordinatesPayload      `json:"coordinates"`
	FormattedAddress string                   `json:"formattedAddress"`
	Priority         domain.ComplaintPriority `json:"priority"`
	Name             string                   `json:"name"`
	Email            string                   `json:"email"`
	Phone            string                   `json:"phone"`
	Ward             string                   `json:"ward"`
}

// UpdateComplaintStatusRequest payload.
type UpdateComplaintStatusRequest struct {
	Status string `json:"status"`
}

// ComplaintOwnerResponse is the account projection joined onto a complaint.
type ComplaintOwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Ward  string `json:"ward"`
	Phone string `json:"phone,omitempty"`
}

// ComplaintResponse is the complaint representation returned to clients.
type ComplaintResponse struct {
	ID               string                   `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Category         domain.ComplaintCategory `json:"category"`
	Location         string                   `json:"location"`
	Coordinates      *CoordinatesPayload      `json:"coordinates,omitempty"`
	FormattedAddress string                   `json:"formattedAddress,omitempty"`
	Status           domain.ComplaintStatus   `json:"status"`
	Priority         domain.ComplaintPriority `json:"priority"`
	Image            *string                  `json:"image,omitempty"`
	IsPublic         bool                     `json:"isPublic"`
	Name             string                   `json:"name,omitempty"`
	Email            string                   `json:"email,omitempty"`
	Phone            string                   `json:"phone,omitempty"`
	Ward             string                   `json:"ward"`
	User             *ComplaintOwnerResponse  `json:"user"`
	CreatedAt        time.Time                `json:"createdAt"`
	ResolvedAt       *time.Time               `json:"resolvedAt"`
}

// ComplaintHistoryResponse is one status change audit entry.
type ComplaintHistoryResponse struct {
	ID          string                 `json:"id"`
	ComplaintID string                 `json:"complaintId"`
	ChangedByID string                 `json:"changedById"`
	ChangedBy   domain.Role            `json:"changedBy"`
	OldStatus   domain.ComplaintStatus `json:"oldStatus"`
	NewStatus   domain.ComplaintStatus `json:"newStatus"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// ComplaintStatsResponse summarizes complaints for dashboards.
type ComplaintStatsResponse struct {
	Total       int                              `json:"total"`
	Active      int                              `json:"active"`
	ByStatus    map[domain.ComplaintStatus]int   `json:"byStatus"`
	ByCategory  map[domain.ComplaintCategory]int `json:"byCategory"`
	ByWard      map[string]int                   `json:"byWard"`
	GeneratedAt time.Time                        `json:"generatedAt"`
}

// ActivityEntryResponse is one entry of the complaint activity feed.
type ActivityEntryResponse struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	ComplaintID string      `json:"complaintId"`
	ActorID     string      `json:"actorId,omitempty"`
	ActorRole   domain.Role `json:"actorRole,omitempty"`
	Ward        string      `json:"ward,omitempty"`
	Detail      string      `json:"detail,omitempty"`
	OccurredAt  time.Time   `json:"occurredAt"`
}
