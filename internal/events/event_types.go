package events

import (
	"time"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintRemoved       EventType = "complaint_removed"
)

// Actor encapsulates actor metadata for an event. Anonymous submitters carry no id.
type Actor struct {
	Role   domain.Role `json:"role,omitempty"`
	UserID *string     `json:"user_id,omitempty"`
}

// ActorFor describes the principal p.
func ActorFor(p domain.Principal) Actor {
	actor := Actor{Role: domain.PrincipalRole(p)}
	if id := domain.PrincipalID(p); id != "" {
		actor.UserID = &id
	}
	return actor
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Title    string                   `json:"title"`
	Category domain.ComplaintCategory `json:"category"`
	Priority domain.ComplaintPriority `json:"priority"`
	Ward     string                   `json:"ward"`
	Public   bool                     `json:"public"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Ward      string                 `json:"ward"`
}

// ComplaintRemovedPayload payload.
type ComplaintRemovedPayload struct {
	Ward string `json:"ward"`
}
