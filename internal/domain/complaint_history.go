package domain

import "time"

// ComplaintHistory is an immutable audit entry for a status change.
type ComplaintHistory struct {
	ID          string
	ComplaintID string
	ChangedByID string
	ChangedBy   Role
	OldStatus   ComplaintStatus
	NewStatus   ComplaintStatus
	CreatedAt   time.Time
}
