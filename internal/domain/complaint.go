package domain

import "time"

// ComplaintCategory is the closed set of issue kinds.
type ComplaintCategory string

const (
	CategoryGarbage        ComplaintCategory = "Garbage"
	CategoryPotholes       ComplaintCategory = "Potholes"
	CategoryDrainage       ComplaintCategory = "Drainage"
	CategoryStreetlights   ComplaintCategory = "Streetlights"
	CategoryPublicNuisance ComplaintCategory = "Public Nuisance"
	CategoryWaterSupply    ComplaintCategory = "Water Supply"
	CategorySewage         ComplaintCategory = "Sewage"
	CategoryOther          ComplaintCategory = "Other"
)

// ComplaintCategories lists every category in display order.
var ComplaintCategories = []ComplaintCategory{
	CategoryGarbage,
	CategoryPotholes,
	CategoryDrainage,
	CategoryStreetlights,
	CategoryPublicNuisance,
	CategoryWaterSupply,
	CategorySewage,
	CategoryOther,
}

func (c ComplaintCategory) Valid() bool {
	for _, known := range ComplaintCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ComplaintStatus enumerates lifecycle stages.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusRejected   ComplaintStatus = "Rejected"
)

// ComplaintStatuses lists every status in workflow order.
var ComplaintStatuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

func (s ComplaintStatus) Valid() bool {
	for _, known := range ComplaintStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "Low"
	PriorityMedium   ComplaintPriority = "Medium"
	PriorityHigh     ComplaintPriority = "High"
	PriorityCritical ComplaintPriority = "Critical"
)

func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Complaint is the aggregate for a civic grievance.
type Complaint struct {
	ID               string
	Title            string
	Description      string
	Category         ComplaintCategory
	Location         string
	Coordinates      *Coordinates
	FormattedAddress string
	Status           ComplaintStatus
	Priority         ComplaintPriority
	ImageRef         *string
	OwnerID          *string
	IsPublic         bool
	SubmitterName    string
	SubmitterEmail   string
	SubmitterPhone   string
	// Ward is the ward captured when the complaint was filed.
	Ward       string
	CreatedAt  time.Time
	ResolvedAt *time.Time

	// Owner is populated on reads; nil when there is no owner or the
	// referenced account no longer exists.
	Owner *ComplaintOwner
}

// ComplaintOwner is the identity-store projection joined onto a complaint.
type ComplaintOwner struct {
	ID    string
	Name  string
	Email string
	Ward  string
	Phone string
}

// ResolvedWard returns the ward the complaint belongs to: the owner's current
// ward for owned complaints, the captured ward for anonymous ones. ok is false
// when an owner reference no longer resolves.
func (c *Complaint) ResolvedWard() (ward string, ok bool) {
	if c.OwnerID != nil {
		if c.Owner == nil {
			return "", false
		}
		return c.Owner.Ward, true
	}
	return c.Ward, true
}

// DisplayName is the submitter name for anonymous complaints, the owner name otherwise.
func (c *Complaint) DisplayName() string {
	if c.Owner != nil {
		return c.Owner.Name
	}
	return c.SubmitterName
}

// Active reports whether the complaint still needs attention on dashboards.
func (c *Complaint) Active() bool {
	return c.Status != StatusResolved
}
