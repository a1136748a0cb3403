package domain

import "time"

// ComplaintStats summarizes the complaints visible to a dashboard.
type ComplaintStats struct {
	Total       int
	Active      int
	ByStatus    map[ComplaintStatus]int
	ByCategory  map[ComplaintCategory]int
	ByWard      map[string]int
	GeneratedAt time.Time
}

// NewComplaintStats returns zeroed counters with every status and category present.
func NewComplaintStats(now time.Time) *ComplaintStats {
	stats := &ComplaintStats{
		ByStatus:    make(map[ComplaintStatus]int, len(ComplaintStatuses)),
		ByCategory:  make(map[ComplaintCategory]int, len(ComplaintCategories)),
		ByWard:      make(map[string]int),
		GeneratedAt: now,
	}
	for _, s := range ComplaintStatuses {
		stats.ByStatus[s] = 0
	}
	for _, c := range ComplaintCategories {
		stats.ByCategory[c] = 0
	}
	return stats
}

// Add counts c under its resolved ward. Orphaned complaints are grouped under "".
func (s *ComplaintStats) Add(c *Complaint) {
	s.Total++
	if c.Active() {
		s.Active++
	}
	s.ByStatus[c.Status]++
	s.ByCategory[c.Category]++
	ward, _ := c.ResolvedWard()
	s.ByWard[ward]++
}

// ActivityEntry is one record of the complaint activity feed.
type ActivityEntry struct {
	ID          string
	Type        string
	ComplaintID string
	ActorID     string
	ActorRole   Role
	Ward        string
	Detail      string
	OccurredAt  time.Time
}
