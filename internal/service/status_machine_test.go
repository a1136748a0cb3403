package service

import (
	"testing"

	"github.com/wardwatch/grievance-service/internal/domain"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

func TestCheckTransition(t *testing.T) {
	for _, from := range domain.ComplaintStatuses {
		for _, to := range domain.ComplaintStatuses {
			for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleWardAdmin} {
				err := checkTransition(role, from, to)
				want := expectedTransition(role, from, to)
				if (err == nil) != want {
					t.Fatalf("%s: %s -> %s: allowed=%v, err=%v", role, from, to, want, err)
				}
				if err != nil && !apperrors.HasCode(err, apperrors.CodeIllegalTransition) {
					t.Fatalf("expected illegal transition code, got %v", err)
				}
			}
		}
	}
}

func expectedTransition(role domain.Role, from, to domain.ComplaintStatus) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusInProgress || to == domain.StatusResolved || to == domain.StatusRejected
	case domain.StatusInProgress:
		return to == domain.StatusResolved || to == domain.StatusRejected || to == domain.StatusPending
	case domain.StatusResolved, domain.StatusRejected:
		return to == domain.StatusPending && role == domain.RoleAdmin
	}
	return false
}
