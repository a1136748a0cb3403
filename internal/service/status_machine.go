package service

import (
	"fmt"

	"github.com/wardwatch/grievance-service/internal/domain"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

type transitionRule struct {
	to        domain.ComplaintStatus
	adminOnly bool
}

// allowedTransitions lists the status moves per source status. Reopening a
// closed complaint is reserved for super administrators.
var allowedTransitions = map[domain.ComplaintStatus][]transitionRule{
	domain.StatusPending: {
		{to: domain.StatusInProgress},
		{to: domain.StatusResolved},
		{to: domain.StatusRejected},
	},
	domain.StatusInProgress: {
		{to: domain.StatusResolved},
		{to: domain.StatusRejected},
		{to: domain.StatusPending},
	},
	domain.StatusResolved: {
		{to: domain.StatusPending, adminOnly: true},
	},
	domain.StatusRejected: {
		{to: domain.StatusPending, adminOnly: true},
	},
}

// checkTransition returns nil when role may move a complaint from one status to another.
func checkTransition(role domain.Role, from, to domain.ComplaintStatus) error {
	for _, rule := range allowedTransitions[from] {
		if rule.to != to {
			continue
		}
		if rule.adminOnly && role != domain.RoleAdmin {
			return apperrors.NewIllegalTransition(
				fmt.Sprintf("only an administrator can reopen a %s complaint", from),
				map[string]any{"from": from, "to": to})
		}
		return nil
	}
	return apperrors.NewIllegalTransition(
		fmt.Sprintf("cannot move complaint from %s to %s", from, to),
		map[string]any{"from": from, "to": to})
}
