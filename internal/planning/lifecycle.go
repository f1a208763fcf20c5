package planning

import (
	"fmt"
	"time"

	"fieldsales/visit-planner/internal/domain"
)

// Trigger is an action requested on a plan's status.
type Trigger string

const (
	TriggerSubmit  Trigger = "submit"
	TriggerApprove Trigger = "approve"
	TriggerReject  Trigger = "reject"
	TriggerRevoke  Trigger = "revoke"
)

type transition struct {
	from  []domain.PlanStatus
	roles []domain.Role
	to    domain.PlanStatus
}

// Submitting while pending replaces the content under review.
var transitions = map[Trigger]transition{
	TriggerSubmit: {
		from:  []domain.PlanStatus{domain.PlanDraft, domain.PlanRejected, domain.PlanPending},
		roles: []domain.Role{domain.RoleRepresentative},
		to:    domain.PlanPending,
	},
	TriggerApprove: {
		from:  []domain.PlanStatus{domain.PlanPending},
		roles: []domain.Role{domain.RoleSupervisor, domain.RoleManager},
		to:    domain.PlanApproved,
	},
	TriggerReject: {
		from:  []domain.PlanStatus{domain.PlanPending},
		roles: []domain.Role{domain.RoleSupervisor, domain.RoleManager},
		to:    domain.PlanRejected,
	},
	TriggerRevoke: {
		from:  []domain.PlanStatus{domain.PlanApproved},
		roles: []domain.Role{domain.RoleManager},
		to:    domain.PlanDraft,
	},
}

// Transition returns the status reached by applying trigger to a plan in
// status from on behalf of role. The role is checked before the state, so an
// unauthorized caller always gets ErrPermissionDenied; an authorized caller in
// the wrong state gets ErrIllegalTransition. Nothing is ever downgraded.
func Transition(from domain.PlanStatus, role domain.Role, trigger Trigger) (domain.PlanStatus, error) {
	if err := CanTrigger(role, trigger); err != nil {
		return from, err
	}
	t := transitions[trigger]
	if !containsStatus(t.from, from) {
		return from, fmt.Errorf("%w: cannot %s a %s plan", ErrIllegalTransition, trigger, from)
	}
	return t.to, nil
}

// CanTrigger checks only the role half of Transition, so callers can refuse an
// unauthorized request before loading the plan.
func CanTrigger(role domain.Role, trigger Trigger) error {
	t, ok := transitions[trigger]
	if !ok {
		return fmt.Errorf("%w: unknown trigger %q", ErrIllegalTransition, trigger)
	}
	if !containsRole(t.roles, role) {
		return fmt.Errorf("%w: %s may not %s a plan", ErrPermissionDenied, role, trigger)
	}
	return nil
}

// ReopenForEdit is the status a representative edits from. An approved plan
// reopens as a draft during the planning window; every other status is kept.
func ReopenForEdit(week WeekConfig, status domain.PlanStatus, now time.Time) domain.PlanStatus {
	if status == domain.PlanApproved && week.IsPlanningWindow(now) {
		return domain.PlanDraft
	}
	return status
}

// Editable reports whether the owning representative may change a plan in
// status: anything but approved, and approved plans too during the planning window.
func Editable(week WeekConfig, status domain.PlanStatus, now time.Time) bool {
	return status != domain.PlanApproved || week.IsPlanningWindow(now)
}

// RollOver moves plan onto the week starting at weekStart. A plan that has no
// week yet is simply stamped. A plan for an earlier week is stale: the copy
// returned is a draft for the new week with the old content kept as a template
// and the last archive still referenced. The second result reports whether a
// stale plan was rolled over.
func RollOver(plan *domain.WeeklyPlan, weekStart time.Time) (*domain.WeeklyPlan, bool) {
	out := plan.Clone()
	if out.WeekStart.IsZero() {
		out.WeekStart = weekStart
		return out, false
	}
	if !out.WeekStart.Before(weekStart) {
		return out, false
	}
	out.WeekStart = weekStart
	out.Status = domain.PlanDraft
	out.SubmittedAt = nil
	out.ReviewedAt = nil
	out.ReviewedBy = nil
	return out, true
}

func containsRole(rs []domain.Role, r domain.Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func containsStatus(ss []domain.PlanStatus, s domain.PlanStatus) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
