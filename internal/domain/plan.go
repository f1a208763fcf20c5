// internal/domain/plan.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus type for the weekly plan lifecycle
type PlanStatus string

const (
	PlanDraft    PlanStatus = "draft"
	PlanPending  PlanStatus = "pending"  // Submitted by the representative, awaiting review
	PlanApproved PlanStatus = "approved" // Locked until revoked or the next planning window
	PlanRejected PlanStatus = "rejected" // Sent back; content kept so the rep can fix and resubmit
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanDraft, PlanPending, PlanApproved, PlanRejected:
		return true
	}
	return false
}

// DayAssignment is what a representative intends to do on one weekday:
// work one region and see the listed doctors, in order.
type DayAssignment struct {
	RegionID  primitive.ObjectID   `json:"regionId"`
	ClientIDs []primitive.ObjectID `json:"clientIds"`
}

// HasClient reports whether id is already on this day. A nil day has no clients.
func (d *DayAssignment) HasClient(id primitive.ObjectID) bool {
	if d == nil {
		return false
	}
	for _, c := range d.ClientIDs {
		if c == id {
			return true
		}
	}
	return false
}

func (d *DayAssignment) clone() *DayAssignment {
	if d == nil {
		return nil
	}
	ids := make([]primitive.ObjectID, len(d.ClientIDs))
	copy(ids, d.ClientIDs)
	return &DayAssignment{RegionID: d.RegionID, ClientIDs: ids}
}

// WeeklyPlan is the single plan a representative owns at a time.
// A nil entry in Days is an explicit rest/unplanned day.
type WeeklyPlan struct {
	ID         primitive.ObjectID
	RepID      primitive.ObjectID
	Days       map[time.Weekday]*DayAssignment
	Status     PlanStatus
	WeekStart  time.Time
	Version    int64  // 0 means never persisted
	ArchiveKey string // latest approval's archive, kept until a newer approval replaces it

	SubmittedAt *time.Time
	ReviewedAt  *time.Time
	ReviewedBy  *primitive.ObjectID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWeeklyPlan is the initial state for a representative with no stored plan.
func NewWeeklyPlan(repID primitive.ObjectID) *WeeklyPlan {
	return &WeeklyPlan{
		RepID:  repID,
		Days:   map[time.Weekday]*DayAssignment{},
		Status: PlanDraft,
	}
}

// Clone returns a deep copy so callers can edit without touching the original.
func (p *WeeklyPlan) Clone() *WeeklyPlan {
	cp := *p
	cp.Days = make(map[time.Weekday]*DayAssignment, len(p.Days))
	for d, a := range p.Days {
		cp.Days[d] = a.clone()
	}
	return &cp
}

// AllWeekdays lists the seven calendar weekdays in time.Weekday order.
var AllWeekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// WeekdayKey is the lowercase name used for weekdays in storage and on the wire.
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekday accepts a weekday name in any case ("Saturday", "saturday").
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllWeekdays {
		if WeekdayKey(d) == s {
			return d, true
		}
	}
	return 0, false
}

// ValidWeekday reports whether d is one of the seven calendar weekdays.
func ValidWeekday(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}
