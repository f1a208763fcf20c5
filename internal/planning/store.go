package planning

import (
	"fmt"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStore is the editable working copy of one representative's weekly plan.
// It is independent of the persisted plan until the caller saves a Snapshot.
// Mutations are all-or-nothing: a rejected call leaves the store untouched.
//
// A PlanStore is meant for a single editing session and is not safe for
// concurrent use.
type PlanStore struct {
	week WeekConfig
	days map[time.Weekday]*domain.DayAssignment
}

// NewPlanStore starts an editing session from days, which is copied.
func NewPlanStore(week WeekConfig, days map[time.Weekday]*domain.DayAssignment) *PlanStore {
	s := &PlanStore{week: week, days: make(map[time.Weekday]*domain.DayAssignment, 7)}
	for d, a := range days {
		if a == nil || !domain.ValidWeekday(d) {
			continue
		}
		ids := make([]primitive.ObjectID, len(a.ClientIDs))
		copy(ids, a.ClientIDs)
		s.days[d] = &domain.DayAssignment{RegionID: a.RegionID, ClientIDs: ids}
	}
	return s
}

func mustWeekday(day time.Weekday) {
	if !domain.ValidWeekday(day) {
		panic(fmt.Sprintf("planning: weekday %d out of range", day))
	}
}

// SetDayRegion assigns regionID to day. A zero regionID turns the day into a
// rest day. Switching to a different region drops the day's clients; setting
// the region it already has keeps them.
func (s *PlanStore) SetDayRegion(day time.Weekday, regionID primitive.ObjectID) {
	mustWeekday(day)
	if regionID.IsZero() {
		delete(s.days, day)
		return
	}
	cur := s.days[day]
	if cur != nil && cur.RegionID == regionID {
		return
	}
	s.days[day] = &domain.DayAssignment{RegionID: regionID, ClientIDs: []primitive.ObjectID{}}
}

// AddClientToDay appends doc to day's visit list. It refuses, without changing
// anything, a doctor already planned on another day, a doctor outside the day's
// region, and a doctor with no region on a day that has none. A day with no
// assignment yet is seeded with the doctor's own region. Adding a doctor that
// is already on that same day is a no-op.
func (s *PlanStore) AddClientToDay(day time.Weekday, doc domain.Doctor) error {
	mustWeekday(day)
	id := doc.ID()
	for d, a := range s.days {
		if d != day && a.HasClient(id) {
			return violationError(Violation{Kind: ViolationDuplicateClient, Day: day, ClientID: id})
		}
	}

	cur := s.days[day]
	if cur == nil {
		if doc.RegionID().IsZero() {
			return violationError(Violation{Kind: ViolationRegionUnknown, Day: day, ClientID: id})
		}
		s.days[day] = &domain.DayAssignment{RegionID: doc.RegionID(), ClientIDs: []primitive.ObjectID{id}}
		return nil
	}
	if cur.HasClient(id) {
		return nil
	}
	if doc.RegionID() != cur.RegionID {
		return violationError(Violation{Kind: ViolationRegionMismatch, Day: day, ClientID: id})
	}
	cur.ClientIDs = append(cur.ClientIDs, id)
	return nil
}

// RemoveClientFromDay drops clientID from day. Absent clients are ignored.
func (s *PlanStore) RemoveClientFromDay(day time.Weekday, clientID primitive.ObjectID) {
	mustWeekday(day)
	cur := s.days[day]
	if cur == nil {
		return
	}
	for i, c := range cur.ClientIDs {
		if c == clientID {
			cur.ClientIDs = append(cur.ClientIDs[:i:i], cur.ClientIDs[i+1:]...)
			return
		}
	}
}

// Day returns a copy of day's assignment, or nil for a rest day.
func (s *PlanStore) Day(day time.Weekday) *domain.DayAssignment {
	mustWeekday(day)
	a := s.days[day]
	if a == nil {
		return nil
	}
	ids := make([]primitive.ObjectID, len(a.ClientIDs))
	copy(ids, a.ClientIDs)
	return &domain.DayAssignment{RegionID: a.RegionID, ClientIDs: ids}
}

// Snapshot returns the plan as a map with exactly the seven work-week days as
// keys; unassigned days map to nil.
func (s *PlanStore) Snapshot() map[time.Weekday]*domain.DayAssignment {
	out := make(map[time.Weekday]*domain.DayAssignment, 7)
	for _, d := range s.week.Days() {
		out[d] = s.Day(d)
	}
	return out
}
