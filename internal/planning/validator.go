package planning

import (
	"errors"
	"sort"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientLookup resolves a client by identifier.
type ClientLookup func(id primitive.ObjectID) (domain.Client, bool)

// IndexClients builds a ClientLookup over an already-fetched client list.
func IndexClients(clients []domain.Client) ClientLookup {
	byID := make(map[primitive.ObjectID]domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return func(id primitive.ObjectID) (domain.Client, bool) {
		c, ok := byID[id]
		return c, ok
	}
}

// Validate checks a plan snapshot against the plan invariants and returns every
// violation, ordered by day then position. A nil lookup skips the checks that
// need client data (region match, doctor-only).
//
// PlanStore keeps these invariants on its own; Validate is for snapshots that
// arrive from elsewhere (storage, request bodies).
func Validate(days map[time.Weekday]*domain.DayAssignment, lookup ClientLookup) []Violation {
	keys := make([]time.Weekday, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var out []Violation
	seen := make(map[primitive.ObjectID]time.Weekday)
	for _, day := range keys {
		a := days[day]
		if !domain.ValidWeekday(day) {
			out = append(out, Violation{Kind: ViolationUnknownDay, Day: day})
			continue
		}
		if a == nil {
			continue
		}
		for _, id := range a.ClientIDs {
			if _, dup := seen[id]; dup {
				out = append(out, Violation{Kind: ViolationDuplicateClient, Day: day, ClientID: id})
				continue
			}
			seen[id] = day

			if lookup == nil {
				continue
			}
			c, ok := lookup(id)
			switch {
			case !ok:
				out = append(out, Violation{Kind: ViolationUnknownClient, Day: day, ClientID: id})
			case c.Kind != domain.ClientDoctor:
				out = append(out, Violation{Kind: ViolationNotDoctor, Day: day, ClientID: id})
			case c.RegionID != a.RegionID:
				out = append(out, Violation{Kind: ViolationRegionMismatch, Day: day, ClientID: id})
			}
		}
	}
	return out
}

// ValidatePlan is Validate folded into an error: nil, or a *ValidationError.
func ValidatePlan(days map[time.Weekday]*domain.DayAssignment, lookup ClientLookup) error {
	if vs := Validate(days, lookup); len(vs) > 0 {
		return violationError(vs...)
	}
	return nil
}

// Replay rebuilds days through a fresh PlanStore, so a snapshot received from
// outside gets the same treatment as interactive edits. Days are replayed in
// work-week order and clients in list order; every refused step becomes a
// violation. The returned store holds whatever was accepted.
func Replay(week WeekConfig, days map[time.Weekday]*domain.DayAssignment, lookup ClientLookup) (*PlanStore, []Violation) {
	store := NewPlanStore(week, nil)
	var out []Violation
	for d := range days {
		if !domain.ValidWeekday(d) {
			out = append(out, Violation{Kind: ViolationUnknownDay, Day: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })

	for _, day := range week.Days() {
		a := days[day]
		if a == nil {
			continue
		}
		store.SetDayRegion(day, a.RegionID)
		for _, id := range a.ClientIDs {
			c, ok := lookup(id)
			if !ok {
				out = append(out, Violation{Kind: ViolationUnknownClient, Day: day, ClientID: id})
				continue
			}
			doc, ok := c.AsDoctor()
			if !ok {
				out = append(out, Violation{Kind: ViolationNotDoctor, Day: day, ClientID: id})
				continue
			}
			if store.Day(day).HasClient(id) {
				out = append(out, Violation{Kind: ViolationDuplicateClient, Day: day, ClientID: id})
				continue
			}
			var ve *ValidationError
			if err := store.AddClientToDay(day, doc); errors.As(err, &ve) {
				out = append(out, ve.Violations...)
			}
		}
	}
	return store, out
}
