package planning

import (
	"sort"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComputeOverdueAlerts reports, for every client, the whole days between its
// most recent visit and asOf. Visits are matched to clients by identifier;
// visits dated after asOf are ignored. No threshold is applied.
func ComputeOverdueAlerts(clients []domain.Client, visits []domain.Visit, asOf time.Time) []domain.ClientAlert {
	last := make(map[primitive.ObjectID]time.Time)
	asOfDay := dateOf(asOf)
	for _, v := range visits {
		if v.ClientID.IsZero() || daysBetween(v.VisitedAt, asOfDay) < 0 {
			continue
		}
		if prev, ok := last[v.ClientID]; !ok || v.VisitedAt.After(prev) {
			last[v.ClientID] = v.VisitedAt
		}
	}

	alerts := make([]domain.ClientAlert, 0, len(clients))
	for _, c := range clients {
		a := domain.ClientAlert{
			ClientID:   c.ID,
			ClientName: c.Name,
			ClientKind: c.Kind,
			RepID:      c.RepID,
			RegionID:   c.RegionID,
		}
		if at, ok := last[c.ID]; ok {
			days := daysBetween(at, asOf)
			a.DaysSinceLastVisit = &days
		}
		alerts = append(alerts, a)
	}
	return alerts
}

// FilterOverdue keeps never-visited clients and those not seen for at least
// thresholdDays, most overdue first (never-visited ahead of everything).
func FilterOverdue(alerts []domain.ClientAlert, thresholdDays int) []domain.ClientAlert {
	out := make([]domain.ClientAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.DaysSinceLastVisit == nil || *a.DaysSinceLastVisit >= thresholdDays {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DaysSinceLastVisit, out[j].DaysSinceLastVisit
		switch {
		case di == nil && dj == nil:
			return out[i].ClientName < out[j].ClientName
		case di == nil:
			return true
		case dj == nil:
			return false
		case *di != *dj:
			return *di > *dj
		}
		return out[i].ClientName < out[j].ClientName
	})
	return out
}

// VisitFilter selects the visits an aggregate counts. A nil filter counts all.
type VisitFilter func(domain.Visit) bool

// KindFilter selects visits to one kind of client.
func KindFilter(kind domain.ClientKind) VisitFilter {
	return func(v domain.Visit) bool { return v.ClientKind == kind }
}

// monthToDate returns visits dated from the first of asOf's month through asOf,
// both ends inclusive, that pass filter.
func monthToDate(visits []domain.Visit, asOf time.Time, filter VisitFilter) []domain.Visit {
	y, m, _ := asOf.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, asOf.Location())
	var out []domain.Visit
	for _, v := range visits {
		if daysBetween(start, v.VisitedAt.In(asOf.Location())) < 0 || daysBetween(v.VisitedAt, asOf) < 0 {
			continue
		}
		if filter != nil && !filter(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// visitTarget groups visits by client identifier. Legacy records without one
// fall back to the display name.
func visitTarget(v domain.Visit) string {
	if !v.ClientID.IsZero() {
		return v.ClientID.Hex()
	}
	return "name:" + v.ClientName
}

// ComputeMonthlyVisitFrequency counts, among month-to-date visits matching
// filter, how many targets were seen once, twice, and three or more times.
func ComputeMonthlyVisitFrequency(visits []domain.Visit, asOf time.Time, filter VisitFilter) domain.VisitFrequency {
	counts := make(map[string]int)
	for _, v := range monthToDate(visits, asOf, filter) {
		counts[visitTarget(v)]++
	}
	var f domain.VisitFrequency
	for _, n := range counts {
		switch {
		case n == 1:
			f.Freq1++
		case n == 2:
			f.Freq2++
		default:
			f.Freq3++
		}
	}
	return f
}

// ComputeWorkingDayRate is the number of month-to-date visits divided by the
// number of distinct days on which at least one of them happened; 0 with no visits.
func ComputeWorkingDayRate(visits []domain.Visit, asOf time.Time) float64 {
	mtd := monthToDate(visits, asOf, nil)
	if len(mtd) == 0 {
		return 0
	}
	days := make(map[time.Time]struct{})
	for _, v := range mtd {
		days[dateOf(v.VisitedAt.In(asOf.Location()))] = struct{}{}
	}
	return float64(len(mtd)) / float64(len(days))
}
