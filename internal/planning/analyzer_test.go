package planning

import (
	"testing"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var asOf = time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)

func visit(c domain.Client, at time.Time) domain.Visit {
	return domain.Visit{
		ID:         primitive.NewObjectID(),
		RepID:      c.RepID,
		ClientID:   c.ID,
		ClientName: c.Name,
		ClientKind: c.Kind,
		VisitedAt:  at,
	}
}

func TestComputeOverdueAlerts(t *testing.T) {
	f := newFixture()
	never := f.doctor(t, "Dr. Never", f.regionA).Client()
	today := f.doctor(t, "Dr. Today", f.regionA).Client()
	older := f.pharmacy("Old Pharmacy", f.regionB)

	visits := []domain.Visit{
		visit(today, asOf.Add(-10*time.Hour)),
		visit(today, asOf.AddDate(0, 0, -3)),
		visit(older, asOf.AddDate(0, 0, -40)),
		visit(older, asOf.AddDate(0, 0, -12)),
		visit(older, asOf.AddDate(0, 0, 2)), // future, ignored
	}
	alerts := ComputeOverdueAlerts([]domain.Client{never, today, older}, visits, asOf)
	require.Len(t, alerts, 3)

	assert.Equal(t, never.ID, alerts[0].ClientID)
	assert.Nil(t, alerts[0].DaysSinceLastVisit)

	require.NotNil(t, alerts[1].DaysSinceLastVisit)
	assert.Equal(t, 0, *alerts[1].DaysSinceLastVisit)

	require.NotNil(t, alerts[2].DaysSinceLastVisit)
	assert.Equal(t, 12, *alerts[2].DaysSinceLastVisit)
	assert.Equal(t, domain.ClientPharmacy, alerts[2].ClientKind)
	assert.Equal(t, f.regionB, alerts[2].RegionID)
}

func TestComputeOverdueAlerts_SameNameDifferentClients(t *testing.T) {
	f := newFixture()
	a := f.doctor(t, "Dr. Smith", f.regionA).Client()
	b := f.doctor(t, "Dr. Smith", f.regionB).Client()

	alerts := ComputeOverdueAlerts([]domain.Client{a, b}, []domain.Visit{visit(a, asOf)}, asOf)
	require.NotNil(t, alerts[0].DaysSinceLastVisit)
	assert.Nil(t, alerts[1].DaysSinceLastVisit, "a namesake's visit must not count")
}

func TestFilterOverdue(t *testing.T) {
	n := func(v int) *int { return &v }
	alerts := []domain.ClientAlert{
		{ClientName: "b", DaysSinceLastVisit: n(31)},
		{ClientName: "fresh", DaysSinceLastVisit: n(2)},
		{ClientName: "z-never", DaysSinceLastVisit: nil},
		{ClientName: "a", DaysSinceLastVisit: n(45)},
		{ClientName: "edge", DaysSinceLastVisit: n(30)},
		{ClientName: "a-never", DaysSinceLastVisit: nil},
	}
	got := FilterOverdue(alerts, 30)
	names := make([]string, len(got))
	for i, a := range got {
		names[i] = a.ClientName
	}
	assert.Equal(t, []string{"a-never", "z-never", "a", "b", "edge"}, names)
}

func TestComputeMonthlyVisitFrequency(t *testing.T) {
	f := newFixture()
	once := f.doctor(t, "Once", f.regionA).Client()
	twice := f.doctor(t, "Twice", f.regionA).Client()
	often := f.doctor(t, "Often", f.regionA).Client()
	ph := f.pharmacy("Pharmacy", f.regionA)

	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	visits := []domain.Visit{
		visit(once, monthStart),                     // first of month, included
		visit(twice, asOf),                          // exactly asOf, included
		visit(twice, asOf.AddDate(0, 0, -5)),
		visit(often, asOf.AddDate(0, 0, -1)),
		visit(often, asOf.AddDate(0, 0, -2)),
		visit(often, asOf.AddDate(0, 0, -3)),
		visit(often, asOf.AddDate(0, 0, -4)),
		visit(once, monthStart.Add(-time.Minute)),   // previous month
		visit(once, asOf.AddDate(0, 0, 1)),          // after asOf
		visit(ph, asOf),
		visit(ph, asOf),
	}

	got := ComputeMonthlyVisitFrequency(visits, asOf, KindFilter(domain.ClientDoctor))
	assert.Equal(t, domain.VisitFrequency{Freq1: 1, Freq2: 1, Freq3: 1}, got)

	all := ComputeMonthlyVisitFrequency(visits, asOf, nil)
	assert.Equal(t, domain.VisitFrequency{Freq1: 1, Freq2: 2, Freq3: 1}, all)
}

func TestComputeMonthlyVisitFrequency_LegacyNameFallback(t *testing.T) {
	legacy := func(name string) domain.Visit {
		return domain.Visit{ClientName: name, ClientKind: domain.ClientDoctor, VisitedAt: asOf}
	}
	got := ComputeMonthlyVisitFrequency([]domain.Visit{legacy("X"), legacy("X"), legacy("Y")}, asOf, nil)
	assert.Equal(t, domain.VisitFrequency{Freq1: 1, Freq2: 1}, got)
}

func TestComputeWorkingDayRate(t *testing.T) {
	f := newFixture()
	c := f.doctor(t, "Dr. X", f.regionA).Client()

	assert.Zero(t, ComputeWorkingDayRate(nil, asOf))

	visits := []domain.Visit{
		visit(c, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)),
		visit(c, time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)),
		visit(c, time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)),
		visit(c, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)),
		visit(c, time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)),
	}
	assert.InDelta(t, 2.0, ComputeWorkingDayRate(visits, asOf), 1e-9)
}
