package planning

import (
	"testing"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidate_CleanPlan(t *testing.T) {
	f := newFixture()
	x := f.doctor(t, "Dr. X", f.regionA)
	y := f.doctor(t, "Dr. Y", f.regionB)
	days := map[time.Weekday]*domain.DayAssignment{
		time.Saturday: {RegionID: f.regionA, ClientIDs: []primitive.ObjectID{x.ID()}},
		time.Sunday:   {RegionID: f.regionB, ClientIDs: []primitive.ObjectID{y.ID()}},
		time.Monday:   nil,
	}
	assert.Empty(t, Validate(days, IndexClients(f.clients)))
	assert.NoError(t, ValidatePlan(days, IndexClients(f.clients)))
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	f := newFixture()
	x := f.doctor(t, "Dr. X", f.regionA)
	y := f.doctor(t, "Dr. Y", f.regionB)
	ph := f.pharmacy("Corner Pharmacy", f.regionA)
	ghost := primitive.NewObjectID()

	days := map[time.Weekday]*domain.DayAssignment{
		time.Sunday:      {RegionID: f.regionA, ClientIDs: []primitive.ObjectID{x.ID(), y.ID()}},
		time.Monday:      {RegionID: f.regionA, ClientIDs: []primitive.ObjectID{x.ID(), ph.ID, ghost}},
		time.Weekday(9):  {RegionID: f.regionA},
	}
	got := Validate(days, IndexClients(f.clients))

	assert.Equal(t, []Violation{
		{Kind: ViolationRegionMismatch, Day: time.Sunday, ClientID: y.ID()},
		{Kind: ViolationDuplicateClient, Day: time.Monday, ClientID: x.ID()},
		{Kind: ViolationNotDoctor, Day: time.Monday, ClientID: ph.ID},
		{Kind: ViolationUnknownClient, Day: time.Monday, ClientID: ghost},
		{Kind: ViolationUnknownDay, Day: time.Weekday(9)},
	}, got)
}

func TestValidate_NilLookupChecksStructureOnly(t *testing.T) {
	f := newFixture()
	x := f.doctor(t, "Dr. X", f.regionA)
	days := map[time.Weekday]*domain.DayAssignment{
		time.Tuesday:   {RegionID: f.regionB, ClientIDs: []primitive.ObjectID{x.ID()}},
		time.Wednesday: {RegionID: f.regionB, ClientIDs: []primitive.ObjectID{x.ID()}},
	}
	got := Validate(days, nil)
	require.Len(t, got, 1)
	assert.Equal(t, ViolationDuplicateClient, got[0].Kind)
	assert.Equal(t, time.Wednesday, got[0].Day)
}

func TestValidatePlan_ErrorMatchesSentinels(t *testing.T) {
	f := newFixture()
	x := f.doctor(t, "Dr. X", f.regionA)
	days := map[time.Weekday]*domain.DayAssignment{
		time.Friday: {RegionID: f.regionB, ClientIDs: []primitive.ObjectID{x.ID()}},
	}
	err := ValidatePlan(days, IndexClients(f.clients))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrRegionMismatch)
	assert.NotErrorIs(t, err, ErrDuplicateClient)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Violations, 1)
	assert.Contains(t, err.Error(), string(ViolationRegionMismatch))
}

func TestReplay_AcceptsCleanSnapshot(t *testing.T) {
	f := newFixture()
	d1 := f.doctor(t, "Dr. One", f.regionA)
	d2 := f.doctor(t, "Dr. Two", f.regionA)
	d3 := f.doctor(t, "Dr. Three", f.regionB)
	days := map[time.Weekday]*domain.DayAssignment{
		time.Saturday: {RegionID: f.regionA, ClientIDs: []primitive.ObjectID{d1.ID(), d2.ID()}},
		time.Sunday:   {RegionID: f.regionB, ClientIDs: []primitive.ObjectID{d3.ID()}},
		time.Monday:   nil,
	}

	store, vs := Replay(DefaultWeekConfig(), days, IndexClients(f.clients))
	require.Empty(t, vs)
	snap := store.Snapshot()
	assert.Len(t, snap, 7)
	assert.Equal(t, days[time.Saturday], snap[time.Saturday])
	assert.Equal(t, days[time.Sunday], snap[time.Sunday])
	assert.Nil(t, snap[time.Monday])
}

func TestReplay_CollectsRefusedSteps(t *testing.T) {
	f := newFixture()
	x := f.doctor(t, "Dr. X", f.regionA)
	y := f.doctor(t, "Dr. Y", f.regionB)
	ph := f.pharmacy("Corner Pharmacy", f.regionA)
	ghost := primitive.NewObjectID()

	days := map[time.Weekday]*domain.DayAssignment{
		time.Saturday:   {RegionID: f.regionA, ClientIDs: []primitive.ObjectID{x.ID(), x.ID(), y.ID(), ph.ID, ghost}},
		time.Sunday:     {RegionID: f.regionB, ClientIDs: []primitive.ObjectID{x.ID()}},
		time.Weekday(8): {RegionID: f.regionA},
	}

	store, vs := Replay(DefaultWeekConfig(), days, IndexClients(f.clients))
	want := []Violation{
		{Kind: ViolationUnknownDay, Day: time.Weekday(8)},
		{Kind: ViolationDuplicateClient, Day: time.Saturday, ClientID: x.ID()},
		{Kind: ViolationRegionMismatch, Day: time.Saturday, ClientID: y.ID()},
		{Kind: ViolationNotDoctor, Day: time.Saturday, ClientID: ph.ID},
		{Kind: ViolationUnknownClient, Day: time.Saturday, ClientID: ghost},
		{Kind: ViolationDuplicateClient, Day: time.Sunday, ClientID: x.ID()},
	}
	assert.Equal(t, want, vs)

	// Whatever was accepted still satisfies the invariants
	assert.Empty(t, Validate(store.Snapshot(), IndexClients(f.clients)))
	assert.Equal(t, []primitive.ObjectID{x.ID()}, store.Day(time.Saturday).ClientIDs)
}

func TestReplay_InfersRegionForRegionlessDay(t *testing.T) {
	f := newFixture()
	x := f.doctor(t, "Dr. X", f.regionB)
	days := map[time.Weekday]*domain.DayAssignment{
		time.Tuesday: {ClientIDs: []primitive.ObjectID{x.ID()}},
	}
	store, vs := Replay(DefaultWeekConfig(), days, IndexClients(f.clients))
	require.Empty(t, vs)
	assert.Equal(t, f.regionB, store.Day(time.Tuesday).RegionID)
}
