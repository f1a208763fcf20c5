package mongo

import (
	"testing"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanDocRoundTripKeepsDays(t *testing.T) {
	rep := primitive.NewObjectID()
	north := primitive.NewObjectID()
	d1, d2 := primitive.NewObjectID(), primitive.NewObjectID()
	week := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	plan := domain.NewWeeklyPlan(rep)
	plan.WeekStart = week
	plan.Status = domain.PlanPending
	plan.Version = 3
	plan.Days[time.Saturday] = &domain.DayAssignment{RegionID: north, ClientIDs: []primitive.ObjectID{d1, d2}}
	plan.Days[time.Monday] = nil

	doc := toPlanDoc(plan)
	require.Len(t, doc.Days, 1)
	assert.Contains(t, doc.Days, "saturday")

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded planDoc
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	got := fromPlanDoc(decoded)
	assert.Equal(t, rep, got.RepID)
	assert.Equal(t, domain.PlanPending, got.Status)
	assert.Equal(t, int64(3), got.Version)
	assert.True(t, week.Equal(got.WeekStart))
	require.Contains(t, got.Days, time.Saturday)
	assert.Equal(t, north, got.Days[time.Saturday].RegionID)
	assert.Equal(t, []primitive.ObjectID{d1, d2}, got.Days[time.Saturday].ClientIDs)
	assert.NotContains(t, got.Days, time.Monday)
}

func TestFromPlanDocIgnoresUnknownDayKeys(t *testing.T) {
	doc := planDoc{
		RepID: primitive.NewObjectID(),
		Days: map[string]dayDoc{
			"Friday":  {RegionID: primitive.NewObjectID()},
			"someday": {RegionID: primitive.NewObjectID()},
		},
		Status: domain.PlanDraft,
	}
	got := fromPlanDoc(doc)
	assert.Len(t, got.Days, 1)
	assert.Contains(t, got.Days, time.Friday)
}

func TestToPlanDocCopiesClientSlices(t *testing.T) {
	id := primitive.NewObjectID()
	plan := domain.NewWeeklyPlan(primitive.NewObjectID())
	plan.Days[time.Sunday] = &domain.DayAssignment{ClientIDs: []primitive.ObjectID{id}}

	doc := toPlanDoc(plan)
	plan.Days[time.Sunday].ClientIDs[0] = primitive.NilObjectID
	assert.Equal(t, id, doc.Days["sunday"].ClientIDs[0])
}

func TestSubmissionIsStoredPending(t *testing.T) {
	plan := domain.NewWeeklyPlan(primitive.NewObjectID())
	plan.Status = domain.PlanApproved
	plan.ArchiveKey = "plans/a.json"
	now := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

	doc := submissionDoc(plan, 4, now)
	assert.Equal(t, domain.PlanPending, doc.Status)
	assert.Equal(t, int64(5), doc.Version)
	assert.Equal(t, now, doc.UpdatedAt)
	assert.Equal(t, domain.PlanApproved, plan.Status, "input untouched")

	set, ok := submissionUpdate(doc)["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, domain.PlanPending, set["status"])
	assert.Equal(t, "plans/a.json", set["archiveKey"])
	assert.NotContains(t, set, "createdAt")
	assert.NotContains(t, set, "_id")
}
