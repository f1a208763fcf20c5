package service

import (
	"context"
	"testing"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLogVisit_DenormalizesClient(t *testing.T) {
	e := newReportEnv(t)
	v, err := e.visitsv.LogVisit(context.Background(), e.rep, e.pharmacy.ID, time.Time{}, "restock")
	require.NoError(t, err)

	assert.False(t, v.ID.IsZero())
	assert.Equal(t, e.rep.UserID, v.RepID)
	assert.Equal(t, "Pharmacy", v.ClientName)
	assert.Equal(t, domain.ClientPharmacy, v.ClientKind)
	assert.Equal(t, e.region, v.RegionID)
	assert.True(t, v.VisitedAt.Equal(reportNow))
}

func TestLogVisit_Refusals(t *testing.T) {
	e := newReportEnv(t)
	ctx := context.Background()

	_, err := e.visitsv.LogVisit(ctx, e.supervisor, e.seen.ID, time.Time{}, "")
	assert.ErrorIs(t, err, planning.ErrPermissionDenied)

	_, err = e.visitsv.LogVisit(ctx, e.otherRep, e.seen.ID, time.Time{}, "")
	assert.ErrorIs(t, err, planning.ErrPermissionDenied)

	_, err = e.visitsv.LogVisit(ctx, e.rep, primitive.NewObjectID(), time.Time{}, "")
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = e.visitsv.LogVisit(ctx, e.rep, e.seen.ID, reportNow.Add(time.Hour), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, e.visits.visits)
}

func TestListVisits(t *testing.T) {
	e := newReportEnv(t)
	ctx := context.Background()
	e.visit(e.seen, reportNow.AddDate(0, 0, -10))
	e.visit(e.seen, reportNow.AddDate(0, 0, -1))

	visits, err := e.visitsv.ListVisits(ctx, e.rep, e.rep.UserID, reportNow.AddDate(0, 0, -5))
	require.NoError(t, err)
	assert.Len(t, visits, 1)

	visits, err = e.visitsv.ListVisits(ctx, e.supervisor, e.rep.UserID, time.Time{})
	require.NoError(t, err)
	assert.Len(t, visits, 2)

	_, err = e.visitsv.ListVisits(ctx, e.otherRep, e.rep.UserID, time.Time{})
	assert.ErrorIs(t, err, planning.ErrPermissionDenied)
}
