package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// stubPlanService records the last call and returns canned results.
type stubPlanService struct {
	view    *service.PlanView
	pending []domain.WeeklyPlan
	url     string
	err     error

	gotActor   domain.Actor
	gotRepID   primitive.ObjectID
	gotDays    map[time.Weekday]*domain.DayAssignment
	gotVersion int64
	gotCall    string
}

func (s *stubPlanService) record(call string, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
	s.gotCall, s.gotActor, s.gotRepID, s.gotVersion = call, actor, repID, version
	return s.view, s.err
}

func (s *stubPlanService) GetPlan(_ context.Context, actor domain.Actor, repID primitive.ObjectID) (*service.PlanView, error) {
	return s.record("get", actor, repID, 0)
}

func (s *stubPlanService) SubmitPlan(_ context.Context, actor domain.Actor, repID primitive.ObjectID, days map[time.Weekday]*domain.DayAssignment, version int64) (*service.PlanView, error) {
	s.gotDays = days
	return s.record("submit", actor, repID, version)
}

func (s *stubPlanService) Approve(_ context.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
	return s.record("approve", actor, repID, version)
}

func (s *stubPlanService) Reject(_ context.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
	return s.record("reject", actor, repID, version)
}

func (s *stubPlanService) Revoke(_ context.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
	return s.record("revoke", actor, repID, version)
}

func (s *stubPlanService) ListPending(_ context.Context, actor domain.Actor) ([]domain.WeeklyPlan, error) {
	s.gotCall, s.gotActor = "pending", actor
	return s.pending, s.err
}

func (s *stubPlanService) ArchiveURL(_ context.Context, actor domain.Actor, repID primitive.ObjectID) (string, error) {
	s.gotCall, s.gotActor, s.gotRepID = "archive", actor, repID
	return s.url, s.err
}

type stubReportService struct {
	alerts []domain.ClientAlert
	freq   domain.VisitFrequency
	rate   float64
	err    error

	gotQuery       service.ReportQuery
	gotThresholded bool
	gotKind        domain.ClientKind
}

func (s *stubReportService) OverdueAlerts(_ context.Context, _ domain.Actor, q service.ReportQuery, thresholded bool) ([]domain.ClientAlert, error) {
	s.gotQuery, s.gotThresholded = q, thresholded
	return s.alerts, s.err
}

func (s *stubReportService) Frequency(_ context.Context, _ domain.Actor, q service.ReportQuery, kind domain.ClientKind) (domain.VisitFrequency, error) {
	s.gotQuery, s.gotKind = q, kind
	return s.freq, s.err
}

func (s *stubReportService) WorkingDayRate(_ context.Context, _ domain.Actor, q service.ReportQuery) (float64, error) {
	s.gotQuery = q
	return s.rate, s.err
}

type stubVisitService struct {
	visit  *domain.Visit
	visits []domain.Visit
	err    error

	gotClientID  primitive.ObjectID
	gotVisitedAt time.Time
	gotSince     time.Time
}

func (s *stubVisitService) LogVisit(_ context.Context, _ domain.Actor, clientID primitive.ObjectID, visitedAt time.Time, _ string) (*domain.Visit, error) {
	s.gotClientID, s.gotVisitedAt = clientID, visitedAt
	return s.visit, s.err
}

func (s *stubVisitService) ListVisits(_ context.Context, _ domain.Actor, _ primitive.ObjectID, since time.Time) ([]domain.Visit, error) {
	s.gotSince = since
	return s.visits, s.err
}

type stubDirectoryService struct {
	regions []domain.Region
	client  *domain.Client
	err     error

	gotClient domain.Client
}

func (s *stubDirectoryService) CreateRegion(_ context.Context, _ domain.Actor, name string) (*domain.Region, error) {
	return &domain.Region{ID: primitive.NewObjectID(), Name: name}, s.err
}

func (s *stubDirectoryService) ListRegions(context.Context) ([]domain.Region, error) {
	return s.regions, s.err
}

func (s *stubDirectoryService) CreateClient(_ context.Context, _ domain.Actor, client domain.Client) (*domain.Client, error) {
	s.gotClient = client
	return s.client, s.err
}

func (s *stubDirectoryService) ListClientsForRep(context.Context, domain.Actor, primitive.ObjectID) ([]domain.Client, error) {
	return nil, s.err
}

type testServer struct {
	router    *gin.Engine
	plans     *stubPlanService
	reports   *stubReportService
	visits    *stubVisitService
	directory *stubDirectoryService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerIn(t, nil)
}

// newTestServerIn reads date-only query values in loc.
func newTestServerIn(t *testing.T, loc *time.Location) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		router:    gin.New(),
		plans:     &stubPlanService{},
		reports:   &stubReportService{},
		visits:    &stubVisitService{},
		directory: &stubDirectoryService{},
	}
	SetupRoutes(ts.router, testSecret, Services{
		Directory: ts.directory,
		Visits:    ts.visits,
		Plans:     ts.plans,
		Reports:   ts.reports,
		Location:  loc,
	}, zap.NewNop())
	return ts
}

func tokenFor(t *testing.T, id primitive.ObjectID, role domain.Role) string {
	t.Helper()
	token, err := service.SignToken(testSecret, id.Hex(), role, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends body (marshalled to JSON unless nil) with a bearer token when one is given.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(ts, req)
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func ptr[T any](v T) *T { return &v }
