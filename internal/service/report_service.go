package service

import (
	"context"
	"time"

	"fieldsales/visit-planner/internal/cache"
	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"
	"fieldsales/visit-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReportQuery selects the data a report covers. A zero RepID means every
// representative; a zero AsOf means now.
type ReportQuery struct {
	RepID primitive.ObjectID
	AsOf  time.Time
}

// ReportService serves the dashboard aggregates computed from visit history.
type ReportService interface {
	// OverdueAlerts lists every client with its days since last visit, or only
	// the alert-worthy ones (never visited, or past the threshold) when
	// thresholded is true.
	OverdueAlerts(ctx context.Context, actor domain.Actor, q ReportQuery, thresholded bool) ([]domain.ClientAlert, error)
	// Frequency buckets this month's visits per client. An empty kind counts all visits.
	Frequency(ctx context.Context, actor domain.Actor, q ReportQuery, kind domain.ClientKind) (domain.VisitFrequency, error)
	WorkingDayRate(ctx context.Context, actor domain.Actor, q ReportQuery) (float64, error)
}

type reportService struct {
	clientRepo repository.ClientRepository
	visitRepo  repository.VisitRepository
	reports    *cache.ReportCache
	threshold  int
	loc        *time.Location
	now        Clock
	log        *zap.Logger
}

// NewReportService wires the reports; reports may be nil to disable caching.
func NewReportService(
	clientRepo repository.ClientRepository,
	visitRepo repository.VisitRepository,
	reports *cache.ReportCache,
	thresholdDays int,
	loc *time.Location,
	now Clock,
	log *zap.Logger,
) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		clientRepo: clientRepo,
		visitRepo:  visitRepo,
		reports:    reports,
		threshold:  thresholdDays,
		loc:        loc,
		now:        now,
		log:        log,
	}
}

// scope resolves who the report is about. Representatives always get their
// own data; asking for someone else's is refused.
func (s *reportService) scope(actor domain.Actor, q ReportQuery) (ReportQuery, string, error) {
	if actor.Role == domain.RoleRepresentative && q.RepID.IsZero() {
		q.RepID = actor.UserID
	}
	if !q.RepID.IsZero() {
		if err := authorizeRepAccess(actor, q.RepID); err != nil {
			return q, "", err
		}
	} else if err := requireReviewer(actor); err != nil {
		return q, "", err
	}

	if q.AsOf.IsZero() {
		q.AsOf = s.now()
	}
	q.AsOf = q.AsOf.In(s.loc)

	if q.RepID.IsZero() {
		return q, cache.ScopeAll, nil
	}
	return q, q.RepID.Hex(), nil
}

func (s *reportService) clients(ctx context.Context, q ReportQuery) ([]domain.Client, error) {
	var (
		clients []domain.Client
		err     error
	)
	if q.RepID.IsZero() {
		clients, err = s.clientRepo.GetAll(ctx)
	} else {
		clients, err = s.clientRepo.GetByRepID(ctx, q.RepID)
	}
	if err != nil {
		return nil, persistenceError("load clients", err)
	}
	return clients, nil
}

func (s *reportService) visits(ctx context.Context, q ReportQuery, since time.Time) ([]domain.Visit, error) {
	var (
		visits []domain.Visit
		err    error
	)
	if q.RepID.IsZero() {
		visits, err = s.visitRepo.GetAll(ctx, since)
	} else {
		visits, err = s.visitRepo.GetByRepID(ctx, q.RepID, since)
	}
	if err != nil {
		return nil, persistenceError("load visits", err)
	}
	return visits, nil
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func (s *reportService) OverdueAlerts(ctx context.Context, actor domain.Actor, q ReportQuery, thresholded bool) ([]domain.ClientAlert, error) {
	q, scope, err := s.scope(actor, q)
	if err != nil {
		return nil, err
	}
	threshold := -1
	if thresholded {
		threshold = s.threshold
	}
	variant := cache.Variant(q.AsOf, threshold)

	var alerts []domain.ClientAlert
	if s.reports.Get(ctx, "overdue", scope, variant, &alerts) {
		return alerts, nil
	}

	clients, err := s.clients(ctx, q)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits(ctx, q, time.Time{})
	if err != nil {
		return nil, err
	}
	alerts = planning.ComputeOverdueAlerts(clients, visits, q.AsOf)
	if thresholded {
		alerts = planning.FilterOverdue(alerts, s.threshold)
	}
	s.reports.Put(ctx, "overdue", scope, variant, alerts)
	s.log.Debug("overdue report computed", zap.String("scope", scope), zap.Int("alerts", len(alerts)))
	return alerts, nil
}

func (s *reportService) Frequency(ctx context.Context, actor domain.Actor, q ReportQuery, kind domain.ClientKind) (domain.VisitFrequency, error) {
	var freq domain.VisitFrequency
	if kind != "" && !kind.Valid() {
		return freq, invalidInput("unknown client kind %q", kind)
	}
	q, scope, err := s.scope(actor, q)
	if err != nil {
		return freq, err
	}
	variant := cache.Variant(q.AsOf, 0) + ":" + string(kind)
	if s.reports.Get(ctx, "frequency", scope, variant, &freq) {
		return freq, nil
	}

	visits, err := s.visits(ctx, q, monthStart(q.AsOf))
	if err != nil {
		return freq, err
	}
	var filter planning.VisitFilter
	if kind != "" {
		filter = planning.KindFilter(kind)
	}
	freq = planning.ComputeMonthlyVisitFrequency(visits, q.AsOf, filter)
	s.reports.Put(ctx, "frequency", scope, variant, freq)
	return freq, nil
}

func (s *reportService) WorkingDayRate(ctx context.Context, actor domain.Actor, q ReportQuery) (float64, error) {
	q, scope, err := s.scope(actor, q)
	if err != nil {
		return 0, err
	}
	variant := cache.Variant(q.AsOf, 0)
	var rate float64
	if s.reports.Get(ctx, "working-day-rate", scope, variant, &rate) {
		return rate, nil
	}

	visits, err := s.visits(ctx, q, monthStart(q.AsOf))
	if err != nil {
		return 0, err
	}
	rate = planning.ComputeWorkingDayRate(visits, q.AsOf)
	s.reports.Put(ctx, "working-day-rate", scope, variant, rate)
	return rate, nil
}
