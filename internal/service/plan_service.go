package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"
	"fieldsales/visit-planner/internal/repository"
	"fieldsales/visit-planner/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PlanView is a plan as seen at one instant: the stored plan rolled onto the
// week being planned or viewed, plus the week window flags.
type PlanView struct {
	Plan           *domain.WeeklyPlan
	WeekStart      time.Time
	PlanningWindow bool
	// Editable is whether the owning representative may submit changes now.
	Editable bool
}

// PlanService runs the weekly plan workflow: representatives submit, reviewers
// approve or reject, managers revoke. Every operation checks the caller's role
// before touching storage.
type PlanService interface {
	GetPlan(ctx context.Context, actor domain.Actor, repID primitive.ObjectID) (*PlanView, error)
	SubmitPlan(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, days map[time.Weekday]*domain.DayAssignment, expectedVersion int64) (*PlanView, error)
	Approve(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, expectedVersion int64) (*PlanView, error)
	Reject(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, expectedVersion int64) (*PlanView, error)
	Revoke(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, expectedVersion int64) (*PlanView, error)
	ListPending(ctx context.Context, actor domain.Actor) ([]domain.WeeklyPlan, error)
	ArchiveURL(ctx context.Context, actor domain.Actor, repID primitive.ObjectID) (string, error)
}

type planService struct {
	planRepo   repository.WeeklyPlanRepository
	clientRepo repository.ClientRepository
	archive    storage.ObjectStorage
	week       planning.WeekConfig
	loc        *time.Location
	now        Clock
	log        *zap.Logger
}

// NewPlanService wires the plan workflow. archive may be nil, in which case
// approved plans are not archived.
func NewPlanService(
	planRepo repository.WeeklyPlanRepository,
	clientRepo repository.ClientRepository,
	archive storage.ObjectStorage,
	week planning.WeekConfig,
	loc *time.Location,
	now Clock,
	log *zap.Logger,
) PlanService {
	if loc == nil {
		loc = time.UTC
	}
	return &planService{
		planRepo:   planRepo,
		clientRepo: clientRepo,
		archive:    archive,
		week:       week,
		loc:        loc,
		now:        now,
		log:        log,
	}
}

// load fetches the rep's plan, or the initial empty draft when none is stored.
func (s *planService) load(ctx context.Context, repID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	plan, err := s.planRepo.GetByRepID(ctx, repID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewWeeklyPlan(repID), nil
		}
		return nil, persistenceError("load plan", err)
	}
	return plan, nil
}

func (s *planService) view(plan *domain.WeeklyPlan, now time.Time) *PlanView {
	weekStart := s.week.ResolvePlanWeekStart(now)
	rolled, _ := planning.RollOver(plan, weekStart)
	return &PlanView{
		Plan:           rolled,
		WeekStart:      weekStart,
		PlanningWindow: s.week.IsPlanningWindow(now),
		Editable:       planning.Editable(s.week, rolled.Status, now),
	}
}

func (s *planService) GetPlan(ctx context.Context, actor domain.Actor, repID primitive.ObjectID) (*PlanView, error) {
	if err := authorizeRepAccess(actor, repID); err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)
	plan, err := s.load(ctx, repID)
	if err != nil {
		return nil, err
	}
	return s.view(plan, now), nil
}

// SubmitPlan replaces the rep's plan with days and sends it for review.
// The snapshot is replayed through a PlanStore and validated against the rep's
// clients; any violation rejects the whole submission and nothing is stored.
func (s *planService) SubmitPlan(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, days map[time.Weekday]*domain.DayAssignment, expectedVersion int64) (*PlanView, error) {
	if err := planning.CanTrigger(actor.Role, planning.TriggerSubmit); err != nil {
		s.denied(actor, repID, planning.TriggerSubmit, err)
		return nil, err
	}
	if !actor.Owns(repID) {
		err := permissionDenied("only the owning representative may submit a plan")
		s.denied(actor, repID, planning.TriggerSubmit, err)
		return nil, err
	}

	now := s.now().In(s.loc)
	stored, err := s.load(ctx, repID)
	if err != nil {
		return nil, err
	}
	weekStart := s.week.ResolvePlanWeekStart(now)
	plan, rolled := planning.RollOver(stored, weekStart)
	if !planning.Editable(s.week, plan.Status, now) {
		return nil, ErrPlanLocked
	}
	from := planning.ReopenForEdit(s.week, plan.Status, now)
	next, err := planning.Transition(from, actor.Role, planning.TriggerSubmit)
	if err != nil {
		return nil, err
	}

	clients, err := s.clientRepo.GetByRepID(ctx, repID)
	if err != nil {
		return nil, persistenceError("load clients", err)
	}
	lookup := planning.IndexClients(clients)
	store, violations := planning.Replay(s.week, days, lookup)
	if len(violations) > 0 {
		return nil, &planning.ValidationError{Violations: violations}
	}
	snapshot := store.Snapshot()
	// Safety net; Replay already enforces the same rules
	if err := planning.ValidatePlan(snapshot, lookup); err != nil {
		return nil, err
	}

	plan.Days = make(map[time.Weekday]*domain.DayAssignment, len(snapshot))
	for d, a := range snapshot {
		if a != nil {
			plan.Days[d] = a
		}
	}
	plan.Status = next
	plan.WeekStart = weekStart
	submittedAt := now.UTC()
	plan.SubmittedAt = &submittedAt
	plan.ReviewedAt = nil
	plan.ReviewedBy = nil

	saved, err := s.planRepo.Upsert(ctx, plan, s.expected(expectedVersion, stored))
	if err != nil {
		return nil, persistenceError("store plan", err)
	}
	s.log.Info("plan submitted",
		zap.String("repId", repID.Hex()),
		zap.Time("weekStart", weekStart),
		zap.String("from", string(from)),
		zap.Bool("rolledOver", rolled),
		zap.Int64("version", saved.Version),
	)
	return s.view(saved, now), nil
}

func (s *planService) Approve(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, expectedVersion int64) (*PlanView, error) {
	view, err := s.review(ctx, actor, repID, planning.TriggerApprove, expectedVersion)
	if err != nil {
		return nil, err
	}
	s.archivePlan(ctx, view)
	return view, nil
}

func (s *planService) Reject(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, expectedVersion int64) (*PlanView, error) {
	return s.review(ctx, actor, repID, planning.TriggerReject, expectedVersion)
}

func (s *planService) Revoke(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, expectedVersion int64) (*PlanView, error) {
	return s.review(ctx, actor, repID, planning.TriggerRevoke, expectedVersion)
}

// review applies a status-only transition. A plan left over from an earlier
// week counts as a draft, so it can be neither reviewed nor revoked.
func (s *planService) review(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, trigger planning.Trigger, expectedVersion int64) (*PlanView, error) {
	if err := planning.CanTrigger(actor.Role, trigger); err != nil {
		s.denied(actor, repID, trigger, err)
		return nil, err
	}

	now := s.now().In(s.loc)
	stored, err := s.planRepo.GetByRepID(ctx, repID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, persistenceError("load plan", err)
	}
	current, _ := planning.RollOver(stored, s.week.ResolvePlanWeekStart(now))
	next, err := planning.Transition(current.Status, actor.Role, trigger)
	if err != nil {
		return nil, err
	}

	reviewer := actor.UserID
	saved, err := s.planRepo.SetStatus(ctx, repID, next, &reviewer, s.expected(expectedVersion, stored))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, persistenceError("set plan status", err)
	}
	s.log.Info("plan status changed",
		zap.String("repId", repID.Hex()),
		zap.String("trigger", string(trigger)),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)),
		zap.String("by", actor.UserID.Hex()),
		zap.Int64("version", saved.Version),
	)
	return s.view(saved, now), nil
}

func (s *planService) expected(requested int64, stored *domain.WeeklyPlan) int64 {
	if requested == AnyVersion {
		return stored.Version
	}
	return requested
}

func (s *planService) denied(actor domain.Actor, repID primitive.ObjectID, trigger planning.Trigger, err error) {
	s.log.Warn("plan transition denied",
		zap.String("repId", repID.Hex()),
		zap.String("trigger", string(trigger)),
		zap.String("actor", actor.UserID.Hex()),
		zap.String("role", string(actor.Role)),
		zap.Error(err),
	)
}

// planArchive is the JSON document written for each approved plan.
type planArchive struct {
	RepID      string                 `json:"repId"`
	WeekStart  string                 `json:"weekStart"`
	Status     domain.PlanStatus      `json:"status"`
	Version    int64                  `json:"version"`
	Days       map[string]archivedDay `json:"days"`
	ReviewedBy string                 `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time             `json:"reviewedAt,omitempty"`
}

type archivedDay struct {
	Date      string   `json:"date"`
	RegionID  string   `json:"regionId"`
	ClientIDs []string `json:"clientIds"`
}

func newPlanArchive(week planning.WeekConfig, p *domain.WeeklyPlan) planArchive {
	a := planArchive{
		RepID:      p.RepID.Hex(),
		WeekStart:  p.WeekStart.Format("2006-01-02"),
		Status:     p.Status,
		Version:    p.Version,
		Days:       make(map[string]archivedDay, len(p.Days)),
		ReviewedAt: p.ReviewedAt,
	}
	if p.ReviewedBy != nil {
		a.ReviewedBy = p.ReviewedBy.Hex()
	}
	for d, day := range p.Days {
		if day == nil {
			continue
		}
		ids := make([]string, len(day.ClientIDs))
		for i, id := range day.ClientIDs {
			ids[i] = id.Hex()
		}
		a.Days[domain.WeekdayKey(d)] = archivedDay{
			Date:      week.DateOf(p.WeekStart, d).Format(time.DateOnly),
			RegionID:  day.RegionID.Hex(),
			ClientIDs: ids,
		}
	}
	return a
}

// archivePlan copies the approved plan to object storage. Failures are logged;
// the approval itself already stands. An earlier archive of the same week is
// superseded and removed; archives of past weeks are kept.
func (s *planService) archivePlan(ctx context.Context, view *PlanView) {
	if s.archive == nil {
		return
	}
	plan := view.Plan
	previous := plan.ArchiveKey
	body, err := json.Marshal(newPlanArchive(s.week, plan))
	if err != nil {
		s.log.Error("plan archive encode failed", zap.String("repId", plan.RepID.Hex()), zap.Error(err))
		return
	}
	key := storage.PlanArchiveKey(plan.RepID, plan.WeekStart)
	if err := s.archive.PutObject(ctx, key, "application/json", body); err != nil {
		s.log.Error("plan archive upload failed", zap.String("repId", plan.RepID.Hex()), zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.planRepo.SetArchiveKey(ctx, plan.RepID, key); err != nil {
		s.log.Error("plan archive key not recorded", zap.String("repId", plan.RepID.Hex()), zap.String("key", key), zap.Error(err))
		return
	}
	plan.ArchiveKey = key

	if previous == "" || previous == key || !strings.HasPrefix(previous, storage.PlanArchivePrefix(plan.RepID, plan.WeekStart)) {
		return
	}
	if err := s.archive.DeleteObject(ctx, previous); err != nil {
		s.log.Warn("superseded plan archive not deleted", zap.String("repId", plan.RepID.Hex()), zap.String("key", previous), zap.Error(err))
	}
}

// ListPending is the review queue. Plans stored as pending for a week that has
// since passed are drafts once rolled over, so they are left out.
func (s *planService) ListPending(ctx context.Context, actor domain.Actor) ([]domain.WeeklyPlan, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.GetByStatus(ctx, domain.PlanPending)
	if err != nil {
		return nil, persistenceError("list pending plans", err)
	}
	weekStart := s.week.ResolvePlanWeekStart(s.now().In(s.loc))
	out := make([]domain.WeeklyPlan, 0, len(plans))
	for i := range plans {
		if _, stale := planning.RollOver(&plans[i], weekStart); stale {
			continue
		}
		out = append(out, plans[i])
	}
	return out, nil
}

// ArchiveURL presigns a download of the rep's most recent plan archive.
func (s *planService) ArchiveURL(ctx context.Context, actor domain.Actor, repID primitive.ObjectID) (string, error) {
	if err := requireReviewer(actor); err != nil {
		return "", err
	}
	if s.archive == nil {
		return "", ErrNoArchive
	}
	plan, err := s.planRepo.GetByRepID(ctx, repID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPlanNotFound
		}
		return "", persistenceError("load plan", err)
	}
	if plan.ArchiveKey == "" {
		return "", ErrNoArchive
	}
	url, err := s.archive.GeneratePresignedDownloadURL(ctx, plan.ArchiveKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", persistenceError("presign archive", err)
	}
	return url, nil
}
