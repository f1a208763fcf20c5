package service

import (
	"context"
	"errors"
	"time"

	"fieldsales/visit-planner/internal/cache"
	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// VisitService records what representatives actually did in the field.
type VisitService interface {
	LogVisit(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID, visitedAt time.Time, notes string) (*domain.Visit, error)
	ListVisits(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, since time.Time) ([]domain.Visit, error)
}

type visitService struct {
	visitRepo  repository.VisitRepository
	clientRepo repository.ClientRepository
	reports    *cache.ReportCache
	now        Clock
	log        *zap.Logger
}

// NewVisitService wires the visit log; reports may be nil.
func NewVisitService(
	visitRepo repository.VisitRepository,
	clientRepo repository.ClientRepository,
	reports *cache.ReportCache,
	now Clock,
	log *zap.Logger,
) VisitService {
	return &visitService{
		visitRepo:  visitRepo,
		clientRepo: clientRepo,
		reports:    reports,
		now:        now,
		log:        log,
	}
}

// LogVisit stores a visit by the acting representative to one of their own
// clients. A zero visitedAt means now; visits in the future are refused.
// Client name, kind and region are copied onto the visit.
func (s *visitService) LogVisit(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID, visitedAt time.Time, notes string) (*domain.Visit, error) {
	if err := requireRole(actor, domain.RoleRepresentative); err != nil {
		return nil, err
	}
	now := s.now()
	if visitedAt.IsZero() {
		visitedAt = now
	}
	if visitedAt.After(now) {
		return nil, invalidInput("visit date %s is in the future", visitedAt.Format(time.RFC3339))
	}

	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, persistenceError("load client", err)
	}
	if client.RepID != actor.UserID {
		s.log.Warn("visit to foreign client refused",
			zap.String("repId", actor.UserID.Hex()),
			zap.String("clientId", clientID.Hex()),
		)
		return nil, permissionDenied("client %s belongs to another representative", clientID.Hex())
	}

	visit := &domain.Visit{
		RepID:      actor.UserID,
		ClientID:   client.ID,
		ClientName: client.Name,
		ClientKind: client.Kind,
		RegionID:   client.RegionID,
		VisitedAt:  visitedAt.UTC(),
		Notes:      notes,
	}
	id, err := s.visitRepo.Create(ctx, visit)
	if err != nil {
		return nil, persistenceError("create visit", err)
	}
	visit.ID = id

	s.reports.Invalidate(ctx, actor.UserID.Hex(), cache.ScopeAll)
	s.log.Info("visit logged",
		zap.String("visitId", id.Hex()),
		zap.String("repId", actor.UserID.Hex()),
		zap.String("clientId", client.ID.Hex()),
	)
	return visit, nil
}

func (s *visitService) ListVisits(ctx context.Context, actor domain.Actor, repID primitive.ObjectID, since time.Time) ([]domain.Visit, error) {
	if err := authorizeRepAccess(actor, repID); err != nil {
		return nil, err
	}
	visits, err := s.visitRepo.GetByRepID(ctx, repID, since)
	if err != nil {
		return nil, persistenceError("list visits", err)
	}
	return visits, nil
}
