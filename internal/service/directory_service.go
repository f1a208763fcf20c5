package service

import (
	"context"
	"errors"
	"strings"

	"fieldsales/visit-planner/internal/cache"
	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DirectoryService manages the reference data plans are built from: regions
// and the doctors and pharmacies assigned to each representative.
type DirectoryService interface {
	CreateRegion(ctx context.Context, actor domain.Actor, name string) (*domain.Region, error)
	ListRegions(ctx context.Context) ([]domain.Region, error)
	CreateClient(ctx context.Context, actor domain.Actor, client domain.Client) (*domain.Client, error)
	ListClientsForRep(ctx context.Context, actor domain.Actor, repID primitive.ObjectID) ([]domain.Client, error)
}

type directoryService struct {
	userRepo   repository.UserRepository
	regionRepo repository.RegionRepository
	clientRepo repository.ClientRepository
	reports    *cache.ReportCache
	log        *zap.Logger
}

// NewDirectoryService wires the directory; reports may be nil when caching is off.
func NewDirectoryService(
	userRepo repository.UserRepository,
	regionRepo repository.RegionRepository,
	clientRepo repository.ClientRepository,
	reports *cache.ReportCache,
	log *zap.Logger,
) DirectoryService {
	return &directoryService{
		userRepo:   userRepo,
		regionRepo: regionRepo,
		clientRepo: clientRepo,
		reports:    reports,
		log:        log,
	}
}

func (s *directoryService) CreateRegion(ctx context.Context, actor domain.Actor, name string) (*domain.Region, error) {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("region name is required")
	}
	region := &domain.Region{Name: name}
	id, err := s.regionRepo.Create(ctx, region)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, invalidInput("region %q already exists", name)
		}
		return nil, persistenceError("create region", err)
	}
	region.ID = id
	s.log.Info("region created", zap.String("regionId", id.Hex()), zap.String("name", name))
	return region, nil
}

func (s *directoryService) ListRegions(ctx context.Context) ([]domain.Region, error) {
	regions, err := s.regionRepo.GetAll(ctx)
	if err != nil {
		return nil, persistenceError("list regions", err)
	}
	return regions, nil
}

// CreateClient registers a doctor or pharmacy in an existing region and hands
// it to an existing representative.
func (s *directoryService) CreateClient(ctx context.Context, actor domain.Actor, client domain.Client) (*domain.Client, error) {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return nil, err
	}
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return nil, invalidInput("client name is required")
	}
	if !client.Kind.Valid() {
		return nil, invalidInput("unknown client kind %q", client.Kind)
	}

	if _, err := s.regionRepo.GetByID(ctx, client.RegionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, persistenceError("load region", err)
	}
	rep, err := s.userRepo.GetByID(ctx, client.RepID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRepNotFound
		}
		return nil, persistenceError("load representative", err)
	}
	if !rep.Role.IsRepresentative() {
		return nil, ErrRepNotFound
	}

	id, err := s.clientRepo.Create(ctx, &client)
	if err != nil {
		return nil, persistenceError("create client", err)
	}
	client.ID = id

	// A new client shows up in the overdue reports as never visited
	s.reports.Invalidate(ctx, client.RepID.Hex(), cache.ScopeAll)
	s.log.Info("client created",
		zap.String("clientId", id.Hex()),
		zap.String("kind", string(client.Kind)),
		zap.String("repId", client.RepID.Hex()),
	)
	return &client, nil
}

func (s *directoryService) ListClientsForRep(ctx context.Context, actor domain.Actor, repID primitive.ObjectID) ([]domain.Client, error) {
	if err := authorizeRepAccess(actor, repID); err != nil {
		return nil, err
	}
	clients, err := s.clientRepo.GetByRepID(ctx, repID)
	if err != nil {
		return nil, persistenceError("list clients", err)
	}
	return clients, nil
}
