package repository

import (
	"context"
	"time"

	"fieldsales/visit-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrConflict      = RepositoryError("version conflict")
	ErrAlreadyExists = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// RegionRepository defines the interface for region reference data.
type RegionRepository interface {
	Create(ctx context.Context, region *domain.Region) (primitive.ObjectID, error)
	GetAll(ctx context.Context) ([]domain.Region, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Region, error)
}

// ClientRepository defines the interface for doctors and pharmacies.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByRepID(ctx context.Context, repID primitive.ObjectID) ([]domain.Client, error)
	GetAll(ctx context.Context) ([]domain.Client, error)
}

// VisitRepository defines the interface for visit history.
type VisitRepository interface {
	Create(ctx context.Context, visit *domain.Visit) (primitive.ObjectID, error)
	// GetByRepID returns the rep's visits dated at or after since, newest first.
	// A zero since returns the whole history.
	GetByRepID(ctx context.Context, repID primitive.ObjectID, since time.Time) ([]domain.Visit, error)
	GetAll(ctx context.Context, since time.Time) ([]domain.Visit, error)
}

// WeeklyPlanRepository stores the one plan each representative owns.
//
// Writes are conditional on the version the caller last read: Upsert and
// SetStatus fail with ErrConflict when the stored version differs from
// expectedVersion (0 means "no plan stored yet"). On success the stored version
// is expectedVersion+1 and the returned plan reflects it.
type WeeklyPlanRepository interface {
	GetByRepID(ctx context.Context, repID primitive.ObjectID) (*domain.WeeklyPlan, error)
	// Upsert stores plan's days, week and archive key. The stored status is
	// always pending, whatever plan.Status says.
	Upsert(ctx context.Context, plan *domain.WeeklyPlan, expectedVersion int64) (*domain.WeeklyPlan, error)
	// SetStatus changes only the status and review metadata; days are untouched.
	SetStatus(ctx context.Context, repID primitive.ObjectID, status domain.PlanStatus, reviewer *primitive.ObjectID, expectedVersion int64) (*domain.WeeklyPlan, error)
	SetArchiveKey(ctx context.Context, repID primitive.ObjectID, key string) error
	GetByStatus(ctx context.Context, status domain.PlanStatus) ([]domain.WeeklyPlan, error)
}
