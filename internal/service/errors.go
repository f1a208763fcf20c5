package service

import (
	"errors"
	"fmt"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"
	"fieldsales/visit-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrPersistence wraps every failure reported by a repository except
	// version conflicts, which surface as repository.ErrConflict.
	ErrPersistence = errors.New("persistence failure")

	ErrPlanLocked     = errors.New("plan is approved and locked until revoked or the next planning window")
	ErrPlanNotFound   = errors.New("representative has no stored plan")
	ErrNoArchive      = errors.New("plan has no archive")
	ErrRegionNotFound = errors.New("region not found")
	ErrClientNotFound = errors.New("client not found")
	ErrRepNotFound    = errors.New("representative not found")
	ErrInvalidInput   = errors.New("invalid input")
)

// AnyVersion tells a plan operation to act on whatever version it reads,
// instead of a version the caller read earlier.
const AnyVersion int64 = -1

func persistenceError(op string, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func permissionDenied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", planning.ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// authorizeRepAccess lets a representative reach only their own data;
// supervisors and managers reach everyone's.
func authorizeRepAccess(actor domain.Actor, repID primitive.ObjectID) error {
	if actor.Role.IsReviewer() || actor.Owns(repID) {
		return nil
	}
	return permissionDenied("%s %s may not access representative %s", actor.Role, actor.UserID.Hex(), repID.Hex())
}

func requireReviewer(actor domain.Actor) error {
	if actor.Role.IsReviewer() {
		return nil
	}
	return permissionDenied("role %s is neither supervisor nor manager", actor.Role)
}

func requireRole(actor domain.Actor, roles ...domain.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return permissionDenied("role %s not allowed", actor.Role)
}
