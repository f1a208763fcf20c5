package planning

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrValidation        = errors.New("plan validation failed")
	ErrDuplicateClient   = errors.New("client already planned on another day")
	ErrRegionMismatch    = errors.New("client does not belong to the day's region")
	ErrRegionUnknown     = errors.New("day has no region and the client's region is unknown")
	ErrUnknownDay        = errors.New("unknown day index")
	ErrUnknownClient     = errors.New("unknown client")
	ErrNotDoctor         = errors.New("only doctors can be planned")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrIllegalTransition = errors.New("illegal plan status transition")
)

// ViolationKind names the invariant a Violation breaks.
type ViolationKind string

const (
	ViolationDuplicateClient ViolationKind = "duplicate_client"
	ViolationRegionMismatch  ViolationKind = "client_region_mismatch"
	ViolationRegionUnknown   ViolationKind = "region_unknown"
	ViolationUnknownDay      ViolationKind = "unknown_day"
	ViolationUnknownClient   ViolationKind = "unknown_client"
	ViolationNotDoctor       ViolationKind = "not_doctor"
)

var violationErrors = map[ViolationKind]error{
	ViolationDuplicateClient: ErrDuplicateClient,
	ViolationRegionMismatch:  ErrRegionMismatch,
	ViolationRegionUnknown:   ErrRegionUnknown,
	ViolationUnknownDay:      ErrUnknownDay,
	ViolationUnknownClient:   ErrUnknownClient,
	ViolationNotDoctor:       ErrNotDoctor,
}

// Violation is one broken plan invariant, located by day and client.
type Violation struct {
	Kind     ViolationKind
	Day      time.Weekday
	ClientID primitive.ObjectID
}

func (v Violation) String() string {
	if v.ClientID.IsZero() {
		return fmt.Sprintf("%s (day %d)", v.Kind, v.Day)
	}
	return fmt.Sprintf("%s (day %d, client %s)", v.Kind, v.Day, v.ClientID.Hex())
}

// ValidationError carries every violation found. It matches ErrValidation and
// the sentinel of each contained violation kind under errors.Is.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	for _, v := range e.Violations {
		if violationErrors[v.Kind] == target {
			return true
		}
	}
	return false
}

func violationError(vs ...Violation) error {
	return &ValidationError{Violations: vs}
}
