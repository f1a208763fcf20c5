package api

import (
	"errors"
	"net/http"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"
	"fieldsales/visit-planner/internal/repository"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
)

// ViolationResponse is one broken plan rule, as reported to the client.
type ViolationResponse struct {
	Kind     planning.ViolationKind `json:"kind"`
	Day      string                 `json:"day"`
	ClientID string                 `json:"clientId,omitempty"`
}

// respondError maps a service error onto an HTTP status. Validation failures
// carry the full violation list so the UI can highlight each one.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *planning.ValidationError
	if errors.As(err, &ve) {
		out := make([]ViolationResponse, len(ve.Violations))
		for i, v := range ve.Violations {
			out[i] = ViolationResponse{Kind: v.Kind, Day: weekdayName(v)}
			if !v.ClientID.IsZero() {
				out[i].ClientID = v.ClientID.Hex()
			}
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":      planning.ErrValidation.Error(),
			"violations": out,
		})
		return
	}

	switch {
	case errors.Is(err, planning.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, planning.ErrIllegalTransition),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrPlanLocked):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrNoArchive),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrRegionNotFound),
		errors.Is(err, service.ErrRepNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidRole):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPersistence):
		abortWithError(c, http.StatusBadGateway, "Storage is unavailable, try again.")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

func weekdayName(v planning.Violation) string {
	if !domain.ValidWeekday(v.Day) {
		return "unknown"
	}
	return domain.WeekdayKey(v.Day)
}
