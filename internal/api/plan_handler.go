package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/planning"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

// DayRequest is one weekday of a submitted plan. A null day is a rest day.
type DayRequest struct {
	RegionID  string   `json:"regionId,omitempty"`
	ClientIDs []string `json:"clientIds"`
}

// SubmitPlanRequest replaces the whole week. Days are keyed by weekday name.
// Version is the plan version last read; omit it to overwrite unconditionally.
type SubmitPlanRequest struct {
	Days    map[string]*DayRequest `json:"days" binding:"required"`
	Version *int64                 `json:"version,omitempty"`
}

// VersionRequest is the optional body of approve, reject and revoke.
type VersionRequest struct {
	Version *int64 `json:"version,omitempty"`
}

type DayResponse struct {
	RegionID  string   `json:"regionId,omitempty"`
	ClientIDs []string `json:"clientIds"`
}

type PlanResponse struct {
	RepID     string                  `json:"repId"`
	Status    domain.PlanStatus       `json:"status"`
	WeekStart string                  `json:"weekStart,omitempty"`
	Version   int64                   `json:"version"`
	Days      map[string]*DayResponse `json:"days"` // all seven weekdays, null when unplanned

	PlanningWindow *bool `json:"planningWindow,omitempty"`
	Editable       *bool `json:"editable,omitempty"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
}

type ArchiveURLResponse struct {
	URL string `json:"url"`
}

// MapPlanToResponse renders a stored plan. Window flags are only known for a
// PlanView, see MapPlanViewToResponse.
func MapPlanToResponse(p *domain.WeeklyPlan) PlanResponse {
	resp := PlanResponse{
		RepID:       p.RepID.Hex(),
		Status:      p.Status,
		Version:     p.Version,
		Days:        make(map[string]*DayResponse, len(domain.AllWeekdays)),
		SubmittedAt: p.SubmittedAt,
		ReviewedAt:  p.ReviewedAt,
	}
	if !p.WeekStart.IsZero() {
		resp.WeekStart = p.WeekStart.Format(time.DateOnly)
	}
	if p.ReviewedBy != nil {
		resp.ReviewedBy = p.ReviewedBy.Hex()
	}
	for _, d := range domain.AllWeekdays {
		a := p.Days[d]
		if a == nil {
			resp.Days[domain.WeekdayKey(d)] = nil
			continue
		}
		day := &DayResponse{ClientIDs: make([]string, len(a.ClientIDs))}
		if !a.RegionID.IsZero() {
			day.RegionID = a.RegionID.Hex()
		}
		for i, id := range a.ClientIDs {
			day.ClientIDs[i] = id.Hex()
		}
		resp.Days[domain.WeekdayKey(d)] = day
	}
	return resp
}

func MapPlanViewToResponse(v *service.PlanView) PlanResponse {
	resp := MapPlanToResponse(v.Plan)
	resp.WeekStart = v.WeekStart.Format(time.DateOnly)
	window, editable := v.PlanningWindow, v.Editable
	resp.PlanningWindow = &window
	resp.Editable = &editable
	return resp
}

// parseDays converts the wire form into domain days. Malformed ids answer 400;
// unknown day names are reported the same way as other plan violations.
func parseDays(c *gin.Context, in map[string]*DayRequest) (map[time.Weekday]*domain.DayAssignment, bool) {
	days := make(map[time.Weekday]*domain.DayAssignment, len(in))
	var unknown []planning.Violation
	for name, req := range in {
		d, ok := domain.ParseWeekday(name)
		if !ok {
			unknown = append(unknown, planning.Violation{Kind: planning.ViolationUnknownDay, Day: -1})
			continue
		}
		if req == nil {
			days[d] = nil
			continue
		}
		a := &domain.DayAssignment{ClientIDs: make([]primitive.ObjectID, 0, len(req.ClientIDs))}
		if req.RegionID != "" {
			id, err := primitive.ObjectIDFromHex(req.RegionID)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid regionId format for "+name+".")
				return nil, false
			}
			a.RegionID = id
		}
		for _, raw := range req.ClientIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid clientId format for "+name+".")
				return nil, false
			}
			a.ClientIDs = append(a.ClientIDs, id)
		}
		days[d] = a
	}
	if len(unknown) > 0 {
		respondError(c, &planning.ValidationError{Violations: unknown})
		return nil, false
	}
	return days, true
}

func versionOrAny(v *int64) int64 {
	if v == nil {
		return service.AnyVersion
	}
	return *v
}

// GetPlan godoc
// @Summary Get a representative's weekly plan
// @Description Returns the plan for the week being planned, with the planning window and editability flags.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Success 200 {object} PlanResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 502 {object} gin.H "Storage unavailable"
// @Router /reps/{repId}/plan [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	repID, ok := objectIDParam(c, "repId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	view, err := h.planService.GetPlan(c.Request.Context(), actor, repID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanViewToResponse(view))
}

// SubmitPlan godoc
// @Summary Submit the weekly plan for review
// @Description Replaces the whole week and moves the plan to pending. Any violated rule rejects the submission.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Param plan body SubmitPlanRequest true "Plan"
// @Success 200 {object} PlanResponse
// @Failure 400 {object} gin.H "Malformed body"
// @Failure 403 {object} gin.H "Forbidden (not the owning representative)"
// @Failure 409 {object} gin.H "Plan locked, illegal transition or version conflict"
// @Failure 422 {object} gin.H "Plan violations"
// @Router /reps/{repId}/plan [put]
func (h *PlanHandler) SubmitPlan(c *gin.Context) {
	repID, ok := objectIDParam(c, "repId")
	if !ok {
		return
	}
	var req SubmitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	days, ok := parseDays(c, req.Days)
	if !ok {
		return
	}

	view, err := h.planService.SubmitPlan(c.Request.Context(), actor, repID, days, versionOrAny(req.Version))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanViewToResponse(view))
}

type reviewFunc func(c *gin.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error)

// review is shared by the status-only endpoints.
func (h *PlanHandler) review(c *gin.Context, fn reviewFunc) {
	repID, ok := objectIDParam(c, "repId")
	if !ok {
		return
	}
	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	view, err := fn(c, actor, repID, versionOrAny(req.Version))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanViewToResponse(view))
}

// ApprovePlan godoc
// @Summary Approve a pending plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Param version body VersionRequest false "Expected version"
// @Success 200 {object} PlanResponse
// @Failure 403 {object} gin.H "Forbidden (not a supervisor or manager)"
// @Failure 404 {object} gin.H "No plan stored"
// @Failure 409 {object} gin.H "Plan is not pending, or version conflict"
// @Router /reps/{repId}/plan/approve [post]
func (h *PlanHandler) ApprovePlan(c *gin.Context) {
	h.review(c, func(c *gin.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
		return h.planService.Approve(c.Request.Context(), actor, repID, version)
	})
}

// RejectPlan godoc
// @Summary Reject a pending plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Param version body VersionRequest false "Expected version"
// @Success 200 {object} PlanResponse
// @Failure 403 {object} gin.H "Forbidden (not a supervisor or manager)"
// @Failure 404 {object} gin.H "No plan stored"
// @Failure 409 {object} gin.H "Plan is not pending, or version conflict"
// @Router /reps/{repId}/plan/reject [post]
func (h *PlanHandler) RejectPlan(c *gin.Context) {
	h.review(c, func(c *gin.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
		return h.planService.Reject(c.Request.Context(), actor, repID, version)
	})
}

// RevokePlan godoc
// @Summary Revoke an approval
// @Description Sends an approved plan back to draft so the representative can edit it.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Param version body VersionRequest false "Expected version"
// @Success 200 {object} PlanResponse
// @Failure 403 {object} gin.H "Forbidden (not a manager)"
// @Failure 404 {object} gin.H "No plan stored"
// @Failure 409 {object} gin.H "Plan is not approved, or version conflict"
// @Router /reps/{repId}/plan/revoke [post]
func (h *PlanHandler) RevokePlan(c *gin.Context) {
	h.review(c, func(c *gin.Context, actor domain.Actor, repID primitive.ObjectID, version int64) (*service.PlanView, error) {
		return h.planService.Revoke(c.Request.Context(), actor, repID, version)
	})
}

// ListPendingPlans godoc
// @Summary List plans awaiting review
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanResponse
// @Failure 403 {object} gin.H "Forbidden (not a supervisor or manager)"
// @Router /plans/pending [get]
func (h *PlanHandler) ListPendingPlans(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	plans, err := h.planService.ListPending(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]PlanResponse, len(plans))
	for i := range plans {
		out[i] = MapPlanToResponse(&plans[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetPlanArchiveURL godoc
// @Summary Download link for the latest approved plan archive
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Success 200 {object} ArchiveURLResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "No plan or no archive"
// @Router /reps/{repId}/plan/archive [get]
func (h *PlanHandler) GetPlanArchiveURL(c *gin.Context) {
	repID, ok := objectIDParam(c, "repId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	url, err := h.planService.ArchiveURL(c.Request.Context(), actor, repID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ArchiveURLResponse{URL: url})
}
