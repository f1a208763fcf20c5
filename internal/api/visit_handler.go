package api

import (
	"net/http"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VisitHandler struct {
	visitService service.VisitService
	loc          *time.Location
}

func NewVisitHandler(visitService service.VisitService, loc *time.Location) *VisitHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &VisitHandler{visitService: visitService, loc: loc}
}

// --- DTOs ---

type LogVisitRequest struct {
	ClientID  string     `json:"clientId" binding:"required"`
	VisitedAt *time.Time `json:"visitedAt,omitempty"` // defaults to now
	Notes     string     `json:"notes,omitempty"`
}

type VisitResponse struct {
	ID         string            `json:"id"`
	RepID      string            `json:"repId"`
	ClientID   string            `json:"clientId,omitempty"`
	ClientName string            `json:"clientName"`
	ClientKind domain.ClientKind `json:"clientKind"`
	RegionID   string            `json:"regionId,omitempty"`
	VisitedAt  time.Time         `json:"visitedAt"`
	Notes      string            `json:"notes,omitempty"`
}

func MapVisitToResponse(v *domain.Visit) VisitResponse {
	resp := VisitResponse{
		ID:         v.ID.Hex(),
		RepID:      v.RepID.Hex(),
		ClientName: v.ClientName,
		ClientKind: v.ClientKind,
		VisitedAt:  v.VisitedAt,
		Notes:      v.Notes,
	}
	if !v.ClientID.IsZero() {
		resp.ClientID = v.ClientID.Hex()
	}
	if !v.RegionID.IsZero() {
		resp.RegionID = v.RegionID.Hex()
	}
	return resp
}

func MapVisitsToResponse(visits []domain.Visit) []VisitResponse {
	out := make([]VisitResponse, len(visits))
	for i := range visits {
		out[i] = MapVisitToResponse(&visits[i])
	}
	return out
}

// LogVisit godoc
// @Summary Record a visit
// @Description Records a visit by the authenticated representative to one of their clients.
// @Tags Visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visit body LogVisitRequest true "Visit"
// @Success 201 {object} VisitResponse
// @Failure 400 {object} gin.H "Invalid input or visit date in the future"
// @Failure 403 {object} gin.H "Forbidden (not a representative, or not your client)"
// @Failure 404 {object} gin.H "Client not found"
// @Router /visits [post]
func (h *VisitHandler) LogVisit(c *gin.Context) {
	var req LogVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var visitedAt time.Time
	if req.VisitedAt != nil {
		visitedAt = *req.VisitedAt
	}
	visit, err := h.visitService.LogVisit(c.Request.Context(), actor, clientID, visitedAt, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapVisitToResponse(visit))
}

// ListVisits godoc
// @Summary List a representative's visits
// @Description Newest first. since accepts RFC3339 or YYYY-MM-DD.
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Param since query string false "Only visits at or after this time"
// @Success 200 {array} VisitResponse
// @Failure 400 {object} gin.H "Invalid repId or since"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /reps/{repId}/visits [get]
func (h *VisitHandler) ListVisits(c *gin.Context) {
	repID, ok := objectIDParam(c, "repId")
	if !ok {
		return
	}
	since, ok := timeQuery(c, "since", h.loc)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	visits, err := h.visitService.ListVisits(c.Request.Context(), actor, repID, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapVisitsToResponse(visits))
}

// timeQuery reads an optional RFC3339 or date-only query parameter. A date
// alone is midnight in loc; missing means the zero time.
func timeQuery(c *gin.Context, name string, loc *time.Location) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+": expected RFC3339 or YYYY-MM-DD.")
		return time.Time{}, false
	}
	return t, true
}
