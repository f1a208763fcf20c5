package api

import (
	"net/http"
	"strconv"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportHandler serves the dashboard aggregates.
type ReportHandler struct {
	reportService service.ReportService
	loc           *time.Location
}

func NewReportHandler(reportService service.ReportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reportService: reportService, loc: loc}
}

type ClientAlertResponse struct {
	ClientID           string            `json:"clientId"`
	ClientName         string            `json:"clientName"`
	ClientKind         domain.ClientKind `json:"clientKind"`
	RepID              string            `json:"repId"`
	RegionID           string            `json:"regionId,omitempty"`
	DaysSinceLastVisit *int              `json:"daysSinceLastVisit"` // null when never visited
}

type WorkingDayRateResponse struct {
	Rate float64 `json:"rate"`
}

func MapAlertsToResponse(alerts []domain.ClientAlert) []ClientAlertResponse {
	out := make([]ClientAlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = ClientAlertResponse{
			ClientID:           a.ClientID.Hex(),
			ClientName:         a.ClientName,
			ClientKind:         a.ClientKind,
			RepID:              a.RepID.Hex(),
			DaysSinceLastVisit: a.DaysSinceLastVisit,
		}
		if !a.RegionID.IsZero() {
			out[i].RegionID = a.RegionID.Hex()
		}
	}
	return out
}

// reportQuery reads repId and asOf. Representatives may omit repId.
func (h *ReportHandler) reportQuery(c *gin.Context) (service.ReportQuery, bool) {
	var q service.ReportQuery
	if raw := c.Query("repId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid repId format.")
			return q, false
		}
		q.RepID = id
	}
	asOf, ok := timeQuery(c, "asOf", h.loc)
	if !ok {
		return q, false
	}
	q.AsOf = asOf
	return q, true
}

// OverdueAlerts godoc
// @Summary Days since each client was last visited
// @Description With all=true every client is listed; otherwise only never-visited clients and those past the overdue threshold.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param repId query string false "Representative ID (omit for all reps; representatives always see their own)"
// @Param asOf query string false "Reference time, RFC3339 or YYYY-MM-DD"
// @Param all query bool false "List every client instead of only overdue ones"
// @Success 200 {array} ClientAlertResponse
// @Failure 400 {object} gin.H "Invalid query"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /reports/overdue [get]
func (h *ReportHandler) OverdueAlerts(c *gin.Context) {
	q, ok := h.reportQuery(c)
	if !ok {
		return
	}
	all := false
	if raw := c.Query("all"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid all: expected a boolean.")
			return
		}
		all = v
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	alerts, err := h.reportService.OverdueAlerts(c.Request.Context(), actor, q, !all)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAlertsToResponse(alerts))
}

// Frequency godoc
// @Summary Visit frequency buckets for the current month
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param repId query string false "Representative ID"
// @Param asOf query string false "Reference time, RFC3339 or YYYY-MM-DD"
// @Param kind query string false "doctor or pharmacy; omit for all visits"
// @Success 200 {object} domain.VisitFrequency
// @Failure 400 {object} gin.H "Invalid query"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /reports/frequency [get]
func (h *ReportHandler) Frequency(c *gin.Context) {
	q, ok := h.reportQuery(c)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	freq, err := h.reportService.Frequency(c.Request.Context(), actor, q, domain.ClientKind(c.Query("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, freq)
}

// WorkingDayRate godoc
// @Summary Share of this month's elapsed working days with at least one visit
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param repId query string false "Representative ID"
// @Param asOf query string false "Reference time, RFC3339 or YYYY-MM-DD"
// @Success 200 {object} WorkingDayRateResponse
// @Failure 400 {object} gin.H "Invalid query"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /reports/working-day-rate [get]
func (h *ReportHandler) WorkingDayRate(c *gin.Context) {
	q, ok := h.reportQuery(c)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	rate, err := h.reportService.WorkingDayRate(c.Request.Context(), actor, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, WorkingDayRateResponse{Rate: rate})
}
