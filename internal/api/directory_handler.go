package api

import (
	"net/http"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DirectoryHandler serves regions and clients.
type DirectoryHandler struct {
	directoryService service.DirectoryService
}

func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// --- DTOs ---

type CreateRegionRequest struct {
	Name string `json:"name" binding:"required"`
}

type RegionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateClientRequest struct {
	Name           string            `json:"name" binding:"required"`
	Kind           domain.ClientKind `json:"kind" binding:"required,oneof=doctor pharmacy"`
	RegionID       string            `json:"regionId" binding:"required"`
	RepID          string            `json:"repId" binding:"required"`
	Specialization string            `json:"specialization,omitempty"`
}

type ClientResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Kind           domain.ClientKind `json:"kind"`
	RegionID       string            `json:"regionId"`
	RepID          string            `json:"repId"`
	Specialization string            `json:"specialization,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func MapRegionToResponse(r *domain.Region) RegionResponse {
	return RegionResponse{ID: r.ID.Hex(), Name: r.Name, CreatedAt: r.CreatedAt}
}

func MapRegionsToResponse(regions []domain.Region) []RegionResponse {
	out := make([]RegionResponse, len(regions))
	for i := range regions {
		out[i] = MapRegionToResponse(&regions[i])
	}
	return out
}

func MapClientToResponse(cl *domain.Client) ClientResponse {
	return ClientResponse{
		ID:             cl.ID.Hex(),
		Name:           cl.Name,
		Kind:           cl.Kind,
		RegionID:       cl.RegionID.Hex(),
		RepID:          cl.RepID.Hex(),
		Specialization: cl.Specialization,
		CreatedAt:      cl.CreatedAt,
	}
}

func MapClientsToResponse(clients []domain.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = MapClientToResponse(&clients[i])
	}
	return out
}

// ListRegions godoc
// @Summary List regions
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RegionResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 502 {object} gin.H "Storage unavailable"
// @Router /regions [get]
func (h *DirectoryHandler) ListRegions(c *gin.Context) {
	regions, err := h.directoryService.ListRegions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRegionsToResponse(regions))
}

// CreateRegion godoc
// @Summary Create a region
// @Tags Directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param region body CreateRegionRequest true "Region"
// @Success 201 {object} RegionResponse
// @Failure 400 {object} gin.H "Invalid input or duplicate name"
// @Failure 403 {object} gin.H "Forbidden (not a manager)"
// @Router /regions [post]
func (h *DirectoryHandler) CreateRegion(c *gin.Context) {
	var req CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	region, err := h.directoryService.CreateRegion(c.Request.Context(), actor, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRegionToResponse(region))
}

// CreateClient godoc
// @Summary Create a doctor or pharmacy
// @Description Registers a client in a region and assigns it to a representative.
// @Tags Directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body CreateClientRequest true "Client"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (not a manager)"
// @Failure 404 {object} gin.H "Region or representative not found"
// @Router /clients [post]
func (h *DirectoryHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	regionID, err := primitive.ObjectIDFromHex(req.RegionID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid regionId format.")
		return
	}
	repID, err := primitive.ObjectIDFromHex(req.RepID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid repId format.")
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	client, err := h.directoryService.CreateClient(c.Request.Context(), actor, domain.Client{
		Name:           req.Name,
		Kind:           req.Kind,
		RegionID:       regionID,
		RepID:          repID,
		Specialization: req.Specialization,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapClientToResponse(client))
}

// ListClientsForRep godoc
// @Summary List a representative's clients
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Param repId path string true "Representative ID"
// @Success 200 {array} ClientResponse
// @Failure 400 {object} gin.H "Invalid repId"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /reps/{repId}/clients [get]
func (h *DirectoryHandler) ListClientsForRep(c *gin.Context) {
	repID, ok := objectIDParam(c, "repId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	clients, err := h.directoryService.ListClientsForRep(c.Request.Context(), actor, repID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClientsToResponse(clients))
}
