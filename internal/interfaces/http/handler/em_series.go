package handler

import (
	orderingapp "github.com/crm/backend/internal/application/ordering"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EmSeriesHandler handles EM numbering series API endpoints
type EmSeriesHandler struct {
	BaseHandler
	seriesService *orderingapp.EmSeriesService
}

// NewEmSeriesHandler creates a new EmSeriesHandler
func NewEmSeriesHandler(seriesService *orderingapp.EmSeriesService) *EmSeriesHandler {
	return &EmSeriesHandler{
		seriesService: seriesService,
	}
}

// List godoc
// @ID           listEmSeries
// @Summary      List numbering series
// @Description  Retrieve every per-country EM numbering series
// @Tags         em-series
// @Produce      json
// @Success      200 {object} APIResponse[[]orderingapp.EmSeriesResponse]
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /em-series [get]
func (h *EmSeriesHandler) List(c *gin.Context) {
	series, err := h.seriesService.ListSeries(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, series)
}

// GetByCountry godoc
// @ID           getEmSeriesByCountry
// @Summary      Get numbering series by country
// @Tags         em-series
// @Produce      json
// @Param        country path string true "Country name"
// @Success      200 {object} APIResponse[orderingapp.EmSeriesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /em-series/country/{country} [get]
func (h *EmSeriesHandler) GetByCountry(c *gin.Context) {
	country := c.Param("country")
	if country == "" {
		h.BadRequest(c, "Country is required")
		return
	}

	series, err := h.seriesService.GetSeriesByCountry(c.Request.Context(), country)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, series)
}

// Create godoc
// @ID           createEmSeries
// @Summary      Create a numbering series
// @Description  Create a per-country EM numbering series (admin only)
// @Tags         em-series
// @Accept       json
// @Produce      json
// @Param        request body orderingapp.CreateEmSeriesRequest true "Series creation request"
// @Success      201 {object} APIResponse[orderingapp.EmSeriesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /em-series [post]
func (h *EmSeriesHandler) Create(c *gin.Context) {
	var req orderingapp.CreateEmSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	series, err := h.seriesService.CreateSeries(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, series)
}

// Update godoc
// @ID           updateEmSeries
// @Summary      Update a numbering series
// @Description  Change a series' prefix, counter, or active flag; the counter can only move forward (admin only)
// @Tags         em-series
// @Accept       json
// @Produce      json
// @Param        id path string true "Series ID" format(uuid)
// @Param        request body orderingapp.UpdateEmSeriesRequest true "Series update request"
// @Success      200 {object} APIResponse[orderingapp.EmSeriesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /em-series/{id} [put]
func (h *EmSeriesHandler) Update(c *gin.Context) {
	seriesID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid series ID format")
		return
	}

	var req orderingapp.UpdateEmSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	series, err := h.seriesService.UpdateSeries(c.Request.Context(), seriesID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, series)
}
