package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenroute/backend/internal/models"
	"github.com/greenroute/backend/internal/service"
)

// @Summary List workers
// @Tags workers
// @Produce json
// @Param active query bool false "Only active workers"
// @Success 200 {object} map[string]any
// @Router /api/workers [get]
func (h *Handler) WorkersList(c *gin.Context) {
	items, err := h.Store.ListWorkers(c.Request.Context())
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filtered := items[:0]
		for _, w := range items {
			if w.Active == active {
				filtered = append(filtered, w)
			}
		}
		items = filtered
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Get worker
// @Tags workers
// @Produce json
// @Param id path string true "Worker ID"
// @Success 200 {object} models.Worker
// @Failure 404 {object} ErrorResponse
// @Router /api/workers/{id} [get]
func (h *Handler) WorkerDetails(c *gin.Context) {
	w, err := h.Store.GetWorker(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// @Summary Deactivate worker
// @Description Excludes the worker from future rankings and assignments.
// @Tags workers
// @Produce json
// @Param id path string true "Worker ID"
// @Success 200 {object} models.Worker
// @Failure 404 {object} ErrorResponse
// @Router /api/workers/{id}/deactivate [post]
func (h *Handler) DeactivateWorker(c *gin.Context) {
	w, err := h.Assignments.DeactivateWorker(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// @Summary List sites
// @Tags sites
// @Produce json
// @Param status query string false "Site status"
// @Success 200 {object} map[string]any
// @Router /api/sites [get]
func (h *Handler) SitesList(c *gin.Context) {
	items, err := h.Store.ListSites(c.Request.Context(), models.SiteStatus(c.Query("status")))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Get site
// @Tags sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} models.Site
// @Failure 404 {object} ErrorResponse
// @Router /api/sites/{id} [get]
func (h *Handler) SiteDetails(c *gin.Context) {
	s, err := h.Store.GetSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type CreateSiteRequest struct {
	Address         string   `json:"address" validate:"required"`
	Region          string   `json:"region"`
	Lat             *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng             *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Difficulty      float64  `json:"difficulty" validate:"gte=0,lte=1"`
	PreferredSkills []string `json:"preferred_skills" validate:"dive,required"`
	DurationMinutes int      `json:"duration_minutes" validate:"gte=0"`
	SizeSqFt        float64  `json:"size_sq_ft" validate:"gte=0"`
	Terrain         string   `json:"terrain"`
	GrassType       string   `json:"grass_type"`
	RegionalFactors []string `json:"regional_factors"`
}

// @Summary Create site
// @Description Registers an open site. Sites without lat/lng are geocoded from the address.
// @Tags sites
// @Accept json
// @Produce json
// @Param body body CreateSiteRequest true "Site"
// @Success 201 {object} models.Site
// @Failure 400 {object} ErrorResponse
// @Router /api/sites [post]
func (h *Handler) CreateSite(c *gin.Context) {
	var req CreateSiteRequest
	if !h.bind(c, &req) {
		return
	}
	in := service.SiteInput{
		Address:           req.Address,
		Region:            req.Region,
		Difficulty:        req.Difficulty,
		PreferredSkills:   req.PreferredSkills,
		EstimatedDuration: time.Duration(req.DurationMinutes) * time.Minute,
		Property: models.PropertyDetails{
			SizeSqFt:  req.SizeSqFt,
			Terrain:   req.Terrain,
			GrassType: req.GrassType,
		},
		RegionalFactors: req.RegionalFactors,
	}
	if req.Lat != nil && req.Lng != nil {
		in.Location = &models.Location{Lat: *req.Lat, Lng: *req.Lng}
	}
	site, err := h.Sites.CreateSite(c.Request.Context(), in)
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

// @Summary Ranked worker recommendations for a site
// @Description Deterministic ranking by composite fit score, optionally annotated by the advisory recommender.
// @Tags sites
// @Produce json
// @Param id path string true "Site ID"
// @Param limit query int false "Maximum number of ranked workers"
// @Param advisory query bool false "Request advisory annotation (default true)"
// @Success 200 {object} service.Recommendation
// @Failure 404 {object} ErrorResponse
// @Router /api/sites/{id}/recommendations [get]
func (h *Handler) Recommendations(c *gin.Context) {
	opts := service.RankOptions{Limit: queryInt(c, "limit", 0)}
	if v, err := strconv.ParseBool(c.DefaultQuery("advisory", "true")); err == nil {
		opts.SkipAdvisory = !v
	}
	rec, err := h.Ranker.Rank(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type CreateAssignmentRequest struct {
	WorkerID string `json:"worker_id" validate:"required"`
	SiteID   string `json:"site_id" validate:"required"`
}

// @Summary Assign worker to site
// @Tags assignments
// @Accept json
// @Produce json
// @Param body body CreateAssignmentRequest true "Assignment"
// @Success 201 {object} models.Assignment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/assignments [post]
func (h *Handler) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.Assignments.CreateAssignment(c.Request.Context(), req.WorkerID, req.SiteID)
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary List assignments
// @Tags assignments
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/assignments [get]
func (h *Handler) AssignmentsList(c *gin.Context) {
	items, err := h.Store.ListAssignments(c.Request.Context())
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Start assignment
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} models.Assignment
// @Failure 409 {object} ErrorResponse
// @Router /api/assignments/{id}/start [post]
func (h *Handler) StartAssignment(c *gin.Context) {
	h.assignmentAction(c, h.Assignments.StartAssignment)
}

// @Summary Complete assignment
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} models.Assignment
// @Failure 409 {object} ErrorResponse
// @Router /api/assignments/{id}/complete [post]
func (h *Handler) CompleteAssignment(c *gin.Context) {
	h.assignmentAction(c, h.Assignments.CompleteAssignment)
}

// @Summary Cancel assignment
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} models.Assignment
// @Failure 409 {object} ErrorResponse
// @Router /api/assignments/{id}/cancel [post]
func (h *Handler) CancelAssignment(c *gin.Context) {
	h.assignmentAction(c, h.Assignments.CancelAssignment)
}

func (h *Handler) assignmentAction(c *gin.Context, fn func(ctx context.Context, id string) (models.Assignment, error)) {
	a, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
