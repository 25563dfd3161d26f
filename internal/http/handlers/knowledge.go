package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenroute/backend/internal/apperr"
)

// @Summary Regional facts
// @Tags knowledge
// @Produce json
// @Param region path string true "Region key"
// @Success 200 {object} knowledge.RegionalFacts
// @Failure 404 {object} ErrorResponse
// @Router /api/knowledge/regions/{region} [get]
func (h *Handler) RegionFacts(c *gin.Context) {
	f := h.Knowledge.RegionalFacts(c.Param("region"))
	if f.Region == "" {
		h.writeAppError(c, apperr.NotFound("region", c.Param("region")))
		return
	}
	c.JSON(http.StatusOK, f)
}

// @Summary Known regions
// @Tags knowledge
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/knowledge/regions [get]
func (h *Handler) Regions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Knowledge.Regions()})
}

// @Summary Seasonal activities
// @Tags knowledge
// @Produce json
// @Param season path string true "spring, summer, fall or winter"
// @Success 200 {object} map[string]any
// @Failure 404 {object} ErrorResponse
// @Router /api/knowledge/seasons/{season} [get]
func (h *Handler) SeasonActivities(c *gin.Context) {
	season := strings.ToLower(strings.TrimSpace(c.Param("season")))
	acts := h.Knowledge.SeasonalActivities(season)
	if acts == nil {
		h.writeAppError(c, apperr.NotFound("season", season))
		return
	}
	c.JSON(http.StatusOK, gin.H{"season": season, "activities": acts})
}

// @Summary Skill facts
// @Tags knowledge
// @Produce json
// @Param skill path string true "Skill name"
// @Success 200 {object} knowledge.SkillFacts
// @Failure 404 {object} ErrorResponse
// @Router /api/knowledge/skills/{skill} [get]
func (h *Handler) SkillFacts(c *gin.Context) {
	f := h.Knowledge.SkillFacts(c.Param("skill"))
	if f.Skill == "" {
		h.writeAppError(c, apperr.NotFound("skill", c.Param("skill")))
		return
	}
	c.JSON(http.StatusOK, f)
}
