package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spitfire8790/landiqr/internal/analytics/categorize"
	analyticsdomain "github.com/spitfire8790/landiqr/internal/analytics/domain"
)

// eventFilter reads the optional ?event= query, defaulting to the
// unfiltered view.
func eventFilter(c *gin.Context) string {
	filter := strings.TrimSpace(c.Query("event"))
	if filter == "" {
		return analyticsdomain.AllEvents
	}
	return filter
}

// @Summary      Organisation Summaries
// @Description  Per-organisation usage rollups, busiest first
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  []domain.OrganisationSummary
// @Router       /analytics/organisations [get]
func (s *Server) GetOrganisationSummaries(c *gin.Context) {
	summaries, err := s.analyticsSvc.OrganisationSummaries(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// @Summary      Customer Type Segments
// @Description  Stacked per-organisation bars segmented by customer type
// @Tags         analytics
// @Produce      json
// @Param        event  query  string  false  "Event filter"
// @Success      200  {object}  []domain.SegmentBar
// @Router       /analytics/segments [get]
func (s *Server) GetEventSegments(c *gin.Context) {
	bars, err := s.analyticsSvc.EventSegments(c.Request.Context(), eventFilter(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bars})
}

// @Summary      Job Title Segments
// @Description  Stacked per-organisation bars segmented by job-title category
// @Tags         analytics
// @Produce      json
// @Param        event  query  string  false  "Event filter"
// @Success      200  {object}  []domain.SegmentBar
// @Router       /analytics/job-titles [get]
func (s *Server) GetJobTitleSegments(c *gin.Context) {
	bars, err := s.analyticsSvc.JobTitleSegments(c.Request.Context(), eventFilter(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bars})
}

// @Summary      Job Title Distribution
// @Description  User counts per job-title category across the whole dataset
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  []domain.CategoryCount
// @Router       /analytics/job-title-distribution [get]
func (s *Server) GetJobTitleDistribution(c *gin.Context) {
	counts, err := s.analyticsSvc.JobTitleDistribution(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}

// @Summary      Recency Stats
// @Description  Per-organisation activity-recency boxplot aggregates
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  []domain.OrgStats
// @Router       /analytics/recency [get]
func (s *Server) GetRecencyStats(c *gin.Context) {
	stats, err := s.analyticsSvc.OrgRecencyStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// @Summary      Analytics Metadata
// @Description  Dataset freshness plus the category taxonomies for rendering
// @Tags         analytics
// @Produce      json
// @Router       /analytics/meta [get]
func (s *Server) GetAnalyticsMeta(c *gin.Context) {
	asOf, err := s.analyticsSvc.DataAsOf(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"data_as_of":           asOf,
		"display_categories":   categorize.DisplayCategoryOrder,
		"job_title_categories": categorize.JobTitleCategories(),
	}})
}

// @Summary      Refresh Analytics
// @Description  Drop the cached session and re-fetch every source
// @Tags         analytics
// @Produce      json
// @Router       /analytics/refresh [post]
func (s *Server) RefreshAnalytics(c *gin.Context) {
	if !s.refreshLimiter.Allow(c.ClientIP()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	if err := s.analyticsSvc.Refresh(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "analytics.refresh", "session", nil, nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
