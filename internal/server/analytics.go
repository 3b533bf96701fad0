package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
)

func (s *Server) GetStats(c *gin.Context) {
	window := c.DefaultQuery("range", analyticsdomain.RangeAll)

	stats, err := s.analyticsSvc.Stats(c.Request.Context(), currentProjectID(c), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) GetSignupsOverTime(c *gin.Context) {
	rng := c.DefaultQuery("range", analyticsdomain.RangeWeek)

	series, err := s.analyticsSvc.SignupsOverTime(c.Request.Context(), currentProjectID(c), rng)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (s *Server) GetDailySignups(c *gin.Context) {
	buckets, err := s.analyticsSvc.DailySignups(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

func (s *Server) GetTrafficSources(c *gin.Context) {
	sources, err := s.analyticsSvc.TrafficSources(c.Request.Context(), currentProjectID(c), queryInt(c, "limit", 0))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}
