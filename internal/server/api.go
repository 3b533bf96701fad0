package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
)

// Handlers for the API-key authenticated surface under /v1.

func (s *Server) APIListEntries(c *gin.Context) {
	req := waitlistdomain.ListRequest{
		ProjectID: currentProjectID(c),
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	}

	resp, err := s.waitlistSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) APICreateEntry(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	entry, err := s.waitlistSvc.Join(c.Request.Context(), waitlistdomain.JoinRequest{
		ProjectID:    currentProjectID(c),
		Email:        req.Email,
		Name:         req.Name,
		ReferralCode: req.ReferralCode,
		Source:       source,
		CustomData:   req.CustomData,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) APIGetEntry(c *gin.Context) {
	entryID, err := snowflake.ParseString(c.Param("entryId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	entry, err := s.waitlistSvc.Get(c.Request.Context(), currentProjectID(c), entryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) APIDeleteEntry(c *gin.Context) {
	entryID, err := snowflake.ParseString(c.Param("entryId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.waitlistSvc.Delete(c.Request.Context(), currentProjectID(c), entryID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) APIStats(c *gin.Context) {
	window := c.DefaultQuery("range", analyticsdomain.RangeAll)

	stats, err := s.analyticsSvc.Stats(c.Request.Context(), currentProjectID(c), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
