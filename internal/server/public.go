package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
	"gorm.io/datatypes"
)

type publicProjectView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	LogoURL      string `json:"logo_url,omitempty"`
	TotalSignups int64  `json:"total_signups"`
}

type joinRequest struct {
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	ReferralCode string            `json:"referral_code"`
	Source       string            `json:"source"`
	CustomData   datatypes.JSONMap `json:"custom_data"`
}

type joinResponse struct {
	ID           string `json:"id"`
	Position     int64  `json:"position"`
	ReferralCode string `json:"referral_code"`
}

func (s *Server) publicProjectID(c *gin.Context) (snowflake.ID, bool) {
	projectID, err := snowflake.ParseString(c.Param("projectId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return 0, false
	}
	return projectID, true
}

func (s *Server) PublicProject(c *gin.Context) {
	projectID, ok := s.publicProjectID(c)
	if !ok {
		return
	}

	project, err := s.projectSvc.GetPublic(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, publicProjectView{
		ID:           project.ID.String(),
		Name:         project.Name,
		Description:  project.Description,
		LogoURL:      project.LogoURL,
		TotalSignups: project.TotalSignups,
	})
}

func (s *Server) PublicEmbedSnapshot(c *gin.Context) {
	projectID, ok := s.publicProjectID(c)
	if !ok {
		return
	}

	snapshot, err := s.embedSvc.PublicSnapshot(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) Join(c *gin.Context) {
	projectID, ok := s.publicProjectID(c)
	if !ok {
		return
	}

	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// ?ref= from the shared link wins over the body field.
	referralCode := c.Query("ref")
	if referralCode == "" {
		referralCode = req.ReferralCode
	}

	entry, err := s.waitlistSvc.Join(c.Request.Context(), waitlistdomain.JoinRequest{
		ProjectID:    projectID,
		Email:        req.Email,
		Name:         req.Name,
		ReferralCode: referralCode,
		Source:       req.Source,
		Referrer:     c.Request.Referer(),
		CustomData:   req.CustomData,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, joinResponse{
		ID:           entry.ID.String(),
		Position:     entry.Position,
		ReferralCode: entry.ReferralCode,
	})
}

func (s *Server) EntryStatus(c *gin.Context) {
	projectID, ok := s.publicProjectID(c)
	if !ok {
		return
	}

	status, err := s.waitlistSvc.Status(c.Request.Context(), projectID, c.Param("referralCode"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) RecordView(c *gin.Context) {
	projectID, ok := s.publicProjectID(c)
	if !ok {
		return
	}

	var body struct {
		Source string `json:"source"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	err := s.analyticsSvc.Record(c.Request.Context(), analyticsdomain.RecordEventRequest{
		ProjectID: projectID,
		EventType: analyticsdomain.EventView,
		Referrer:  c.Request.Referer(),
		Source:    body.Source,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
