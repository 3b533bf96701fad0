package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	emaildomain "github.com/waitlyhq/waitly/internal/email/domain"
)

func (s *Server) ListTemplates(c *gin.Context) {
	templates, err := s.emailSvc.ListTemplates(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) CreateTemplate(c *gin.Context) {
	var req emaildomain.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)

	template, err := s.emailSvc.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (s *Server) UpdateTemplate(c *gin.Context) {
	templateID, err := snowflake.ParseString(c.Param("templateId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req emaildomain.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)
	req.TemplateID = templateID

	template, err := s.emailSvc.UpdateTemplate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (s *Server) DeleteTemplate(c *gin.Context) {
	templateID, err := snowflake.ParseString(c.Param("templateId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.emailSvc.DeleteTemplate(c.Request.Context(), currentProjectID(c), templateID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) ListCampaigns(c *gin.Context) {
	campaigns, err := s.emailSvc.ListCampaigns(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req emaildomain.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)

	campaign, err := s.emailSvc.CreateCampaign(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (s *Server) GetCampaign(c *gin.Context) {
	campaignID, err := snowflake.ParseString(c.Param("campaignId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	campaign, err := s.emailSvc.GetCampaign(c.Request.Context(), currentProjectID(c), campaignID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) UpdateCampaign(c *gin.Context) {
	campaignID, err := snowflake.ParseString(c.Param("campaignId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req emaildomain.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)
	req.CampaignID = campaignID

	campaign, err := s.emailSvc.UpdateCampaign(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) DeleteCampaign(c *gin.Context) {
	campaignID, err := snowflake.ParseString(c.Param("campaignId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.emailSvc.DeleteCampaign(c.Request.Context(), currentProjectID(c), campaignID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) SendCampaign(c *gin.Context) {
	campaignID, err := snowflake.ParseString(c.Param("campaignId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req emaildomain.SendCampaignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	req.ProjectID = currentProjectID(c)
	req.CampaignID = campaignID

	report, err := s.emailSvc.SendCampaign(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) ListEmailEvents(c *gin.Context) {
	var campaignID *snowflake.ID
	if raw := c.Query("campaign_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		campaignID = &id
	}

	events, err := s.emailSvc.ListEvents(c.Request.Context(), currentProjectID(c), campaignID, queryInt(c, "limit", 0))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
