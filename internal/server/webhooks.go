package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	webhookdomain "github.com/waitlyhq/waitly/internal/webhook/domain"
)

func (s *Server) ListWebhooks(c *gin.Context) {
	webhooks, err := s.webhookSvc.List(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": webhooks})
}

func (s *Server) CreateWebhook(c *gin.Context) {
	var req webhookdomain.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)

	webhook, err := s.webhookSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, webhook)
}

func (s *Server) UpdateWebhook(c *gin.Context) {
	webhookID, err := snowflake.ParseString(c.Param("webhookId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req webhookdomain.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)
	req.WebhookID = webhookID

	webhook, err := s.webhookSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, webhook)
}

func (s *Server) DeleteWebhook(c *gin.Context) {
	webhookID, err := snowflake.ParseString(c.Param("webhookId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.webhookSvc.Delete(c.Request.Context(), currentProjectID(c), webhookID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
