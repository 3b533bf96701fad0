package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	apikeydomain "github.com/waitlyhq/waitly/internal/apikey/domain"
)

func (s *Server) ListAPIKeys(c *gin.Context) {
	keys, err := s.apiKeySvc.List(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_keys": keys})
}

func (s *Server) CreateAPIKey(c *gin.Context) {
	var req apikeydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)

	secret, err := s.apiKeySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, secret)
}

func (s *Server) RevokeAPIKey(c *gin.Context) {
	keyID, err := snowflake.ParseString(c.Param("keyId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.apiKeySvc.Revoke(c.Request.Context(), currentProjectID(c), keyID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

func (s *Server) DeleteAPIKey(c *gin.Context) {
	keyID, err := snowflake.ParseString(c.Param("keyId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.apiKeySvc.Delete(c.Request.Context(), currentProjectID(c), keyID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
