package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	embeddomain "github.com/waitlyhq/waitly/internal/embed/domain"
)

func (s *Server) GetEmbedConfiguration(c *gin.Context) {
	configuration, err := s.embedSvc.GetConfiguration(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, configuration)
}

func (s *Server) UpdateEmbedConfiguration(c *gin.Context) {
	var req embeddomain.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)

	configuration, err := s.embedSvc.UpdateConfiguration(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, configuration)
}

func (s *Server) ListCustomFields(c *gin.Context) {
	fields, err := s.embedSvc.ListFields(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (s *Server) CreateCustomField(c *gin.Context) {
	var req embeddomain.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)

	field, err := s.embedSvc.CreateField(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}

func (s *Server) UpdateCustomField(c *gin.Context) {
	fieldID, err := snowflake.ParseString(c.Param("fieldId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req embeddomain.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)
	req.FieldID = fieldID

	field, err := s.embedSvc.UpdateField(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

func (s *Server) DeleteCustomField(c *gin.Context) {
	fieldID, err := snowflake.ParseString(c.Param("fieldId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.embedSvc.DeleteField(c.Request.Context(), currentProjectID(c), fieldID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
