package server

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
)

func (s *Server) ListEntries(c *gin.Context) {
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

// ExportEntries streams the whole waitlist as a CSV download.
func (s *Server) ExportEntries(c *gin.Context) {
	entries, err := s.waitlistSvc.Export(c.Request.Context(), currentProjectID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="waitlist.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"position", "email", "name", "status", "referral_code", "referred_by", "source", "created_at"})
	for i := range entries {
		entry := entries[i]
		referredBy := ""
		if entry.ReferredBy != nil {
			referredBy = entry.ReferredBy.String()
		}
		_ = w.Write([]string{
			strconv.FormatInt(entry.Position, 10),
			entry.Email,
			entry.Name,
			entry.Status,
			entry.ReferralCode,
			referredBy,
			entry.Source,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
}

func (s *Server) GetEntry(c *gin.Context) {
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

func (s *Server) UpdateEntry(c *gin.Context) {
	entryID, err := snowflake.ParseString(c.Param("entryId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req waitlistdomain.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProjectID = currentProjectID(c)
	req.EntryID = entryID

	entry, err := s.waitlistSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) DeleteEntry(c *gin.Context) {
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

func (s *Server) ClearEntries(c *gin.Context) {
	if err := s.waitlistSvc.ClearAll(c.Request.Context(), currentProjectID(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func queryInt(c *gin.Context, name string, def int) int {
	value := c.Query(name)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
