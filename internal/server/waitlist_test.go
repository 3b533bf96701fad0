package server

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
)

func (f *fakeWaitlistService) Export(ctx context.Context, projectID snowflake.ID) ([]waitlistdomain.Entry, error) {
	_ = ctx
	_ = projectID
	return f.exportEntries, nil
}

func (f *fakeWaitlistService) Delete(ctx context.Context, projectID, entryID snowflake.ID) error {
	_ = ctx
	_ = projectID
	f.deleted = append(f.deleted, entryID)
	return nil
}

func withProject(id snowflake.ID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextProjectIDKey, id)
		c.Next()
	}
}

func TestExportEntriesWritesCSV(t *testing.T) {
	referrer := snowflake.ID(41)
	svc := &fakeWaitlistService{
		exportEntries: []waitlistdomain.Entry{
			{
				Position:     1,
				Email:        "ada@example.com",
				Name:         "Ada",
				Status:       waitlistdomain.StatusActive,
				ReferralCode: "abc123",
				Source:       "direct",
				CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				Position:     2,
				Email:        "grace@example.com",
				Status:       waitlistdomain.StatusApproved,
				ReferralCode: "def456",
				ReferredBy:   &referrer,
				CreatedAt:    time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
			},
		},
	}

	gin.SetMode(gin.TestMode)
	srv := &Server{waitlistSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/admin/projects/:projectId/entries/export", withProject(100), srv.ExportEntries)

	req := httptest.NewRequest(http.MethodGet, "/admin/projects/100/entries/export", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q, want text/csv", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "waitlist.csv") {
		t.Fatalf("content disposition = %q", cd)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want header plus 2 entries", len(records))
	}
	if records[0][0] != "position" || records[0][1] != "email" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][0] != "1" || records[1][1] != "ada@example.com" || records[1][3] != waitlistdomain.StatusActive {
		t.Fatalf("row 1 = %v", records[1])
	}
	if records[2][5] != referrer.String() {
		t.Fatalf("referred_by = %q, want %q", records[2][5], referrer.String())
	}
	if records[2][7] != "2026-08-02T12:00:00Z" {
		t.Fatalf("created_at = %q", records[2][7])
	}
}

func TestAPIDeleteEntry(t *testing.T) {
	svc := &fakeWaitlistService{}

	gin.SetMode(gin.TestMode)
	srv := &Server{waitlistSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.DELETE("/v1/entries/:entryId", withProject(100), srv.APIDeleteEntry)

	req := httptest.NewRequest(http.MethodDelete, "/v1/entries/42", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != snowflake.ID(42) {
		t.Fatalf("deleted = %v, want [42]", svc.deleted)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/entries/not-an-id", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}
