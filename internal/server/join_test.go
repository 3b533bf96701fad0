package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
)

type fakeWaitlistService struct {
	waitlistdomain.Service

	lastJoin waitlistdomain.JoinRequest
	joinErr  error

	exportEntries []waitlistdomain.Entry
	deleted       []snowflake.ID
}

func (f *fakeWaitlistService) Join(ctx context.Context, req waitlistdomain.JoinRequest) (waitlistdomain.Entry, error) {
	f.lastJoin = req
	_ = ctx
	if f.joinErr != nil {
		return waitlistdomain.Entry{}, f.joinErr
	}
	return waitlistdomain.Entry{
		ID:           snowflake.ID(42),
		ProjectID:    req.ProjectID,
		Email:        req.Email,
		Position:     7,
		ReferralCode: "abc123",
	}, nil
}

func newJoinRouter(svc waitlistdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{waitlistSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/public/projects/:projectId/join", srv.JoinRateLimit(), srv.Join)
	return router
}

func TestJoinHandlerCreatesEntry(t *testing.T) {
	svc := &fakeWaitlistService{}
	router := newJoinRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/projects/100/join",
		bytes.NewBufferString(`{"email":"ada@example.com","referral_code":"bodycode"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var body joinResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Position != 7 || body.ReferralCode != "abc123" {
		t.Fatalf("body = %+v", body)
	}
	if svc.lastJoin.ProjectID != snowflake.ID(100) {
		t.Fatalf("project = %v", svc.lastJoin.ProjectID)
	}
	if svc.lastJoin.ReferralCode != "bodycode" {
		t.Fatalf("referral code = %q", svc.lastJoin.ReferralCode)
	}
}

func TestJoinHandlerQueryRefWins(t *testing.T) {
	svc := &fakeWaitlistService{}
	router := newJoinRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/projects/100/join?ref=linkcode",
		bytes.NewBufferString(`{"email":"ada@example.com","referral_code":"bodycode"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d", resp.Code)
	}
	if svc.lastJoin.ReferralCode != "linkcode" {
		t.Fatalf("referral code = %q, want linkcode", svc.lastJoin.ReferralCode)
	}
}

func TestJoinHandlerDuplicateEmailConflicts(t *testing.T) {
	svc := &fakeWaitlistService{joinErr: waitlistdomain.ErrEmailAlreadyRegistered}
	router := newJoinRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/projects/100/join",
		bytes.NewBufferString(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.Code)
	}
}

func TestJoinHandlerReferralCodeExhaustedUnavailable(t *testing.T) {
	svc := &fakeWaitlistService{joinErr: waitlistdomain.ErrReferralCodeExhausted}
	router := newJoinRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/projects/100/join",
		bytes.NewBufferString(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.Code)
	}
}

func TestJoinHandlerBadProjectID(t *testing.T) {
	svc := &fakeWaitlistService{}
	router := newJoinRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/projects/not-a-number/join",
		bytes.NewBufferString(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestJoinHandlerInvalidBody(t *testing.T) {
	svc := &fakeWaitlistService{}
	router := newJoinRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/projects/100/join",
		bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}
