package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/waitlyhq/waitly/internal/auth/domain"
	obscontext "github.com/waitlyhq/waitly/internal/observability/context"
)

const (
	contextUserIDKey    = "user_id"
	contextUserKey      = "user"
	contextProjectIDKey = "project_id"
)

// AuthRequired authenticates requests using the session cookie.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, user.ID)
		c.Set(contextUserKey, user)

		ctx := obscontext.WithActor(c.Request.Context(), "user", user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireProject resolves the :projectId param and verifies the
// authenticated user owns it. Foreign projects read as not found.
func (s *Server) RequireProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := snowflake.ParseString(c.Param("projectId"))
		if err != nil {
			AbortWithError(c, ErrNotFound)
			return
		}

		userID := currentUserID(c)
		if userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if _, err := s.projectSvc.Get(c.Request.Context(), userID, projectID); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextProjectIDKey, projectID)

		ctx := obscontext.WithProjectID(c.Request.Context(), projectID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// JoinRateLimit throttles public signups per client address. When the
// limiter is not configured, requests pass through untouched.
func (s *Server) JoinRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.joinLimiter.Enabled() {
			c.Next()
			return
		}

		allowed, retryAfter := s.joinLimiter.Allow(c.Request.Context(), c.ClientIP())
		if allowed {
			s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), "join")
			c.Next()
			return
		}

		s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "join")
		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
			Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			},
		})
	}
}

func currentUserID(c *gin.Context) snowflake.ID {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := value.(snowflake.ID)
	return id
}

func currentProjectID(c *gin.Context) snowflake.ID {
	value, ok := c.Get(contextProjectIDKey)
	if !ok {
		return 0
	}
	id, _ := value.(snowflake.ID)
	return id
}

func currentUser(c *gin.Context) (authdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return authdomain.User{}, false
	}
	user, ok := value.(authdomain.User)
	return user, ok
}
