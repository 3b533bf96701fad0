package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/waitlyhq/waitly/internal/observability/context"
)

// APIKeyRequired authenticates requests using a bearer API key. The project
// scope is derived solely from the api_keys table.
func (s *Server) APIKeyRequired(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		key, err := s.apiKeySvc.Verify(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if !key.Allows(permission) {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(contextProjectIDKey, key.ProjectID)

		ctx := obscontext.WithProjectID(c.Request.Context(), key.ProjectID.String())
		ctx = obscontext.WithActor(ctx, "api_key", key.KeyID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
