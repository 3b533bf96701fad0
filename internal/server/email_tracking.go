package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// trackingPixel is a 1x1 transparent GIF embedded in outgoing emails.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackEmailOpen records an open for the delivery event in the path and
// always answers with the pixel, so the response never reveals whether
// an event ID exists.
func (s *Server) TrackEmailOpen(c *gin.Context) {
	if eventID, err := snowflake.ParseString(c.Param("eventId")); err == nil {
		if err := s.emailSvc.TrackOpen(c.Request.Context(), eventID); err != nil {
			s.log.Debug("track email open", zap.Error(err))
		}
	}
	c.Data(http.StatusOK, "image/gif", trackingPixel)
}

// TrackEmailClick records a click and forwards to the wrapped link.
func (s *Server) TrackEmailClick(c *gin.Context) {
	if eventID, err := snowflake.ParseString(c.Param("eventId")); err == nil {
		if err := s.emailSvc.TrackClick(c.Request.Context(), eventID); err != nil {
			s.log.Debug("track email click", zap.Error(err))
		}
	}

	target := c.Query("url")
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		c.Redirect(http.StatusFound, target)
		return
	}
	c.Status(http.StatusNoContent)
}
