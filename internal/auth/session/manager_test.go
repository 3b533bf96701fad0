package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/waitlyhq/waitly/internal/config"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func TestSetAndReadToken(t *testing.T) {
	m := NewManager(config.Config{})
	c, recorder := newTestContext(t)

	m.Set(c, "token-value", time.Now().Add(time.Hour))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, DefaultCookieName, cookies[0].Name)
	require.Equal(t, "token-value", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.False(t, cookies[0].Secure)

	c2, _ := newTestContext(t)
	c2.Request.AddCookie(cookies[0])
	token, ok := m.ReadToken(c2)
	require.True(t, ok)
	require.Equal(t, "token-value", token)
}

func TestReadTokenMissingOrBlank(t *testing.T) {
	m := NewManager(config.Config{})

	c, _ := newTestContext(t)
	_, ok := m.ReadToken(c)
	require.False(t, ok)

	c2, _ := newTestContext(t)
	c2.Request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "   "})
	_, ok = m.ReadToken(c2)
	require.False(t, ok)
}

func TestSecureFlagFollowsConfig(t *testing.T) {
	m := NewManager(config.Config{AuthCookieSecure: true})
	c, recorder := newTestContext(t)

	m.Set(c, "token-value", time.Now().Add(time.Hour))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].Secure)
}

func TestClearExpiresCookie(t *testing.T) {
	m := NewManager(config.Config{})
	c, recorder := newTestContext(t)

	m.Clear(c)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "", cookies[0].Value)
	require.Less(t, cookies[0].MaxAge, 0)
}