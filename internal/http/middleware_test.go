package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionEcho() http.Handler {
	return SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(getSessionID(r.Context())))
	}))
}

func TestSessionMiddleware_IssuesCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	sessionEcho().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	sessionID := rec.Body.String()
	_, err := uuid.Parse(sessionID)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, sessionID, rec.Header().Get(SessionHeader))
}

func TestSessionMiddleware_ReusesCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSession})
	rec := httptest.NewRecorder()

	sessionEcho().ServeHTTP(rec, req)

	assert.Equal(t, testSession, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionMiddleware_HeaderWins(t *testing.T) {
	other := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSession})
	req.Header.Set(SessionHeader, other)
	rec := httptest.NewRecorder()

	sessionEcho().ServeHTTP(rec, req)

	assert.Equal(t, other, rec.Body.String())
}

func TestSessionMiddleware_RejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "../../etc/passwd")
	rec := httptest.NewRecorder()

	sessionEcho().ServeHTTP(rec, req)

	assert.NotEqual(t, "../../etc/passwd", rec.Body.String())
	_, err := uuid.Parse(rec.Body.String())
	assert.NoError(t, err)
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(getRequestID(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Body.String())
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
