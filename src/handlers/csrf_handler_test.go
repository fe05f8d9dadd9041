package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/clubfolio/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

var testCSRFKey = []byte("csrf-test-key-needs-32-bytes-min!")

func TestGetCSRFTokenIssuesCookieAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	GetCSRFToken(rec, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["csrfToken"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Equal(t, body["csrfToken"], cookies[0].Value, "cookie and body carry the same token")
	assert.Equal(t, body["csrfToken"], rec.Header().Get("X-CSRF-Token"))
}

func TestCSRFMiddleware(t *testing.T) {
	protected := CSRFMiddleware(testCSRFKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("GET passes without a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("POST without a token is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/upload/positions", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("POST with matching cookie and header passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload/positions", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "token-value"})
		req.Header.Set("X-CSRF-Token", "token-value")

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("POST with mismatched tokens is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload/positions", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "token-value"})
		req.Header.Set("X-CSRF-Token", "another-value")

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
