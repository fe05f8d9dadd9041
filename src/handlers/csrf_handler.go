package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/utils"
)

const csrfCookieName = "_clubfolio_csrf"

// GetCSRFToken issues a double-submit CSRF token: the value goes out both
// as a cookie and in the response body, and state-changing requests must
// echo it back in the X-CSRF-Token header.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateRandomToken()
	if err != nil {
		utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // behind TLS termination in production
		MaxAge:   3600,
	})
	w.Header().Set("X-CSRF-Token", token)

	utils.SendJSON(w, map[string]string{"csrfToken": token}, http.StatusOK)
}

// CSRFMiddleware enforces the double-submit check on state-changing
// methods. Safe methods pass through untouched.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || headerToken == "" {
				logger.L.Warn("CSRF check failed: token missing", "path", r.URL.Path, "method", r.Method)
				utils.SendJSONError(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			if !tokensMatch(authKey, cookie.Value, headerToken) {
				logger.L.Warn("CSRF check failed: token mismatch", "path", r.URL.Path, "method", r.Method)
				utils.SendJSONError(w, "CSRF token invalid", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokensMatch compares the cookie and header tokens through a keyed HMAC so
// the comparison is constant-time and bound to the server key.
func tokensMatch(authKey []byte, cookieToken, headerToken string) bool {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(cookieToken))
	expected := mac.Sum(nil)

	mac = hmac.New(sha256.New, authKey)
	mac.Write([]byte(headerToken))
	actual := mac.Sum(nil)

	return hmac.Equal(expected, actual)
}

func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
