package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/username/clubfolio/src/config"
	"github.com/username/clubfolio/src/database"
	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/model"
	"github.com/username/clubfolio/src/security"
	"github.com/username/clubfolio/src/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type OAuthHandler struct {
	authService *security.AuthService
	oauthConfig *oauth2.Config
}

func NewOAuthHandler(authService *security.AuthService) *OAuthHandler {
	return &OAuthHandler{
		authService: authService,
		oauthConfig: &oauth2.Config{
			ClientID:     config.Cfg.GoogleClientID,
			ClientSecret: config.Cfg.GoogleClientSecret,
			RedirectURL:  config.Cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// HandleGoogleLogin redirects the member to Google's consent screen.
func (h *OAuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := security.GenerateSecureToken()
	if err != nil {
		utils.SendJSONError(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   600,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback exchanges the code, provisions the user on first
// sign-in, and issues the same session pair as a local login.
func (h *OAuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		utils.SendJSONError(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	token, err := h.oauthConfig.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		logger.L.Error("OAuth code exchange failed", "error", err)
		utils.SendJSONError(w, "Failed to exchange authorization code", http.StatusBadGateway)
		return
	}

	client := h.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		logger.L.Error("Failed to fetch Google userinfo", "error", err)
		utils.SendJSONError(w, "Failed to fetch user profile", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	var profile struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		utils.SendJSONError(w, "Invalid user profile response", http.StatusBadGateway)
		return
	}

	user, err := model.GetUserByEmail(database.DB, strings.ToLower(profile.Email))
	if err == sql.ErrNoRows {
		user = &model.User{
			Username:        strings.ToLower(profile.Email),
			Email:           strings.ToLower(profile.Email),
			Password:        "",
			AuthProvider:    "google",
			IsEmailVerified: profile.VerifiedEmail,
		}
		if createErr := user.CreateUser(database.DB); createErr != nil {
			logger.L.Error("Failed to provision Google user", "email", profile.Email, "error", createErr)
			utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		utils.SendJSONError(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}

	accessToken, err := h.authService.GenerateToken(strconv.FormatInt(user.ID, 10))
	if err != nil {
		utils.SendJSONError(w, "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]interface{}{
		"access_token": accessToken,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		},
	}, http.StatusOK)
}
