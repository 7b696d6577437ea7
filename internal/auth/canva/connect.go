package canva

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/postforge/postforge/internal/api/middleware"
)

// HandleConnect initiates the Canva OAuth flow for the authenticated user.
// Canva requires PKCE, so a code verifier is generated per attempt and held
// alongside the CSRF state until the callback redeems it.
func HandleConnect(w http.ResponseWriter, r *http.Request) {
	if !IsConfigured() {
		http.Error(w, "Canva integration is not configured", http.StatusServiceUnavailable)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	config := GetOAuthConfig(redirectURL(r))

	verifier := oauth2.GenerateVerifier()
	state := newState(userID, verifier)

	url := config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// redirectURL reconstructs the callback URL from the incoming request so the
// flow works behind a reverse proxy as well as on localhost.
func redirectURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/auth/canva/callback", scheme, r.Host)
}
