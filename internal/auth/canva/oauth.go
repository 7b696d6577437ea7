package canva

import (
	"os"

	"golang.org/x/oauth2"
)

// Canva Connect API endpoints.
const (
	AuthURL  = "https://www.canva.com/api/oauth/authorize"
	TokenURL = "https://api.canva.com/rest/v1/oauth/token"

	// ProfileURL returns the authenticated Canva user's profile.
	ProfileURL = "https://api.canva.com/rest/v1/users/me/profile"
)

// Scopes required for design export and profile lookup.
var Scopes = []string{
	"design:content:read",
	"design:content:write",
	"asset:read",
	"asset:write",
	"profile:read",
}

// GetOAuthConfig returns the OAuth2 config for the Canva Connect flow.
// Credentials come from the environment; Canva requires PKCE on top of
// the standard authorization-code grant.
func GetOAuthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("CANVA_CLIENT_ID"),
		ClientSecret: os.Getenv("CANVA_CLIENT_SECRET"),
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
	}
}

// IsConfigured reports whether Canva OAuth credentials are present.
func IsConfigured() bool {
	return os.Getenv("CANVA_CLIENT_ID") != "" && os.Getenv("CANVA_CLIENT_SECRET") != ""
}
