package canva

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/db/models"
)

// HandleCallback processes the OAuth callback from Canva and stores the
// token triple on the user's record.
func HandleCallback(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errParam := r.URL.Query().Get("error"); errParam != "" {
			http.Error(w, fmt.Sprintf("Canva authorization denied: %s", errParam), http.StatusBadRequest)
			return
		}

		state := r.URL.Query().Get("state")
		attempt, ok := redeemState(state)
		if !ok {
			http.Error(w, "Invalid or expired state token", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		config := GetOAuthConfig(redirectURL(r))

		token, err := config.Exchange(context.Background(), code, oauth2.VerifierOption(attempt.Verifier))
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", attempt.UserID).Error; err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		displayName := fetchCanvaDisplayName(config.Client(context.Background(), token))

		expiry := token.Expiry
		user.CanvaAccessToken = token.AccessToken
		user.CanvaRefreshToken = token.RefreshToken
		user.CanvaTokenExpires = &expiry
		if err := db.Save(&user).Error; err != nil {
			http.Error(w, fmt.Sprintf("Failed to save Canva tokens: %v", err), http.StatusInternalServerError)
			return
		}

		log.Printf("✅ Canva account connected for %s (expires %s)", user.Email, expiry.Format(time.RFC3339))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta http-equiv="refresh" content="3;url=/">
	<title>Canva Connected</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; background: #1a1a2e; color: #eee; }
		.success { color: #4ade80; }
		code { background: #374151; padding: 2px 6px; border-radius: 4px; color: #fbbf24; }
		.redirect { color: #9ca3af; margin-top: 20px; }
	</style>
</head>
<body>
	<h1 class="success">✅ Canva Connected!</h1>
	<p><strong>Account:</strong> %s</p>
	<p><strong>Canva user:</strong> <code>%s</code></p>
	<p class="redirect">Redirecting to dashboard in <span id="countdown">3</span> seconds...</p>
	<script>
		let sec = 3;
		setInterval(() => { if(sec > 0) document.getElementById('countdown').textContent = --sec; }, 1000);
		setTimeout(() => window.location.href = '/', 3000);
	</script>
</body>
</html>`, user.Email, displayName)
	}
}

// fetchCanvaDisplayName looks up the connected profile's display name.
// Failures are non-fatal since the tokens are already stored.
func fetchCanvaDisplayName(client *http.Client) string {
	resp, err := client.Get(ProfileURL)
	if err != nil {
		log.Printf("⚠️  Failed to fetch Canva profile: %v", err)
		return "unknown"
	}
	defer resp.Body.Close()

	var profile struct {
		Profile struct {
			DisplayName string `json:"display_name"`
		} `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		log.Printf("⚠️  Failed to decode Canva profile: %v", err)
		return "unknown"
	}
	if profile.Profile.DisplayName == "" {
		return "unknown"
	}
	return profile.Profile.DisplayName
}
