package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/auth/canva"
	"github.com/postforge/postforge/internal/auth/token"
	"github.com/postforge/postforge/internal/db/models"
)

// CanvaStatusHandler reports whether the user has a live Canva connection.
func CanvaStatusHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		if err := database.First(&user, "id = ?", middleware.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}

		status := map[string]any{
			"configured": canva.IsConfigured(),
			"connected":  user.HasCanvaConnection(),
		}
		if user.CanvaTokenExpires != nil {
			status["expires_at"] = user.CanvaTokenExpires.Format(time.RFC3339)
			status["expired"] = user.CanvaTokenExpires.Before(time.Now())
		}
		respondJSON(w, http.StatusOK, status)
	}
}

// CanvaRefreshHandler forces an immediate refresh of the user's Canva token.
func CanvaRefreshHandler(tokenMgr *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tokenMgr.RefreshUserToken(middleware.UserID(r.Context())); err != nil {
			respondError(w, http.StatusBadGateway, "Canva refresh failed: "+err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Canva token refreshed",
		})
	}
}

// CanvaDisconnectHandler removes the user's Canva connection.
func CanvaDisconnectHandler(tokenMgr *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tokenMgr.Disconnect(middleware.UserID(r.Context())); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
	}
}
