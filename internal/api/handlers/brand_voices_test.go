package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/db/models"
)

func seedBrandVoice(t *testing.T, database *gorm.DB, userID string) *models.BrandVoice {
	t.Helper()
	voice := models.BrandVoice{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   "voice-" + uuid.New().String(),
		Tone:   "professional",
	}
	if err := database.Create(&voice).Error; err != nil {
		t.Fatalf("seed brand voice: %v", err)
	}
	return &voice
}

func TestGetBrandVoice(t *testing.T) {
	database := newHandlersTestDB(t)
	user := seedUser(t, database, "voice-get@example.com")
	voice := seedBrandVoice(t, database, user.ID)

	router := chi.NewRouter()
	router.Get("/api/brand-voices/{voiceID}", GetBrandVoiceHandler(database))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/brand-voices/"+voice.ID, "", user))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var got models.BrandVoice
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ID != voice.ID || got.Name != voice.Name {
		t.Errorf("unexpected voice: %+v", got)
	}

	// Scoped to the owner.
	other := seedUser(t, database, "voice-get-other@example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/brand-voices/"+voice.ID, "", other))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign voice, got %d", rec.Code)
	}
}
