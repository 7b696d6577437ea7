package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/postforge/postforge/internal/api/handlers"
	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/auth/canva"
	"github.com/postforge/postforge/internal/auth/session"
	"github.com/postforge/postforge/internal/auth/token"
	"github.com/postforge/postforge/internal/branding"
	"github.com/postforge/postforge/internal/db"
	"github.com/postforge/postforge/internal/monitor"
	"github.com/postforge/postforge/internal/platforms"
	"github.com/postforge/postforge/internal/publisher"
	"github.com/postforge/postforge/internal/scheduler"
	"github.com/postforge/postforge/internal/secrets"
)

func main() {
	// Initialize database
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "postforge.db"
	}
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Media storage for logos and post images
	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media"
	}
	if err := os.MkdirAll(filepath.Join(mediaDir, "posts"), 0o755); err != nil {
		log.Fatalf("Failed to prepare media directory: %v", err)
	}

	// Session signing and token encryption keys persist in the config table
	sessions := session.NewService(db.GetSecret(database, "jwt_secret"))
	box, err := secrets.NewBox(db.GetSecret(database, "token_encryption_key"))
	if err != nil {
		log.Fatalf("Failed to initialize token encryption: %v", err)
	}

	// Platform constraint catalog (config file or built-in defaults)
	if err := platforms.InitFromEnvAndConfig(); err != nil {
		log.Fatalf("Failed to load platform catalog: %v", err)
	}

	// Canva token manager keeps connected accounts refreshed
	tokenManager := token.NewManager(database)
	tokenManager.StartRefreshLoop()

	// Publisher registry and the scheduling loop behind it
	registry := publisher.NewRegistry()
	compositor := branding.New()
	sched := scheduler.New(database, registry, box)
	sched.Start(context.Background())

	// Request monitor
	mon := monitor.New(database)

	// Create router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// ============================================
	// Public Routes (No Auth Required)
	// ============================================

	r.Get("/health", handlers.HealthHandler())
	r.Get("/api/version", handlers.VersionHandler())

	r.Post("/api/auth/register", handlers.RegisterHandler(database, sessions))
	r.Post("/api/auth/login", handlers.LoginHandler(database, sessions))
	r.Post("/api/auth/refresh", handlers.RefreshSessionHandler(database, sessions))

	// Canva redirects back here after consent
	r.Get("/auth/canva/callback", canva.HandleCallback(database))

	// Uploaded media
	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))
	r.Get("/media/*", fileServer.ServeHTTP)

	// ============================================
	// Protected Routes (JWT Required)
	// ============================================

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(sessions))
		// Monitor runs inside auth so the user identity is on the context
		r.Use(mon.Middleware)

		r.Get("/auth/canva/connect", canva.HandleConnect)

		r.Route("/api", func(r chi.Router) {
			// Account
			r.Post("/auth/logout", handlers.LogoutHandler())
			r.Get("/auth/profile", handlers.ProfileHandler(database))
			r.Put("/auth/profile", handlers.UpdateProfileHandler(database))
			r.Post("/auth/change-password", handlers.ChangePasswordHandler(database))
			r.Get("/auth/stats", handlers.UserStatsHandler(database))

			// Canva connection
			r.Get("/canva/status", handlers.CanvaStatusHandler(database))
			r.Post("/canva/refresh", handlers.CanvaRefreshHandler(tokenManager))
			r.Post("/canva/disconnect", handlers.CanvaDisconnectHandler(tokenManager))

			// Company profile and branding assets
			r.Get("/company-profile", handlers.GetCompanyProfileHandler(database))
			r.Put("/company-profile", handlers.UpdateCompanyProfileHandler(database))
			r.Post("/company-profile/logo", handlers.UploadLogoHandler(database, mediaDir))

			// Brand voices
			r.Get("/brand-voices", handlers.ListBrandVoicesHandler(database))
			r.Post("/brand-voices", handlers.CreateBrandVoiceHandler(database))
			r.Get("/brand-voices/{voiceID}", handlers.GetBrandVoiceHandler(database))
			r.Put("/brand-voices/{voiceID}", handlers.UpdateBrandVoiceHandler(database))
			r.Delete("/brand-voices/{voiceID}", handlers.DeleteBrandVoiceHandler(database))

			// Connected social accounts
			r.Get("/social-accounts", handlers.ListSocialAccountsHandler(database))
			r.Post("/social-accounts", handlers.ConnectSocialAccountHandler(database, box))
			r.Delete("/social-accounts/{accountID}", handlers.DisconnectSocialAccountHandler(database))

			// Posts
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", handlers.ListPostsHandler(database))
				r.Post("/", handlers.CreatePostHandler(database))
				r.Get("/pending", handlers.PendingPostsHandler(database))
				r.Get("/stats", handlers.PostStatsHandler(database))
				r.Post("/generate", handlers.GeneratePostsHandler(database))
				r.Post("/bulk-approve", handlers.BulkApproveHandler(database))
				r.Post("/bulk-reject", handlers.BulkRejectHandler(database))

				r.Route("/{postID}", func(r chi.Router) {
					r.Get("/", handlers.GetPostHandler(database))
					r.Put("/", handlers.UpdatePostHandler(database))
					r.Delete("/", handlers.DeletePostHandler(database))
					r.Post("/schedule", handlers.SchedulePostHandler(database))
					r.Post("/publish", handlers.PublishNowHandler(database, sched))
					r.Post("/cancel", handlers.CancelPostHandler(database))
					r.Post("/upload-image", handlers.UploadPostImageHandler(database, mediaDir))
					r.Post("/apply-branding", handlers.ApplyBrandingHandler(database, compositor, mediaDir))
					r.Get("/performance", handlers.GetPostPerformanceHandler(database))
				})
			})
			r.Get("/performance", handlers.ListPerformanceHandler(database))
			r.Put("/post-platforms/{platformID}/performance", handlers.UpsertPerformanceHandler(database))

			// Content templates
			r.Get("/templates", handlers.ListTemplatesHandler(database))
			r.Post("/templates", handlers.CreateTemplateHandler(database))
			r.Get("/templates/{templateID}", handlers.GetTemplateHandler(database))
			r.Put("/templates/{templateID}", handlers.UpdateTemplateHandler(database))
			r.Post("/templates/{templateID}/render", handlers.RenderTemplateHandler(database))
			r.Delete("/templates/{templateID}", handlers.DeleteTemplateHandler(database))

			// Request monitor
			r.Get("/requests/logs", handlers.GetRequestLogsHandler(mon))
			r.Get("/requests/stats", handlers.GetRequestStatsHandler(mon))
			r.Post("/requests/clear", handlers.ClearRequestLogsHandler(mon))
			r.Post("/requests/toggle", handlers.ToggleLoggingHandler(mon))
		})
	})

	// Start server
	host := os.Getenv("HOST")
	if host == "" {
		host = "127.0.0.1" // Set HOST=0.0.0.0 for LAN access
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := host + ":" + port

	log.Printf("🚀 PostForge starting on http://%s", addr)
	log.Printf("🔌 API: http://%s/api", addr)
	log.Printf("🎨 Canva connect: http://%s/auth/canva/connect", addr)
	if !canva.IsConfigured() {
		log.Printf("⚠️ CANVA_CLIENT_ID/CANVA_CLIENT_SECRET not set, Canva integration disabled")
	}

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// corsOrigins returns the allowed origins, defaulting to local dev hosts.
func corsOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return []string{origins}
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}
