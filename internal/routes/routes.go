package routes

import (
	"net/http"

	"github.com/templui/storyloom/internal/app"
	"github.com/templui/storyloom/internal/handler"
	"github.com/templui/storyloom/internal/metrics"
	"github.com/templui/storyloom/internal/middleware"
	"github.com/templui/storyloom/internal/render"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB, app.Store)
	auth := handler.NewAuthHandler(app.AuthService)
	catalog := handler.NewCatalogHandler(app.CatalogService)
	writer := handler.NewWriterHandler(app.WriterService)
	studio := handler.NewStudioHandler(app.Studio, app.LedgerService)
	stories := handler.NewStoryHandler(app.StoryService, app.FileService)
	ledger := handler.NewLedgerHandler(app.LedgerService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Operations
	mux.HandleFunc("GET /healthz", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Catalog (guests see the sample stories only)
	mux.HandleFunc("GET /api/stories", catalog.Stories)
	mux.HandleFunc("GET /api/stories/{id}", catalog.Story)

	// Auth (rate limited)
	rateLimitAuth := middleware.RateLimitAuth()
	mux.HandleFunc("POST /auth/register", rateLimitAuth(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /auth/login", rateLimitAuth(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/app/*)
	// ============================================================================

	mux.HandleFunc("GET /app/me", middleware.RequireAuth(auth.Me))

	// Writing assistant (rate limited, calls the upstream model)
	rateLimitWriter := middleware.RateLimitWriter()
	mux.HandleFunc("POST /app/writer/story", middleware.RequireAuth(rateLimitWriter(writer.GenerateStory)))
	mux.HandleFunc("POST /app/writer/grammar", middleware.RequireAuth(rateLimitWriter(writer.CheckGrammar)))
	mux.HandleFunc("POST /app/writer/plot-twists", middleware.RequireAuth(rateLimitWriter(writer.SuggestPlotTwists)))

	// Studio
	mux.HandleFunc("GET /app/studio", middleware.RequireAuth(studio.Snapshot))
	mux.HandleFunc("PUT /app/studio/story", middleware.RequireAuth(studio.SetStory))
	mux.HandleFunc("POST /app/studio/generate/{type}", middleware.RequireAuth(studio.Generate))
	mux.HandleFunc("POST /app/studio/reset", middleware.RequireAuth(studio.Reset))
	mux.HandleFunc("POST /app/studio/library", middleware.RequireAuth(studio.SaveToLibrary))

	// Saved stories
	mux.HandleFunc("GET /app/stories", middleware.RequireAuth(stories.Stories))
	mux.HandleFunc("GET /app/stories/{id}/assets", middleware.RequireAuth(stories.Assets))
	mux.HandleFunc("GET /app/stories/{id}/cover", middleware.RequireAuth(stories.Cover))
	mux.HandleFunc("POST /app/stories/{id}/cover", middleware.RequireAuth(stories.UploadCover))

	// Ledger
	mux.HandleFunc("GET /app/likes", middleware.RequireAuth(ledger.Likes))
	mux.HandleFunc("POST /app/likes/{id}", middleware.RequireAuth(ledger.ToggleLike))
	mux.HandleFunc("GET /app/drafts", middleware.RequireAuth(ledger.Drafts))
	mux.HandleFunc("POST /app/drafts", middleware.RequireAuth(ledger.SaveDraft))
	mux.HandleFunc("GET /app/published", middleware.RequireAuth(ledger.Published))
	mux.HandleFunc("POST /app/published", middleware.RequireAuth(ledger.Publish))
	mux.HandleFunc("GET /app/library", middleware.RequireAuth(ledger.Library))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		render.Message(w, r, http.StatusNotFound, "not found")
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (read by SecurityHeaders and CSRF)
		middleware.RequestLogging,  // Before CSRF and auth so their rejections are logged
		middleware.SecurityHeaders,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService),
		middleware.WithURLPath,
		middleware.CaptureRoute, // Innermost so r.Pattern is set by the mux
	)

	return handler
}
