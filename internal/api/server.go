// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkalinow/ytdigest/internal/core"
	"github.com/pkalinow/ytdigest/internal/processor"
	"github.com/pkalinow/ytdigest/internal/store"
	"github.com/pkalinow/ytdigest/internal/syncer"
	"github.com/pkalinow/ytdigest/internal/websocket"
)

// Server holds the dependencies for our API.
type Server struct {
	app       *core.App
	db        *sql.DB
	store     *store.Store
	syncer    *syncer.Syncer
	processor *processor.Processor
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance. The syncer and processor are
// injected so the caller controls which YouTube and Gemini clients back
// them.
func NewServer(app *core.App, sync *syncer.Syncer, proc *processor.Processor) *Server {
	return &Server{
		app:       app,
		db:        app.DB(),
		store:     store.New(app.DB()),
		syncer:    sync,
		processor: proc,
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleGetVersion)

		// Channel Routes
		r.Post("/channels", s.handleAddChannel)
		r.Get("/channels", s.handleListChannels)
		r.Post("/channels/sync", s.handleSyncAll)
		r.Get("/channels/{channelID}", s.handleGetChannel)
		r.Delete("/channels/{channelID}", s.handleDeleteChannel)
		r.Post("/channels/{channelID}/sync", s.handleSyncChannel)

		// Video Routes
		r.Get("/videos", s.handleListVideos)
		r.Post("/videos/process-pending", s.handleProcessPending)
		r.Post("/videos/reprocess-failed", s.handleReprocessFailed)
		r.Get("/videos/{videoID}", s.handleGetVideo)
		r.Post("/videos/{videoID}/process", s.handleProcessVideo)

		r.Get("/stats", s.handleGetStats)

		// Job Triggers
		r.Get("/jobs/status", s.handleGetJobsStatus)
		r.Post("/jobs/run", s.handleRunJob)
	})

	// WebSocket route
	r.Get("/api/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.app.WsHub(), w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
