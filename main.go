package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pkalinow/ytdigest/internal/api"
	"github.com/pkalinow/ytdigest/internal/core"
	"github.com/pkalinow/ytdigest/internal/jobs"
	"github.com/pkalinow/ytdigest/internal/processor"
	"github.com/pkalinow/ytdigest/internal/store"
	"github.com/pkalinow/ytdigest/internal/summarizer"
	"github.com/pkalinow/ytdigest/internal/syncer"
	"github.com/pkalinow/ytdigest/internal/transcript"
	"github.com/pkalinow/ytdigest/internal/youtube"
)

const version = "0.1.0"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env file.")
	}

	// Initialize the core application components
	app, err := core.New(version)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	cfg := app.Config()
	st := store.New(app.DB())

	catalog, err := youtube.New(cfg.YouTube.APIKey)
	if err != nil {
		log.Fatalf("Could not create YouTube client: %v", err)
	}

	summ, err := summarizer.NewFromAPIKey(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("Could not create Gemini summarizer: %v", err)
	}

	sync := syncer.New(st, catalog, cfg)
	proc := processor.New(st, transcript.New(), summ, app.WsHub(), cfg)

	// Register the background jobs and start the scheduler.
	app.JobManager().Register(jobs.JobChannelSync, "Channel Sync", func(ctx jobs.JobContext) {
		if _, err := sync.SyncAll(); err != nil {
			log.Printf("Channel sync job failed: %v", err)
		}
	})
	app.JobManager().Register(jobs.JobProcessPending, "Process Pending Videos", func(ctx jobs.JobContext) {
		if _, err := proc.ProcessPending(context.Background(), 0); err != nil {
			log.Printf("Processing job failed: %v", err)
		}
	})

	scheduler := jobs.StartScheduler(app)
	defer scheduler.Stop()

	// Setup the API server
	server := api.NewServer(app, sync, proc)
	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
