// Package processor drives videos through the pipeline: claim a pending
// video, fetch its transcript, generate both summaries and persist the
// outcome. Summary failures degrade to stored sentinel text; only a
// missing transcript fails the video.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pkalinow/ytdigest/internal/config"
	"github.com/pkalinow/ytdigest/internal/models"
	"github.com/pkalinow/ytdigest/internal/store"
	"github.com/pkalinow/ytdigest/internal/websocket"
)

const (
	// MaxBatchSize bounds how many videos a single sweep may touch.
	MaxBatchSize = 20

	// maxBatchErrors bounds the error list carried in batch results.
	// Beyond it only the failure counter grows.
	maxBatchErrors = 10
)

// ErrNotClaimable is returned when a video cannot be moved into
// processing, either because another worker claimed it first or because
// it is not in a runnable state.
var ErrNotClaimable = errors.New("video is not in a processable state")

// TranscriptFetcher retrieves caption text for a video, returning the
// text and the language code of the track used.
type TranscriptFetcher interface {
	Fetch(videoID string, preferredLangs []string) (string, string, error)
}

// Summarizer generates the two summary variants from a transcript.
type Summarizer interface {
	Short(ctx context.Context, caption, lang string) (string, error)
	Detailed(ctx context.Context, caption, lang string) (string, error)
}

type Processor struct {
	store      *store.Store
	fetcher    TranscriptFetcher
	summarizer Summarizer
	hub        *websocket.Hub
	languages  []string
	batchSize  int
}

// New wires a Processor. The hub may be nil; progress broadcasts are
// then skipped.
func New(st *store.Store, fetcher TranscriptFetcher, summarizer Summarizer, hub *websocket.Hub, cfg *config.Config) *Processor {
	batchSize := cfg.Processing.BatchSize
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	return &Processor{
		store:      st,
		fetcher:    fetcher,
		summarizer: summarizer,
		hub:        hub,
		languages:  cfg.Processing.Languages,
		batchSize:  batchSize,
	}
}

// ProcessVideo runs the full pipeline for one stored video. The claim is
// a compare-and-swap on the pending status, so two workers racing for
// the same video results in exactly one of them processing it.
func (p *Processor) ProcessVideo(ctx context.Context, id int64) error {
	video, err := p.store.GetVideo(id)
	if err != nil {
		return err
	}

	claimed, err := p.store.TransitionStatus(id, models.StatusPending, models.StatusProcessing)
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("%w: %s is %s", ErrNotClaimable, video.VideoID, video.Status)
	}

	p.broadcast(id, models.StatusProcessing, "Fetching transcript for "+video.Title)

	caption, lang, err := p.fetcher.Fetch(video.VideoID, p.languages)
	if err != nil {
		cause := "Caption extraction failed: " + err.Error()
		if markErr := p.store.MarkVideoFailed(id, cause); markErr != nil {
			log.Printf("Failed to record failure for video %s: %v", video.VideoID, markErr)
		}
		p.broadcast(id, models.StatusFailed, cause)
		return fmt.Errorf("transcript for %s: %w", video.VideoID, err)
	}

	p.broadcast(id, models.StatusProcessing, "Generating summaries for "+video.Title)

	// The two summaries are independent: one failing degrades to a
	// sentinel string while the other still gets stored.
	short, err := p.summarizer.Short(ctx, caption, lang)
	if err != nil {
		log.Printf("Short summary failed for video %s: %v", video.VideoID, err)
		short = "Summary generation failed: " + err.Error()
	}
	detailed, err := p.summarizer.Detailed(ctx, caption, lang)
	if err != nil {
		log.Printf("Detailed summary failed for video %s: %v", video.VideoID, err)
		detailed = "Summary generation failed: " + err.Error()
	}

	if err := p.store.MarkVideoCompleted(id, caption, short, detailed); err != nil {
		return err
	}
	p.broadcast(id, models.StatusCompleted, "Completed "+video.Title)
	return nil
}

// ProcessPending sweeps up to max pending videos, oldest first. One
// video failing does not stop the sweep.
func (p *Processor) ProcessPending(ctx context.Context, max int) (*models.BatchStats, error) {
	if max <= 0 || max > p.batchSize {
		max = p.batchSize
	}

	videos, err := p.store.GetPendingVideos(max)
	if err != nil {
		return nil, err
	}

	stats := &models.BatchStats{}
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.TotalProcessed++
		if err := p.ProcessVideo(ctx, video.ID); err != nil {
			if errors.Is(err, ErrNotClaimable) {
				// Another worker got there first; not a failure.
				stats.TotalProcessed--
				continue
			}
			stats.Failed++
			if len(stats.Errors) < maxBatchErrors {
				stats.Errors = append(stats.Errors, models.VideoError{
					VideoID: video.VideoID,
					Title:   video.Title,
					Error:   err.Error(),
				})
			}
			continue
		}
		stats.Successful++
	}

	log.Printf("Batch sweep finished: %d processed, %d ok, %d failed",
		stats.TotalProcessed, stats.Successful, stats.Failed)
	return stats, nil
}

// ReprocessFailed resets up to max failed videos back to pending and
// runs them through the pipeline again.
func (p *Processor) ReprocessFailed(ctx context.Context, max int) (*models.BatchStats, error) {
	if max <= 0 || max > p.batchSize {
		max = p.batchSize
	}

	videos, err := p.store.GetFailedVideos(max)
	if err != nil {
		return nil, err
	}

	stats := &models.BatchStats{}
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		reset, err := p.store.ResetVideoForReprocess(video.ID)
		if err != nil {
			return stats, err
		}
		if !reset {
			continue
		}
		stats.TotalProcessed++
		if err := p.ProcessVideo(ctx, video.ID); err != nil {
			stats.Failed++
			if len(stats.Errors) < maxBatchErrors {
				stats.Errors = append(stats.Errors, models.VideoError{
					VideoID: video.VideoID,
					Title:   video.Title,
					Error:   err.Error(),
				})
			}
			continue
		}
		stats.Successful++
	}
	return stats, nil
}

// Stats reports per-status video counts.
func (p *Processor) Stats() (*models.ProcessingStats, error) {
	return p.store.GetStats()
}

func (p *Processor) broadcast(videoID int64, status models.ProcessingStatus, message string) {
	if p.hub == nil {
		return
	}
	p.hub.BroadcastJSON(models.ProgressUpdate{
		JobID:   "video-processing",
		Message: message,
		VideoID: videoID,
		Status:  string(status),
		Done:    status == models.StatusCompleted || status == models.StatusFailed,
	})
}
