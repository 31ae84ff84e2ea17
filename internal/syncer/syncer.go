// Package syncer keeps subscribed channels in sync with YouTube. It
// discovers fresh uploads through the Data API and records them for the
// processing pipeline, deduplicating against what is already stored.
package syncer

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pkalinow/ytdigest/internal/config"
	"github.com/pkalinow/ytdigest/internal/models"
	"github.com/pkalinow/ytdigest/internal/store"
	"github.com/pkalinow/ytdigest/internal/util"
	"github.com/pkalinow/ytdigest/internal/youtube"
)

// Catalog is the slice of the YouTube Data API the syncer depends on.
// *youtube.Client satisfies it; tests substitute a fake.
type Catalog interface {
	GetChannelInfo(channelID string) (*youtube.ChannelInfo, error)
	GetUploadsPlaylistID(channelID string) (string, error)
	ListPlaylistVideos(playlistID string, maxResults int, pageToken string) (*youtube.PlaylistPage, error)
	ResolveChannelName(name string) (string, error)
}

type Syncer struct {
	store         *store.Store
	catalog       Catalog
	freshnessDays int
	maxVideos     int
}

func New(st *store.Store, catalog Catalog, cfg *config.Config) *Syncer {
	return &Syncer{
		store:         st,
		catalog:       catalog,
		freshnessDays: cfg.Sync.FreshnessDays,
		maxVideos:     cfg.Sync.MaxVideos,
	}
}

// Subscribe adds a channel from any of the URL forms YouTube uses
// (/channel/UC…, /@handle, /c/name, /user/name). Handles and names are
// resolved to a canonical channel ID before storing.
func (s *Syncer) Subscribe(rawURL string) (*models.Channel, error) {
	ref, err := util.ParseChannelURL(rawURL)
	if err != nil {
		return nil, err
	}

	channelID := ref.Name
	if ref.Kind != "channel" {
		channelID, err = s.catalog.ResolveChannelName(ref.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve channel %q: %w", ref.Name, err)
		}
	}

	info, err := s.catalog.GetChannelInfo(channelID)
	if err != nil {
		return nil, err
	}

	return s.store.CreateChannel(info.ChannelID, info.Title, rawURL, info.ThumbnailURL)
}

// SyncChannel discovers fresh uploads for one stored channel and records
// them as pending. It returns how many videos were newly added and how
// many were already known.
func (s *Syncer) SyncChannel(channelDBID int64) (int, int, error) {
	return s.SyncChannelMax(channelDBID, s.maxVideos)
}

// SyncChannelMax is SyncChannel with a caller-supplied cap on how many
// fresh videos to collect. A non-positive or oversized cap falls back to
// the configured maximum.
func (s *Syncer) SyncChannelMax(channelDBID int64, maxVideos int) (int, int, error) {
	if maxVideos <= 0 || maxVideos > s.maxVideos {
		maxVideos = s.maxVideos
	}

	channel, err := s.store.GetChannel(channelDBID)
	if err != nil {
		return 0, 0, err
	}

	fresh, err := s.discoverFresh(channel.ChannelID, maxVideos)
	if err != nil {
		return 0, 0, err
	}
	if len(fresh) == 0 {
		return 0, 0, nil
	}

	added, skipped, err := s.store.InsertVideos(channel.ID, fresh)
	if err != nil {
		return 0, 0, err
	}
	log.Printf("Synced channel %s: %d new, %d already known", channel.Name, added, skipped)
	return added, skipped, nil
}

// discoverFresh walks the channel's uploads playlist, newest first, and
// collects videos published within the freshness window. The walk stops
// at the first video older than the cutoff: everything after it on the
// playlist is older still.
func (s *Syncer) discoverFresh(channelID string, maxVideos int) ([]models.NewVideo, error) {
	playlistID, err := s.catalog.GetUploadsPlaylistID(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get uploads playlist: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.freshnessDays)

	var fresh []models.NewVideo
	pageToken := ""
	for {
		page, err := s.catalog.ListPlaylistVideos(playlistID, youtube.MaxPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list uploads: %w", err)
		}

		for _, v := range page.Videos {
			publishedAt, err := time.Parse(time.RFC3339, v.PublishedAt)
			if err != nil {
				log.Printf("Skipping video %s: unparseable publishedAt %q", v.VideoID, v.PublishedAt)
				continue
			}
			if publishedAt.Before(cutoff) {
				return fresh, nil
			}
			if err := util.ValidateVideoID(v.VideoID); err != nil {
				log.Printf("Skipping playlist entry with malformed video ID %q", v.VideoID)
				continue
			}
			fresh = append(fresh, models.NewVideo{
				VideoID:      v.VideoID,
				Title:        v.Title,
				ThumbnailURL: v.ThumbnailURL,
				PublishedAt:  publishedAt,
			})
			if len(fresh) >= maxVideos {
				return fresh, nil
			}
		}

		if page.NextPageToken == "" {
			return fresh, nil
		}
		pageToken = page.NextPageToken
	}
}

// SyncAll syncs every subscribed channel. One channel failing does not
// stop the sweep; failures are reported per channel in the result.
func (s *Syncer) SyncAll() (*models.SyncStats, error) {
	channels, err := s.store.ListChannels()
	if err != nil {
		return nil, err
	}

	stats := &models.SyncStats{TotalChannels: len(channels)}
	for _, ch := range channels {
		added, skipped, err := s.SyncChannel(ch.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Channel was deleted while the sweep was running.
				continue
			}
			stats.FailedChannels++
			stats.Errors = append(stats.Errors, models.ChannelSyncError{
				ChannelName: ch.Name,
				Error:       err.Error(),
			})
			log.Printf("Failed to sync channel %s: %v", ch.Name, err)
			continue
		}
		stats.SuccessfulChannels++
		stats.TotalNewVideos += added
		stats.TotalSkippedVideos += skipped
	}
	return stats, nil
}
