package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/pkalinow/ytdigest/internal/models"
)

// ErrInvalidTransition is returned when a status write is not allowed by the
// processing state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// InsertVideos stores a batch of discovered videos for a channel with status
// PENDING. Videos whose YouTube ID already exists are counted as skipped.
// A uniqueness race with a concurrent sync is caught per video and also
// counted as skipped; the batch never aborts because of one member.
func (s *Store) InsertVideos(channelID int64, videos []models.NewVideo) (int, int, error) {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM channels WHERE id = ?", channelID).Scan(&exists); err != nil {
		return 0, 0, fmt.Errorf("failed to verify channel: %w", err)
	}
	if exists == 0 {
		return 0, 0, ErrNotFound
	}

	newCount := 0
	skippedCount := 0
	for _, v := range videos {
		var existingID int64
		err := s.db.QueryRow("SELECT id FROM videos WHERE video_id = ?", v.VideoID).Scan(&existingID)
		if err == nil {
			skippedCount++
			continue
		}
		if err != sql.ErrNoRows {
			return newCount, skippedCount, fmt.Errorf("failed to check video %s: %w", v.VideoID, err)
		}

		now := time.Now().UTC()
		var publishedAt interface{}
		if !v.PublishedAt.IsZero() {
			publishedAt = v.PublishedAt.UTC()
		}
		_, err = s.db.Exec(`
            INSERT INTO videos (channel_id, video_id, title, thumbnail_url, published_at, processing_status, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        `, channelID, v.VideoID, v.Title, v.ThumbnailURL, publishedAt, models.StatusPending, now, now)
		if err != nil {
			if isUniqueViolation(err) {
				// Another sync inserted it first.
				skippedCount++
				continue
			}
			return newCount, skippedCount, fmt.Errorf("failed to insert video %s: %w", v.VideoID, err)
		}
		newCount++
	}
	return newCount, skippedCount, nil
}

const videoColumns = `
    v.id, v.channel_id, c.name, v.video_id, v.title, COALESCE(v.thumbnail_url, ''),
    v.published_at, COALESCE(v.caption_text, ''), COALESCE(v.short_summary, ''),
    COALESCE(v.detailed_summary, ''), v.processing_status, v.created_at, v.updated_at`

func scanVideo(scanner interface{ Scan(...interface{}) error }) (*models.Video, error) {
	var v models.Video
	var publishedAt sql.NullTime
	err := scanner.Scan(&v.ID, &v.ChannelID, &v.ChannelName, &v.VideoID, &v.Title, &v.ThumbnailURL,
		&publishedAt, &v.CaptionText, &v.ShortSummary, &v.DetailedSummary, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		v.PublishedAt = &t
	}
	return &v, nil
}

// GetVideo retrieves a single video by its database ID.
func (s *Store) GetVideo(id int64) (*models.Video, error) {
	row := s.db.QueryRow(`
        SELECT `+videoColumns+`
        FROM videos v JOIN channels c ON v.channel_id = c.id
        WHERE v.id = ?
    `, id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

// GetVideoByVideoID retrieves a single video by its YouTube video ID.
func (s *Store) GetVideoByVideoID(videoID string) (*models.Video, error) {
	row := s.db.QueryRow(`
        SELECT `+videoColumns+`
        FROM videos v JOIN channels c ON v.channel_id = c.id
        WHERE v.video_id = ?
    `, videoID)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

func (s *Store) getVideosByStatus(status models.ProcessingStatus, limit int) ([]*models.Video, error) {
	rows, err := s.db.Query(`
        SELECT `+videoColumns+`
        FROM videos v JOIN channels c ON v.channel_id = c.id
        WHERE v.processing_status = ?
        ORDER BY v.created_at ASC LIMIT ?
    `, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s videos: %w", status, err)
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// GetPendingVideos returns up to limit PENDING videos, oldest first, so the
// batch sweep is FIFO fair.
func (s *Store) GetPendingVideos(limit int) ([]*models.Video, error) {
	return s.getVideosByStatus(models.StatusPending, limit)
}

// GetFailedVideos returns up to limit FAILED videos, oldest first.
func (s *Store) GetFailedVideos(limit int) ([]*models.Video, error) {
	return s.getVideosByStatus(models.StatusFailed, limit)
}

// ListVideos returns a page of videos ordered by publication date, newest
// first, optionally filtered to a single channel (channelID = 0 means all).
// It also returns the total row count for pagination.
func (s *Store) ListVideos(channelID int64, page, perPage int) ([]*models.Video, int, error) {
	where := ""
	args := []interface{}{}
	if channelID != 0 {
		where = "WHERE v.channel_id = ?"
		args = append(args, channelID)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM videos v "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := s.db.Query(`
        SELECT `+videoColumns+`
        FROM videos v JOIN channels c ON v.channel_id = c.id
        `+where+`
        ORDER BY COALESCE(v.published_at, v.created_at) DESC
        LIMIT ? OFFSET ?
    `, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, total, rows.Err()
}

// TransitionStatus moves a video from one status to another. The transition
// must be allowed by the state machine, and the write only succeeds if the
// video is still in the expected `from` status: the returned bool reports
// whether this caller won the compare-and-swap. Two orchestrators racing on
// the same PENDING video will therefore claim it exactly once.
func (s *Store) TransitionStatus(id int64, from, to models.ProcessingStatus) (bool, error) {
	if !from.Valid() || !to.Valid() {
		return false, fmt.Errorf("%w: unknown status", ErrInvalidTransition)
	}
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	res, err := s.db.Exec(`
        UPDATE videos SET processing_status = ?, updated_at = ?
        WHERE id = ? AND processing_status = ?
    `, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update video status: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected == 1, nil
}

// MarkVideoFailed moves a PROCESSING video to FAILED, recording the failure
// cause in the caption field as a diagnostic.
func (s *Store) MarkVideoFailed(id int64, cause string) error {
	res, err := s.db.Exec(`
        UPDATE videos SET processing_status = ?, caption_text = ?, updated_at = ?
        WHERE id = ? AND processing_status = ?
    `, models.StatusFailed, cause, time.Now().UTC(), id, models.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to mark video failed: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: video %d is not processing", ErrInvalidTransition, id)
	}
	return nil
}

// MarkVideoCompleted moves a PROCESSING video to COMPLETED, persisting the
// transcript and both summaries in one write. Degraded summary strings are
// stored as-is.
func (s *Store) MarkVideoCompleted(id int64, captionText, shortSummary, detailedSummary string) error {
	res, err := s.db.Exec(`
        UPDATE videos
        SET processing_status = ?, caption_text = ?, short_summary = ?, detailed_summary = ?, updated_at = ?
        WHERE id = ? AND processing_status = ?
    `, models.StatusCompleted, captionText, shortSummary, detailedSummary, time.Now().UTC(), id, models.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to mark video completed: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: video %d is not processing", ErrInvalidTransition, id)
	}
	return nil
}

// ResetVideoForReprocess moves a FAILED video back to PENDING so the next
// sweep re-claims it. This is the only path back into the queue.
func (s *Store) ResetVideoForReprocess(id int64) (bool, error) {
	return s.TransitionStatus(id, models.StatusFailed, models.StatusPending)
}

// CountVideosByStatus returns the number of videos in the given status.
func (s *Store) CountVideosByStatus(status models.ProcessingStatus) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM videos WHERE processing_status = ?", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos by status: %w", err)
	}
	return count, nil
}

// CountVideosByChannel returns the number of videos belonging to a channel.
func (s *Store) CountVideosByChannel(channelID int64) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM videos WHERE channel_id = ?", channelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos by channel: %w", err)
	}
	return count, nil
}

// GetStats returns per-status video counts in a single aggregate query.
func (s *Store) GetStats() (*models.ProcessingStats, error) {
	var stats models.ProcessingStats
	err := s.db.QueryRow(`
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN processing_status = 'pending' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN processing_status = 'processing' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN processing_status = 'completed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN processing_status = 'failed' THEN 1 ELSE 0 END), 0)
        FROM videos
    `).Scan(&stats.Total, &stats.Pending, &stats.Processing, &stats.Completed, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to get processing stats: %w", err)
	}
	return &stats, nil
}
