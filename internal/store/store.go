// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pkalinow/ytdigest/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrChannelExists is returned when subscribing to an already
	// subscribed channel.
	ErrChannelExists = errors.New("channel already subscribed")
)

// Store provides all functions to interact with the database. Every read
// returns plain value structs detached from the connection, so callers can
// hold on to results after the call returns.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateChannel subscribes a new channel. The YouTube channel ID is unique;
// subscribing twice returns ErrChannelExists.
func (s *Store) CreateChannel(channelID, name, url, thumbnailURL string) (*models.Channel, error) {
	var existingID int64
	err := s.db.QueryRow("SELECT id FROM channels WHERE channel_id = ?", channelID).Scan(&existingID)
	if err == nil {
		return nil, ErrChannelExists
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing channel: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(`
        INSERT INTO channels (channel_id, name, url, thumbnail_url, created_at)
        VALUES (?, ?, ?, ?, ?)
    `, channelID, name, url, thumbnailURL, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrChannelExists
		}
		return nil, fmt.Errorf("failed to insert channel: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetChannel(id)
}

// GetChannel retrieves a single channel by its database ID.
func (s *Store) GetChannel(id int64) (*models.Channel, error) {
	return s.scanChannel(s.db.QueryRow(`
        SELECT c.id, c.channel_id, c.name, c.url, COALESCE(c.thumbnail_url, ''), c.created_at,
               (SELECT COUNT(*) FROM videos v WHERE v.channel_id = c.id)
        FROM channels c WHERE c.id = ?
    `, id))
}

// GetChannelByChannelID retrieves a channel by its YouTube channel ID.
func (s *Store) GetChannelByChannelID(channelID string) (*models.Channel, error) {
	return s.scanChannel(s.db.QueryRow(`
        SELECT c.id, c.channel_id, c.name, c.url, COALESCE(c.thumbnail_url, ''), c.created_at,
               (SELECT COUNT(*) FROM videos v WHERE v.channel_id = c.id)
        FROM channels c WHERE c.channel_id = ?
    `, channelID))
}

func (s *Store) scanChannel(row *sql.Row) (*models.Channel, error) {
	var ch models.Channel
	err := row.Scan(&ch.ID, &ch.ChannelID, &ch.Name, &ch.URL, &ch.ThumbnailURL, &ch.CreatedAt, &ch.VideoCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan channel: %w", err)
	}
	return &ch, nil
}

// ListChannels returns all subscribed channels ordered by name.
func (s *Store) ListChannels() ([]*models.Channel, error) {
	rows, err := s.db.Query(`
        SELECT c.id, c.channel_id, c.name, c.url, COALESCE(c.thumbnail_url, ''), c.created_at,
               (SELECT COUNT(*) FROM videos v WHERE v.channel_id = c.id)
        FROM channels c ORDER BY c.name
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.ChannelID, &ch.Name, &ch.URL, &ch.ThumbnailURL, &ch.CreatedAt, &ch.VideoCount); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, &ch)
	}
	return channels, rows.Err()
}

// DeleteChannel removes a channel. Its videos are removed by the
// ON DELETE CASCADE constraint.
func (s *Store) DeleteChannel(id int64) error {
	res, err := s.db.Exec("DELETE FROM channels WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountChannels returns the total number of subscribed channels.
func (s *Store) CountChannels() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM channels").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels: %w", err)
	}
	return count, nil
}
