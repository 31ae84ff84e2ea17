// This file defines the core data structures (models) for our application.
// These structs represent the subscribed channels and their discovered videos.

package models

import "time"

// Channel represents a subscribed YouTube channel.
type Channel struct {
	ID           int64     `json:"id"`
	ChannelID    string    `json:"channel_id"` // YouTube channel identifier (UC...)
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	VideoCount   int       `json:"video_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Video represents a single discovered video and everything the pipeline
// produced for it. Caption and summary fields stay empty until processed.
type Video struct {
	ID              int64            `json:"id"`
	ChannelID       int64            `json:"channel_id"`
	ChannelName     string           `json:"channel_name,omitempty"`
	VideoID         string           `json:"video_id"` // YouTube video identifier, globally unique
	Title           string           `json:"title"`
	ThumbnailURL    string           `json:"thumbnail_url,omitempty"`
	PublishedAt     *time.Time       `json:"published_at,omitempty"`
	CaptionText     string           `json:"caption_text,omitempty"`
	ShortSummary    string           `json:"short_summary,omitempty"`
	DetailedSummary string           `json:"detailed_summary,omitempty"`
	Status          ProcessingStatus `json:"processing_status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewVideo is a video discovered during a channel sync, before it has a
// database row.
type NewVideo struct {
	VideoID      string
	Title        string
	ThumbnailURL string
	PublishedAt  time.Time
}
