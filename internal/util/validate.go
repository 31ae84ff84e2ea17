// Validation helpers for YouTube identifiers and URLs. Inputs are rejected
// here, before any network call is made with them.

package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const maxURLLength = 2048

var (
	videoIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	channelIDPattern = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
)

// ValidateVideoID checks the lexical shape of a YouTube video ID
// (exactly 11 characters from [a-zA-Z0-9_-]).
func ValidateVideoID(videoID string) error {
	if !videoIDPattern.MatchString(strings.TrimSpace(videoID)) {
		return fmt.Errorf("invalid video ID format (must be 11 characters: a-zA-Z0-9_-)")
	}
	return nil
}

// ValidateChannelID checks the lexical shape of a YouTube channel ID
// (UC prefix plus 22 characters, 24 total).
func ValidateChannelID(channelID string) error {
	if !channelIDPattern.MatchString(strings.TrimSpace(channelID)) {
		return fmt.Errorf("invalid channel ID format (must start with UC and be 24 characters total)")
	}
	return nil
}

// ExtractVideoID pulls the video ID out of a watch or short-form URL.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("URL is required")
	}
	if len(rawURL) > maxURLLength {
		return "", fmt.Errorf("URL is too long")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URL parsing error: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL scheme (must be http or https)")
	}

	switch {
	case strings.Contains(u.Host, "youtube.com"):
		if u.Path != "/watch" {
			return "", fmt.Errorf("invalid YouTube URL format (expected /watch?v=...)")
		}
		videoID := u.Query().Get("v")
		if err := ValidateVideoID(videoID); err != nil {
			return "", fmt.Errorf("invalid or missing video ID in URL")
		}
		return videoID, nil
	case strings.Contains(u.Host, "youtu.be"):
		videoID := strings.TrimPrefix(u.Path, "/")
		if err := ValidateVideoID(videoID); err != nil {
			return "", fmt.Errorf("invalid video ID in short URL")
		}
		return videoID, nil
	}
	return "", fmt.Errorf("not a valid YouTube URL")
}

// ChannelRef is a parsed channel URL: either a direct channel ID or a name
// that still needs resolving through the Data API.
type ChannelRef struct {
	Kind string // "channel", "handle", "custom" or "user"
	Name string // channel ID for "channel", otherwise the raw name
}

// ParseChannelURL recognizes the four channel URL forms:
// /channel/UC..., /@handle, /c/name and /user/name.
func ParseChannelURL(rawURL string) (*ChannelRef, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("channel URL is required")
	}
	if len(rawURL) > maxURLLength {
		return nil, fmt.Errorf("URL is too long")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URL parsing error: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme (must be http or https)")
	}
	if !strings.Contains(u.Host, "youtube.com") {
		return nil, fmt.Errorf("not a valid YouTube channel URL")
	}

	path := strings.TrimSuffix(u.Path, "/")
	switch {
	case strings.HasPrefix(path, "/channel/"):
		id := strings.TrimPrefix(path, "/channel/")
		if err := ValidateChannelID(id); err != nil {
			return nil, err
		}
		return &ChannelRef{Kind: "channel", Name: id}, nil
	case strings.HasPrefix(path, "/@"):
		name := strings.TrimPrefix(path, "/@")
		if name == "" {
			return nil, fmt.Errorf("missing handle in channel URL")
		}
		return &ChannelRef{Kind: "handle", Name: name}, nil
	case strings.HasPrefix(path, "/c/"):
		name := strings.TrimPrefix(path, "/c/")
		if name == "" {
			return nil, fmt.Errorf("missing name in channel URL")
		}
		return &ChannelRef{Kind: "custom", Name: name}, nil
	case strings.HasPrefix(path, "/user/"):
		name := strings.TrimPrefix(path, "/user/")
		if name == "" {
			return nil, fmt.Errorf("missing username in channel URL")
		}
		return &ChannelRef{Kind: "user", Name: name}, nil
	}
	return nil, fmt.Errorf("invalid channel URL format (expected /channel/, /c/, /@, or /user/)")
}
