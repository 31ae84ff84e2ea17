// A thin client for the YouTube Data API v3. Only the endpoints the
// pipeline needs are implemented: channel lookup, uploads playlist paging
// and channel search for handle resolution.

package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultAPIBaseURL = "https://www.googleapis.com/youtube/v3"

	// MaxPageSize is the API's own maxResults cap for playlistItems.
	MaxPageSize = 50
)

var (
	// ErrAPIKeyMissing indicates the process is misconfigured. Unlike the
	// other errors it is fatal for every request this client could make.
	ErrAPIKeyMissing = errors.New("YOUTUBE_API_KEY is not set")

	// ErrChannelNotFound is returned when the API knows no such channel.
	ErrChannelNotFound = errors.New("channel not found")
)

// Client talks to the YouTube Data API.
type Client struct {
	client     *http.Client
	apiBaseURL string
	apiKey     string
}

// New creates a new Data API client. It fails fast when no API key is
// configured instead of failing on the first request.
func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	return &Client{
		client:     &http.Client{Timeout: 20 * time.Second},
		apiBaseURL: defaultAPIBaseURL,
		apiKey:     apiKey,
	}, nil
}

func (c *Client) get(path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.apiBaseURL, path, params.Encode())

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return fmt.Errorf("youtube api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode youtube api response: %w", err)
	}
	return nil
}

// GetChannelInfo fetches display metadata for a channel.
func (c *Client) GetChannelInfo(channelID string) (*ChannelInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get("channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrChannelNotFound
	}

	item := resp.Items[0]
	return &ChannelInfo{
		ChannelID:    item.ID,
		Title:        item.Snippet.Title,
		ThumbnailURL: item.Snippet.Thumbnails.URL(),
	}, nil
}

// GetUploadsPlaylistID resolves the ID of the channel's uploads playlist.
func (c *Client) GetUploadsPlaylistID(channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get("channels", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", ErrChannelNotFound
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// ListPlaylistVideos fetches one page of a playlist, newest first. An empty
// pageToken requests the first page.
func (c *Client) ListPlaylistVideos(playlistID string, maxResults int, pageToken string) (*PlaylistPage, error) {
	if maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp playlistItemsResponse
	if err := c.get("playlistItems", params, &resp); err != nil {
		return nil, err
	}

	page := &PlaylistPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		page.Videos = append(page.Videos, PlaylistVideo{
			VideoID:      item.ContentDetails.VideoID,
			Title:        item.Snippet.Title,
			ThumbnailURL: item.Snippet.Thumbnails.URL(),
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	return page, nil
}

// ResolveChannelName resolves a handle, custom URL or legacy username to a
// channel ID via the search endpoint.
func (c *Client) ResolveChannelName(name string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", name)
	params.Set("type", "channel")
	params.Set("maxResults", "1")

	var resp searchListResponse
	if err := c.get("search", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", ErrChannelNotFound
	}
	return resp.Items[0].Snippet.ChannelID, nil
}
