package youtube

// --- Channels endpoint types ---

type channelListResponse struct {
	Items []channelItem `json:"items"`
}

type channelItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title      string     `json:"title"`
		CustomURL  string     `json:"customUrl"`
		Thumbnails thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

type thumbnails struct {
	Default thumbnail `json:"default"`
	High    thumbnail `json:"high"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// URL returns the best available thumbnail URL.
func (t thumbnails) URL() string {
	if t.High.URL != "" {
		return t.High.URL
	}
	return t.Default.URL
}

// --- PlaylistItems endpoint types ---

type playlistItemsResponse struct {
	NextPageToken string         `json:"nextPageToken"`
	Items         []playlistItem `json:"items"`
}

type playlistItem struct {
	Snippet struct {
		Title       string     `json:"title"`
		PublishedAt string     `json:"publishedAt"`
		Thumbnails  thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

// --- Search endpoint types ---

type searchListResponse struct {
	Items []struct {
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

// --- Public result types ---

// ChannelInfo is the channel metadata needed for subscription.
type ChannelInfo struct {
	ChannelID    string
	Title        string
	ThumbnailURL string
}

// PlaylistVideo is one entry of a channel's uploads playlist. PublishedAt is
// the raw RFC 3339 string as returned by the API; the sync layer parses it.
type PlaylistVideo struct {
	VideoID      string
	Title        string
	ThumbnailURL string
	PublishedAt  string
}

// PlaylistPage is one page of uploads, chained via NextPageToken.
type PlaylistPage struct {
	Videos        []PlaylistVideo
	NextPageToken string
}
