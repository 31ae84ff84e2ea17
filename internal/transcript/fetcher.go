// Package transcript fetches video captions from YouTube's timedtext
// endpoint. Tracks are tried in the caller's language preference order,
// with a fallback to whatever track the video offers.
package transcript

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkalinow/ytdigest/internal/util"
)

const defaultBaseURL = "https://video.google.com/timedtext"

var (
	ErrInvalidVideoID      = errors.New("transcript: invalid video ID")
	ErrTranscriptsDisabled = errors.New("transcript: transcripts are disabled for this video")
	ErrNotFound            = errors.New("transcript: no transcript found")
	ErrNoMatchingLanguage  = errors.New("transcript: no transcript in a usable language")
)

// Fetcher retrieves caption tracks for YouTube videos.
type Fetcher struct {
	client  *http.Client
	baseURL string
}

func New() *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
}

type trackList struct {
	Tracks []track `xml:"track"`
}

type track struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
}

type transcriptBody struct {
	Fragments []string `xml:"text"`
}

// Fetch returns the caption text for a video along with the language
// code of the track it came from. Preferred languages are tried in
// order; if none of them has a track, the video's first available
// track is used instead.
func (f *Fetcher) Fetch(videoID string, preferredLangs []string) (string, string, error) {
	if err := util.ValidateVideoID(videoID); err != nil {
		return "", "", ErrInvalidVideoID
	}

	tracks, err := f.listTracks(videoID)
	if err != nil {
		return "", "", err
	}
	if len(tracks) == 0 {
		return "", "", ErrTranscriptsDisabled
	}

	lang, matched := pickTrack(tracks, preferredLangs)
	text, err := f.fetchTrack(videoID, lang)
	if err != nil {
		if !matched && errors.Is(err, ErrNotFound) {
			// The single fallback attempt on the video's own default
			// track produced nothing either.
			return "", "", ErrNoMatchingLanguage
		}
		return "", "", err
	}
	return text, lang, nil
}

// pickTrack returns the first preferred language with a track, or the
// video's first track as the one fallback when no preference matches.
func pickTrack(tracks []track, preferredLangs []string) (string, bool) {
	for _, want := range preferredLangs {
		for _, tr := range tracks {
			if tr.LangCode == want {
				return want, true
			}
		}
	}
	return tracks[0].LangCode, false
}

func (f *Fetcher) listTracks(videoID string) ([]track, error) {
	body, err := f.get(url.Values{"type": {"list"}, "v": {videoID}})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse track list: %w", err)
	}
	return list.Tracks, nil
}

func (f *Fetcher) fetchTrack(videoID, lang string) (string, error) {
	body, err := f.get(url.Values{"lang": {lang}, "v": {videoID}})
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrNotFound
	}
	var tb transcriptBody
	if err := xml.Unmarshal(body, &tb); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}
	return joinFragments(tb.Fragments), nil
}

// joinFragments flattens caption fragments into a single block of
// text. Embedded newlines within a fragment become spaces so the
// result reads as continuous prose.
func joinFragments(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, frag := range fragments {
		frag = html.UnescapeString(frag)
		frag = strings.ReplaceAll(frag, "\n", " ")
		frag = strings.TrimSpace(frag)
		if frag != "" {
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, " ")
}

func (f *Fetcher) get(params url.Values) ([]byte, error) {
	resp, err := f.client.Get(f.baseURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from timedtext endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext endpoint returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
