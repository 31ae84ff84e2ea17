package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkalinow/ytdigest/internal/config"
	"github.com/pkalinow/ytdigest/internal/models"
	"github.com/pkalinow/ytdigest/internal/store"
	"github.com/pkalinow/ytdigest/internal/testutil"
)

type fakeFetcher struct {
	captions map[string]string
	err      error
}

func (f *fakeFetcher) Fetch(videoID string, preferredLangs []string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	caption, ok := f.captions[videoID]
	if !ok {
		return "", "", errors.New("transcripts are disabled for this video")
	}
	return caption, "en", nil
}

type fakeSummarizer struct {
	shortErr    error
	detailedErr error
	calls       int
}

func (f *fakeSummarizer) Short(ctx context.Context, caption, lang string) (string, error) {
	f.calls++
	if f.shortErr != nil {
		return "", f.shortErr
	}
	return "short summary of: " + caption, nil
}

func (f *fakeSummarizer) Detailed(ctx context.Context, caption, lang string) (string, error) {
	f.calls++
	if f.detailedErr != nil {
		return "", f.detailedErr
	}
	return "detailed summary of: " + caption, nil
}

func setup(t *testing.T) (*Processor, *store.Store, *fakeFetcher, *fakeSummarizer) {
	t.Helper()
	database := testutil.SetupTestDB(t)
	st := store.New(database)

	fetcher := &fakeFetcher{captions: map[string]string{}}
	summarizer := &fakeSummarizer{}

	cfg := &config.Config{}
	cfg.Processing.BatchSize = 10
	cfg.Processing.Languages = []string{"pl", "en"}

	return New(st, fetcher, summarizer, nil, cfg), st, fetcher, summarizer
}

func seedVideos(t *testing.T, st *store.Store, ids ...string) map[string]int64 {
	t.Helper()
	ch, err := st.CreateChannel("UCAAAAAAAAAAAAAAAAAAAAAA", "Test Channel", "https://www.youtube.com/channel/UCAAAAAAAAAAAAAAAAAAAAAA", "")
	require.NoError(t, err)

	dbIDs := make(map[string]int64, len(ids))
	for _, id := range ids {
		published := time.Now().UTC().Add(-time.Hour)
		_, _, err := st.InsertVideos(ch.ID, []models.NewVideo{{
			VideoID:     id,
			Title:       "Video " + id,
			PublishedAt: published,
		}})
		require.NoError(t, err)
		v, err := st.GetVideoByVideoID(id)
		require.NoError(t, err)
		dbIDs[id] = v.ID
		time.Sleep(2 * time.Millisecond) // keep created_at ordering stable
	}
	return dbIDs
}

func TestProcessVideo(t *testing.T) {
	p, st, fetcher, _ := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA")
	fetcher.captions["AAAAAAAAAAA"] = "Hello world"

	require.NoError(t, p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"]))

	v, err := st.GetVideo(ids["AAAAAAAAAAA"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, v.Status)
	assert.Equal(t, "Hello world", v.CaptionText)
	assert.Equal(t, "short summary of: Hello world", v.ShortSummary)
	assert.Equal(t, "detailed summary of: Hello world", v.DetailedSummary)
}

func TestProcessVideoTranscriptFailure(t *testing.T) {
	p, st, _, summarizer := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA")

	err := p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"])
	require.Error(t, err)

	v, err := st.GetVideo(ids["AAAAAAAAAAA"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, v.Status)
	assert.Equal(t, "Caption extraction failed: transcripts are disabled for this video", v.CaptionText)
	assert.Zero(t, summarizer.calls, "no summary should be attempted without a transcript")
}

func TestProcessVideoSummaryFailuresDegrade(t *testing.T) {
	p, st, fetcher, summarizer := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA")
	fetcher.captions["AAAAAAAAAAA"] = "Hello world"
	summarizer.shortErr = errors.New("model overloaded")

	// A failed summary degrades; the video still completes.
	require.NoError(t, p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"]))

	v, err := st.GetVideo(ids["AAAAAAAAAAA"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, v.Status)
	assert.Equal(t, "Summary generation failed: model overloaded", v.ShortSummary)
	assert.Equal(t, "detailed summary of: Hello world", v.DetailedSummary)
}

func TestProcessVideoNotClaimable(t *testing.T) {
	p, st, fetcher, _ := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA")
	fetcher.captions["AAAAAAAAAAA"] = "Hello world"

	require.NoError(t, p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"]))

	err := p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"])
	assert.ErrorIs(t, err, ErrNotClaimable)
}

func TestProcessPending(t *testing.T) {
	p, st, fetcher, _ := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA", "BBBBBBBBBBB", "CCCCCCCCCCC")
	fetcher.captions["AAAAAAAAAAA"] = "first"
	fetcher.captions["CCCCCCCCCCC"] = "third"
	// BBBBBBBBBBB has no captions and will fail.

	stats, err := p.ProcessPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalProcessed)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "BBBBBBBBBBB", stats.Errors[0].VideoID)

	v, err := st.GetVideo(ids["BBBBBBBBBBB"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, v.Status)
}

func TestProcessPendingHonorsCap(t *testing.T) {
	p, st, fetcher, _ := setup(t)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, fmt.Sprintf("AAAAAAAAA%02d", i))
	}
	seedVideos(t, st, ids...)
	for _, id := range ids {
		fetcher.captions[id] = "caption"
	}

	stats, err := p.ProcessPending(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProcessed)

	pending, err := st.CountVideosByStatus(models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 3, pending)
}

func TestProcessPendingOldestFirst(t *testing.T) {
	p, st, fetcher, _ := setup(t)
	seedVideos(t, st, "AAAAAAAAAAA", "BBBBBBBBBBB")
	fetcher.captions["AAAAAAAAAAA"] = "first"
	fetcher.captions["BBBBBBBBBBB"] = "second"

	stats, err := p.ProcessPending(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalProcessed)

	// The earliest stored video goes first.
	first, err := st.GetVideoByVideoID("AAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, first.Status)

	second, err := st.GetVideoByVideoID("BBBBBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, second.Status)
}

func TestReprocessFailed(t *testing.T) {
	p, st, fetcher, _ := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA")

	require.Error(t, p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"]))

	// Captions show up later; the retry succeeds.
	fetcher.captions["AAAAAAAAAAA"] = "now available"

	stats, err := p.ReprocessFailed(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProcessed)
	assert.Equal(t, 1, stats.Successful)

	v, err := st.GetVideo(ids["AAAAAAAAAAA"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, v.Status)
	assert.Equal(t, "now available", v.CaptionText)
}

func TestStats(t *testing.T) {
	p, st, fetcher, _ := setup(t)
	ids := seedVideos(t, st, "AAAAAAAAAAA", "BBBBBBBBBBB", "CCCCCCCCCCC")
	fetcher.captions["AAAAAAAAAAA"] = "ok"

	require.NoError(t, p.ProcessVideo(context.Background(), ids["AAAAAAAAAAA"]))
	require.Error(t, p.ProcessVideo(context.Background(), ids["BBBBBBBBBBB"]))

	stats, err := p.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 0, stats.Processing)
}
