package store

import (
	"errors"
	"testing"
	"time"

	"github.com/pkalinow/ytdigest/internal/models"
	"github.com/pkalinow/ytdigest/internal/testutil"
)

func mustCreateChannel(t *testing.T, s *Store, channelID, name string) *models.Channel {
	t.Helper()
	ch, err := s.CreateChannel(channelID, name, "https://www.youtube.com/channel/"+channelID, "")
	if err != nil {
		t.Fatalf("Setup: CreateChannel failed: %v", err)
	}
	return ch
}

func newVideo(videoID string, publishedAt time.Time) models.NewVideo {
	return models.NewVideo{
		VideoID:      videoID,
		Title:        "Video " + videoID,
		ThumbnailURL: "https://i.ytimg.com/" + videoID + ".jpg",
		PublishedAt:  publishedAt,
	}
}

func TestInsertVideosDeduplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")

	now := time.Now().UTC()
	batch := []models.NewVideo{
		newVideo("AAAAAAAAAAA", now),
		newVideo("BBBBBBBBBBB", now),
	}

	newCount, skipped, err := s.InsertVideos(ch.ID, batch)
	if err != nil {
		t.Fatalf("InsertVideos failed: %v", err)
	}
	if newCount != 2 || skipped != 0 {
		t.Errorf("Expected (2 new, 0 skipped), got (%d, %d)", newCount, skipped)
	}

	// A second identical batch must be a complete no-op.
	newCount, skipped, err = s.InsertVideos(ch.ID, batch)
	if err != nil {
		t.Fatalf("InsertVideos (second) failed: %v", err)
	}
	if newCount != 0 || skipped != 2 {
		t.Errorf("Expected (0 new, 2 skipped), got (%d, %d)", newCount, skipped)
	}

	// Exactly one row per external ID, no matter how often it arrives.
	var rows int
	db.QueryRow("SELECT COUNT(*) FROM videos WHERE video_id = 'AAAAAAAAAAA'").Scan(&rows)
	if rows != 1 {
		t.Errorf("Expected exactly 1 row for the video, got %d", rows)
	}
}

func TestInsertVideosUnknownChannel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)

	_, _, err := s.InsertVideos(999, []models.NewVideo{newVideo("AAAAAAAAAAA", time.Now())})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestInsertVideosMixedBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")

	now := time.Now().UTC()
	s.InsertVideos(ch.ID, []models.NewVideo{newVideo("AAAAAAAAAAA", now)})

	newCount, skipped, err := s.InsertVideos(ch.ID, []models.NewVideo{
		newVideo("AAAAAAAAAAA", now), // already stored
		newVideo("CCCCCCCCCCC", now), // new
	})
	if err != nil {
		t.Fatalf("InsertVideos failed: %v", err)
	}
	if newCount != 1 || skipped != 1 {
		t.Errorf("Expected (1 new, 1 skipped), got (%d, %d)", newCount, skipped)
	}
}

func TestTransitionStatusClaim(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")
	s.InsertVideos(ch.ID, []models.NewVideo{newVideo("AAAAAAAAAAA", time.Now())})
	v, _ := s.GetVideoByVideoID("AAAAAAAAAAA")

	claimed, err := s.TransitionStatus(v.ID, models.StatusPending, models.StatusProcessing)
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if !claimed {
		t.Fatal("Expected first claim to succeed")
	}

	// A second claim must observe PROCESSING and no-op.
	claimed, err = s.TransitionStatus(v.ID, models.StatusPending, models.StatusProcessing)
	if err != nil {
		t.Fatalf("TransitionStatus (second) failed: %v", err)
	}
	if claimed {
		t.Error("Expected second claim to lose the race")
	}
}

func TestTransitionStatusRejectsIllegalMoves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")
	s.InsertVideos(ch.ID, []models.NewVideo{newVideo("AAAAAAAAAAA", time.Now())})
	v, _ := s.GetVideoByVideoID("AAAAAAAAAAA")

	illegal := []struct{ from, to models.ProcessingStatus }{
		{models.StatusPending, models.StatusCompleted},
		{models.StatusPending, models.StatusFailed},
		{models.StatusCompleted, models.StatusPending},
		{models.StatusProcessing, models.StatusPending},
	}
	for _, c := range illegal {
		if _, err := s.TransitionStatus(v.ID, c.from, c.to); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition for %s -> %s, got %v", c.from, c.to, err)
		}
	}
}

func TestMarkVideoFailedRecordsCause(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")
	s.InsertVideos(ch.ID, []models.NewVideo{newVideo("AAAAAAAAAAA", time.Now())})
	v, _ := s.GetVideoByVideoID("AAAAAAAAAAA")

	// Failing a video that is not PROCESSING must be rejected.
	if err := s.MarkVideoFailed(v.ID, "whatever"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}

	s.TransitionStatus(v.ID, models.StatusPending, models.StatusProcessing)
	if err := s.MarkVideoFailed(v.ID, "Caption extraction failed: transcripts are disabled"); err != nil {
		t.Fatalf("MarkVideoFailed failed: %v", err)
	}

	v, _ = s.GetVideo(v.ID)
	if v.Status != models.StatusFailed {
		t.Errorf("Expected status failed, got %s", v.Status)
	}
	if v.CaptionText != "Caption extraction failed: transcripts are disabled" {
		t.Errorf("Expected failure cause in caption field, got %q", v.CaptionText)
	}
}

func TestMarkVideoCompletedPersistsEverything(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")
	s.InsertVideos(ch.ID, []models.NewVideo{newVideo("AAAAAAAAAAA", time.Now())})
	v, _ := s.GetVideoByVideoID("AAAAAAAAAAA")

	s.TransitionStatus(v.ID, models.StatusPending, models.StatusProcessing)
	err := s.MarkVideoCompleted(v.ID, "Hello world", "short summary", "detailed summary")
	if err != nil {
		t.Fatalf("MarkVideoCompleted failed: %v", err)
	}

	v, _ = s.GetVideo(v.ID)
	if v.Status != models.StatusCompleted {
		t.Errorf("Expected status completed, got %s", v.Status)
	}
	if v.CaptionText != "Hello world" || v.ShortSummary != "short summary" || v.DetailedSummary != "detailed summary" {
		t.Errorf("Expected transcript and summaries to be persisted, got %+v", v)
	}
}

func TestResetVideoForReprocess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")
	s.InsertVideos(ch.ID, []models.NewVideo{newVideo("AAAAAAAAAAA", time.Now())})
	v, _ := s.GetVideoByVideoID("AAAAAAAAAAA")

	s.TransitionStatus(v.ID, models.StatusPending, models.StatusProcessing)
	s.MarkVideoFailed(v.ID, "failed")

	reset, err := s.ResetVideoForReprocess(v.ID)
	if err != nil {
		t.Fatalf("ResetVideoForReprocess failed: %v", err)
	}
	if !reset {
		t.Fatal("Expected reset to succeed")
	}
	v, _ = s.GetVideo(v.ID)
	if v.Status != models.StatusPending {
		t.Errorf("Expected status pending after reset, got %s", v.Status)
	}
}

func TestGetPendingVideosOldestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")

	// Insert one at a time so created_at strictly increases.
	for _, id := range []string{"AAAAAAAAAAA", "BBBBBBBBBBB", "CCCCCCCCCCC"} {
		s.InsertVideos(ch.ID, []models.NewVideo{newVideo(id, time.Now())})
		time.Sleep(2 * time.Millisecond)
	}

	pending, err := s.GetPendingVideos(2)
	if err != nil {
		t.Fatalf("GetPendingVideos failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending videos, got %d", len(pending))
	}
	if pending[0].VideoID != "AAAAAAAAAAA" || pending[1].VideoID != "BBBBBBBBBBB" {
		t.Errorf("Expected oldest-first order, got %s, %s", pending[0].VideoID, pending[1].VideoID)
	}
}

func TestGetStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")
	s.InsertVideos(ch.ID, []models.NewVideo{
		newVideo("AAAAAAAAAAA", time.Now()),
		newVideo("BBBBBBBBBBB", time.Now()),
		newVideo("CCCCCCCCCCC", time.Now()),
	})

	a, _ := s.GetVideoByVideoID("AAAAAAAAAAA")
	s.TransitionStatus(a.ID, models.StatusPending, models.StatusProcessing)
	s.MarkVideoCompleted(a.ID, "t", "s", "d")

	b, _ := s.GetVideoByVideoID("BBBBBBBBBBB")
	s.TransitionStatus(b.ID, models.StatusPending, models.StatusProcessing)
	s.MarkVideoFailed(b.ID, "err")

	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.Completed != 1 || stats.Failed != 1 || stats.Processing != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	count, _ := s.CountVideosByStatus(models.StatusPending)
	if count != 1 {
		t.Errorf("Expected 1 pending video, got %d", count)
	}
	count, _ = s.CountVideosByChannel(ch.ID)
	if count != 3 {
		t.Errorf("Expected 3 videos for channel, got %d", count)
	}
}

func TestListVideosPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	ch := mustCreateChannel(t, s, "UCAAAAAAAAAAAAAAAAAAAAAA", "Test")

	base := time.Now().UTC()
	s.InsertVideos(ch.ID, []models.NewVideo{
		newVideo("AAAAAAAAAAA", base.Add(-3*time.Hour)),
		newVideo("BBBBBBBBBBB", base.Add(-2*time.Hour)),
		newVideo("CCCCCCCCCCC", base.Add(-1*time.Hour)),
	})

	videos, total, err := s.ListVideos(ch.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
	if len(videos) != 2 {
		t.Fatalf("Expected 2 videos on page 1, got %d", len(videos))
	}
	// Newest first.
	if videos[0].VideoID != "CCCCCCCCCCC" || videos[1].VideoID != "BBBBBBBBBBB" {
		t.Errorf("Expected newest-first order, got %s, %s", videos[0].VideoID, videos[1].VideoID)
	}
	if videos[0].ChannelName != "Test" {
		t.Errorf("Expected channel name to be joined in, got %q", videos[0].ChannelName)
	}

	videos, _, _ = s.ListVideos(ch.ID, 2, 2)
	if len(videos) != 1 || videos[0].VideoID != "AAAAAAAAAAA" {
		t.Errorf("Expected the oldest video on page 2, got %+v", videos)
	}
}
