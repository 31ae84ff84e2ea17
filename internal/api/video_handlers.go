package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkalinow/ytdigest/internal/processor"
	"github.com/pkalinow/ytdigest/internal/store"
)

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var channelID int64
	if raw := r.URL.Query().Get("channel_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid channel_id")
			return
		}
		channelID = id
	}

	videos, total, err := s.store.ListVideos(channelID, page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve videos")
		return
	}

	// The listing is the lightweight view; transcript and detailed
	// summary come from the single-video endpoint.
	for _, v := range videos {
		v.CaptionText = ""
		v.DetailedSummary = ""
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"videos":   videos,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "videoID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid video ID")
		return
	}

	video, err := s.store.GetVideo(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Video not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve video")
		return
	}
	RespondWithJSON(w, http.StatusOK, video)
}

func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "videoID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid video ID")
		return
	}

	if err := s.processor.ProcessVideo(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			RespondWithError(w, http.StatusNotFound, "Video not found")
		case errors.Is(err, processor.ErrNotClaimable):
			RespondWithError(w, http.StatusConflict, err.Error())
		default:
			// Processing ran but the video failed; its state records why.
			RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	video, err := s.store.GetVideo(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve video")
		return
	}
	RespondWithJSON(w, http.StatusOK, video)
}

func (s *Server) handleProcessPending(w http.ResponseWriter, r *http.Request) {
	max := decodeMax(r)
	stats, err := s.processor.ProcessPending(r.Context(), max)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to process pending videos")
		return
	}
	RespondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReprocessFailed(w http.ResponseWriter, r *http.Request) {
	max := decodeMax(r)
	stats, err := s.processor.ReprocessFailed(r.Context(), max)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to reprocess videos")
		return
	}
	RespondWithJSON(w, http.StatusOK, stats)
}

// decodeMax reads the sweep size from the max_videos query parameter or
// an optional {"max": N} body. Zero means the configured batch size.
func decodeMax(r *http.Request) int {
	if raw := r.URL.Query().Get("max_videos"); raw != "" {
		if max, err := strconv.Atoi(raw); err == nil {
			return max
		}
	}
	var payload struct {
		Max int `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return 0
	}
	return payload.Max
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.processor.Stats()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}
	RespondWithJSON(w, http.StatusOK, stats)
}
