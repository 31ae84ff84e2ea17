package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkalinow/ytdigest/internal/store"
)

func (s *Server) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.URL == "" {
		RespondWithError(w, http.StatusBadRequest, "Channel URL is required")
		return
	}

	channel, err := s.syncer.Subscribe(payload.URL)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrChannelExists):
			RespondWithError(w, http.StatusConflict, "Channel is already subscribed")
		default:
			RespondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	RespondWithJSON(w, http.StatusCreated, channel)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.store.ListChannels()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve channels")
		return
	}
	RespondWithJSON(w, http.StatusOK, channels)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "channelID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	channel, err := s.store.GetChannel(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Channel not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve channel")
		return
	}
	RespondWithJSON(w, http.StatusOK, channel)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "channelID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	if err := s.store.DeleteChannel(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Channel not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete channel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncChannel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "channelID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	maxVideos, _ := strconv.Atoi(r.URL.Query().Get("max_videos"))
	added, skipped, err := s.syncer.SyncChannelMax(id, maxVideos)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Channel not found")
			return
		}
		RespondWithError(w, http.StatusBadGateway, "Failed to sync channel: "+err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]int{
		"new_videos":     added,
		"skipped_videos": skipped,
	})
}

func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	stats, err := s.syncer.SyncAll()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to sync channels")
		return
	}
	RespondWithJSON(w, http.StatusOK, stats)
}
