package api

import (
	"net/http"

	"github.com/Pelyn9/wellnessmate/internal/music"
)

// PlaylistsResponse lists the curated playlists.
type PlaylistsResponse struct {
	Items []music.Playlist `json:"items"`
}

func (h *Handler) playlists(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, PlaylistsResponse{Items: music.Playlists()})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r); !ok {
		return
	}
	if h.previews == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "previews disabled")
		return
	}
	preview, err := h.previews.Preview(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
