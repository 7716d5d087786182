package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"TuneFM/logger"
	"TuneFM/model"
	"TuneFM/repository"

	"github.com/gorilla/mux"
)

type createPlaylistRequest struct {
	Name string `json:"name"`
}

type updatePlaylistRequest struct {
	Name    *string  `json:"name"`
	SongIDs []string `json:"songs"` // song public IDs, full replacement in order
}

type addSongRequest struct {
	SongID string `json:"songId"`
}

// GetPlaylists returns every playlist owned by the signed-in user, songs
// included.
func (h *APIHandler) GetPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	playlists, err := h.playlistRepo.GetAllByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load playlists", logger.Int64("userID", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load playlists")
		return
	}
	if playlists == nil {
		playlists = []*model.Playlist{}
	}

	writeJSON(w, http.StatusOK, playlists)
}

// CreatePlaylist creates an empty playlist for the signed-in user.
func (h *APIHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlist, err := model.NewPlaylist(req.Name, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.playlistRepo.Create(r.Context(), playlist); err != nil {
		logger.Error("failed to create playlist", logger.Int64("userID", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create playlist")
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

// GetPlaylist returns one playlist by public ID, owner-scoped.
func (h *APIHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// UpdatePlaylist renames a playlist and/or replaces its song list in one
// call. Omitted fields are left unchanged.
func (h *APIHandler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, model.ErrEmptyPlaylistName.Error())
			return
		}
		if err := h.playlistRepo.Rename(r.Context(), playlist.ID, name); err != nil {
			logger.Error("failed to rename playlist", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "failed to update playlist")
			return
		}
	}

	if req.SongIDs != nil {
		songIDs := make([]int64, 0, len(req.SongIDs))
		for _, publicID := range req.SongIDs {
			song, err := h.songRepo.GetSongByPublicID(publicID)
			if err != nil {
				logger.Error("failed to resolve song", logger.String("id", publicID), logger.ErrorField(err))
				writeError(w, http.StatusInternalServerError, "failed to update playlist")
				return
			}
			if song == nil {
				writeError(w, http.StatusNotFound, "song not found: "+publicID)
				return
			}
			songIDs = append(songIDs, song.ID)
		}
		if err := h.playlistRepo.ReplaceSongs(r.Context(), playlist.ID, songIDs); err != nil {
			logger.Error("failed to replace playlist songs", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "failed to update playlist")
			return
		}
	}

	h.respondWithPlaylist(w, r, playlist.PublicID)
}

// DeletePlaylist removes a playlist and its memberships.
func (h *APIHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	publicID := mux.Vars(r)["id"]

	deleted, err := h.playlistRepo.Delete(r.Context(), publicID, userID)
	if err != nil {
		logger.Error("failed to delete playlist", logger.String("id", publicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to delete playlist")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "playlist deleted"})
}

// AddSongToPlaylist appends a song to the playlist. Duplicate membership is
// rejected as a bad request; an unknown song or playlist is not found.
func (h *APIHandler) AddSongToPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}

	var req addSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	song, ok := h.loadSong(w, req.SongID)
	if !ok {
		return
	}

	if err := h.playlistRepo.AddSong(r.Context(), playlist.ID, song.ID); err != nil {
		if err == repository.ErrSongAlreadyInPlaylist {
			writeError(w, http.StatusBadRequest, "song already in playlist")
			return
		}
		logger.Error("failed to add song to playlist", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to update playlist")
		return
	}

	h.respondWithPlaylist(w, r, playlist.PublicID)
}

// RemoveSongFromPlaylist removes a song from the playlist. A song that is
// not a member is not found.
func (h *APIHandler) RemoveSongFromPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}

	song, ok := h.loadSong(w, mux.Vars(r)["songId"])
	if !ok {
		return
	}

	if err := h.playlistRepo.RemoveSong(r.Context(), playlist.ID, song.ID); err != nil {
		if err == repository.ErrSongNotInPlaylist {
			writeError(w, http.StatusNotFound, "song not in playlist")
			return
		}
		logger.Error("failed to remove song from playlist", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to update playlist")
		return
	}

	h.respondWithPlaylist(w, r, playlist.PublicID)
}

// loadPlaylist resolves the {id} path variable to an owner-scoped playlist,
// writing the error response itself when that fails.
func (h *APIHandler) loadPlaylist(w http.ResponseWriter, r *http.Request) (*model.Playlist, bool) {
	userID, _ := GetUserIDFromContext(r.Context())
	publicID := mux.Vars(r)["id"]

	playlist, err := h.playlistRepo.GetByPublicID(r.Context(), publicID, userID)
	if err != nil {
		logger.Error("failed to load playlist", logger.String("id", publicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load playlist")
		return nil, false
	}
	if playlist == nil {
		writeError(w, http.StatusNotFound, "playlist not found")
		return nil, false
	}
	return playlist, true
}

// loadSong resolves a song public ID, writing the error response itself
// when that fails.
func (h *APIHandler) loadSong(w http.ResponseWriter, publicID string) (*model.Song, bool) {
	song, err := h.songRepo.GetSongByPublicID(publicID)
	if err != nil {
		logger.Error("failed to load song", logger.String("id", publicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load song")
		return nil, false
	}
	if song == nil {
		writeError(w, http.StatusNotFound, "song not found")
		return nil, false
	}
	return song, true
}

// respondWithPlaylist re-reads the playlist so the response reflects the
// committed state, membership order included.
func (h *APIHandler) respondWithPlaylist(w http.ResponseWriter, r *http.Request, publicID string) {
	userID, _ := GetUserIDFromContext(r.Context())

	playlist, err := h.playlistRepo.GetByPublicID(r.Context(), publicID, userID)
	if err != nil || playlist == nil {
		logger.Error("failed to reload playlist", logger.String("id", publicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
