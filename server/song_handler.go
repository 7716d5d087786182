package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"TuneFM/logger"
	"TuneFM/model"

	"github.com/gorilla/mux"
)

const maxUploadSize = 64 << 20 // 64 MiB

// GetSongs syncs the songs directory into the catalog, then returns the
// full catalog. Because of the sync step, dropping a file into the
// directory is enough for it to show up here on the next request.
func (h *APIHandler) GetSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	added, err := h.scanner.Sync(ctx)
	if err != nil {
		// Serve what we have; the catalog is still valid, just possibly stale.
		logger.Warn("library sync failed during catalog read", logger.ErrorField(err))
	}
	if added > 0 {
		h.songCache.Invalidate(ctx)
		h.hub.BroadcastLibraryUpdate(added)
	}

	if songs, ok := h.songCache.GetSongs(ctx); ok {
		writeJSON(w, http.StatusOK, songs)
		return
	}

	songs, err := h.songRepo.GetAllSongs()
	if err != nil {
		logger.Error("failed to load song catalog", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load songs")
		return
	}
	if songs == nil {
		songs = []*model.Song{}
	}

	h.songCache.SetSongs(ctx, songs)
	writeJSON(w, http.StatusOK, songs)
}

// GetSong returns one song by its public ID.
func (h *APIHandler) GetSong(w http.ResponseWriter, r *http.Request) {
	publicID := mux.Vars(r)["id"]

	song, err := h.songRepo.GetSongByPublicID(publicID)
	if err != nil {
		logger.Error("failed to load song", logger.String("id", publicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load song")
		return
	}
	if song == nil {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}

	writeJSON(w, http.StatusOK, song)
}

// Upload stores an MP3 into the songs directory and ingests it. A file with
// the same name overwrites the previous one; the catalog entry stays keyed
// by filename either way.
func (h *APIHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("song")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing song file")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if strings.ToLower(filepath.Ext(filename)) != ".mp3" {
		writeError(w, http.StatusBadRequest, "only MP3 files are accepted")
		return
	}

	if err := os.MkdirAll(h.cfg.SongsDir, 0755); err != nil {
		logger.Error("failed to ensure songs directory", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	dst, err := os.Create(filepath.Join(h.cfg.SongsDir, filename))
	if err != nil {
		logger.Error("failed to create song file",
			logger.String("filename", filename), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logger.Error("failed to write song file",
			logger.String("filename", filename), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	added, err := h.scanner.Sync(r.Context())
	if err != nil {
		logger.Warn("library sync after upload failed", logger.ErrorField(err))
	}
	if added > 0 {
		h.songCache.Invalidate(r.Context())
		h.hub.BroadcastLibraryUpdate(added)
	}

	logger.Info("uploaded song", logger.String("filename", filename))
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "file uploaded",
		"file":    filename,
	})
}
