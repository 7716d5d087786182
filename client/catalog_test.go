package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"TuneFM/model"
)

// newTestAPI stands in for the server: a cookie-auth session and an
// in-memory song catalog plus one mutable playlist.
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	songs := []model.Song{
		{PublicID: "s1", Title: "First", Artist: "Ana", Path: "Ana - First.mp3", Filename: "Ana - First.mp3"},
		{PublicID: "s2", Title: "Second", Artist: "Bob", Path: "Bob - Second.mp3", Filename: "Bob - Second.mp3"},
	}
	playlist := model.Playlist{PublicID: "p1", Name: "Favorites", Songs: []model.Song{}}

	authed := func(w http.ResponseWriter, r *http.Request) bool {
		if _, err := r.Cookie("token"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
			return false
		}
		return true
	}
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "session", Path: "/"})
		writeJSON(w, http.StatusOK, model.User{ID: 1, Name: "ana", Email: "ana@example.com"})
	})
	mux.HandleFunc("/api/songs", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, songs)
	})
	mux.HandleFunc("/api/playlists", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []model.Playlist{playlist})
		case http.MethodPost:
			var body struct {
				Name string `json:"name"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusCreated, model.Playlist{PublicID: "p2", Name: body.Name, Songs: []model.Song{}})
		}
	})
	mux.HandleFunc("/api/playlists/p1/songs", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		var body struct {
			SongID string `json:"songId"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		for _, s := range playlist.Songs {
			if s.PublicID == body.SongID {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "song already in playlist"})
				return
			}
		}
		for _, s := range songs {
			if s.PublicID == body.SongID {
				playlist.Songs = append(playlist.Songs, s)
				writeJSON(w, http.StatusOK, playlist)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "song not found"})
	})
	mux.HandleFunc("/api/playlists/p1/songs/", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		songID := r.URL.Path[len("/api/playlists/p1/songs/"):]
		for i, s := range playlist.Songs {
			if s.PublicID == songID {
				playlist.Songs = append(playlist.Songs[:i], playlist.Songs[i+1:]...)
				writeJSON(w, http.StatusOK, playlist)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "song not in playlist"})
	})
	mux.HandleFunc("/api/playlists/p1", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		switch r.Method {
		case http.MethodPut:
			var body struct {
				Name string `json:"name"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			playlist.Name = body.Name
			writeJSON(w, http.StatusOK, playlist)
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]string{"message": "playlist deleted"})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func signedInCatalog(t *testing.T) *Catalog {
	t.Helper()
	srv := newTestAPI(t)
	c := NewClient(srv.URL)
	if _, err := c.Login("ana@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return NewCatalog(c)
}

func TestCatalogRequiresAuth(t *testing.T) {
	srv := newTestAPI(t)
	catalog := NewCatalog(NewClient(srv.URL))

	if _, err := catalog.FetchSongs(); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("FetchSongs without login = %v, want ErrAuthRequired", err)
	}
	if _, err := catalog.CreatePlaylist("x"); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("CreatePlaylist without login = %v, want ErrAuthRequired", err)
	}
}

func TestFetchSongsMirrorsServer(t *testing.T) {
	catalog := signedInCatalog(t)

	songs, err := catalog.FetchSongs()
	if err != nil {
		t.Fatalf("FetchSongs: %v", err)
	}
	if len(songs) != 2 || songs[0].PublicID != "s1" || songs[1].PublicID != "s2" {
		t.Errorf("songs = %v, want s1 and s2", songs)
	}
	if got := catalog.Songs(); len(got) != 2 {
		t.Errorf("mirror holds %d songs, want 2", len(got))
	}
}

func TestCreatePlaylistRejectsBlankNameLocally(t *testing.T) {
	catalog := signedInCatalog(t)

	var verr *ValidationError
	if _, err := catalog.CreatePlaylist("   "); !errors.As(err, &verr) {
		t.Errorf("CreatePlaylist(blank) = %v, want ValidationError", err)
	}
}

func TestAddSongToPlaylist(t *testing.T) {
	catalog := signedInCatalog(t)
	if _, err := catalog.FetchPlaylists(); err != nil {
		t.Fatalf("FetchPlaylists: %v", err)
	}

	playlist, err := catalog.AddSongToPlaylist("p1", "s1")
	if err != nil {
		t.Fatalf("AddSongToPlaylist: %v", err)
	}
	if len(playlist.Songs) != 1 || playlist.Songs[0].PublicID != "s1" {
		t.Errorf("playlist songs = %v, want [s1]", playlist.Songs)
	}

	mirrored, ok := catalog.PlaylistByID("p1")
	if !ok || len(mirrored.Songs) != 1 {
		t.Errorf("mirror not updated from server response: %v", mirrored)
	}
}

func TestAddDuplicateSongIsConflict(t *testing.T) {
	catalog := signedInCatalog(t)

	if _, err := catalog.AddSongToPlaylist("p1", "s1"); err != nil {
		t.Fatalf("first add: %v", err)
	}

	var cerr *ConflictError
	if _, err := catalog.AddSongToPlaylist("p1", "s1"); !errors.As(err, &cerr) {
		t.Errorf("duplicate add = %v, want ConflictError", err)
	}
}

func TestAddUnknownSongIsNotFound(t *testing.T) {
	catalog := signedInCatalog(t)

	var nerr *NotFoundError
	if _, err := catalog.AddSongToPlaylist("p1", "nope"); !errors.As(err, &nerr) {
		t.Errorf("unknown song add = %v, want NotFoundError", err)
	}
}

func TestRemoveSongNotInPlaylistIsNotFound(t *testing.T) {
	catalog := signedInCatalog(t)

	var nerr *NotFoundError
	if _, err := catalog.RemoveSongFromPlaylist("p1", "s2"); !errors.As(err, &nerr) {
		t.Errorf("remove of absent song = %v, want NotFoundError", err)
	}
}

func TestRemoveSongUpdatesMirror(t *testing.T) {
	catalog := signedInCatalog(t)
	if _, err := catalog.AddSongToPlaylist("p1", "s1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	playlist, err := catalog.RemoveSongFromPlaylist("p1", "s1")
	if err != nil {
		t.Fatalf("RemoveSongFromPlaylist: %v", err)
	}
	if len(playlist.Songs) != 0 {
		t.Errorf("playlist songs = %v, want empty", playlist.Songs)
	}
}

func TestDeletePlaylistDropsMirrorEntry(t *testing.T) {
	catalog := signedInCatalog(t)
	if _, err := catalog.FetchPlaylists(); err != nil {
		t.Fatalf("FetchPlaylists: %v", err)
	}

	if err := catalog.DeletePlaylist("p1"); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
	if _, ok := catalog.PlaylistByID("p1"); ok {
		t.Error("deleted playlist still mirrored")
	}
}

// newStallingAPI serves login plus one catalog path whose first request
// blocks until release is closed, so tests can overlap two fetches and
// control which one completes last.
func newStallingAPI(t *testing.T, path string, first, second interface{}) (*httptest.Server, chan struct{}, chan struct{}) {
	t.Helper()

	firstArrived := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "session", Path: "/"})
		json.NewEncoder(w).Encode(model.User{ID: 1, Name: "ana"})
	})
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstArrived)
			<-release
			json.NewEncoder(w).Encode(first)
			return
		}
		json.NewEncoder(w).Encode(second)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, firstArrived, release
}

func TestFetchSongsLastCompletionWins(t *testing.T) {
	srv, firstArrived, release := newStallingAPI(t, "/api/songs",
		[]model.Song{{PublicID: "stale"}},
		[]model.Song{{PublicID: "fresh1"}, {PublicID: "fresh2"}})

	c := NewClient(srv.URL)
	if _, err := c.Login("ana@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	catalog := NewCatalog(c)

	done := make(chan error, 1)
	go func() {
		_, err := catalog.FetchSongs()
		done <- err
	}()
	<-firstArrived

	// The second fetch overtakes the stalled one and lands first.
	if _, err := catalog.FetchSongs(); err != nil {
		t.Fatalf("overtaking fetch: %v", err)
	}
	if got := catalog.Songs(); len(got) != 2 {
		t.Fatalf("mirror after overtaking fetch = %v, want the two fresh songs", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stalled fetch: %v", err)
	}

	// The fetch that completed last owns the mirror wholesale; the two
	// responses are never merged.
	got := catalog.Songs()
	if len(got) != 1 || got[0].PublicID != "stale" {
		t.Errorf("mirror = %v, want exactly the later-completing response", got)
	}
}

func TestFetchPlaylistsLastCompletionWins(t *testing.T) {
	srv, firstArrived, release := newStallingAPI(t, "/api/playlists",
		[]model.Playlist{{PublicID: "old"}},
		[]model.Playlist{{PublicID: "new1"}, {PublicID: "new2"}})

	c := NewClient(srv.URL)
	if _, err := c.Login("ana@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	catalog := NewCatalog(c)

	done := make(chan error, 1)
	go func() {
		_, err := catalog.FetchPlaylists()
		done <- err
	}()
	<-firstArrived

	if _, err := catalog.FetchPlaylists(); err != nil {
		t.Fatalf("overtaking fetch: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stalled fetch: %v", err)
	}

	got := catalog.Playlists()
	if len(got) != 1 || got[0].PublicID != "old" {
		t.Errorf("mirror = %v, want exactly the later-completing response", got)
	}
}

func TestSearchSongs(t *testing.T) {
	catalog := signedInCatalog(t)
	if _, err := catalog.FetchSongs(); err != nil {
		t.Fatalf("FetchSongs: %v", err)
	}

	if got := catalog.SearchSongs("ana"); len(got) != 1 || got[0].PublicID != "s1" {
		t.Errorf("SearchSongs(ana) = %v, want [s1]", got)
	}
	if got := catalog.SearchSongs("SECOND"); len(got) != 1 || got[0].PublicID != "s2" {
		t.Errorf("SearchSongs(SECOND) = %v, want [s2]", got)
	}
	if got := catalog.SearchSongs(""); len(got) != 2 {
		t.Errorf("empty query returned %d songs, want the full catalog", len(got))
	}
	if got := catalog.SearchSongs("zzz"); len(got) != 0 {
		t.Errorf("SearchSongs(zzz) = %v, want none", got)
	}
}

func TestSearchPlaylists(t *testing.T) {
	catalog := signedInCatalog(t)
	if _, err := catalog.FetchPlaylists(); err != nil {
		t.Fatalf("FetchPlaylists: %v", err)
	}

	if got := catalog.SearchPlaylists("favo"); len(got) != 1 {
		t.Errorf("SearchPlaylists(favo) = %v, want the one playlist", got)
	}
	if got := catalog.SearchPlaylists("nope"); len(got) != 0 {
		t.Errorf("SearchPlaylists(nope) = %v, want none", got)
	}
}
