package client

import (
	"errors"
	"strings"
	"sync"

	"TuneFM/model"
)

// Catalog is the local mirror of the server's songs and the user's
// playlists. Reads are served from the mirror; every mutation goes to the
// server first and the mirror is updated only from what the server
// confirms, so the two never drift apart silently.
type Catalog struct {
	client *Client

	mu        sync.RWMutex
	songs     []model.Song
	playlists []model.Playlist
}

// NewCatalog creates an empty catalog bound to a client.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) requireAuth() error {
	if !c.client.Authenticated() {
		return ErrAuthRequired
	}
	return nil
}

// FetchSongs replaces the song mirror with the server's catalog and
// returns it. The server scans its library as part of this call, so new
// files appear here without any separate refresh step.
func (c *Catalog) FetchSongs() ([]model.Song, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var songs []model.Song
	if err := c.client.doJSON("GET", "/api/songs", nil, &songs); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.songs = songs
	c.mu.Unlock()
	return c.Songs(), nil
}

// FetchPlaylists replaces the playlist mirror with the server's state and
// returns it.
func (c *Catalog) FetchPlaylists() ([]model.Playlist, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var playlists []model.Playlist
	if err := c.client.doJSON("GET", "/api/playlists", nil, &playlists); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.playlists = playlists
	c.mu.Unlock()
	return c.Playlists(), nil
}

// Songs returns a snapshot of the mirrored song catalog.
func (c *Catalog) Songs() []model.Song {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Song, len(c.songs))
	copy(out, c.songs)
	return out
}

// Playlists returns a snapshot of the mirrored playlists.
func (c *Catalog) Playlists() []model.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Playlist, len(c.playlists))
	copy(out, c.playlists)
	return out
}

// SongByID returns the mirrored song with the given public ID.
func (c *Catalog) SongByID(publicID string) (model.Song, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.songs {
		if s.PublicID == publicID {
			return s, true
		}
	}
	return model.Song{}, false
}

// PlaylistByID returns the mirrored playlist with the given public ID.
func (c *Catalog) PlaylistByID(publicID string) (model.Playlist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.playlists {
		if p.PublicID == publicID {
			return p, true
		}
	}
	return model.Playlist{}, false
}

// CreatePlaylist creates a playlist on the server and mirrors it. A blank
// name is rejected locally, before any request is made.
func (c *Catalog) CreatePlaylist(name string) (*model.Playlist, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Message: "playlist name must not be empty"}
	}

	var playlist model.Playlist
	err := c.client.doJSON("POST", "/api/playlists", map[string]string{"name": name}, &playlist)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.playlists = append(c.playlists, playlist)
	c.mu.Unlock()
	return &playlist, nil
}

// RenamePlaylist renames a playlist on the server and mirrors the result.
func (c *Catalog) RenamePlaylist(publicID, name string) (*model.Playlist, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Message: "playlist name must not be empty"}
	}

	var playlist model.Playlist
	err := c.client.doJSON("PUT", "/api/playlists/"+publicID, map[string]string{"name": name}, &playlist)
	if err != nil {
		return nil, err
	}

	c.replacePlaylist(playlist)
	return &playlist, nil
}

// DeletePlaylist deletes a playlist on the server, then drops it from the
// mirror. A failed delete leaves the mirror untouched.
func (c *Catalog) DeletePlaylist(publicID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	if err := c.client.doJSON("DELETE", "/api/playlists/"+publicID, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	for i, p := range c.playlists {
		if p.PublicID == publicID {
			c.playlists = append(c.playlists[:i], c.playlists[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// AddSongToPlaylist adds a song to a playlist. Adding a song the playlist
// already holds is a ConflictError; an unknown song or playlist is a
// NotFoundError. On success the mirror entry is replaced with the
// playlist the server returned.
func (c *Catalog) AddSongToPlaylist(playlistID, songID string) (*model.Playlist, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var playlist model.Playlist
	err := c.client.doJSON("POST", "/api/playlists/"+playlistID+"/songs",
		map[string]string{"songId": songID}, &playlist)
	if err != nil {
		// The server rejects duplicate membership as a bad request.
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, &ConflictError{Message: verr.Message}
		}
		return nil, err
	}

	c.replacePlaylist(playlist)
	return &playlist, nil
}

// RemoveSongFromPlaylist removes a song from a playlist. Removing a song
// the playlist does not hold is a NotFoundError. On success the mirror
// entry is replaced with the playlist the server returned.
func (c *Catalog) RemoveSongFromPlaylist(playlistID, songID string) (*model.Playlist, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var playlist model.Playlist
	err := c.client.doJSON("DELETE", "/api/playlists/"+playlistID+"/songs/"+songID, nil, &playlist)
	if err != nil {
		return nil, err
	}

	c.replacePlaylist(playlist)
	return &playlist, nil
}

func (c *Catalog) replacePlaylist(playlist model.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range c.playlists {
		if p.PublicID == playlist.PublicID {
			c.playlists[i] = playlist
			return
		}
	}
	c.playlists = append(c.playlists, playlist)
}

// SearchSongs filters the mirrored songs by a case-insensitive substring
// match on title, artist, album and filename. An empty query returns the
// whole catalog.
func (c *Catalog) SearchSongs(query string) []model.Song {
	query = strings.ToLower(strings.TrimSpace(query))
	songs := c.Songs()
	if query == "" {
		return songs
	}

	out := make([]model.Song, 0)
	for _, s := range songs {
		if strings.Contains(strings.ToLower(s.Title), query) ||
			strings.Contains(strings.ToLower(s.Artist), query) ||
			strings.Contains(strings.ToLower(s.Album), query) ||
			strings.Contains(strings.ToLower(s.Filename), query) {
			out = append(out, s)
		}
	}
	return out
}

// SearchPlaylists filters the mirrored playlists by a case-insensitive
// substring match on name. An empty query returns all of them.
func (c *Catalog) SearchPlaylists(query string) []model.Playlist {
	query = strings.ToLower(strings.TrimSpace(query))
	playlists := c.Playlists()
	if query == "" {
		return playlists
	}

	out := make([]model.Playlist, 0)
	for _, p := range playlists {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}
