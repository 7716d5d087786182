package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyPlaylistName is returned when a playlist is created or renamed
// with a blank name.
var ErrEmptyPlaylistName = errors.New("playlist name must not be empty")

// Playlist is an ordered, user-owned collection of songs. A song appears at
// most once per playlist; duplicate adds are rejected at the repository.
type Playlist struct {
	ID        int64     `json:"-" gorm:"primaryKey"`
	PublicID  string    `json:"id" gorm:"size:36;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	Songs     []Song    `json:"songs" gorm:"-"` // hydrated from playlist_songs by the repository
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the playlists table name.
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistSong is one ordered membership row. The composite unique index
// enforces the at-most-once invariant per playlist.
type PlaylistSong struct {
	ID         int64     `gorm:"primaryKey"`
	PlaylistID int64     `gorm:"uniqueIndex:uq_playlist_song;index;not null"`
	SongID     int64     `gorm:"uniqueIndex:uq_playlist_song;not null"`
	Position   int       `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName sets the playlist membership table name.
func (PlaylistSong) TableName() string {
	return "playlist_songs"
}

// NewPlaylist builds an empty playlist owned by userID.
func NewPlaylist(name string, userID int64) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyPlaylistName
	}

	return &Playlist{
		PublicID: uuid.NewString(),
		Name:     name,
		UserID:   userID,
		Songs:    []Song{},
	}, nil
}
