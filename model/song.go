package model

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyFilename is returned when a song is created without a filename.
var ErrEmptyFilename = errors.New("song filename must not be empty")

// Song represents one audio file in the catalog. Songs are created by the
// library scanner and are immutable once recorded. The filename doubles as
// the storage key and the ingestion dedup key, so it is unique catalog-wide.
type Song struct {
	ID        int64     `json:"-"`
	PublicID  string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Duration  float64   `json:"duration"` // seconds
	Path      string    `json:"path"`     // relative to the /songs/ static prefix
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSong builds a Song from its storage filename. Title, artist and album
// default to what ParseFilename can recover; callers with better metadata
// (ID3 tags) overwrite those fields before persisting.
func NewSong(filename string, duration float64) (*Song, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}

	artist, title, album := ParseFilename(filename)
	return &Song{
		PublicID: uuid.NewString(),
		Title:    title,
		Artist:   artist,
		Album:    album,
		Duration: duration,
		Path:     filename,
		Filename: filename,
	}, nil
}

// ParseFilename extracts artist, title and album from an "Artist - Title.mp3"
// style filename. When the filename doesn't follow that shape, the whole base
// name becomes the title.
func ParseFilename(filename string) (artist, title, album string) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	if idx := strings.Index(base, " - "); idx >= 0 {
		artist = strings.TrimSpace(base[:idx])
		title = strings.TrimSpace(base[idx+3:])
		return artist, title, ""
	}
	// Also accept "Artist-Title" without surrounding spaces.
	if idx := strings.Index(base, "-"); idx > 0 && idx < len(base)-1 {
		artist = strings.TrimSpace(base[:idx])
		title = strings.TrimSpace(base[idx+1:])
		return artist, title, ""
	}

	return "", strings.TrimSpace(base), ""
}
