package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"TuneFM/model"
	"TuneFM/repository"
)

// fakeSongRepo is an in-memory SongRepository keyed by filename.
type fakeSongRepo struct {
	songs  []*model.Song
	nextID int64
}

func (r *fakeSongRepo) CreateSong(song *model.Song) (int64, error) {
	for _, s := range r.songs {
		if s.Filename == song.Filename {
			return 0, repository.ErrDuplicateSong
		}
	}
	r.nextID++
	song.ID = r.nextID
	r.songs = append(r.songs, song)
	return song.ID, nil
}

func (r *fakeSongRepo) GetSongByID(id int64) (*model.Song, error) {
	for _, s := range r.songs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSongRepo) GetSongByPublicID(publicID string) (*model.Song, error) {
	for _, s := range r.songs {
		if s.PublicID == publicID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSongRepo) GetSongByFilename(filename string) (*model.Song, error) {
	for _, s := range r.songs {
		if s.Filename == filename {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSongRepo) GetAllSongs() ([]*model.Song, error) {
	return r.songs, nil
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	// Not a decodable MP3; the scanner should fall back to placeholder
	// duration and filename parsing.
	if err := os.WriteFile(filepath.Join(dir, name), []byte("not really mp3 data"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSyncIngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Artist - Title.mp3")
	writeFile(t, dir, "notes.txt") // ignored: wrong extension

	repo := &fakeSongRepo{}
	scanner := NewScanner(dir, repo)

	added, err := scanner.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	song := repo.songs[0]
	if song.Artist != "Artist" || song.Title != "Title" || song.Album != "" {
		t.Errorf("metadata = (%q, %q, %q), want (Artist, Title, empty)", song.Artist, song.Title, song.Album)
	}
	if song.Duration < 120 || song.Duration > 300 {
		t.Errorf("placeholder duration %v outside [120, 300]", song.Duration)
	}
	if song.Path != "Artist - Title.mp3" {
		t.Errorf("path = %q, want the relative filename", song.Path)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Artist - Title.mp3")

	repo := &fakeSongRepo{}
	scanner := NewScanner(dir, repo)

	if _, err := scanner.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync returned error: %v", err)
	}
	added, err := scanner.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync returned error: %v", err)
	}
	if added != 0 {
		t.Errorf("second sync added %d songs, want 0", added)
	}
	if len(repo.songs) != 1 {
		t.Errorf("catalog holds %d songs after re-scan, want 1", len(repo.songs))
	}
}

func TestSyncMissingDirectory(t *testing.T) {
	repo := &fakeSongRepo{}
	scanner := NewScanner(filepath.Join(t.TempDir(), "does-not-exist"), repo)

	added, err := scanner.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync on missing directory returned error: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}
}

func TestSyncPicksUpLaterArrivals(t *testing.T) {
	dir := t.TempDir()
	repo := &fakeSongRepo{}
	scanner := NewScanner(dir, repo)

	added, err := scanner.Sync(context.Background())
	if err != nil || added != 0 {
		t.Fatalf("empty dir sync: added=%d err=%v", added, err)
	}

	writeFile(t, dir, "Lone Title.mp3")
	added, err = scanner.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if got := repo.songs[0]; got.Title != "Lone Title" || got.Artist != "" {
		t.Errorf("metadata = (%q, %q), want (empty, Lone Title)", got.Artist, got.Title)
	}
}
