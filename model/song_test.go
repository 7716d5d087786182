package model

import "testing"

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		artist   string
		title    string
		album    string
	}{
		{"Artist - Title.mp3", "Artist", "Title", ""},
		{"Some Band - A Long Song Name.mp3", "Some Band", "A Long Song Name", ""},
		{"JustATitle.mp3", "", "JustATitle", ""},
		{"Artist-Title.mp3", "Artist", "Title", ""},
		{"Trip - Hop - Nested.mp3", "Trip", "Hop - Nested", ""},
	}

	for _, tt := range tests {
		artist, title, album := ParseFilename(tt.filename)
		if artist != tt.artist || title != tt.title || album != tt.album {
			t.Errorf("ParseFilename(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tt.filename, artist, title, album, tt.artist, tt.title, tt.album)
		}
	}
}

func TestNewSong(t *testing.T) {
	song, err := NewSong("Artist - Title.mp3", 200)
	if err != nil {
		t.Fatalf("NewSong returned error: %v", err)
	}
	if song.Artist != "Artist" || song.Title != "Title" {
		t.Errorf("unexpected metadata: artist=%q title=%q", song.Artist, song.Title)
	}
	if song.Filename != "Artist - Title.mp3" || song.Path != "Artist - Title.mp3" {
		t.Errorf("filename/path not preserved: %q / %q", song.Filename, song.Path)
	}
	if song.PublicID == "" {
		t.Error("expected a generated public ID")
	}
	if song.Duration != 200 {
		t.Errorf("duration = %v, want 200", song.Duration)
	}
}

func TestNewSongEmptyFilename(t *testing.T) {
	if _, err := NewSong("   ", 0); err != ErrEmptyFilename {
		t.Errorf("expected ErrEmptyFilename, got %v", err)
	}
}
