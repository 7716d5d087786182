package model

import "testing"

func TestNewPlaylist(t *testing.T) {
	pl, err := NewPlaylist("My Mix", 42)
	if err != nil {
		t.Fatalf("NewPlaylist returned error: %v", err)
	}
	if pl.Name != "My Mix" {
		t.Errorf("name = %q, want %q", pl.Name, "My Mix")
	}
	if pl.UserID != 42 {
		t.Errorf("userID = %d, want 42", pl.UserID)
	}
	if pl.Songs == nil || len(pl.Songs) != 0 {
		t.Error("new playlist should start with an empty song list")
	}
	if pl.PublicID == "" {
		t.Error("expected a generated public ID")
	}
}

func TestNewPlaylistTrimsName(t *testing.T) {
	pl, err := NewPlaylist("  Evening  ", 1)
	if err != nil {
		t.Fatalf("NewPlaylist returned error: %v", err)
	}
	if pl.Name != "Evening" {
		t.Errorf("name = %q, want trimmed %q", pl.Name, "Evening")
	}
}

func TestNewPlaylistBlankName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		if _, err := NewPlaylist(name, 1); err != ErrEmptyPlaylistName {
			t.Errorf("NewPlaylist(%q): expected ErrEmptyPlaylistName, got %v", name, err)
		}
	}
}
