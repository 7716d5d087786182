package repository

import "errors"

var (
	// ErrDuplicateUser is returned when registering an email that already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrDuplicateSong is returned when inserting a filename already in the catalog.
	ErrDuplicateSong = errors.New("song already exists")
	// ErrSongAlreadyInPlaylist is returned on a duplicate playlist add.
	ErrSongAlreadyInPlaylist = errors.New("song already in playlist")
	// ErrSongNotInPlaylist is returned when removing a song a playlist doesn't hold.
	ErrSongNotInPlaylist = errors.New("song not in playlist")
)
