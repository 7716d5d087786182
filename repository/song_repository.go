package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"TuneFM/model"
)

// SongRepository defines the interface for song data operations. Songs are
// immutable once created, so there is no update method.
type SongRepository interface {
	CreateSong(song *model.Song) (int64, error)
	GetSongByID(id int64) (*model.Song, error)
	GetSongByPublicID(publicID string) (*model.Song, error)
	GetSongByFilename(filename string) (*model.Song, error)
	GetAllSongs() ([]*model.Song, error)
}

const songColumns = "id, public_id, title, artist, album, duration, path, filename, created_at, updated_at"

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong adds a new song to the catalog. Returns ErrDuplicateSong when
// the filename is already recorded.
func (r *mysqlSongRepository) CreateSong(song *model.Song) (int64, error) {
	query := `INSERT INTO songs (public_id, title, artist, album, duration, path, filename)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateSong: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(song.PublicID, song.Title, song.Artist, song.Album, song.Duration, song.Path, song.Filename)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate entry") {
			return 0, ErrDuplicateSong
		}
		return 0, fmt.Errorf("failed to execute CreateSong: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSong: %w", err)
	}
	song.ID = id
	return id, nil
}

func (r *mysqlSongRepository) scanSong(row *sql.Row) (*model.Song, error) {
	song := &model.Song{}
	err := row.Scan(&song.ID, &song.PublicID, &song.Title, &song.Artist, &song.Album,
		&song.Duration, &song.Path, &song.Filename, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Song not found
		}
		return nil, fmt.Errorf("failed to scan song row: %w", err)
	}
	return song, nil
}

// GetSongByID retrieves a song by its internal ID.
func (r *mysqlSongRepository) GetSongByID(id int64) (*model.Song, error) {
	query := fmt.Sprintf("SELECT %s FROM songs WHERE id = ?", songColumns)
	return r.scanSong(r.db.QueryRow(query, id))
}

// GetSongByPublicID retrieves a song by its API-facing identifier.
func (r *mysqlSongRepository) GetSongByPublicID(publicID string) (*model.Song, error) {
	query := fmt.Sprintf("SELECT %s FROM songs WHERE public_id = ?", songColumns)
	return r.scanSong(r.db.QueryRow(query, publicID))
}

// GetSongByFilename retrieves a song by filename, used to detect
// already-ingested files.
func (r *mysqlSongRepository) GetSongByFilename(filename string) (*model.Song, error) {
	query := fmt.Sprintf("SELECT %s FROM songs WHERE filename = ?", songColumns)
	return r.scanSong(r.db.QueryRow(query, filename))
}

// GetAllSongs retrieves the whole catalog, newest first.
func (r *mysqlSongRepository) GetAllSongs() ([]*model.Song, error) {
	query := fmt.Sprintf("SELECT %s FROM songs ORDER BY created_at DESC", songColumns)
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song := &model.Song{}
		err := rows.Scan(&song.ID, &song.PublicID, &song.Title, &song.Artist, &song.Album,
			&song.Duration, &song.Path, &song.Filename, &song.CreatedAt, &song.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song in GetAllSongs: %w", err)
		}
		songs = append(songs, song)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllSongs: %w", err)
	}

	return songs, nil
}
