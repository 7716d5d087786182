package repository

import (
	"context"
	"fmt"

	"TuneFM/model"

	"gorm.io/gorm"
)

// PlaylistRepository defines playlist data operations. All queries are scoped
// to the owning user; a playlist is never visible to another user's session.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByPublicID(ctx context.Context, publicID string, userID int64) (*model.Playlist, error)
	GetAllByUser(ctx context.Context, userID int64) ([]*model.Playlist, error)
	Rename(ctx context.Context, playlistID int64, name string) error
	ReplaceSongs(ctx context.Context, playlistID int64, songIDs []int64) error
	Delete(ctx context.Context, publicID string, userID int64) (bool, error)
	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
}

// gormPlaylistRepository implements PlaylistRepository with GORM.
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// Create persists a new playlist.
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

// GetByPublicID returns the playlist with its songs hydrated in order, or
// nil when it doesn't exist or belongs to another user.
func (r *gormPlaylistRepository) GetByPublicID(ctx context.Context, publicID string, userID int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		First(&playlist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	if err := r.hydrateSongs(ctx, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// GetAllByUser returns every playlist owned by userID, songs hydrated.
func (r *gormPlaylistRepository) GetAllByUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&playlists).Error
	if err != nil {
		return nil, err
	}

	for _, playlist := range playlists {
		if err := r.hydrateSongs(ctx, playlist); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// Rename updates the playlist name.
func (r *gormPlaylistRepository) Rename(ctx context.Context, playlistID int64, name string) error {
	return r.db.WithContext(ctx).Model(&model.Playlist{}).
		Where("id = ?", playlistID).
		Update("name", name).Error
}

// ReplaceSongs swaps the playlist's entire membership for the given songs,
// preserving the given order. Used by full-list PUT updates.
func (r *gormPlaylistRepository) ReplaceSongs(ctx context.Context, playlistID int64, songIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&model.PlaylistSong{}).Error; err != nil {
			return err
		}
		for i, songID := range songIDs {
			row := model.PlaylistSong{PlaylistID: playlistID, SongID: songID, Position: i}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		// Touch updated_at on the playlist itself.
		return tx.Model(&model.Playlist{}).Where("id = ?", playlistID).
			Update("updated_at", tx.NowFunc()).Error
	})
}

// Delete removes the playlist and its membership rows. Returns false when
// no playlist matched (missing or not owned).
func (r *gormPlaylistRepository) Delete(ctx context.Context, publicID string, userID int64) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var playlist model.Playlist
		err := tx.Where("public_id = ? AND user_id = ?", publicID, userID).First(&playlist).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		if err := tx.Where("playlist_id = ?", playlist.ID).Delete(&model.PlaylistSong{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&playlist).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// AddSong appends the song to the playlist tail. Returns
// ErrSongAlreadyInPlaylist when the song is already a member.
func (r *gormPlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.PlaylistSong{}).
			Where("playlist_id = ? AND song_id = ?", playlistID, songID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSongAlreadyInPlaylist
		}

		var maxPos struct{ Max int }
		err = tx.Model(&model.PlaylistSong{}).
			Select("COALESCE(MAX(position), -1) AS max").
			Where("playlist_id = ?", playlistID).
			Scan(&maxPos).Error
		if err != nil {
			return err
		}

		row := model.PlaylistSong{PlaylistID: playlistID, SongID: songID, Position: maxPos.Max + 1}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&model.Playlist{}).Where("id = ?", playlistID).
			Update("updated_at", tx.NowFunc()).Error
	})
}

// RemoveSong deletes the membership row and closes the position gap.
// Returns ErrSongNotInPlaylist when the song wasn't a member.
func (r *gormPlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("playlist_id = ? AND song_id = ?", playlistID, songID).
			Delete(&model.PlaylistSong{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSongNotInPlaylist
		}

		// Resequence remaining positions so ordering stays dense.
		var rows []model.PlaylistSong
		err := tx.Where("playlist_id = ?", playlistID).
			Order("position ASC").
			Find(&rows).Error
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].Position != i {
				if err := tx.Model(&rows[i]).Update("position", i).Error; err != nil {
					return err
				}
			}
		}
		return tx.Model(&model.Playlist{}).Where("id = ?", playlistID).
			Update("updated_at", tx.NowFunc()).Error
	})
}

// hydrateSongs loads the playlist's songs in membership order.
func (r *gormPlaylistRepository) hydrateSongs(ctx context.Context, playlist *model.Playlist) error {
	songs := make([]model.Song, 0)
	err := r.db.WithContext(ctx).Raw(
		`SELECT s.id, s.public_id, s.title, s.artist, s.album, s.duration, s.path, s.filename, s.created_at, s.updated_at
		 FROM songs s
		 JOIN playlist_songs ps ON ps.song_id = s.id
		 WHERE ps.playlist_id = ?
		 ORDER BY ps.position ASC`, playlist.ID).
		Scan(&songs).Error
	if err != nil {
		return fmt.Errorf("failed to hydrate songs for playlist %d: %w", playlist.ID, err)
	}
	playlist.Songs = songs
	return nil
}
