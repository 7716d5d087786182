package library

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"TuneFM/logger"
	"TuneFM/model"
	"TuneFM/repository"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
)

// Scanner ingests MP3 files from the songs directory into the catalog.
// Ingestion is lazy: GET /songs triggers a Sync before reading the catalog,
// and the directory watcher triggers one on filesystem changes.
type Scanner struct {
	songsDir string
	songRepo repository.SongRepository
}

// NewScanner creates a scanner over songsDir.
func NewScanner(songsDir string, songRepo repository.SongRepository) *Scanner {
	return &Scanner{songsDir: songsDir, songRepo: songRepo}
}

// Sync walks the songs directory and records any MP3 not yet in the catalog,
// keyed by filename. Returns the number of newly ingested songs. Individual
// file failures are logged and skipped; the rest of the scan continues.
func (s *Scanner) Sync(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.songsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read songs directory %s: %w", s.songsDir, err)
	}

	added := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return added, ctx.Err()
		}
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".mp3" {
			continue
		}

		existing, err := s.songRepo.GetSongByFilename(entry.Name())
		if err != nil {
			logger.Warn("failed to look up song by filename",
				logger.String("filename", entry.Name()), logger.ErrorField(err))
			continue
		}
		if existing != nil {
			continue
		}

		song, err := s.ingestFile(entry.Name())
		if err != nil {
			logger.Warn("failed to ingest file",
				logger.String("filename", entry.Name()), logger.ErrorField(err))
			continue
		}

		if _, err := s.songRepo.CreateSong(song); err != nil {
			// A concurrent sync may have raced us to the insert; the unique
			// filename constraint keeps the catalog consistent either way.
			if err == repository.ErrDuplicateSong {
				continue
			}
			logger.Error("failed to record ingested song",
				logger.String("filename", entry.Name()), logger.ErrorField(err))
			continue
		}

		logger.Info("ingested song",
			logger.String("filename", song.Filename),
			logger.String("title", song.Title),
			logger.Float64("duration", song.Duration))
		added++
	}

	return added, nil
}

// ingestFile builds a Song record for one file: ID3 tags when present,
// filename parsing otherwise; decoded duration when the file parses, a
// placeholder estimate otherwise.
func (s *Scanner) ingestFile(filename string) (*model.Song, error) {
	fullPath := filepath.Join(s.songsDir, filename)

	duration, err := decodeDuration(fullPath)
	if err != nil {
		logger.Debug("duration decode failed, using placeholder",
			logger.String("filename", filename), logger.ErrorField(err))
		duration = placeholderDuration()
	}

	song, err := model.NewSong(filename, duration)
	if err != nil {
		return nil, err
	}

	if artist, title, album, ok := readTags(fullPath); ok {
		if title != "" {
			song.Title = title
		}
		if artist != "" {
			song.Artist = artist
		}
		if album != "" {
			song.Album = album
		}
	}

	return song, nil
}

// readTags reads ID3 metadata. ok is false when the file carries no parseable
// tags, in which case the filename-derived metadata stands.
func readTags(path string) (artist, title, album string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", "", false
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", "", false
	}
	return strings.TrimSpace(meta.Artist()), strings.TrimSpace(meta.Title()), strings.TrimSpace(meta.Album()), true
}

// decodeDuration decodes the MP3 stream to compute the real track length.
func decodeDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()).Seconds(), nil
}

// placeholderDuration estimates 2-5 minutes for files whose duration could
// not be decoded.
func placeholderDuration() float64 {
	return float64(120 + rand.Intn(181))
}
