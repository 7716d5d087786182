package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TuneFM/cache"
	"TuneFM/config"
	"TuneFM/core/auth"
	"TuneFM/core/library"
	"TuneFM/db"
	"TuneFM/logger"
	"TuneFM/model"
	"TuneFM/repository"

	"github.com/gorilla/mux"
)

// APIHandler carries the dependencies of every HTTP handler.
type APIHandler struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
	scanner      *library.Scanner
	songCache    *cache.SongCache
	hub          *Hub
}

// NewAPIHandler wires handlers to their dependencies.
func NewAPIHandler(
	cfg *config.Config,
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	playlistRepo repository.PlaylistRepository,
	scanner *library.Scanner,
	songCache *cache.SongCache,
	hub *Hub,
) *APIHandler {
	return &APIHandler{
		cfg:          cfg,
		userRepo:     userRepo,
		songRepo:     songRepo,
		playlistRepo: playlistRepo,
		scanner:      scanner,
		songCache:    songCache,
		hub:          hub,
	}
}

// Routes builds the full router: REST API, websocket endpoint and the
// static song file server.
func (h *APIHandler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/me", h.AuthMiddleware(h.Me)).Methods(http.MethodGet, http.MethodOptions)

	api.HandleFunc("/songs", h.AuthMiddleware(h.GetSongs)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/songs/{id}", h.AuthMiddleware(h.GetSong)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/upload", h.AuthMiddleware(h.Upload)).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/playlists", h.AuthMiddleware(h.GetPlaylists)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylist)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.GetPlaylist)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.UpdatePlaylist)).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.DeletePlaylist)).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/playlists/{id}/songs", h.AuthMiddleware(h.AddSongToPlaylist)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/playlists/{id}/songs/{songId}", h.AuthMiddleware(h.RemoveSongFromPlaylist)).Methods(http.MethodDelete, http.MethodOptions)

	r.HandleFunc("/ws/library", h.hub.ServeWS)

	// Static audio delivery; playback clients stream straight from here.
	r.PathPrefix("/songs/").Handler(
		http.StripPrefix("/songs/", http.FileServer(http.Dir(h.cfg.SongsDir))))

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func Start() error {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	defer logger.Sync()

	auth.Init(cfg.JWTSecret)

	if err := db.ConnectDB(cfg); err != nil {
		return err
	}
	if err := db.InitDB(); err != nil {
		return err
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		return err
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(&model.Playlist{}, &model.PlaylistSong{}); err != nil {
		return err
	}

	// Redis is optional; without it every cache read is a miss.
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, serving without catalog cache", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
	}

	if err := os.MkdirAll(cfg.SongsDir, 0755); err != nil {
		return err
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)

	scanner := library.NewScanner(cfg.SongsDir, songRepo)
	songCache := cache.NewSongCache(db.RedisClient)

	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	handler := NewAPIHandler(cfg, userRepo, songRepo, playlistRepo, scanner, songCache, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial sync so the catalog is warm before the first request.
	if added, err := scanner.Sync(ctx); err != nil {
		logger.Warn("initial library sync failed", logger.ErrorField(err))
	} else if added > 0 {
		logger.Info("initial library sync complete", logger.Int("added", added))
	}

	watcher := library.NewWatcher(scanner, func(added int) {
		songCache.Invalidate(ctx)
		hub.BroadcastLibraryUpdate(added)
	})
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("directory watcher stopped", logger.ErrorField(err))
		}
	}()

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", logger.String("signal", sig.String()))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", logger.ErrorField(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
