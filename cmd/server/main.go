package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"reactgram/internal/config"
	"reactgram/internal/db"
	"reactgram/internal/logger"
	"reactgram/internal/middleware"
	"reactgram/internal/router"
	"reactgram/internal/services"
	"reactgram/internal/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDefaultSecret() {
		zl.Warn("SESSION_SECRET is not set, using the development default")
	}

	// Initialize Database
	conn, err := db.Open(cfg.DatabaseURL, zl)
	if err != nil {
		return err
	}

	store, err := storage.New(storage.Options{
		Driver:        cfg.StorageDriver,
		LocalPath:     cfg.LocalStoragePath,
		PublicBaseURL: cfg.PublicBaseURL,
		S3Region:      cfg.S3Region,
		S3Bucket:      cfg.S3Bucket,
	}, zl)
	if err != nil {
		return err
	}

	cache, err := services.NewPostCache(cfg.PostCacheSize, cfg.PostCacheTTL)
	if err != nil {
		return err
	}
	metrics, err := services.NewMetrics(nil)
	if err != nil {
		return err
	}

	// The change feed outlives request contexts; its worker drains on shutdown.
	profileSync := services.NewProfileSync(conn, cache, zl.Named("profile_sync"), metrics, services.FanOutOptions{
		PageSize:    cfg.FanOutPageSize,
		Concurrency: cfg.FanOutConcurrency,
	})
	feed := services.NewChangeFeed(profileSync.Handle, zl.Named("change_feed"), services.FeedOptions{
		Buffer:      cfg.ChangeFeedBuffer,
		MaxAttempts: cfg.ChangeFeedMaxAttempts,
	})
	feed.Start(context.Background())

	deps := router.Deps{
		DB:       conn,
		Users:    services.NewUserService(conn, store, feed, zl),
		Posts:    services.NewPostService(conn, cache, store, zl),
		Likes:    services.NewLikeService(conn, cache, zl, metrics),
		Comments: services.NewCommentService(conn, cache, zl, metrics),
	}
	if local, ok := store.(*storage.LocalStorage); ok {
		deps.UploadsDir = local.BasePath()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(zl), middleware.Recovery(zl))

	// Setup Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("reactgram_session", sessionStore))

	router.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Reactgram server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		feed.Close()
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	feed.Close()
	return nil
}
