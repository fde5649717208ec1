package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"github.com/user/icebreaker-videos/internal/cache"
	"github.com/user/icebreaker-videos/internal/config"
	"github.com/user/icebreaker-videos/internal/query"
	"github.com/user/icebreaker-videos/internal/revalidate"
	"github.com/user/icebreaker-videos/internal/sitemap"
	"github.com/user/icebreaker-videos/internal/store"
	"github.com/user/icebreaker-videos/internal/tags"
	"github.com/user/icebreaker-videos/internal/web"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-migrate",
				Usage: "Do not apply pending schema migrations on startup",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg, !c.Bool("skip-migrate"))
		},
	}
}

func openStore(cfg *config.Config) (*store.GormStore, error) {
	db, err := store.Open(&cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("Database connection established")
	return db, nil
}

func serve(cfg *config.Config, migrate bool) error {
	db, err := openStore(cfg)
	if err != nil {
		return err
	}

	if migrate {
		version, dirty, err := db.Migrate()
		if err != nil {
			db.Close()
			return err
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema up to date")
	}

	pages, err := cache.New(&cfg.Cache)
	if err != nil {
		db.Close()
		return err
	}
	log.Info().Interface("cache", pages.Health(context.Background())).Msg("Page cache initialized")

	if cfg.Revalidate.Secret == "" {
		log.Warn().Msg("REVALIDATE_SECRET is empty, revalidation requests will be rejected")
	}

	directory := tags.NewDirectory(db)
	httpServer := web.NewServer(web.Deps{
		Store:       db,
		Engine:      query.NewEngine(db, directory),
		Tags:        directory,
		Pages:       pages,
		Revalidator: revalidate.NewService(pages, cfg.Revalidate.Secret),
		Sitemap:     sitemap.NewGenerator(db, directory, cfg.Site.BaseURL),
		Site:        cfg.Site,
		Server:      cfg.Server,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Info().Str("site", cfg.Site.BaseURL).Msg("Icebreaker site started successfully")

	var runErr error
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server error")
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	log.Info().Msg("Starting graceful shutdown...")

	// 1. Stop accepting requests and drain in-flight ones
	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	// 2. Close the page cache
	if err := pages.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing page cache")
	}

	// 3. Close database connection pool
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	} else {
		log.Info().Msg("Database connection closed")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		log.Warn().Msg("Shutdown timeout exceeded, forcing exit")
	} else {
		log.Info().Msg("Graceful shutdown completed")
	}
	return runErr
}
