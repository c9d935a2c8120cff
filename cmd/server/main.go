package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/ochiba/soundshelf/config"
	"github.com/ochiba/soundshelf/internal/acquire"
	"github.com/ochiba/soundshelf/internal/audio"
	"github.com/ochiba/soundshelf/internal/downloader"
	"github.com/ochiba/soundshelf/internal/scraper"
	"github.com/ochiba/soundshelf/internal/server"
	"github.com/ochiba/soundshelf/internal/store"
	"github.com/ochiba/soundshelf/internal/validate"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Storage.AudioDir, 0755); err != nil {
		slog.Error("Failed to create audio directory", "dir", cfg.Storage.AudioDir, "error", err)
		os.Exit(1)
	}

	trackStore, err := newStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	ytdlp := downloader.NewYtDlp(cfg.Tools.YtDlpPath, cfg.Tools.FFmpegPath)
	trimmer := audio.NewFFmpeg(cfg.Tools.FFmpegPath)
	spotify := scraper.NewSpotifyScraper()

	orchestrator := acquire.New(trackStore, ytdlp, trimmer, spotify, cfg.Storage.AudioDir)
	validator := validate.New(trackStore, ytdlp)

	srv := server.New(cfg, trackStore, validator, orchestrator)

	slog.Info("Starting SoundShelf API server", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
	if err := srv.Start(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// newStore selects the track store backend from configuration. The memory
// driver keeps everything in-process and loses state on restart.
func newStore(cfg *config.Config) (store.TrackStore, error) {
	if cfg.Database.Driver != "mysql" {
		return store.NewMemory(), nil
	}

	mysqlStore, err := store.NewMySQL(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mysqlStore.Init(ctx); err != nil {
		return nil, err
	}
	return mysqlStore, nil
}
