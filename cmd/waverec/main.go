package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/petems/waverec/internal/app"
	"github.com/petems/waverec/internal/audio"
	"github.com/petems/waverec/internal/config"
	"github.com/petems/waverec/internal/logging"
	"github.com/petems/waverec/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	notifier := audio.NewNotifier()
	recorder := audio.NewCaptureSession(log, notifier)
	player := audio.NewPlaybackSession(log, notifier)

	engine := app.New(app.Config{
		Catalog:  audio.NewDeviceCatalog(),
		Recorder: recorder,
		Player:   player,
		Notifier: notifier,
		Config:   cfg,
		Logger:   log,
	})

	trayUI := tray.New(engine, cfg, log)

	log.Info().Str("version", Version).Str("commit", Commit).Msg("waverec starting")

	// Drain notifications: the tray has no waveform, but the channel must
	// not back up for consumers that do render one.
	go func() {
		for {
			select {
			case <-notifier.Preview():
			case ev := <-notifier.Events():
				log.Debug().Int("kind", int(ev.Kind)).Msg("Engine event")
			}
		}
	}()

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		if err := engine.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(); err != nil {
		log.Fatal().Err(err).Msg("Tray error")
	}

	if err := engine.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}
