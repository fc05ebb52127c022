package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yegors/voxrelay/internal/api"
	"github.com/yegors/voxrelay/internal/auth"
	"github.com/yegors/voxrelay/internal/bot"
	"github.com/yegors/voxrelay/internal/config"
	"github.com/yegors/voxrelay/internal/session"
	"github.com/yegors/voxrelay/internal/storage/sqlite"
	"github.com/yegors/voxrelay/internal/transcription"
	"github.com/yegors/voxrelay/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting voxrelay",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Select the session store backend
	var store session.Store
	switch cfg.Storage.Type {
	case "sqlite":
		sqliteStore, err := sqlite.NewSessionStorage(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Error("Failed to create SQLite session storage", logger.Error(err))
			os.Exit(1)
		}
		store = sqliteStore
		log.Info("Using SQLite session storage", logger.String("path", cfg.Storage.SQLitePath))
	default:
		store = session.NewMemoryStore()
		log.Info("Using in-memory session storage")
	}
	defer store.Close()

	prefs, err := session.NewPreferences(store, cfg.Languages.Default, log)
	if err != nil {
		log.Error("Failed to create language preferences", logger.Error(err))
		os.Exit(1)
	}

	tgAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("Failed to connect to Telegram", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Authorized on Telegram", logger.String("username", tgAPI.Self.UserName))

	messenger := bot.NewTelegramMessenger(tgAPI)
	guard := auth.NewGuard(cfg.Telegram.AllowedUserIDs)
	resolver := bot.NewResolver(messenger, log)
	dispatcher := bot.NewDispatcher(messenger, log)
	stats := bot.NewStats()

	transcriber := transcription.NewClient(
		cfg.Deepgram.APIKey,
		cfg.Deepgram.BaseURL,
		cfg.Deepgram.Model,
		cfg.Deepgram.TimeoutSeconds,
		log,
	)

	options := transcription.FormatOptions{
		SmartFormat:    cfg.Deepgram.SmartFormat,
		Punctuate:      cfg.Deepgram.Punctuate,
		Diarize:        cfg.Deepgram.Diarize,
		Paragraphs:     cfg.Deepgram.Paragraphs,
		DetectLanguage: cfg.Deepgram.DetectLanguage,
	}

	router := bot.NewRouter(messenger, guard, prefs, resolver, transcriber, dispatcher, options, stats, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = cfg.Telegram.PollTimeoutSecs
	updates := tgAPI.GetUpdatesChan(updateConfig)

	go router.Run(ctx, updates)

	// Optional status API
	var server *http.Server
	if cfg.Server.Enabled {
		handler := api.NewHandler(stats, store, Version, log)
		server = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      handler.Routes(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		}
		go func() {
			log.Info("Starting status API", logger.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Status API error on startup", logger.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down...")

	tgAPI.StopReceivingUpdates()
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Status API shutdown error", logger.Error(err))
		}
	}

	log.Info("Shutdown complete")
}
