package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"cinetracks/api"
	"cinetracks/config"
	"cinetracks/handlers"
	"cinetracks/services/auth"
	"cinetracks/services/catalog"
	"cinetracks/services/session"
	"cinetracks/services/store"
	"cinetracks/services/watchlist"
)

// compile-time checks that the real clients satisfy the controller's
// collaborator interfaces
var (
	_ watchlist.Store        = (*store.Client)(nil)
	_ watchlist.SeasonSource = (*catalog.Client)(nil)
	_ session.Authenticator  = (*auth.Client)(nil)
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("CineTracks client starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("CINETRACKS_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	logWriter := io.Writer(os.Stdout)
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			logWriter = io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(logWriter)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	level := slog.LevelInfo
	switch settings.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level})))

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	timeout := time.Duration(settings.Services.TimeoutSeconds) * time.Second

	// Backend service clients
	authClient := auth.NewClient(settings.Services.AuthURL, timeout)
	catalogClient := catalog.NewClient(settings.Services.CatalogURL, timeout)
	storeClient := store.NewClient(settings.Services.WatchlistURL, timeout)

	sessions := session.NewManager(authClient, storeClient, catalogClient, slog.Default())

	sessionHandler := handlers.NewSessionHandler(sessions)
	watchlistHandler := handlers.NewWatchlistHandler(sessions, catalogClient)
	catalogHandler := handlers.NewCatalogHandler(catalogClient)

	r := api.NewRouter(sessionHandler, watchlistHandler, catalogHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
