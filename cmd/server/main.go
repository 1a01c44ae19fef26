// Package main initializes and starts the Live Market server, setting up
// configuration, logging, the document and relational stores, the session
// store, the broadcast hub, and the HTTP routes.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/avelazquez/livemarket/internal/config"
	"github.com/avelazquez/livemarket/internal/db"
	"github.com/avelazquez/livemarket/internal/logger"
	"github.com/avelazquez/livemarket/internal/repository"
	"github.com/avelazquez/livemarket/internal/server/handler/http"
	"github.com/avelazquez/livemarket/internal/server/ws"
	"github.com/avelazquez/livemarket/internal/service"
	"github.com/avelazquez/livemarket/internal/session"
)

// databaseName is the document-store database holding users and messages.
const databaseName = "livemarket"

// shutdownTimeout bounds graceful shutdown of the HTTP server and the hub.
const shutdownTimeout = 10 * time.Second

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	zapLogger.Info("starting",
		zap.String("mode", options.Mode),
		zap.Int("pid", os.Getpid()),
	)

	// Connect to the document store holding users and chat messages.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoDB, err := db.InitMongo(ctx, options.MongoURI, databaseName)
	if err != nil {
		zapLogger.Fatal("cannot init document store", zap.Error(err))
	}
	defer func() { _ = db.Disconnect(context.Background(), mongoDB) }()

	// Initialize repositories and the relational product sink. The sink opens
	// its connection per operation, so only the DSN is wired here.
	userRepo := repository.NewMongoUserRepository(mongoDB)
	messageRepo := repository.NewMongoMessageRepository(mongoDB)
	productSink := repository.NewPostgresProductSink(options.DatabaseDSN)

	// Initialize business-logic services and the session store.
	authService := service.NewAuth(userRepo)
	sessions := session.NewStore(session.DefaultTTL)
	session.StartExpiredSessionCleaner(ctx, sessions, time.Minute, zapLogger)

	// Start the broadcast hub.
	hub := ws.NewHub(messageRepo, productSink, zapLogger)
	go hub.Run()

	// Create HTTP handlers and build the router.
	authHandler := &http.AuthHandler{AuthService: authService, Sessions: sessions, Log: zapLogger}
	dataHandler := &http.DataHandler{AuthService: authService, Sessions: sessions, Log: zapLogger}
	wsHandler := ws.NewHandler(hub, zapLogger)

	router := http.NewRouter(authHandler, dataHandler, wsHandler, sessions, zapLogger)

	server := &nethttp.Server{
		Addr:         options.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Serve until interrupted, then drain connections.
	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("listening", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLogger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("http shutdown", zap.Error(err))
	}
	if err := hub.Shutdown(shutdownTimeout); err != nil {
		zapLogger.Error("hub shutdown", zap.Error(err))
	}
}
