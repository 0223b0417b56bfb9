package main

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/server"
	"ctchen222/tictactoe/internal/telemetry"
	"ctchen222/tictactoe/internal/ticket"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a yaml config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	level, _ := cfg.SlogLevel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(level)

	// Create the session store
	var sessions repository.SessionRepository
	switch cfg.Store {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		sessions = repository.NewSessionRepository(rdb, cfg.Redis.SessionTTL)
	default:
		sessions = repository.NewMemorySessionRepository()
	}
	slog.InfoContext(ctx, "Session store ready", "store", cfg.Store)

	tickets, err := ticket.NewIssuer(cfg.Ticket.Secret, cfg.Ticket.TTL)
	if err != nil {
		log.Fatalf("failed to create ticket issuer: %v", err)
	}

	// Create hub
	h := hub.NewHub(hub.Options{
		Store:         sessions,
		ComputerDelay: cfg.Game.ComputerDelay,
	})
	go h.RunJanitor(ctx, cfg.Game.JanitorInterval)

	// Create services and controllers
	sessionService := service.NewSessionService(h, tickets)
	sessionController := controller.NewSessionController(sessionService)

	// Create the Gin-based server
	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(sessionService, sessionController)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	h.Shutdown(shutdownCtx)
	cancel()

	slog.Info("Server exiting")
}
