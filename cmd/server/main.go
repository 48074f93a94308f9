package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hivedesk/internal/config"
	"hivedesk/internal/database"
	"hivedesk/internal/engine"
	"hivedesk/internal/handlers"
	"hivedesk/internal/middleware"
	"hivedesk/internal/storage"
	"hivedesk/internal/utils"
	"hivedesk/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})))
	}

	ctx := context.Background()

	db, err := database.NewPostgresDB(cfg.Database.URI)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close(ctx)
	}()

	if err := db.InitializeTables(ctx); err != nil {
		slog.Error("failed to initialize tables", "error", err)
		os.Exit(1)
	}

	metrics := utils.NewMetricsCollector()

	// The fan-out hub runs for the lifetime of the process.
	hub := websocket.NewHub()
	go hub.Run()

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, metrics, db, db, hub)

	auth := middleware.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	objects := storage.NewMemoryStore(fmt.Sprintf("http://%s:%d/objects", cfg.Server.Host, cfg.Server.Port))

	server := handlers.NewServer(system, eng, metrics, db, hub, auth, objects)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/session/register", server.HandleRegister())
	mux.HandleFunc("/session/login", server.HandleLogin())
	mux.HandleFunc("/session/logout", server.HandleLogout())
	mux.HandleFunc("/session/password", server.HandleChangePassword())
	mux.HandleFunc("/messages", server.HandleMessages())
	mux.HandleFunc("/messages/reply", server.HandleReply())
	mux.HandleFunc("/messages/get", server.HandleMessage())
	mux.HandleFunc("/messages/read", server.HandleMarkRead())
	mux.HandleFunc("/messages/search", server.HandleSearch())
	mux.HandleFunc("/profile", server.HandleProfile())
	mux.HandleFunc("/profile/avatar", server.HandleAvatarUpload())
	mux.HandleFunc("/activity", server.HandleActivity())
	mux.HandleFunc("/notes", server.HandleNotes())
	mux.HandleFunc("/events", server.HandleEvents())
	mux.HandleFunc("/tasks", server.HandleTasks())
	mux.HandleFunc("/ws", server.HandleWebSocket())

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(auth.Middleware(mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	go func() {
		slog.Info("starting server", "addr", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
