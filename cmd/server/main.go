// Portfolio AI Assistant server
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/portfolio-assistant/internal/agent"
	"github.com/ashureev/portfolio-assistant/internal/api"
	"github.com/ashureev/portfolio-assistant/internal/config"
	"github.com/ashureev/portfolio-assistant/internal/contact"
	"github.com/ashureev/portfolio-assistant/internal/identity"
	"github.com/ashureev/portfolio-assistant/internal/middleware"
	"github.com/ashureev/portfolio-assistant/internal/store"
)

func main() {
	logger, level := newLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		level.Set(slog.LevelDebug)
	}

	slog.Info("Starting server",
		"app", cfg.AppName,
		"version", config.Version,
		"port", cfg.Port,
		"debug", cfg.Debug,
		"container", config.IsContainer(),
	)

	// Initialize session storage.
	sessions, err := openSessionStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected", "backend", cfg.Session.Backend)

	// Initialize contact storage.
	contactDB, err := contact.Open(cfg.Contact)
	if err != nil {
		slog.Error("Failed to open contacts database", "error", err)
		os.Exit(1)
	}
	if err := contact.Migrate(contactDB); err != nil {
		slog.Error("Failed to migrate contacts database", "error", err)
		os.Exit(1)
	}
	contactRepo := contact.NewGormRepository(contactDB)
	defer func() {
		if closeErr := contactRepo.Close(); closeErr != nil {
			slog.Error("Failed to close contacts database", "error", closeErr)
		}
	}()
	slog.Info("Contacts database ready")

	// Build the agent once; a bad model binding fails startup instead of the first request.
	agents := agent.NewConfigProvider(cfg.Model)
	if _, err := agents.Get(); err != nil {
		slog.Error("Failed to create portfolio agent", "error", err)
		os.Exit(1)
	}

	window := agent.HistoryWindow{MaxTurns: cfg.Model.HistoryMaxTurns, MaxTokens: cfg.Model.HistoryMaxTokens}
	if window.MaxTokens > 0 {
		counter, err := agent.NewTiktokenCounter(cfg.Model.Name)
		if err != nil {
			slog.Warn("Token counter unavailable, token history limit disabled", "error", err)
			window.MaxTokens = 0
		} else {
			window.Counter = counter
		}
	}

	runner := agent.NewOpenAIRunner()
	dispatcher := agent.NewDispatcher(runner,
		agent.WithHistoryWindow(window),
		agent.WithTimeout(cfg.Model.Timeout),
		agent.WithLogger(logger),
	)
	chatService := agent.NewChatService(agents, dispatcher, sessions)
	refiner := agent.NewRefiner(agents, runner)

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	if !cfg.SMTP.Enabled() {
		slog.Warn("Email credentials (EMAIL_USER, EMAIL_PASSWORD) not set, contact notifications disabled")
	}
	contactService := contact.NewService(contactRepo, contact.NewSMTPNotifier(cfg.SMTP), cfg.SMTP.Timeout)
	defer contactService.Close()

	// Initialize handlers.
	chatHandler := agent.NewHandler(chatService, cfg, conversationLogger)
	defer chatHandler.Close()
	contactHandler := api.NewContactHandler(contactService, refiner, cfg.Debug)
	healthHandler := api.NewHealthHandler(cfg, map[string]api.Pinger{
		"sessions": sessions,
		"contacts": contactRepo,
	})

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(identity.Middleware)

	// Public routes.
	healthHandler.RegisterHealth(r)
	chatHandler.RegisterRoutes(r)
	contactHandler.RegisterRoutes(r)

	// Admin routes (only if a signing secret is configured).
	if cfg.Admin.JWTSecret != "" {
		contactHandler.RegisterAdminRoutes(r, middleware.AdminAuth(cfg.Admin.JWTSecret))
	} else {
		slog.Info("ADMIN_JWT_SECRET not set, admin routes disabled")
	}

	// Create server.
	// Model calls can take tens of seconds, so the write timeout is generous.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// newLogger returns a JSON logger at Info level. The returned LevelVar
// lowers it to Debug once configuration has been read.
func newLogger(w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, level
}

func openSessionStore(cfg *config.Config) (store.Repository, error) {
	switch cfg.Session.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rs, err := store.NewRedis(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		ss, err := store.NewSQLite(cfg.Session.DBPath)
		if err != nil {
			return nil, err
		}
		return ss, nil
	}
}
