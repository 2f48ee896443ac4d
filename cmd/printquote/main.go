package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/meshforge/printquote/dbopen"
	"github.com/meshforge/printquote/events"
	"github.com/meshforge/printquote/notify"
	"github.com/meshforge/printquote/orders"
	"github.com/meshforge/printquote/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := &server.Config{}
	if *configPath != "" {
		loaded, err := server.LoadConfigFile(*configPath)
		if err != nil {
			slog.Error("load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyEnv(cfg)

	// Logging.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := orders.InitSchema(db); err != nil {
		slog.Error("init orders schema", "error", err)
		os.Exit(1)
	}
	eventLog := events.NewLogger(db)
	if err := eventLog.Init(); err != nil {
		slog.Error("init events schema", "error", err)
		os.Exit(1)
	}
	eventLog.StartCleanup(ctx, 6*time.Hour, 90*24*time.Hour)

	// Notification channels are optional: each one is wired only when
	// its config is present.
	var notifiers []orders.Notifier
	if cfg.SMTP.Host != "" {
		notifiers = append(notifiers, notify.NewEmailer(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From))
		slog.Info("email notifications enabled", "host", cfg.SMTP.Host)
	}
	if cfg.BotWebhookURL != "" {
		notifiers = append(notifiers, notify.NewBotNotifier(cfg.BotWebhookURL))
		slog.Info("bot notifications enabled")
	}

	svc := server.New(cfg, db, logger, notifiers...)

	r := chi.NewRouter()
	r.Use(server.RequestID)
	svc.RegisterHTTP(r)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "listen", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// applyEnv lets environment variables override the config file, for
// container deployments where a file is inconvenient.
func applyEnv(cfg *server.Config) {
	if v := os.Getenv("LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SCRATCH_DIR"); v != "" {
		cfg.ScratchDir = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("BOT_WEBHOOK_URL"); v != "" {
		cfg.BotWebhookURL = v
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
