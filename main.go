package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"restaurant-terminal/internal/api"
	"restaurant-terminal/internal/app"
	"restaurant-terminal/internal/config"
	"restaurant-terminal/internal/logger"
	"restaurant-terminal/internal/messages"
	"restaurant-terminal/internal/poll"
	"restaurant-terminal/internal/session"
	"restaurant-terminal/internal/state"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := state.Open(cfg.StatePath)
	if err != nil {
		log.Fatal("state store open failed", zap.String("path", cfg.StatePath), zap.Error(err))
	}

	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, cfg.DestructiveTimeout, log)
	sess := session.New(client, store, log)
	terminal := app.New(client, sess, store, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	user, ok := sess.Resume(ctx)
	if !ok {
		if cfg.Username == "" {
			log.Info("no session to resume and no credentials configured; set TERMINAL_USERNAME and TERMINAL_PASSWORD")
			os.Exit(1)
		}
		user, err = sess.Login(ctx, cfg.Username, cfg.Password)
		if err != nil {
			log.Error("login failed", zap.String("reason", messages.Humanize(err)))
			os.Exit(1)
		}
	}

	if err := terminal.Refresh(ctx); err != nil {
		log.Error("initial load failed", zap.String("reason", messages.Humanize(err)))
		os.Exit(1)
	}
	snapshot := terminal.Snapshot()
	log.Info("terminal ready",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.Int("dishes", len(snapshot.Dishes)),
		zap.Int("tables", len(snapshot.Tables)),
		zap.Int("orders", len(snapshot.Orders)))

	// Only administrators poll; waiters reload on demand.
	if sess.IsAdmin() {
		poller := poll.New(cfg.PollInterval, terminal.Refresh, log)
		poller.Run(ctx)
	} else {
		<-ctx.Done()
	}

	log.Info("shutting down")
}
