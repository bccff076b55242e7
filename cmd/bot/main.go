package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	config "github.com/NordCoder/trenes-alerts/internal/config/bot"
	"github.com/NordCoder/trenes-alerts/internal/obs"
	pg "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
	"github.com/NordCoder/trenes-alerts/internal/repository/telegram"
	"github.com/NordCoder/trenes-alerts/internal/services/bot"
	botrepo "github.com/NordCoder/trenes-alerts/internal/services/bot/repo"
)

func wiring(cfg *config.Config, db *pg.DB, api telegram.API, src bot.UpdateSource, l *zap.Logger) *bot.Controller {
	h := &bot.Handler{
		Users:  botrepo.Users{R: pg.NewUserRepo(db)},
		Lines:  pg.NewLineRepo(db),
		Subs:   botrepo.Subscriptions{R: pg.NewSubscriptionRepo(db)},
		Alerts: botrepo.Alerts{R: pg.NewAlertRepo(db)},
		Bot:    api,
		Log:    l.With(zap.String("component", "bot.handler")),
	}
	return &bot.Controller{
		Log:           l.With(zap.String("component", "bot.controller")),
		Src:           src,
		H:             h,
		PollTimeout:   cfg.Telegram.PollTimeout,
		HandleTimeout: cfg.Server.HandleTimeout,
		Workers:       cfg.Server.Workers,
	}
}

func main() {
	cfgPath := flag.String("config", "config/bot.yaml", "path to the YAML config")
	flag.Parse()

	// init
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.NewDB(root, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := db.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		l.Warn("db metrics", zap.Error(err))
	}
	l.Info("db connected")

	// telegram
	api, err := telegram.NewBotAPI(cfg.Telegram.AsTelegramConfig())
	if err != nil {
		l.Fatal("telegram init", zap.Error(err))
	}
	l.Info("telegram authorized", zap.String("bot", api.Self.UserName))

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, db.Ping, l)

	// start
	ctrl := wiring(cfg, db, api, api, l)
	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Run(root) }()

	select {
	case <-root.Done():
		l.Info("shutdown signal")
		select {
		case <-errCh:
		case <-time.After(cfg.Server.ShutdownTimeout):
			l.Warn("handlers did not finish before shutdown timeout")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("controller error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
