package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	config "github.com/NordCoder/trenes-alerts/internal/config/syncer"
	"github.com/NordCoder/trenes-alerts/internal/obs"
	"github.com/NordCoder/trenes-alerts/internal/obs/retry"
	"github.com/NordCoder/trenes-alerts/internal/outbox"
	"github.com/NordCoder/trenes-alerts/internal/repository/kafka"
	pg "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
	redisinfra "github.com/NordCoder/trenes-alerts/internal/repository/redis"
	"github.com/NordCoder/trenes-alerts/internal/repository/telegram"
	"github.com/NordCoder/trenes-alerts/internal/scraper"
	"github.com/NordCoder/trenes-alerts/internal/services/syncer"
	syncrepo "github.com/NordCoder/trenes-alerts/internal/services/syncer/repo"
)

func wire(cfg *config.Config, db *pg.DB, bot telegram.API, withEvents bool, l *zap.Logger) *syncer.Usecase {
	src := scraper.New(obs.NewHTTPClient(cfg.Source.Timeout), cfg.Source.AsScraperConfig()).WithLogger(l)

	rec := &syncer.Reconciler{
		Store:          syncrepo.Snapshot{R: pg.NewAlertRepo(db)},
		Tx:             pg.NewTransactor(db, l),
		PersistTimeout: cfg.Sync.PersistTimeout,
		Log:            l,
	}
	if withEvents {
		rec.Events = syncrepo.Events{Outbox: pg.NewOutboxRepo(db)}
	}

	b := &syncer.Broadcaster{
		Subs:    syncrepo.Subscribers{R: pg.NewSubscriptionRepo(db)},
		Out:     telegram.NewMessenger(bot).WithLogger(l),
		Workers: cfg.Sync.Workers,
		Log:     l,
	}

	return syncer.NewUC(src, syncrepo.Lines{R: pg.NewLineRepo(db)}, rec, b, l)
}

func main() {
	cfgPath := flag.String("config", "config/syncer.yaml", "path to the YAML config")
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

	l.Info("starting syncer",
		zap.String("source", cfg.Source.URL),
		zap.Duration("interval", cfg.Sync.Interval),
		zap.Bool("redis_lock", cfg.Redis.Enable),
		zap.Bool("kafka_events", cfg.Kafka.Enable),
	)

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
	bot, err := telegram.NewBotAPI(cfg.Telegram.AsTelegramConfig())
	if err != nil {
		l.Fatal("telegram init", zap.Error(err))
	}
	l.Info("telegram authorized", zap.String("bot", bot.Self.UserName))

	// redis
	var lock syncer.CycleLock
	var redisLock *redisinfra.CycleLock
	if cfg.Redis.Enable {
		redisLock = redisinfra.NewCycleLock(cfg.Redis.AsRedisConfig()).WithLogger(l)
		defer func() { _ = redisLock.Close() }()
		lock = redisLock
	}

	// kafka
	var outboxRunner *outbox.Runner
	if cfg.Kafka.Enable {
		prod := kafka.BootstrapProducer(root, cfg.Kafka.AsProducerConfig(), l)
		defer func() { _ = prod.Close() }()

		dispatch := outbox.MakeGlobalOutboxHandler(
			kafka.NewAlertEventsKafka(prod),
			retry.PublishPolicy(l, cfg.Outbox.Attempts),
		)
		outboxRunner = outbox.NewOutboxRunner(l, pg.NewOutboxRepo(db), dispatch, cfg.Outbox.AsRunnerConfig())
	}

	// wiring
	uc := wire(cfg, db, bot, cfg.Kafka.Enable, l)
	runner := syncer.NewRunner(l, uc, cfg.Sync.Interval, lock)

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Sync.MetricsAddr, func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return err
		}
		if redisLock != nil {
			return redisLock.Ping(ctx)
		}
		return nil
	}, l, obs.Route{Pattern: "POST /syncz", Handler: runner.TriggerHandler()})

	// start
	outboxDone := make(chan struct{})
	go func() {
		defer close(outboxDone)
		if outboxRunner != nil {
			outboxRunner.Run(root)
		}
	}()

	runDone := make(chan error, 1)
	go func() { runDone <- runner.Run(root) }()

	<-root.Done()
	l.Info("shutdown signal, waiting for the running cycle")

	// the in-flight cycle persists detached from root; give it a bounded wait
	select {
	case <-runDone:
	case <-time.After(cfg.Sync.ShutdownTimeout):
		l.Warn("cycle did not finish before shutdown timeout")
	}
	<-outboxDone

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
