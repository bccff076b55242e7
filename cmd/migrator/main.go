package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	common "github.com/NordCoder/trenes-alerts/internal/config/common"
	"github.com/NordCoder/trenes-alerts/internal/obs"
	pg "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
)

// usage: migrator [-config file] [up|down|status|version|redo|reset]
func main() {
	cfgPath := flag.String("config", "", "optional YAML config with a db.dsn key")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := common.NewViper(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	common.SetDefaults(v, "migrator")

	l, err := obs.NewLogger(obs.LogConfig{
		Level: v.GetString("log.level"),
		App:   v.GetString("app.name"),
		Env:   v.GetString("log.env"),
		Ver:   v.GetString("app.version"),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	goose.SetBaseFS(pg.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		l.Fatal("set dialect", zap.Error(err))
	}

	db, err := goose.OpenDBWithDriver("pgx", v.GetString("db.dsn"))
	if err != nil {
		l.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if err := goose.RunContext(ctx, command, db, pg.MigrationsDir, flag.Args()[min(1, flag.NArg()):]...); err != nil {
		l.Fatal("migrate", zap.String("command", command), zap.Error(err))
	}
	l.Info("migrations done", zap.String("command", command))
}
