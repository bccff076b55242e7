package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/trenes-alerts/internal/config/syncer"
	"github.com/NordCoder/trenes-alerts/internal/obs"
	"github.com/NordCoder/trenes-alerts/internal/repository/kafka"
)

func main() {
	cfgPath := flag.String("config", "config/syncer.yaml", "path to the YAML config")
	partitions := flag.Int("partitions", 3, "partitions of the events topic")
	rf := flag.Int("replication-factor", 1, "replication factor of the events topic")
	wait := flag.Duration("wait", 30*time.Second, "how long to wait for partition leaders")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *wait+30*time.Second)
	defer cancel()

	spec := kafka.TopicSpec{
		Name:              cfg.Kafka.Topic,
		NumPartitions:     *partitions,
		ReplicationFactor: *rf,
		MaxWait:           *wait,
	}
	if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, spec, l); err != nil {
		l.Fatal("ensure topic", zap.String("topic", spec.Name), zap.Error(err))
	}
	l.Info("kafka-init ok", zap.String("topic", spec.Name), zap.Strings("brokers", cfg.Kafka.Brokers))
}
