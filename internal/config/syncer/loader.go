package syncer_config

import (
	common "github.com/NordCoder/trenes-alerts/internal/config/common"
)

const DefaultSourceURL = "https://www.argentina.gob.ar/transporte/trenes-argentinos/Modificaciones-en-el-servicio-y-novedades"

func Load(path string) (*Config, error) {
	v, err := common.NewViper(path)
	if err != nil {
		return nil, err
	}
	common.SetDefaults(v, "syncer")

	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("source.timeout", "15s")
	v.SetDefault("source.user_agent", "trenes-alerts/1.0")
	v.SetDefault("source.attempts", 3)
	v.SetDefault("source.delay", "2s")
	v.SetDefault("source.max_delay", "20s")

	v.SetDefault("sync.interval", "300s")
	v.SetDefault("sync.workers", 8)
	v.SetDefault("sync.persist_timeout", "30s")
	v.SetDefault("sync.shutdown_timeout", "60s")
	v.SetDefault("sync.metrics_addr", ":8082")

	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_key", "lock:trenes-alerts:sync")
	v.SetDefault("redis.lock_ttl", "10m")

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "trenes.alerts.changed")
	v.SetDefault("kafka.write_timeout", "10s")

	v.SetDefault("outbox.workers", 1)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.wait_time", "1s")
	v.SetDefault("outbox.in_progress_ttl", "1m")
	v.SetDefault("outbox.attempts", 6)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
