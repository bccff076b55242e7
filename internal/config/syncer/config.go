package syncer_config

import (
	"errors"
	"fmt"
	"time"

	common "github.com/NordCoder/trenes-alerts/internal/config/common"
	"github.com/NordCoder/trenes-alerts/internal/outbox"
	kafkainfra "github.com/NordCoder/trenes-alerts/internal/repository/kafka"
	pginfra "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
	redisinfra "github.com/NordCoder/trenes-alerts/internal/repository/redis"
	"github.com/NordCoder/trenes-alerts/internal/repository/telegram"
	"github.com/NordCoder/trenes-alerts/internal/scraper"
)

type Source struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Attempts  uint          `mapstructure:"attempts"`
	Delay     time.Duration `mapstructure:"delay"`
	MaxDelay  time.Duration `mapstructure:"max_delay"`
}

type Sync struct {
	Interval        time.Duration `mapstructure:"interval"`
	Workers         int           `mapstructure:"workers"`
	PersistTimeout  time.Duration `mapstructure:"persist_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
}

type Telegram struct {
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Debug   bool          `mapstructure:"debug"`
}

type Redis struct {
	Enable   bool          `mapstructure:"enable"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockKey  string        `mapstructure:"lock_key"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type Kafka struct {
	Enable       bool          `mapstructure:"enable"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Outbox struct {
	Workers       int           `mapstructure:"workers"`
	BatchSize     int           `mapstructure:"batch_size"`
	WaitTime      time.Duration `mapstructure:"wait_time"`
	InProgressTTL time.Duration `mapstructure:"in_progress_ttl"`
	Attempts      int           `mapstructure:"attempts"`
}

type Config struct {
	App      common.App     `mapstructure:"app"`
	Log      common.Log     `mapstructure:"log"`
	OTEL     common.OTEL    `mapstructure:"otel"`
	DB       pginfra.Config `mapstructure:"db"`
	Source   Source         `mapstructure:"source"`
	Sync     Sync           `mapstructure:"sync"`
	Telegram Telegram       `mapstructure:"telegram"`
	Redis    Redis          `mapstructure:"redis"`
	Kafka    Kafka          `mapstructure:"kafka"`
	Outbox   Outbox         `mapstructure:"outbox"`
}

func (c *Config) Validate() error {
	var errs []error
	if c.Source.URL == "" {
		errs = append(errs, errors.New("source.url is required"))
	}
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Sync.Interval <= 0 {
		errs = append(errs, fmt.Errorf("sync.interval must be positive, got %s", c.Sync.Interval))
	}
	if c.Redis.Enable && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis.enable is set"))
	}
	if c.Kafka.Enable && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("kafka.brokers and kafka.topic are required when kafka.enable is set"))
	}
	return errors.Join(errs...)
}

func (s Source) AsScraperConfig() scraper.Config {
	return scraper.Config{
		URL:       s.URL,
		UserAgent: s.UserAgent,
		Attempts:  s.Attempts,
		Delay:     s.Delay,
		MaxDelay:  s.MaxDelay,
	}
}

func (t Telegram) AsTelegramConfig() telegram.Config {
	return telegram.Config{Token: t.Token, Timeout: t.Timeout, Debug: t.Debug}
}

func (r Redis) AsRedisConfig() redisinfra.Config {
	return redisinfra.Config{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
		Key:      r.LockKey,
		TTL:      r.LockTTL,
	}
}

func (k Kafka) AsProducerConfig() kafkainfra.ProducerConfig {
	return kafkainfra.ProducerConfig{Brokers: k.Brokers, Topic: k.Topic, WriteTimeout: k.WriteTimeout}
}

func (o Outbox) AsRunnerConfig() outbox.Config {
	return outbox.Config{
		Workers:       o.Workers,
		BatchSize:     o.BatchSize,
		WaitTime:      o.WaitTime,
		InProgressTTL: o.InProgressTTL,
	}
}
