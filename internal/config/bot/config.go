package bot_config

import (
	"errors"
	"time"

	common "github.com/NordCoder/trenes-alerts/internal/config/common"
	pginfra "github.com/NordCoder/trenes-alerts/internal/repository/postgres"
	"github.com/NordCoder/trenes-alerts/internal/repository/telegram"
)

type Telegram struct {
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Debug       bool          `mapstructure:"debug"`
	PollTimeout int           `mapstructure:"poll_timeout"`
}

type Server struct {
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	Workers         int           `mapstructure:"workers"`
	HandleTimeout   time.Duration `mapstructure:"handle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Config struct {
	App      common.App     `mapstructure:"app"`
	Log      common.Log     `mapstructure:"log"`
	OTEL     common.OTEL    `mapstructure:"otel"`
	DB       pginfra.Config `mapstructure:"db"`
	Telegram Telegram       `mapstructure:"telegram"`
	Server   Server         `mapstructure:"server"`
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}
	return nil
}

func (t Telegram) AsTelegramConfig() telegram.Config {
	return telegram.Config{Token: t.Token, Timeout: t.Timeout, Debug: t.Debug}
}
