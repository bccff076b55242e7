package bot_config

import (
	common "github.com/NordCoder/trenes-alerts/internal/config/common"
)

func Load(path string) (*Config, error) {
	v, err := common.NewViper(path)
	if err != nil {
		return nil, err
	}
	common.SetDefaults(v, "bot")

	v.SetDefault("telegram.poll_timeout", 60)

	v.SetDefault("server.metrics_addr", ":8083")
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.handle_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
