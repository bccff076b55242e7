package bot_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_TOKEN", "42:xyz")
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "25")
	t.Setenv("SERVER_WORKERS", "8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "bot", cfg.App.Name)
	assert.Equal(t, "42:xyz", cfg.Telegram.AsTelegramConfig().Token)
	assert.Equal(t, 25, cfg.Telegram.PollTimeout)
	assert.Equal(t, 8, cfg.Server.Workers)
	assert.Equal(t, 15*time.Second, cfg.Server.HandleTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequiresToken(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
}
