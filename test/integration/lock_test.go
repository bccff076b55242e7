//go:build integration

package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisinfra "github.com/NordCoder/trenes-alerts/internal/repository/redis"
)

func TestCycleLock_ExcludesSecondHolder(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "redis", cfg.RedisAddr, 30*time.Second)

	rc := redisinfra.Config{Addr: cfg.RedisAddr, Key: fmt.Sprintf("it:lock:%d", RandID()), TTL: 10 * time.Second}
	a := redisinfra.NewCycleLock(rc)
	b := redisinfra.NewCycleLock(rc)
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })

	release, ok, err := a.Acquire(t.Context())
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.Acquire(t.Context())
	require.NoError(t, err)
	assert.False(t, ok, "the lock is held")

	release()

	releaseB, ok, err := b.Acquire(t.Context())
	require.NoError(t, err)
	assert.True(t, ok)
	releaseB()
}
