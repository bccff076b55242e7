package bot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/trenes-alerts/internal/domain/user"
)

type chanSource struct {
	ch      chan tgbotapi.Update
	timeout int
	stopped atomic.Bool
}

func (s *chanSource) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	s.timeout = cfg.Timeout
	return s.ch
}

func (s *chanSource) StopReceivingUpdates() { s.stopped.Store(true) }

func TestController_DispatchesUntilCancelled(t *testing.T) {
	env := newHandlerEnv()
	src := &chanSource{ch: make(chan tgbotapi.Update, 4)}
	c := &Controller{Log: zap.NewNop(), Src: src, H: env.h, PollTimeout: 30, Workers: 2}

	src.ch <- command(10, 100, "/start")
	src.ch <- command(11, 101, "/lines")

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return len(env.api.messages()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not stop")
	}
	assert.True(t, src.stopped.Load())
	assert.Equal(t, 30, src.timeout)
}

func TestController_ClosedChannelEndsRun(t *testing.T) {
	src := &chanSource{ch: make(chan tgbotapi.Update)}
	close(src.ch)
	c := &Controller{Log: zap.NewNop(), Src: src, H: newHandlerEnv().h}

	assert.NoError(t, c.Run(t.Context()))
}

type panickyUsers struct{}

func (panickyUsers) Register(context.Context, *user.User) error { panic("boom") }

func TestController_RecoversHandlerPanic(t *testing.T) {
	env := newHandlerEnv()
	env.h.Users = panickyUsers{}
	src := &chanSource{ch: make(chan tgbotapi.Update, 2)}
	c := &Controller{Log: zap.NewNop(), Src: src, H: env.h}

	src.ch <- command(10, 100, "/start")
	src.ch <- command(10, 100, "/lines")
	close(src.ch)

	require.NoError(t, c.Run(t.Context()))
	// The second update still gets its answer.
	assert.Len(t, env.api.messages(), 1)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "command", updateKind(command(1, 1, "/add")))
	assert.Equal(t, "callback", updateKind(callbackUpdate(1, 1, "add_line:1:x")))
	assert.Equal(t, "message", updateKind(tgbotapi.Update{Message: &tgbotapi.Message{Text: "hi"}}))
	assert.Equal(t, "other", updateKind(tgbotapi.Update{}))
}
