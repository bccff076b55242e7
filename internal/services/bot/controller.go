package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var mUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bot_updates_total",
	Help: "Telegram updates handled, by kind and result",
}, []string{"kind", "result"})

// UpdateSource is the long polling part of the bot client.
type UpdateSource interface {
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Controller struct {
	Log *zap.Logger
	Src UpdateSource
	H   *Handler

	PollTimeout   int
	HandleTimeout time.Duration
	Workers       int
}

// Run polls updates until ctx is done, then waits for the in-flight handlers.
func (c *Controller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = c.PollTimeout
	updates := c.Src.GetUpdatesChan(cfg)

	var g errgroup.Group
	g.SetLimit(max(c.Workers, 1))
	defer func() {
		c.Src.StopReceivingUpdates()
		_ = g.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			c.Log.Info("bot controller stopping")
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			g.Go(func() error {
				c.dispatch(ctx, upd)
				return nil
			})
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, upd tgbotapi.Update) {
	kind := updateKind(upd)
	timeout := c.HandleTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = c.H.Handle(ctx, upd)
	}()

	if err != nil {
		mUpdates.WithLabelValues(kind, "error").Inc()
		c.Log.Error("handle update",
			zap.Int("update_id", upd.UpdateID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	mUpdates.WithLabelValues(kind, "ok").Inc()
}

func updateKind(upd tgbotapi.Update) string {
	switch {
	case upd.CallbackQuery != nil:
		return "callback"
	case upd.Message != nil && upd.Message.IsCommand():
		return "command"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}
