package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/obs"
	"github.com/NordCoder/trenes-alerts/internal/render"
	"github.com/NordCoder/trenes-alerts/internal/repository/telegram"
)

// Report summarizes one fan-out. Err merges every per-line and per-recipient failure.
type Report struct {
	Lines       int
	Recipients  int
	Delivered   int
	Failed      int
	Unavailable int
	Truncated   bool
	Err         error
}

type Broadcaster struct {
	Subs    SubscriberLookup
	Out     Messenger
	Workers int
	Log     *zap.Logger
}

// Broadcast sends one message per line to each subscriber of that line. A failed
// recipient or line never stops the others. Once ctx is done no new line is started.
func (b *Broadcaster) Broadcast(ctx context.Context, groups []alert.LineAlerts) *Report {
	tr := otel.Tracer("syncer.broadcast")
	ctx, span := tr.Start(ctx, "sync.broadcast")
	defer span.End()
	log := obs.WithTrace(ctx, b.logger())

	rep := &Report{}
	for _, g := range groups {
		if len(g.Alerts) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			rep.Truncated = true
			rep.Err = multierr.Append(rep.Err, err)
			log.Warn("broadcast truncated", zap.Error(err))
			break
		}
		rep.Lines++
		b.line(ctx, g, rep, log)
	}

	span.SetAttributes(
		attribute.Int("broadcast.lines", rep.Lines),
		attribute.Int("broadcast.recipients", rep.Recipients),
		attribute.Int("broadcast.failed", rep.Failed+rep.Unavailable),
	)
	if rep.Err != nil {
		span.RecordError(rep.Err)
	}
	return rep
}

func (b *Broadcaster) line(ctx context.Context, g alert.LineAlerts, rep *Report, log *zap.Logger) {
	log = log.With(zap.Int64("line_id", g.LineID), zap.String("line", g.LineName))

	chatIDs, err := b.Subs.ChatIDsByLine(ctx, g.LineID)
	if err != nil {
		rep.Err = multierr.Append(rep.Err, fmt.Errorf("line %d subscribers: %w", g.LineID, err))
		log.Error("subscriber lookup failed", zap.Error(err))
		return
	}
	if len(chatIDs) == 0 {
		return
	}
	rep.Recipients += len(chatIDs)
	text := render.LineAlerts(g.LineName, g.Alerts)

	var (
		mu  sync.Mutex
		grp errgroup.Group
	)
	grp.SetLimit(b.workers())
	for _, chatID := range chatIDs {
		grp.Go(func() error {
			err := b.Out.Send(ctx, chatID, text)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				rep.Delivered++
				mDeliveries.WithLabelValues("ok").Inc()
			case errors.Is(err, telegram.ErrRecipientUnavailable):
				rep.Unavailable++
				rep.Err = multierr.Append(rep.Err, err)
				mDeliveries.WithLabelValues("unavailable").Inc()
				log.Info("recipient unavailable", zap.Int64("chat_id", chatID), zap.Error(err))
			default:
				rep.Failed++
				rep.Err = multierr.Append(rep.Err, err)
				mDeliveries.WithLabelValues("failed").Inc()
				log.Warn("delivery failed", zap.Int64("chat_id", chatID), zap.Error(err))
			}
			return nil
		})
	}
	_ = grp.Wait()
}

func (b *Broadcaster) workers() int {
	if b.Workers <= 0 {
		return 1
	}
	return b.Workers
}

func (b *Broadcaster) logger() *zap.Logger {
	if b.Log == nil {
		return zap.L().With(zap.String("component", "syncer.broadcast"))
	}
	return b.Log
}
