package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/trenes-alerts/internal/obs"
)

// CycleResult describes a finished cycle.
type CycleResult struct {
	ID       string
	Scraped  int
	Dropped  []string
	Outcome  *Outcome
	Report   *Report
	Duration time.Duration
}

type Usecase struct {
	Source      Source
	Lines       LineReader
	Reconciler  *Reconciler
	Broadcaster *Broadcaster
	Log         *zap.Logger
}

func NewUC(src Source, lines LineReader, rec *Reconciler, b *Broadcaster, log *zap.Logger) *Usecase {
	return &Usecase{Source: src, Lines: lines, Reconciler: rec, Broadcaster: b, Log: log}
}

// Cycle scrapes the source, reconciles the snapshot and broadcasts what is new.
// Failures before persistence leave the snapshot untouched.
func (u *Usecase) Cycle(ctx context.Context) (*CycleResult, error) {
	start := time.Now()
	res := &CycleResult{ID: uuid.NewString()}

	tr := otel.Tracer("syncer.uc")
	ctx, span := tr.Start(ctx, "sync.cycle")
	defer span.End()
	span.SetAttributes(attribute.String("cycle.id", res.ID))

	log := obs.WithTrace(ctx, u.logger()).With(zap.String("cycle_id", res.ID))

	scraped, err := u.Source.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		return res, stageErr(StageSource, err)
	}
	for _, as := range scraped {
		res.Scraped += len(as)
	}

	lines, err := u.Lines.List(ctx)
	if err != nil {
		span.RecordError(err)
		return res, stageErr(StageLines, fmt.Errorf("list lines: %w", err))
	}

	observed, dropped := Resolve(lines, scraped)
	res.Dropped = dropped
	if len(dropped) > 0 {
		mDroppedLines.Add(float64(len(dropped)))
		log.Warn("unknown lines dropped", zap.Strings("names", dropped))
	}

	out, err := u.Reconciler.Reconcile(ctx, lines, observed)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	res.Outcome = out

	if len(out.New) > 0 {
		res.Report = u.Broadcaster.Broadcast(ctx, out.New)
		log.Info("broadcast finished",
			zap.Int("lines", res.Report.Lines),
			zap.Int("recipients", res.Report.Recipients),
			zap.Int("delivered", res.Report.Delivered),
			zap.Int("failed", res.Report.Failed),
			zap.Int("unavailable", res.Report.Unavailable),
			zap.Bool("truncated", res.Report.Truncated),
		)
	}

	res.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("alerts.scraped", res.Scraped))
	return res, nil
}

func (u *Usecase) logger() *zap.Logger {
	if u.Log == nil {
		return zap.L().With(zap.String("component", "syncer.uc"))
	}
	return u.Log
}
