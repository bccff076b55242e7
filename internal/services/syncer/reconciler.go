package syncer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/event"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
	"github.com/NordCoder/trenes-alerts/internal/obs"
)

// Plan is the set difference between the observed alerts and the snapshot.
type Plan struct {
	// Insert keeps observation order: line ids ascending, then page order.
	Insert    []alert.Persisted
	Delete    []alert.Key
	Observed  int
	Unchanged int
}

// Diff fingerprints every observed alert and compares the keys with previous.
// Equal content on one line collapses into a single key.
func Diff(observed map[int64][]alert.Raw, previous alert.KeySet) *Plan {
	lineIDs := make([]int64, 0, len(observed))
	for id := range observed {
		lineIDs = append(lineIDs, id)
	}
	slices.Sort(lineIDs)

	plan := &Plan{}
	seen := alert.KeySet{}
	for _, id := range lineIDs {
		for _, raw := range observed[id] {
			k := alert.KeyOf(id, raw)
			if seen.Has(k) {
				continue
			}
			seen.Add(k)
			if previous.Has(k) {
				plan.Unchanged++
				continue
			}
			plan.Insert = append(plan.Insert, alert.Persisted{Key: k, Raw: raw})
		}
	}
	plan.Observed = len(seen)

	for _, k := range previous.Sorted() {
		if !seen.Has(k) {
			plan.Delete = append(plan.Delete, k)
		}
	}
	return plan
}

// Outcome is what a reconciliation changed.
type Outcome struct {
	Plan *Plan
	// Inserted holds the keys this process actually wrote.
	Inserted []alert.Key
	Deleted  int64
	// New groups the inserted alerts per line for broadcasting.
	New []alert.LineAlerts
}

type Reconciler struct {
	Store SnapshotStore
	// Tx and Events are optional.
	Tx     Transactor
	Events EventSink

	PersistTimeout time.Duration
	Now            func() time.Time
	Log            *zap.Logger
}

// Reconcile brings the snapshot in line with observed. Once the snapshot is loaded the
// mutation runs detached from ctx cancellation, bounded by PersistTimeout.
func (r *Reconciler) Reconcile(ctx context.Context, lines []line.Line, observed map[int64][]alert.Raw) (*Outcome, error) {
	tr := otel.Tracer("syncer.reconciler")
	ctx, span := tr.Start(ctx, "sync.reconcile")
	defer span.End()
	log := obs.WithTrace(ctx, r.logger())

	previous, err := r.Store.LoadPreviousKeys(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, stageErr(StageLoad, fmt.Errorf("load previous keys: %w", err))
	}

	plan := Diff(observed, previous)
	span.SetAttributes(
		attribute.Int("alerts.previous", len(previous)),
		attribute.Int("alerts.observed", plan.Observed),
		attribute.Int("alerts.to_insert", len(plan.Insert)),
		attribute.Int("alerts.to_delete", len(plan.Delete)),
	)
	mObserved.Set(float64(plan.Observed))

	out := &Outcome{Plan: plan}
	if len(plan.Insert) == 0 && len(plan.Delete) == 0 {
		log.Debug("snapshot unchanged", zap.Int("observed", plan.Observed))
		return out, nil
	}

	names := make(map[int64]string, len(lines))
	for _, l := range lines {
		names[l.ID] = l.Name
	}

	if err := r.persist(ctx, plan, names, out); err != nil {
		span.RecordError(err)
		return nil, stageErr(StagePersist, err)
	}

	if dup := len(plan.Insert) - len(out.Inserted); dup > 0 {
		mDuplicates.Add(float64(dup))
		log.Warn("alerts already stored by another writer", zap.Int("skipped", dup))
	}
	mInserted.Add(float64(len(out.Inserted)))
	mDeleted.Add(float64(out.Deleted))

	out.New = groupInserted(plan.Insert, alert.NewKeySet(out.Inserted...), names)
	log.Info("snapshot reconciled",
		zap.Int("observed", plan.Observed),
		zap.Int("unchanged", plan.Unchanged),
		zap.Int("inserted", len(out.Inserted)),
		zap.Int64("deleted", out.Deleted),
	)
	return out, nil
}

func (r *Reconciler) persist(ctx context.Context, plan *Plan, names map[int64]string, out *Outcome) error {
	pctx := context.WithoutCancel(ctx)
	if r.PersistTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, r.PersistTimeout)
		defer cancel()
	}

	apply := func(ctx context.Context) error {
		inserted, err := r.Store.Insert(ctx, plan.Insert)
		if err != nil {
			return fmt.Errorf("insert alerts: %w", err)
		}
		deleted, err := r.Store.Delete(ctx, plan.Delete)
		if err != nil {
			return fmt.Errorf("delete alerts: %w", err)
		}
		if r.Events != nil {
			evs := r.changeEvents(plan, inserted, names)
			if err := r.Events.Enqueue(ctx, evs); err != nil {
				return fmt.Errorf("enqueue events: %w", err)
			}
		}
		out.Inserted, out.Deleted = inserted, deleted
		return nil
	}

	if r.Tx == nil {
		return apply(pctx)
	}
	return r.Tx.WithTx(pctx, apply)
}

func (r *Reconciler) changeEvents(plan *Plan, inserted []alert.Key, names map[int64]string) []event.AlertChanged {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	at := now().UTC()
	ins := alert.NewKeySet(inserted...)

	evs := make([]event.AlertChanged, 0, len(inserted)+len(plan.Delete))
	for _, p := range plan.Insert {
		if !ins.Has(p.Key) {
			continue
		}
		evs = append(evs, event.AlertChanged{
			Change:      event.ChangeInserted,
			LineID:      p.LineID,
			LineName:    names[p.LineID],
			Hash:        string(p.Hash),
			Type:        string(p.Type),
			Title:       p.Title,
			Description: p.Description,
			At:          at,
		})
	}
	for _, k := range plan.Delete {
		evs = append(evs, event.AlertChanged{
			Change:   event.ChangeRetracted,
			LineID:   k.LineID,
			LineName: names[k.LineID],
			Hash:     string(k.Hash),
			At:       at,
		})
	}
	return evs
}

func (r *Reconciler) logger() *zap.Logger {
	if r.Log == nil {
		return zap.L().With(zap.String("component", "syncer.reconciler"))
	}
	return r.Log
}

// groupInserted keeps Diff order so lines come out by id and alerts in page order.
func groupInserted(rows []alert.Persisted, inserted alert.KeySet, names map[int64]string) []alert.LineAlerts {
	var out []alert.LineAlerts
	for _, p := range rows {
		if !inserted.Has(p.Key) {
			continue
		}
		if n := len(out); n == 0 || out[n-1].LineID != p.LineID {
			out = append(out, alert.LineAlerts{LineID: p.LineID, LineName: names[p.LineID]})
		}
		cur := &out[len(out)-1]
		cur.Alerts = append(cur.Alerts, p.Raw)
	}
	return out
}
