package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycles_total", Help: "Sync cycles by result (ok, error, skipped).",
	}, []string{"result"})
	mCycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycle_errors_total", Help: "Failed sync cycles by stage.",
	}, []string{"stage"})
	mCycleDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "sync_cycle_duration_seconds", Help: "Sync cycle duration.",
		Buckets: prometheus.DefBuckets,
	})
	mLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sync_last_success_timestamp_seconds", Help: "Unix time of the last successful cycle.",
	})

	mObserved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sync_alerts_observed", Help: "Distinct alert keys observed in the last cycle.",
	})
	mInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_alerts_inserted_total", Help: "Alert keys added to the snapshot.",
	})
	mDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_alerts_deleted_total", Help: "Alert keys retracted from the snapshot.",
	})
	mDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_alerts_duplicate_total", Help: "Inserts skipped because the key was already stored.",
	})
	mDroppedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_lines_dropped_total", Help: "Scraped line names without a persisted line.",
	})

	mDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_deliveries_total", Help: "Broadcast deliveries by result (ok, failed, unavailable).",
	}, []string{"result"})
)
