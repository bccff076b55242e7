package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ErrTxNotFound = errors.New("tx not found in context")

// Transactor runs functions inside a pgx transaction carried by the context.
// Repositories pick it up through execQueryer.
type Transactor struct {
	db     *DB
	opts   pgx.TxOptions
	logger *zap.Logger
}

func NewTransactor(db *DB, logger *zap.Logger) *Transactor {
	if logger == nil {
		logger = zap.L()
	}
	return &Transactor{
		db:     db,
		opts:   pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		logger: logger.With(zap.String("component", "postgres.transactor")),
	}
}

// WithIsoLevel returns a copy that begins transactions at the given isolation level.
func (t *Transactor) WithIsoLevel(lvl pgx.TxIsoLevel) *Transactor {
	cp := *t
	cp.opts.IsoLevel = lvl
	return &cp
}

// WithTx runs fn inside a transaction. Nested calls reuse the outer transaction
// and leave commit or rollback to it. A panic in fn rolls back and is re-raised.
func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) (txErr error) {
	if _, err := extractTx(ctx); err == nil {
		return fn(ctx)
	}

	ctx, span := otel.Tracer("postgres").Start(ctx, "postgres.tx")
	span.SetAttributes(attribute.String("db.tx.isolation", string(t.opts.IsoLevel)))
	defer span.End()
	start := time.Now()

	tx, err := t.db.Pool.BeginTx(ctx, t.opts)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("begin tx: %w", err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		// Rollback must reach the server even when ctx is already cancelled.
		rbCtx := context.WithoutCancel(txCtx)
		if p := recover(); p != nil {
			_ = tx.Rollback(rbCtx)
			panic(p)
		}
		if txErr != nil {
			span.RecordError(txErr)
			if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				t.logger.Error("rollback", zap.Error(err))
			}
			return
		}
		if err := tx.Commit(txCtx); err != nil {
			t.logger.Error("commit", zap.Error(err))
			span.RecordError(err)
			txErr = fmt.Errorf("commit: %w", err)
			return
		}
		t.logger.Debug("tx committed", zap.Duration("took", time.Since(start)))
	}()

	if err := fn(txCtx); err != nil {
		return fmt.Errorf("in tx: %w", err)
	}
	return nil
}

type txKey struct{}

func extractTx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok || tx == nil {
		return nil, ErrTxNotFound
	}
	return tx, nil
}

type execQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// execQueryer returns the transaction carried by ctx, or the pool outside one.
func (db *DB) execQueryer(ctx context.Context) execQueryer {
	if tx, err := extractTx(ctx); err == nil {
		return tx
	}
	return db.Pool
}
