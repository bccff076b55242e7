package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
)

var _ alert.Repo = (*AlertRepo)(nil)

// deleteChunk bounds the number of key predicates per DELETE statement.
const deleteChunk = 500

type AlertRepo struct {
	db *DB
}

func NewAlertRepo(db *DB) *AlertRepo { return &AlertRepo{db: db} }

const (
	qAlertKeys = `
SELECT line_id, alert_hash
FROM alerts;`

	qAlertInsertMany = `
INSERT INTO alerts (line_id, alert_hash, type, title, description)
SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[], $4::text[], $5::text[])
ON CONFLICT (line_id, alert_hash) DO NOTHING
RETURNING line_id, alert_hash;`

	qAlertDeletePrefix = `
DELETE FROM alerts
WHERE `

	qAlertsByUser = `
SELECT l.id, l.name, a.type, a.title, a.description
FROM subscriptions s
JOIN lines l ON l.id = s.line_id
LEFT JOIN alerts a ON a.line_id = l.id
WHERE s.user_id = $1
ORDER BY l.name, l.id, a.created_at, a.alert_hash;`
)

// ListKeys reads the whole snapshot in one statement. A failed scan discards every row read so far.
func (r *AlertRepo) ListKeys(ctx context.Context) (alert.KeySet, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qAlertKeys)
	if err != nil {
		return nil, fmt.Errorf("alert keys: %w", err)
	}
	defer rows.Close()

	out := alert.KeySet{}
	for rows.Next() {
		var (
			k    alert.Key
			hash string
		)
		if err := rows.Scan(&k.LineID, &hash); err != nil {
			return nil, fmt.Errorf("alert keys scan: %w", err)
		}
		k.Hash = alert.Fingerprint(hash)
		out.Add(k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alert keys rows: %w", err)
	}
	return out, nil
}

// InsertMany writes rows in one statement. Keys another writer stored first are skipped silently.
func (r *AlertRepo) InsertMany(ctx context.Context, items []alert.Persisted) ([]alert.Key, error) {
	if len(items) == 0 {
		return nil, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var (
		lineIDs = make([]int64, len(items))
		hashes  = make([]string, len(items))
		types   = make([]string, len(items))
		titles  = make([]string, len(items))
		descs   = make([]string, len(items))
	)
	for i, it := range items {
		lineIDs[i] = it.LineID
		hashes[i] = string(it.Hash)
		types[i] = string(it.Type)
		titles[i] = it.Title
		descs[i] = it.Description
	}

	rows, err := r.db.execQueryer(ctx).Query(ctx, qAlertInsertMany, lineIDs, hashes, types, titles, descs)
	if err != nil {
		return nil, fmt.Errorf("alert insert: %w", mapWriteErr(err))
	}
	defer rows.Close()

	inserted := make([]alert.Key, 0, len(items))
	for rows.Next() {
		var (
			k    alert.Key
			hash string
		)
		if err := rows.Scan(&k.LineID, &hash); err != nil {
			return nil, fmt.Errorf("alert insert scan: %w", err)
		}
		k.Hash = alert.Fingerprint(hash)
		inserted = append(inserted, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alert insert: %w", mapWriteErr(err))
	}
	return inserted, nil
}

// DeleteKeys removes the given keys and reports how many rows were gone.
func (r *AlertRepo) DeleteKeys(ctx context.Context, keys []alert.Key) (int64, error) {
	var total int64
	for start := 0; start < len(keys); start += deleteChunk {
		end := min(start+deleteChunk, len(keys))
		n, err := r.deleteChunk(ctx, keys[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *AlertRepo) deleteChunk(ctx context.Context, keys []alert.Key) (int64, error) {
	where, args := buildDeleteByKeys(keys)
	if where == "" {
		return 0, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qAlertDeletePrefix+where, args...)
	if err != nil {
		return 0, fmt.Errorf("alert delete: %w", err)
	}
	return tag.RowsAffected(), nil
}

// buildDeleteByKeys renders "(line_id = $1 AND alert_hash = $2) OR ..." for the given keys.
func buildDeleteByKeys(keys []alert.Key) (string, []any) {
	if len(keys) == 0 {
		return "", nil
	}
	var sb strings.Builder
	args := make([]any, 0, 2*len(keys))
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString("(line_id = $")
		sb.WriteString(strconv.Itoa(2*i + 1))
		sb.WriteString(" AND alert_hash = $")
		sb.WriteString(strconv.Itoa(2*i + 2))
		sb.WriteString(")")
		args = append(args, k.LineID, string(k.Hash))
	}
	return sb.String(), args
}

// ListByUser returns every subscribed line with its stored alerts. Lines without alerts come back empty.
func (r *AlertRepo) ListByUser(ctx context.Context, userID int64) ([]alert.LineAlerts, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qAlertsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("alerts by user: %w", err)
	}
	defer rows.Close()

	var out []alert.LineAlerts
	for rows.Next() {
		var (
			lineID            int64
			lineName          string
			typ, title, descr *string
		)
		if err := rows.Scan(&lineID, &lineName, &typ, &title, &descr); err != nil {
			return nil, fmt.Errorf("alerts by user scan: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].LineID != lineID {
			out = append(out, alert.LineAlerts{LineID: lineID, LineName: lineName})
		}
		if typ == nil {
			continue
		}
		cur := &out[len(out)-1]
		cur.Alerts = append(cur.Alerts, alert.Raw{
			Type:        alert.ParseType(*typ),
			Title:       deref(title),
			Description: deref(descr),
		})
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
