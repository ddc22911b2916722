package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain/models"

	"github.com/google/uuid"
)

// OutboxRepository stores domain events in the same transaction as the write
// that produced them. The relay drains them afterwards.
type OutboxRepository struct {
	DB *sql.DB
}

func (r OutboxRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r OutboxRepository) conn(ctx context.Context) intdb.Executor {
	return intdb.Conn(ctx, r.db())
}

// Create marshals payload and inserts a new event. It joins the transaction on ctx.
func (r OutboxRepository) Create(ctx context.Context, eventType, aggregateID, requestID string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	id := uuid.NewString()
	_, err = r.conn(ctx).ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, aggregate_id, payload, status, request_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, eventType, aggregateID, body, models.OutboxNew, intdb.NullIfEmpty(requestID))
	if err != nil {
		return "", err
	}
	return id, nil
}

// FetchNew locks up to limit new events. Must run inside a transaction so the
// row locks hold until MarkProcessing commits.
func (r OutboxRepository) FetchNew(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	if !intdb.InTx(ctx) {
		return nil, fmt.Errorf("outbox fetch requires a transaction")
	}
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, event_type, aggregate_id, payload, status, attempts, COALESCE(request_id, ''), created_at
		FROM outbox_events
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?
		FOR UPDATE SKIP LOCKED
	`, models.OutboxNew, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OutboxEvent{}
	for rows.Next() {
		var ev models.OutboxEvent
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.AggregateID, &payload, &ev.Status, &ev.Attempts, &ev.RequestID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Payload = json.RawMessage(append([]byte(nil), payload...))
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r OutboxRepository) MarkProcessing(ctx context.Context, ids []string) error {
	return r.setStatus(ctx, ids, models.OutboxProcessing, "attempts = attempts + 1, ")
}

func (r OutboxRepository) MarkProcessed(ctx context.Context, ids []string) error {
	return r.setStatus(ctx, ids, models.OutboxProcessed, "")
}

// Requeue puts events back to new after a failed publish.
func (r OutboxRepository) Requeue(ctx context.Context, ids []string) error {
	return r.setStatus(ctx, ids, models.OutboxNew, "")
}

// ReclaimStale puts events that sat in processing longer than olderThan back
// to new. Covers a relay that died between claiming and settling a batch.
func (r OutboxRepository) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	secs := int64(olderThan / time.Second)
	if secs < 1 {
		secs = 1
	}
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE outbox_events
		SET status = ?
		WHERE status = ? AND updated_at < (NOW(6) - INTERVAL ? SECOND)
	`, models.OutboxNew, models.OutboxProcessing, secs)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r OutboxRepository) setStatus(ctx context.Context, ids []string, status, extra string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, status)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE outbox_events SET `+extra+`status = ? WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	return err
}
