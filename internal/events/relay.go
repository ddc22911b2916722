package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/metrics"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"
)

const (
	defaultBatchSize = 50
	settleTimeout    = 5 * time.Second
	// staleFactor times the interval is how long a claimed event may sit in
	// processing before it is handed out again.
	staleFactor = 10
)

// Relay drains outbox_events to a Publisher. Claiming a batch and flipping it
// to processing happens in one short transaction; publishing happens outside
// it so a slow broker never holds row locks.
type Relay struct {
	Outbox    repositories.OutboxRepository
	Tx        intdb.TxManager
	Publisher Publisher
	Interval  time.Duration
	BatchSize int
	// StaleAfter defaults to staleFactor * Interval.
	StaleAfter time.Duration
}

func (r Relay) interval() time.Duration {
	if r.Interval <= 0 {
		return 2 * time.Second
	}
	return r.Interval
}

func (r Relay) Run(ctx context.Context) {
	interval := r.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	utils.LogEvent("", "outbox", "relay_start", "interval="+interval.String())
	for {
		select {
		case <-ctx.Done():
			utils.LogEvent("", "outbox", "relay_stop", "context done")
			return
		case <-ticker.C:
			if _, err := r.ReclaimStale(ctx); err != nil {
				utils.LogError("", "outbox", "reclaim_stale", err)
			}
			if _, err := r.ProcessBatch(ctx); err != nil {
				utils.LogError("", "outbox", "process_batch", err)
			}
		}
	}
}

// ProcessBatch publishes one batch and returns how many events went out.
func (r Relay) ProcessBatch(ctx context.Context) (int, error) {
	size := r.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	var batch []models.OutboxEvent
	err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
		evs, err := r.Outbox.FetchNew(ctx, size)
		if err != nil {
			return err
		}
		if len(evs) == 0 {
			return nil
		}
		ids := make([]string, 0, len(evs))
		for _, ev := range evs {
			ids = append(ids, ev.ID)
		}
		if err := r.Outbox.MarkProcessing(ctx, ids); err != nil {
			return err
		}
		batch = evs
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("claim outbox batch: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	var sent, failed []string
	for _, ev := range batch {
		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := r.Publisher.Publish(sendCtx, ev.AggregateID, MessageOf(ev))
		cancel()
		if err != nil {
			utils.LogWarn(ev.RequestID, "outbox", "publish_failed", fmt.Sprintf("id=%s type=%s err=%v", ev.ID, ev.EventType, err))
			failed = append(failed, ev.ID)
			continue
		}
		sent = append(sent, ev.ID)
	}

	metrics.OutboxPublished(len(sent))
	metrics.OutboxFailed(len(failed))

	// Settling must survive shutdown; a cancelled ctx would strand the batch
	// in processing.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	var errs []error
	if err := r.Outbox.MarkProcessed(settleCtx, sent); err != nil {
		errs = append(errs, fmt.Errorf("mark processed: %w", err))
	}
	if err := r.Outbox.Requeue(settleCtx, failed); err != nil {
		errs = append(errs, fmt.Errorf("requeue failed events: %w", err))
	}
	return len(sent), errors.Join(errs...)
}

// ReclaimStale returns events stuck in processing to new.
func (r Relay) ReclaimStale(ctx context.Context) (int64, error) {
	after := r.StaleAfter
	if after <= 0 {
		after = staleFactor * r.interval()
	}
	n, err := r.Outbox.ReclaimStale(ctx, after)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale events: %w", err)
	}
	if n > 0 {
		utils.LogWarn("", "outbox", "reclaim_stale", fmt.Sprintf("requeued=%d older_than=%s", n, after))
	}
	return n, nil
}
