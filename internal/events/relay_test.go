package events

import (
	"context"
	"errors"
	"testing"
	"time"

	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	fail map[string]bool
	got  []Message
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, msg Message) error {
	if p.fail[msg.ID] {
		return errors.New("broker down")
	}
	p.got = append(p.got, msg)
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var outboxCols = []string{"id", "event_type", "aggregate_id", "payload", "status", "attempts", "request_id", "created_at"}

func TestRelayPublishesAndRequeuesFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnRows(sqlmock.NewRows(outboxCols).
		AddRow("e1", models.EventAssignmentCreated, "7", []byte(`{"id":7}`), "new", 0, "r1", now).
		AddRow("e2", models.EventAssignmentDeleted, "8", []byte(`{"id":8}`), "new", 0, "r2", now))
	mock.ExpectExec("UPDATE outbox_events SET attempts").WithArgs(models.OutboxProcessing, "e1", "e2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(models.OutboxProcessed, "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(models.OutboxNew, "e2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	pub := &recordingPublisher{fail: map[string]bool{"e2": true}}
	relay := Relay{
		Outbox:    repositories.OutboxRepository{DB: db},
		Tx:        intdb.TxManager{DB: db},
		Publisher: pub,
	}
	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, pub.got, 1)
	assert.Equal(t, "e1", pub.got[0].ID)
	assert.Equal(t, "7", pub.keys[0])
	assert.JSONEq(t, `{"id":7}`, string(pub.got[0].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelayEmptyBatchCommitsWithoutPublishing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnRows(sqlmock.NewRows(outboxCols))
	mock.ExpectCommit()

	pub := &recordingPublisher{}
	n, err := Relay{Outbox: repositories.OutboxRepository{DB: db}, Tx: intdb.TxManager{DB: db}, Publisher: pub}.
		ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// cancellingPublisher cancels the relay's context after the first message,
// the way a shutdown signal lands mid-batch.
type cancellingPublisher struct {
	cancel context.CancelFunc
	sent   int
}

func (p *cancellingPublisher) Publish(ctx context.Context, _ string, _ Message) error {
	if p.sent > 0 {
		return ctx.Err()
	}
	p.sent++
	p.cancel()
	return nil
}

func (p *cancellingPublisher) Close() error { return nil }

func claimTwo(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnRows(sqlmock.NewRows(outboxCols).
		AddRow("e1", models.EventAssignmentCreated, "7", []byte(`{"id":7}`), "new", 0, "r1", now).
		AddRow("e2", models.EventAssignmentUpdated, "7", []byte(`{"id":7}`), "new", 0, "r2", now))
	mock.ExpectExec("UPDATE outbox_events SET attempts").WithArgs(models.OutboxProcessing, "e1", "e2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
}

func TestRelaySettlesBatchAfterShutdownCancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	claimTwo(mock)
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(models.OutboxProcessed, "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(models.OutboxNew, "e2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay := Relay{
		Outbox:    repositories.OutboxRepository{DB: db},
		Tx:        intdb.TxManager{DB: db},
		Publisher: &cancellingPublisher{cancel: cancel},
	}
	n, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet(), "e2 must go back to new")
}

func TestRelayRequeuesEvenWhenMarkProcessedFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	claimTwo(mock)
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(models.OutboxProcessed, "e1").
		WillReturnError(errors.New("deadlock found"))
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(models.OutboxNew, "e2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	relay := Relay{
		Outbox:    repositories.OutboxRepository{DB: db},
		Tx:        intdb.TxManager{DB: db},
		Publisher: &recordingPublisher{fail: map[string]bool{"e2": true}},
	}
	_, err = relay.ProcessBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mark processed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelayReclaimsStaleProcessingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("WHERE status = \\? AND updated_at < \\(NOW\\(6\\) - INTERVAL \\? SECOND\\)").
		WithArgs(models.OutboxNew, models.OutboxProcessing, int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	relay := Relay{Outbox: repositories.OutboxRepository{DB: db}, Interval: 2 * time.Second}
	n, err := relay.ReclaimStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeWriter struct{ msgs []kafka.Message }

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisherKeysByAggregate(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	err := p.Publish(context.Background(), "42", Message{ID: "e1", Type: models.EventBookingConfirmed})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Contains(t, string(w.msgs[0].Value), `"type":"booking.confirmed"`)
}

func TestNewPublisherSelection(t *testing.T) {
	p, err := NewPublisher(Settings{Broker: ""})
	require.NoError(t, err)
	assert.IsType(t, LogPublisher{}, p)

	_, err = NewPublisher(Settings{Broker: "kafka"})
	assert.Error(t, err)

	_, err = NewPublisher(Settings{Broker: "carrier-pigeon"})
	assert.Error(t, err)
}
