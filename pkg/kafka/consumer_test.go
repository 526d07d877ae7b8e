package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.messages) > 0 {
		msg := f.messages[0]
		f.messages = f.messages[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDLQ struct {
	published []kafka.Message
	causes    []error
}

func (f *fakeDLQ) Publish(_ context.Context, msg kafka.Message, lastErr error, _ string) error {
	f.published = append(f.published, msg)
	f.causes = append(f.causes, lastErr)
	return nil
}

func productMessage(t *testing.T, topic, aggregateID string) kafka.Message {
	t.Helper()
	e, err := NewEvent("product.updated", aggregateID, "product", "communityshop-api", map[string]string{"id": aggregateID})
	require.NoError(t, err)
	msg, err := eventMessage(context.Background(), topic, e)
	require.NoError(t, err)
	return msg
}

func TestConsumer_Process_SuccessCommits(t *testing.T) {
	reader := &fakeReader{}
	var handled []string
	c := newConsumer(reader, "test-group", func(_ context.Context, e *Event) error {
		handled = append(handled, e.AggregateID)
		return nil
	}, testLogger())

	err := c.process(context.Background(), productMessage(t, "communityshop.product.updated", "p-1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"p-1"}, handled)
	require.Len(t, reader.committed, 1)
}

func TestConsumer_Process_RetriesThenDeadLetters(t *testing.T) {
	reader := &fakeReader{}
	dlq := &fakeDLQ{}
	attempts := 0
	c := newConsumer(reader, "test-group", func(_ context.Context, _ *Event) error {
		attempts++
		return errors.New("redis unavailable")
	}, testLogger())
	c.dlq = dlq
	c.backoff = time.Millisecond

	err := c.process(context.Background(), productMessage(t, "communityshop.product.deleted", "p-2"))
	require.NoError(t, err)

	assert.Equal(t, handlerAttempts, attempts)
	require.Len(t, dlq.published, 1)
	assert.EqualError(t, dlq.causes[0], "redis unavailable")
	assert.Len(t, reader.committed, 1, "poison message is committed after dead-lettering")
}

func TestConsumer_Process_RecoversOnRetry(t *testing.T) {
	reader := &fakeReader{}
	dlq := &fakeDLQ{}
	attempts := 0
	c := newConsumer(reader, "test-group", func(_ context.Context, _ *Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}, testLogger())
	c.dlq = dlq
	c.backoff = time.Millisecond

	require.NoError(t, c.process(context.Background(), productMessage(t, "communityshop.product.updated", "p-3")))
	assert.Equal(t, 2, attempts)
	assert.Empty(t, dlq.published)
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_Process_MalformedPayloadIsSkipped(t *testing.T) {
	reader := &fakeReader{}
	called := false
	c := newConsumer(reader, "test-group", func(_ context.Context, _ *Event) error {
		called = true
		return nil
	}, testLogger())

	dlq := &fakeDLQ{}
	c.dlq = dlq
	before := testutil.ToFloat64(consumedMessages.WithLabelValues("communityshop.product.updated", "test-group", outcomeMalformed))

	for _, value := range []string{"{not json", `{"aggregate_id":"p-9"}`} {
		err := c.process(context.Background(), kafka.Message{Topic: "communityshop.product.updated", Value: []byte(value)})
		require.NoError(t, err)
	}
	assert.False(t, called)
	assert.Len(t, reader.committed, 2)
	assert.Len(t, dlq.published, 2)
	after := testutil.ToFloat64(consumedMessages.WithLabelValues("communityshop.product.updated", "test-group", outcomeMalformed))
	assert.Equal(t, 2.0, after-before)
}

func TestConsumer_Process_CanceledDuringBackoffLeavesUncommitted(t *testing.T) {
	reader := &fakeReader{}
	ctx, cancel := context.WithCancel(context.Background())
	c := newConsumer(reader, "test-group", func(_ context.Context, _ *Event) error {
		cancel()
		return errors.New("fail")
	}, testLogger())
	c.backoff = time.Hour

	err := c.process(ctx, productMessage(t, "communityshop.product.updated", "p-4"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reader.committed)
}

func TestConsumer_Start_StopsOnCancel(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{productMessage(t, "communityshop.product.created", "p-5")}}
	processed := make(chan string, 1)
	c := newConsumer(reader, "test-group", func(_ context.Context, e *Event) error {
		processed <- e.AggregateID
		return nil
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case id := <-processed:
		assert.Equal(t, "p-5", id)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not processed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.True(t, reader.closed)
}
