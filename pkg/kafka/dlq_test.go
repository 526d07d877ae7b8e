package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDLQProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	d := &DLQProducer{writer: w, logger: testLogger()}

	orig := kafka.Message{
		Topic:     "communityshop.product.updated",
		Partition: 2,
		Offset:    41,
		Key:       []byte("prod-1"),
		Value:     []byte(`{"event_type":"communityshop.product.updated"}`),
		Headers:   []kafka.Header{{Key: "source", Value: []byte("communityshop-api")}},
	}
	require.NoError(t, d.Publish(context.Background(), orig, errors.New("redis unavailable"), "communityshop-cache"))

	require.Len(t, w.written, 1)
	msg := w.written[0]
	assert.Equal(t, "communityshop.dlq.communityshop.product.updated", msg.Topic)
	assert.Equal(t, orig.Key, msg.Key)
	assert.Equal(t, orig.Value, msg.Value)
	assert.Equal(t, "communityshop-api", header(msg, "source"))
	assert.Equal(t, "communityshop.product.updated", header(msg, "dlq.original_topic"))
	assert.Equal(t, "2", header(msg, "dlq.original_partition"))
	assert.Equal(t, "41", header(msg, "dlq.original_offset"))
	assert.Equal(t, "communityshop-cache", header(msg, "dlq.consumer_group"))
	assert.Equal(t, "redis unavailable", header(msg, "dlq.error"))

	assert.Len(t, orig.Headers, 1)
}

func TestDLQProducer_PublishError(t *testing.T) {
	d := &DLQProducer{writer: &fakeWriter{err: errors.New("broker down")}, logger: testLogger()}

	err := d.Publish(context.Background(), kafka.Message{Topic: "communityshop.product.created"}, nil, "g")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "communityshop.dlq.communityshop.product.created")
}
