//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"scoutpost/pkg/testutil/containers"
)

func TestKafkaStore_Integration(t *testing.T) {
	ctx := context.Background()
	rp := containers.NewRedpandaContainer(t)

	const topic = "scoutpost.lifecycle.audit.test"

	store, err := NewKafkaStore(ctx, []string{rp.Broker}, topic, slog.Default())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	publisher := NewPublisher(store)

	events := []Event{
		{Action: ActionJobStarted, SubjectID: "s1", JobID: "job-1"},
		{Action: ActionStepCompleted, SubjectID: "s1", JobID: "job-1", EntityType: "healthRecords", RecordsAffected: 1},
		{Action: ActionJobCompleted, SubjectID: "s1", JobID: "job-1"},
	}
	for _, e := range events {
		require.NoError(t, publisher.Emit(ctx, e))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	var consumed []Event
	deadline := time.Now().Add(30 * time.Second)
	for len(consumed) < len(events) && time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		fetches := consumer.PollFetches(pollCtx)
		cancel()
		fetches.EachRecord(func(record *kgo.Record) {
			var e Event
			require.NoError(t, json.Unmarshal(record.Value, &e))
			assert.Equal(t, "s1", string(record.Key))
			consumed = append(consumed, e)
		})
	}

	require.Len(t, consumed, len(events))
	// Same key, same partition: the subject's lifecycle arrives in order.
	assert.Equal(t, ActionJobStarted, consumed[0].Action)
	assert.Equal(t, ActionStepCompleted, consumed[1].Action)
	assert.Equal(t, ActionJobCompleted, consumed[2].Action)
	for _, e := range consumed {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}
}
