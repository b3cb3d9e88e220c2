//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	audit "stacksevents/pkg/platform/audit"
	"stacksevents/pkg/testutil/containers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestSink_ProducesKeyedByAddress(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	ctx := context.Background()

	sink, err := New(ctx, Config{Brokers: []string{broker.SeedBroker}, Topic: "ticket-audit"})
	require.NoError(t, err)
	defer sink.Close()

	// Creating the sink twice must tolerate an existing topic.
	again, err := New(ctx, Config{Brokers: []string{broker.SeedBroker}, Topic: "ticket-audit"})
	require.NoError(t, err)
	again.Close()

	event := audit.Event{
		Category:  audit.CategoryOwnership,
		Timestamp: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		Address:   "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM",
		Action:    string(audit.EventTicketPurchased),
		EventID:   "evt1",
		Quantity:  1,
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics("ticket-audit"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(pollCtx)
	require.Empty(t, fetches.Errors())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.Address, string(records[0].Key))

	var got message
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, "ticket_purchased", got.Action)
	assert.Equal(t, "evt1", got.EventID)
	assert.Equal(t, "ownership", got.Category)
}
