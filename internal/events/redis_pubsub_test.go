package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisPubSub(t *testing.T) {
	// Test with nil client - should create struct correctly even with nil
	// (actual operations would fail but construction should work)
	pubsub := NewRedisPubSub(nil)

	assert.NotNil(t, pubsub)
	assert.Nil(t, pubsub.client)
	assert.NotNil(t, pubsub.subscribers)
	assert.Len(t, pubsub.subscribers, 0)
}

func TestRedisPubSub_channelName(t *testing.T) {
	pubsub := NewRedisPubSub(nil)

	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventTriggered, "workfloweng:events:event.triggered"},
		{EventSucceeded, "workfloweng:events:event.succeeded"},
		{EventRetrying, "workfloweng:events:event.retrying"},
		{EventGivenUp, "workfloweng:events:event.given_up"},
		{EventTaskDispatched, "workfloweng:events:task.dispatched"},
		{EventTaskStarted, "workfloweng:events:task.started"},
		{EventTaskCompleted, "workfloweng:events:task.completed"},
		{EventTaskFailed, "workfloweng:events:task.failed"},
		{EventEngineStarted, "workfloweng:events:engine.started"},
		{EventEngineStopped, "workfloweng:events:engine.stopped"},
		{EventQueueDepth, "workfloweng:events:queue.depth"},
	}

	for _, tc := range tests {
		t.Run(string(tc.eventType), func(t *testing.T) {
			channel := pubsub.channelName(tc.eventType)
			assert.Equal(t, tc.expected, channel)
		})
	}
}

func TestRedisPubSub_Close_EmptySubscribers(t *testing.T) {
	pubsub := NewRedisPubSub(nil)

	// Should not panic with empty subscribers
	err := pubsub.Close()
	assert.NoError(t, err)
	assert.Len(t, pubsub.subscribers, 0)
}

func TestChannelPrefix(t *testing.T) {
	assert.Equal(t, "workfloweng:events:", channelPrefix)
}
