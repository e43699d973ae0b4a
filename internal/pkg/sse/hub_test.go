package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("attendance:2024-05-03")
	defer cleanup()
	other, cleanupOther := hub.Subscribe("attendance:2024-05-04")
	defer cleanupOther()

	hub.Publish("attendance:2024-05-03", Event{Event: "attendance.saved", Data: 3})

	select {
	case ev := <-ch:
		assert.Equal(t, "attendance.saved", ev.Event)
		assert.Equal(t, "attendance:2024-05-03", ev.Topic)
		assert.Equal(t, 3, ev.Data)
	default:
		t.Fatal("expected an event on the subscribed topic")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another topic")
	default:
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("topic")
	require.Equal(t, 1, hub.SubscriberCount("topic"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("topic"))
	_, open := <-ch
	assert.False(t, open)
}

func TestHub_PublishDoesNotBlockOnFullChannel(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("topic")
	defer cleanup()

	for i := 0; i < 50; i++ {
		hub.Publish("topic", Event{Event: "tick"})
	}
	assert.Equal(t, 1, hub.SubscriberCount("topic"))
}
