package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()
	admin, cancelAdmin := hub.Subscribe(TopicAdmin)
	defer cancelAdmin()
	other, cancelOther := hub.Subscribe("other")
	defer cancelOther()

	hub.Publish(TopicAdmin, Event{Name: "salary.paid", Data: map[string]string{"id": "sal-1"}})

	select {
	case ev := <-admin:
		assert.Equal(t, "salary.paid", ev.Name)
	default:
		t.Fatal("admin subscriber got no event")
	}
	assert.Empty(t, other)
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(TopicAdmin)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(TopicAdmin, Event{Name: "attendance.marked"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(TopicAdmin)
	require.Equal(t, 1, hub.SubscriberCount(TopicAdmin))

	cancel()
	cancel()
	assert.Equal(t, 0, hub.SubscriberCount(TopicAdmin))
	_, open := <-ch
	assert.False(t, open)

	// Publishing with no subscribers is a no-op.
	hub.Publish(TopicAdmin, Event{Name: "attendance.marked"})
}
