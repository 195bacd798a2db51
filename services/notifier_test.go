package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventChannels(t *testing.T) {
	tests := []struct {
		eventType string
		expected  []string
	}{
		{EventOrderCreated, []string{ChannelKitchen, ChannelWaiter}},
		{EventOrderStatusChanged, []string{"table.5", ChannelKitchen}},
		{EventOrderReady, []string{ChannelWaiter}},
		{EventItemStatusChanged, []string{"table.5"}},
		{EventOrderRejected, []string{"table.5", ChannelWaiter}},
		{EventSessionCompleted, []string{"table.5", ChannelWaiter}},
		{EventPaymentStatusChanged, []string{"table.5"}},
		{"unknown_event", nil},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			event := Event{Type: tt.eventType, TableID: 5}
			assert.Equal(t, tt.expected, event.Channels())
		})
	}
}

func TestTableChannel(t *testing.T) {
	assert.Equal(t, "table.12", TableChannel(12))
}

func TestPublishEventStampsTimeAndSwallowsFailure(t *testing.T) {
	notifier := NewRecordingNotifier()
	SetNotifier(notifier)
	t.Cleanup(func() { SetNotifier(&NoopNotifier{}) })

	publishEvent(Event{Type: EventOrderCreated, TableID: 1})
	events := notifier.Events()
	assert.Len(t, events, 1)
	assert.False(t, events[0].At.IsZero())

	// A failing notifier must never panic or surface the error
	notifier.FailWith(assert.AnError)
	assert.NotPanics(t, func() {
		publishEvent(Event{Type: EventOrderReady, TableID: 1})
	})
}

func TestNotifierDefaultsToNoop(t *testing.T) {
	SetNotifier(&NoopNotifier{})
	assert.NoError(t, GetNotifier().Publish(Event{Type: EventOrderCreated}))
}
