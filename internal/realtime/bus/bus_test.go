package bus

import (
	"context"
	"testing"
	"time"

	"github.com/sprintflow/sprintflow-backend/internal/realtime"
)

func TestLocalBusDeliversToForwarder(t *testing.T) {
	b := NewLocalBus()
	got := make(chan realtime.Message, 1)

	if err := b.StartForwarder(context.Background(), func(m realtime.Message) { got <- m }); err != nil {
		t.Fatalf("start forwarder: %v", err)
	}
	msg := realtime.Message{Channel: realtime.ChannelSprints, Event: realtime.EventSprintCreated}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case m := <-got:
		if m.Event != realtime.EventSprintCreated {
			t.Fatalf("event: want=%s got=%s", realtime.EventSprintCreated, m.Event)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
}

func TestLocalBusPublishBeforeForwarderIsDropped(t *testing.T) {
	b := NewLocalBus()
	if err := b.Publish(context.Background(), realtime.Message{Channel: realtime.ChannelSprints}); err != nil {
		t.Fatalf("publish without forwarder should be a no-op, got %v", err)
	}
}

func TestLocalBusClose(t *testing.T) {
	b := NewLocalBus()
	delivered := false
	if err := b.StartForwarder(context.Background(), func(realtime.Message) { delivered = true }); err != nil {
		t.Fatalf("start forwarder: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := b.Publish(context.Background(), realtime.Message{Channel: realtime.ChannelSprints}); err != nil {
		t.Fatalf("publish after close: %v", err)
	}
	if delivered {
		t.Fatalf("closed bus must not deliver")
	}
}
