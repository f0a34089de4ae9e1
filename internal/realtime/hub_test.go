package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for message")
	}
	return Message{}
}

func TestHubBroadcastOrderingAndReconnect(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	clientA := hub.NewClient(uuid.New())
	hub.AddChannel(clientA, ChannelSprints)

	first := Message{Channel: ChannelSprints, Event: EventPointsRecorded, Data: map[string]any{"seq": 1}}
	second := Message{Channel: ChannelSprints, Event: EventSprintStatusChanged, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != EventPointsRecorded {
		t.Fatalf("first event: want=%s got=%s", EventPointsRecorded, gotFirst.Event)
	}
	if gotSecond.Event != EventSprintStatusChanged {
		t.Fatalf("second event: want=%s got=%s", EventSprintStatusChanged, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for channel close")
	}

	clientB := hub.NewClient(uuid.New())
	hub.AddChannel(clientB, ChannelSprints)
	hub.Broadcast(Message{Channel: ChannelSprints, Event: EventCompletionSubmitted})
	got := recvMessage(t, clientB.Outbound, time.Second)
	if got.Event != EventCompletionSubmitted {
		t.Fatalf("reconnect event: want=%s got=%s", EventCompletionSubmitted, got.Event)
	}
}

func TestHubChannelIsolation(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	userA := uuid.New()
	userB := uuid.New()
	clientA := hub.NewClient(userA)
	hub.AddChannel(clientA, UserChannel(userA))

	hub.Broadcast(Message{Channel: UserChannel(userB), Event: EventPointsRecorded})
	select {
	case msg := <-clientA.Outbound:
		t.Fatalf("client A should not receive user B's message: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	hub.Broadcast(Message{Channel: UserChannel(userA), Event: EventPointsRecorded})
	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Channel != UserChannel(userA) {
		t.Fatalf("channel: want=%s got=%s", UserChannel(userA), got.Channel)
	}
}
