package bus

import (
	"context"
	"sync"

	"github.com/sprintflow/sprintflow-backend/internal/realtime"
)

// Bus moves realtime messages between the service layer and the SSE hub.
// The redis implementation lets every replica see every publish; the local
// implementation covers single-process deployments and tests.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

type localBus struct {
	mu     sync.RWMutex
	onMsg  func(m realtime.Message)
	closed bool
}

// NewLocalBus returns an in-process Bus with no external dependencies.
func NewLocalBus() Bus {
	return &localBus{}
}

func (b *localBus) Publish(_ context.Context, msg realtime.Message) error {
	b.mu.RLock()
	onMsg := b.onMsg
	closed := b.closed
	b.mu.RUnlock()
	if closed || onMsg == nil {
		return nil
	}
	onMsg(msg)
	return nil
}

func (b *localBus) StartForwarder(_ context.Context, onMsg func(m realtime.Message)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMsg = onMsg
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.onMsg = nil
	return nil
}
