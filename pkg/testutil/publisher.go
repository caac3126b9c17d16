package testutil

import (
	"context"
	"sync"

	"github.com/rwa-lab/backend/pkg/pubsub"
)

// MockPublisher records published packs. PublishFunc, if set, decides the
// result of each call.
type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu    sync.Mutex
	packs []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, pack); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.packs = append(m.packs, pack)
	return nil
}

func (m *MockPublisher) Packs() []*pubsub.Pack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*pubsub.Pack{}, m.packs...)
}
