package memory

import (
	"context"
	"sync"
	"time"

	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/push"
)

type Memory struct {
	sync.RWMutex

	// Map of userID -> subscription
	subs map[string]*push.Subscription
}

func NewMemory() *Memory {
	return &Memory{
		subs: make(map[string]*push.Subscription),
	}
}

func (m *Memory) Upsert(_ context.Context, userID, endpoint string, keys push.Keys) (*push.Subscription, error) {
	m.Lock()
	defer m.Unlock()

	for _, sub := range m.subs {
		if sub.Endpoint == endpoint && sub.UserID != userID {
			return nil, push.ErrEndpointTaken
		}
	}

	if existing, ok := m.subs[userID]; ok {
		existing.Endpoint = endpoint
		existing.Keys = keys
		cloned := *existing
		return &cloned, nil
	}

	sub := &push.Subscription{
		ID:        model.MustGenerateID(),
		UserID:    userID,
		Endpoint:  endpoint,
		Keys:      keys,
		CreatedAt: time.Now(),
	}
	m.subs[userID] = sub

	cloned := *sub
	return &cloned, nil
}

func (m *Memory) Get(_ context.Context, userID string) (*push.Subscription, error) {
	m.RLock()
	defer m.RUnlock()

	sub, ok := m.subs[userID]
	if !ok {
		return nil, push.ErrNotFound
	}

	cloned := *sub
	return &cloned, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.Lock()
	defer m.Unlock()

	for userID, sub := range m.subs {
		if sub.ID == id {
			delete(m.subs, userID)
			return nil
		}
	}

	return nil
}

func (m *Memory) ListExcluding(_ context.Context, userID string) ([]*push.Subscription, error) {
	m.RLock()
	defer m.RUnlock()

	subs := make([]*push.Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		if sub.UserID == userID {
			continue
		}
		cloned := *sub
		subs = append(subs, &cloned)
	}

	return subs, nil
}

func (m *Memory) Reset() {
	m.Lock()
	defer m.Unlock()

	m.subs = make(map[string]*push.Subscription)
}
