package kvstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

type memKey struct {
	kind Kind
	key  string
}

// MemoryStore keeps a namespace in process memory. Nothing survives a
// restart.
type MemoryStore struct {
	name     string
	notifier *notify.Notifier

	mu   sync.RWMutex
	data map[memKey][]byte
}

func NewMemoryStore(name string, n *notify.Notifier) *MemoryStore {
	return &MemoryStore{name: name, notifier: n, data: make(map[memKey][]byte)}
}

func (m *MemoryStore) Name() string { return m.name }

func (m *MemoryStore) Contains(_ context.Context, kind Kind, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[memKey{kind, key}]
	return ok, nil
}

func (m *MemoryStore) Get(_ context.Context, kind Kind, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[memKey{kind, key}]
	if !ok {
		return nil, fmt.Errorf("%s %s %q: %w", m.name, kind, key, common.ErrPreferenceNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, kind Kind, key string, raw []byte) error {
	m.mu.Lock()
	m.data[memKey{kind, key}] = append([]byte(nil), raw...)
	m.mu.Unlock()
	m.notifier.Publish(notify.PreferencesTopic(m.name))
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, kind Kind, key string) error {
	m.mu.Lock()
	delete(m.data, memKey{kind, key})
	m.mu.Unlock()
	m.notifier.Publish(notify.PreferencesTopic(m.name))
	return nil
}

func (m *MemoryStore) RemoveAll(context.Context) error {
	m.mu.Lock()
	m.data = make(map[memKey][]byte)
	m.mu.Unlock()
	m.notifier.Publish(notify.PreferencesTopic(m.name))
	return nil
}

func (m *MemoryStore) Changes(ctx context.Context) <-chan struct{} {
	return m.notifier.Subscribe(ctx, notify.PreferencesTopic(m.name))
}
