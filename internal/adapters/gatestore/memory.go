package gatestore

import (
	"context"
	"sort"
	"sync"
)

// Memory хранит набор чатов гейта в памяти процесса. Используется в тестах
// и при запуске без Redis.
type Memory struct {
	mu   sync.Mutex
	refs map[string]struct{}
}

// NewMemory создаёт пустой набор.
func NewMemory() *Memory {
	return &Memory{refs: make(map[string]struct{})}
}

// Add добавляет чат. Идемпотентно.
func (m *Memory) Add(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	m.mu.Lock()
	m.refs[ref] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Remove убирает чат. Идемпотентно.
func (m *Memory) Remove(ctx context.Context, ref string) error {
	m.mu.Lock()
	delete(m.refs, ref)
	m.mu.Unlock()
	return nil
}

// List возвращает чаты в детерминированном порядке.
func (m *Memory) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	refs := make([]string, 0, len(m.refs))
	for ref := range m.refs {
		refs = append(refs, ref)
	}
	m.mu.Unlock()
	sort.Strings(refs)
	return refs, nil
}
