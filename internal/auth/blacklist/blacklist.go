package blacklist

import (
	"context"
	"sync"
	"time"
)

// Memory is the default revocation set: process-lifetime, never pruned,
// reset on restart. Safe for concurrent Add/Contains.
type Memory struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		tokens: make(map[string]struct{}),
	}
}

// Add ignores ttl: entries live for the life of the process.
func (m *Memory) Add(_ context.Context, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token] = struct{}{}

	return nil
}

func (m *Memory) Contains(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.tokens[token]

	return ok, nil
}
