package cache

import (
	"context"
	"sync"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

// InMemory is a process-local dal.Store. Data does not survive a restart.
type InMemory struct {
	storage map[string]string

	mx sync.RWMutex
}

func NewInMemory() *InMemory {
	return &InMemory{
		storage: make(map[string]string, 100),

		mx: sync.RWMutex{},
	}
}

func (c *InMemory) Get(_ context.Context, key string) (string, error) {
	c.mx.RLock()
	defer c.mx.RUnlock()

	v, ok := c.storage[key]
	if !ok {
		return "", dal.ErrNotFound
	}
	return v, nil
}

func (c *InMemory) Set(_ context.Context, key, value string) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.storage[key] = value
	return nil
}
