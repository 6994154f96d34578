package storage

import (
	"context"
	"sync"

	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

var _ repository.KeyValueStore = (*Memory)(nil)

// Memory almacenamiento en proceso; la sesión se pierde al terminar.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory crea un almacenamiento vacío.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get devuelve el valor de key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set guarda value en key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove borra key; no falla si no existe.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close no hace nada; existe para cumplir Closer.
func (m *Memory) Close() error { return nil }
