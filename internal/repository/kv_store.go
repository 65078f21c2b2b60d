package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreCorrupt indica que el contenido del backend no se puede decodificar.
var ErrStoreCorrupt = errors.New("store content corrupt")

// KeyValueStore es el almacenamiento local de pares string. SetAll escribe
// todo el mapa de forma atomica; Get omite las claves ausentes.
type KeyValueStore interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	SetAll(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

type memoryKeyValueStore struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryKeyValueStore() KeyValueStore {
	return &memoryKeyValueStore{
		items: make(map[string]string),
	}
}

func (s *memoryKeyValueStore) Get(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.items[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *memoryKeyValueStore) SetAll(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.items[k] = v
	}
	return nil
}

func (s *memoryKeyValueStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}
