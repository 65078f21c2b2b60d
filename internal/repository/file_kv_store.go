package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileKeyValueStore guarda todas las claves en un unico archivo JSON.
// Cada escritura reemplaza el archivo completo via rename, asi que un lector
// nunca ve la mitad de un SetAll.
type fileKeyValueStore struct {
	mu   sync.Mutex
	path string
}

func NewFileKeyValueStore(path string) KeyValueStore {
	return &fileKeyValueStore{path: filepath.Clean(path)}
}

func (s *fileKeyValueStore) Get(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *fileKeyValueStore) SetAll(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if errors.Is(err, ErrStoreCorrupt) {
		// el archivo ilegible se reemplaza entero.
		all, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	for k, v := range values {
		all[k] = v
	}
	return s.write(all)
}

func (s *fileKeyValueStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if errors.Is(err, ErrStoreCorrupt) {
		all, err = nil, nil
	}
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(all, k)
	}
	if len(all) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", s.path, err)
		}
		return nil
	}
	return s.write(all)
}

func (s *fileKeyValueStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	all := make(map[string]string)
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", s.path, ErrStoreCorrupt, err)
	}
	return all, nil
}

func (s *fileKeyValueStore) write(all map[string]string) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	return atomicWriteFile(s.path, data, 0o600)
}

func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}
