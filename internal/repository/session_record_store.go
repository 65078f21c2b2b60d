package repository

import (
	"context"
	"errors"
	"fmt"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

var (
	ErrRecordNotFound = errors.New("session record not found")
	ErrRecordTorn     = errors.New("session record incomplete")
)

// SessionRecordStore persiste el par {token, user} sobre un KeyValueStore.
// El par se escribe y se borra siempre junto.
type SessionRecordStore struct {
	kv KeyValueStore
}

func NewSessionRecordStore(kv KeyValueStore) *SessionRecordStore {
	return &SessionRecordStore{kv: kv}
}

// Load devuelve el token y el usuario serializado. Si falta una sola de las
// dos claves o el backend esta corrupto devuelve ErrRecordTorn; si faltan
// ambas, ErrRecordNotFound.
func (s *SessionRecordStore) Load(ctx context.Context) (string, string, error) {
	if s.kv == nil {
		return "", "", errors.New("session record store not configured")
	}
	vals, err := s.kv.Get(ctx, TokenKey, UserKey)
	if errors.Is(err, ErrStoreCorrupt) {
		return "", "", fmt.Errorf("load session record: %w: %w", ErrRecordTorn, err)
	}
	if err != nil {
		return "", "", fmt.Errorf("load session record: %w", err)
	}
	token, hasToken := vals[TokenKey]
	user, hasUser := vals[UserKey]
	hasToken = hasToken && token != ""
	hasUser = hasUser && user != ""
	switch {
	case !hasToken && !hasUser:
		return "", "", ErrRecordNotFound
	case hasToken != hasUser:
		return "", "", ErrRecordTorn
	}
	return token, user, nil
}

func (s *SessionRecordStore) Save(ctx context.Context, token, user string) error {
	if s.kv == nil {
		return errors.New("session record store not configured")
	}
	if token == "" || user == "" {
		return fmt.Errorf("save session record: %w", ErrRecordTorn)
	}
	if err := s.kv.SetAll(ctx, map[string]string{
		TokenKey: token,
		UserKey:  user,
	}); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (s *SessionRecordStore) Clear(ctx context.Context) error {
	if s.kv == nil {
		return errors.New("session record store not configured")
	}
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session record: %w", err)
	}
	return nil
}
