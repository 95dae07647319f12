package inmemstore

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/storage/kvstore"
)

type storage struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ kvstore.Storage = (*storage)(nil)

func New() kvstore.Storage {
	return &storage{table: make(map[string]string)}
}

func (s *storage) Get(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return "", kvstore.ErrNotFound
	}
	return val, nil
}

func (s *storage) Set(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = value
	return nil
}

func (s *storage) Remove(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, key)
	return nil
}
