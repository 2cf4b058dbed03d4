package storage

import (
	"sync"
)

// InMemoryKVStore stores values in a map. It implements KVStore interface.
// InMemoryKVStore is made for testing and single-process deployments and
// does not provide any persistence. PostgresKVStore should be used in
// production
type InMemoryKVStore struct {
	mutex  sync.Mutex
	values map[string]string
}

func (s *InMemoryKVStore) Get(key string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	value, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *InMemoryKVStore) Set(key string, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.values[key] = value
	return nil
}

func (s *InMemoryKVStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.values, key)
	return nil
}
