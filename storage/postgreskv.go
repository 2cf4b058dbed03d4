package storage

import (
	"database/sql"
)

// PostgresKVStore stores values in the metadata table of a postgresql
// database. It implements KVStore interface and is the production
// implementation of the shared store
type PostgresKVStore struct {
	db *sql.DB
}

func (s *PostgresKVStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM metadata WHERE key = $1`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *PostgresKVStore) Set(key string, value string) error {
	return SetMeta(s.db, key, value)
}

func (s *PostgresKVStore) Delete(key string) error {
	return DeleteMeta(s.db, key)
}
