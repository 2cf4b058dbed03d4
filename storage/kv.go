package storage

import (
	"database/sql"
	"errors"
	"log"

	"github.com/arcnetwork/arc-processing/arc"
)

// Shared store keys. OrderAmountKey is transient: written by the merchant
// trigger path and consumed (read-then-deleted) by the popup on load.
// AuthTokenKey is long-lived until logout
const (
	OrderAmountKey = "order_amount"
	AuthTokenKey   = "auth_token"
)

// ErrKeyNotFound is returned by KVStore.Get for keys that have no value
var ErrKeyNotFound = errors.New("No value stored under such key")

// KVStore is the shared persisted key-value store used by all extension
// contexts that outlive any single popup window. Writes are last-write-wins;
// there is no locking, so read-then-delete is not atomic with respect to a
// concurrent write. That is acceptable because the system assumes one human
// operator at a time
type KVStore interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Delete(key string) error
}

// NewKVStore returns a KVStore backed by given database or an in-memory one
// when db is nil
func NewKVStore(db *sql.DB) KVStore {
	if db == nil {
		log.Print("Warning: initializing in-memory shared store since no db " +
			"connection is passed. Note it should not be used in production")
		return &InMemoryKVStore{values: make(map[string]string)}
	}

	return &PostgresKVStore{db: db}
}

// StoreOrderAmount persists a pending order amount. At most one pending
// amount exists: a second write before consumption overwrites the first
func StoreOrderAmount(kv KVStore, amount arc.Amount) error {
	if err := arc.CheckPositive(amount); err != nil {
		return err
	}
	return kv.Set(OrderAmountKey, amount.ToStringedFloat())
}

// ConsumeOrderAmount reads and deletes the pending order amount. The second
// return value is false when no pending order exists
func ConsumeOrderAmount(kv KVStore) (arc.Amount, bool, error) {
	value, err := kv.Get(OrderAmountKey)
	if err == ErrKeyNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	amount, err := arc.AmountFromStringedFloat(value)
	if err != nil {
		return 0, false, err
	}
	if err := kv.Delete(OrderAmountKey); err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

// GetAuthToken returns stored bearer token or an empty string when user is
// not logged in
func GetAuthToken(kv KVStore) (string, error) {
	token, err := kv.Get(AuthTokenKey)
	if err == ErrKeyNotFound {
		return "", nil
	}
	return token, err
}

// SetAuthToken stores bearer token received from backend login
func SetAuthToken(kv KVStore, token string) error {
	return kv.Set(AuthTokenKey, token)
}

// ClearAuthToken removes stored bearer token on logout
func ClearAuthToken(kv KVStore) error {
	return kv.Delete(AuthTokenKey)
}
