package storage

import (
	"database/sql"

	_ "github.com/lib/pq" // Enable postgresql driver

	"github.com/arcnetwork/arc-processing/settings"
)

type SQLQueryExecutor interface {
	Query(string, ...interface{}) (*sql.Rows, error)
	Exec(string, ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Open connects to a storage database described by settings. For "memory"
// storage type nil is returned and callers fall back to in-memory
// implementations
func Open(s settings.Settings) *sql.DB {
	var (
		db  *sql.DB
		err error
	)

	storageType := s.GetStringMandatory("storage.type")

	switch storageType {
	case "memory":
		db = nil
	case "postgres":
		dsn := s.GetStringMandatory("storage.dsn")

		db, err = sql.Open("postgres", dsn)

		if err != nil {
			panic(err)
		}

		err = db.Ping()
		if err != nil {
			panic(err)
		}
	default:
		panic("Error: unsupported storage type " + storageType)
	}

	return db
}

func GetMeta(e SQLQueryExecutor, name string, defaultVal string) (string, error) {
	result := defaultVal
	err := e.QueryRow(`SELECT value FROM metadata WHERE key = $1`, name).Scan(&result)
	if err == nil || err == sql.ErrNoRows {
		return result, nil
	}
	return "", err
}

func SetMeta(e SQLQueryExecutor, name string, value string) error {
	_, err := e.Exec(`INSERT INTO metadata (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, name, value)
	return err
}

func DeleteMeta(e SQLQueryExecutor, name string) error {
	_, err := e.Exec(`DELETE FROM metadata WHERE key = $1`, name)
	return err
}

