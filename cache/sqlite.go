package cache

import (
	"fmt"
	"io"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"stylec/css"
)

const schema = `CREATE TABLE IF NOT EXISTS rules (
	key     TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created INTEGER NOT NULL
)`

// SQLite is persistent store used by ahead-of-time extraction.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenSQLite opens or creates database at path, ":memory:" gives
// transient database.
func OpenSQLite(path string) (*SQLite, error) {
	flags := sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL
	if path == ":memory:" {
		flags = sqlite.OpenReadWrite | sqlite.OpenMemory
	}
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Get(key Key) ([]css.Rule, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		payload []byte
		found   bool
	)
	err := sqlitex.Execute(s.conn, `SELECT payload FROM rules WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				data, err := io.ReadAll(stmt.ColumnReader(0))
				if err != nil {
					return err
				}
				payload, found = data, true
				return nil
			},
		})
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	rules, err := unmarshalRules(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return rules, true, nil
}

func (s *SQLite) Put(key Key, rules []css.Rule) error {
	payload, err := marshalRules(rules)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = sqlitex.Execute(s.conn, `INSERT OR REPLACE INTO rules (key, payload, created) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{key.String(), payload, time.Now().Unix()}})
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Len returns number of stored entries.
func (s *SQLite) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := sqlitex.Execute(s.conn, `SELECT count(*) FROM rules`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		}})
	return n, err
}

// Purge removes entries older than given age.
func (s *SQLite) Purge(age time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sqlitex.Execute(s.conn, `DELETE FROM rules WHERE created < ?`,
		&sqlitex.ExecOptions{Args: []any{time.Now().Add(-age).Unix()}})
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
