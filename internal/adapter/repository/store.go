package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLStore is the device-scoped key/value store backing drafts and local
// entitlements. Every browser device gets its own namespace.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the sqlite file at path and prepares the
// schema. ":memory:" is accepted.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s := NewSQLStore(db)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Init creates the table if it does not exist.
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS device_kv (
		device_id  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (device_id, key)
	)`)
	if err != nil {
		return fmt.Errorf("create device_kv: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, deviceID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM device_kv WHERE device_id = ? AND key = ?`, deviceID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", deviceID, key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, deviceID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO device_kv (device_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (device_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		deviceID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", deviceID, key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, deviceID, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM device_kv WHERE device_id = ? AND key = ?`, deviceID, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", deviceID, key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-process device store for tests and the CLI.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, deviceID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[deviceID][key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, deviceID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[deviceID]
	if !ok {
		ns = make(map[string]string)
		m.data[deviceID] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, deviceID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[deviceID], key)
	return nil
}
