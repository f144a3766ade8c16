package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const createSavesTable = `CREATE TABLE IF NOT EXISTS save_slots (
	slot       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore 把存档槽位保存在 SQLite 表中
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite 打开（必要时创建）SQLite 存档数据库
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path)
	if path == ":memory:" {
		dsn = path
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// 内存数据库每个连接都是独立的库
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(createSavesTable); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create save table: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Read 读取槽位
func (s *SQLiteStore) Read(slot string) ([]byte, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var payload []byte
	err := s.sqlDB.QueryRow(`SELECT payload FROM save_slots WHERE slot = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", slot, err)
	}
	if len(payload) == 0 {
		return nil, ErrNotFound
	}
	return payload, nil
}

// Write 覆盖写入槽位
func (s *SQLiteStore) Write(slot string, data []byte) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	_, err := s.sqlDB.Exec(
		`INSERT INTO save_slots (slot, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		slot, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	return nil
}

// Delete 删除槽位
func (s *SQLiteStore) Delete(slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.Exec(`DELETE FROM save_slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
