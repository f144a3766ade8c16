package persistence

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStore 把每个槽位保存为目录下的一个 YAML 文件
type FileStore struct {
	dir string
}

// NewFileStore 创建文件存储，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = filepath.Join("data", "saves")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path 返回槽位对应的文件路径
func (s *FileStore) Path(slot string) string {
	return filepath.Join(s.dir, slot+".yaml")
}

// Read 读取槽位文件
func (s *FileStore) Read(slot string) ([]byte, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Write 先写临时文件再重命名，避免中途失败留下半个存档
func (s *FileStore) Write(slot string, data []byte) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	tmp := s.Path(slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp, s.Path(slot)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}

// Delete 删除槽位文件
func (s *FileStore) Delete(slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := os.Remove(s.Path(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// Close 无需释放资源
func (s *FileStore) Close() error {
	return nil
}
