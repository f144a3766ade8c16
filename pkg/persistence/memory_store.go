package persistence

// MemoryStore 进程内存储
type MemoryStore struct {
	slots map[string][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Read 读取槽位（返回副本）
func (s *MemoryStore) Read(slot string) ([]byte, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}
	data, ok := s.slots[slot]
	if !ok || len(data) == 0 {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Write 写入槽位
func (s *MemoryStore) Write(slot string, data []byte) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	s.slots[slot] = append([]byte(nil), data...)
	return nil
}

// Delete 删除槽位
func (s *MemoryStore) Delete(slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	delete(s.slots, slot)
	return nil
}

// Close 无需释放资源
func (s *MemoryStore) Close() error {
	return nil
}
