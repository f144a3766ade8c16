package persistence

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

// savesObject gdata 中存放存档槽位的对象名
const savesObject = "saves"

// GdataStore 基于 gdata 的跨平台存档存储
//
// gdata 以 (object, property) 为键保存字节；槽位名即 property。
// 删除通过写入空内容实现，读取到空内容视为没有存档。
type GdataStore struct {
	manager *gdata.Manager
}

// OpenGdata 打开 gdata 存储
//
// 参数：
//   - appName: 应用名，决定用户数据目录
func OpenGdata(appName string) (*GdataStore, error) {
	if appName == "" {
		appName = "casefile"
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata: %w", err)
	}
	return &GdataStore{manager: m}, nil
}

// NewGdataStore 包装已打开的 gdata Manager（与设置管理器共用）
func NewGdataStore(m *gdata.Manager) *GdataStore {
	return &GdataStore{manager: m}
}

// Manager 返回底层 gdata Manager
func (s *GdataStore) Manager() *gdata.Manager {
	return s.manager
}

// Read 读取槽位
func (s *GdataStore) Read(slot string) ([]byte, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}
	if s.manager == nil || !s.manager.ObjectPropExists(savesObject, slot) {
		return nil, ErrNotFound
	}
	data, err := s.manager.LoadObjectProp(savesObject, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Write 写入槽位
func (s *GdataStore) Write(slot string, data []byte) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if s.manager == nil {
		return fmt.Errorf("gdata manager is not configured")
	}
	if err := s.manager.SaveObjectProp(savesObject, slot, data); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}
	return nil
}

// Delete 清空槽位
func (s *GdataStore) Delete(slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if s.manager == nil || !s.manager.ObjectPropExists(savesObject, slot) {
		return nil
	}
	return s.Write(slot, []byte{})
}

// Close gdata 不持有需要释放的句柄
func (s *GdataStore) Close() error {
	return nil
}
