// Package persistence 提供单存档槽位的字节存储后端
//
// 存档内容的编码（YAML）由 game.SaveManager 负责，这里只负责把一段字节
// 按槽位名写入/读出。支持的后端：
//   - gdata:  跨平台用户数据目录（默认）
//   - file:   指定目录下的 <slot>.yaml 文件
//   - sqlite: 本地 SQLite 数据库文件中的一行
//   - memory: 进程内存（测试、无头模式）
package persistence

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound 槽位中没有存档
var ErrNotFound = errors.New("save slot not found")

// Store 单槽位存档存储
type Store interface {
	// Read 读取槽位内容，槽位为空时返回 ErrNotFound
	Read(slot string) ([]byte, error)
	// Write 覆盖写入槽位
	Write(slot string, data []byte) error
	// Delete 清空槽位（槽位不存在时不报错）
	Delete(slot string) error
	// Close 释放底层资源
	Close() error
}

// Backend 后端类型
type Backend string

const (
	BackendGdata  Backend = "gdata"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Options 打开存储的参数
type Options struct {
	Backend Backend
	AppName string // gdata 使用
	Dir     string // file 使用的目录
	Path    string // sqlite 使用的数据库文件路径
}

// Open 按后端类型打开存储
func Open(opts Options) (Store, error) {
	switch Backend(strings.ToLower(string(opts.Backend))) {
	case BackendGdata, "":
		return OpenGdata(opts.AppName)
	case BackendFile:
		return NewFileStore(opts.Dir)
	case BackendSQLite:
		return OpenSQLite(opts.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown save backend %q", opts.Backend)
	}
}

func validSlot(slot string) error {
	if strings.TrimSpace(slot) == "" {
		return fmt.Errorf("slot name is required")
	}
	if strings.ContainsAny(slot, `/\`) || strings.Contains(slot, "..") {
		return fmt.Errorf("invalid slot name %q", slot)
	}
	return nil
}
