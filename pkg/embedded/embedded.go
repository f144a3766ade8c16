// Package embedded 提供内容资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的内容文件（data/ 下的场景、文本表）。
//
// 使用前必须调用 Init() 初始化。Overlay() 可以指定一个磁盘目录，
// 其中的同名文件优先于嵌入版本（用于 --scenes 指定的外部内容）。
package embedded

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	dataFS      fs.FS
	overlayFS   fs.FS
	initialized bool
)

var errNotInitialized = errors.New("embedded package not initialized, call Init() first")

// Init 初始化内容文件系统
// 必须在 main() 开始时、任何资源加载之前调用
func Init(data fs.FS) {
	dataFS = data
	overlayFS = nil
	initialized = true
}

// Overlay 指定磁盘上的内容目录，目录结构与 data/ 相同
// dir 为空时取消覆盖
func Overlay(dir string) error {
	if dir == "" {
		overlayFS = nil
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("content overlay %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content overlay %s is not a directory", dir)
	}
	overlayFS = os.DirFS(dir)
	return nil
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// resolve 标准化路径并检查前缀
// 返回 embed.FS 中的路径（保留 "data/" 前缀）
func resolve(path string) (string, error) {
	if !initialized {
		return "", errNotInitialized
	}
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	if path != "data" && !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

// overlayPath 覆盖目录中对应的相对路径
func overlayPath(path string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(path, "data"), "/")
	if rel == "" {
		return "."
	}
	return rel
}

// Open 打开内容文件，覆盖目录中的同名文件优先
func Open(path string) (fs.File, error) {
	p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	if overlayFS != nil {
		if f, err := overlayFS.Open(overlayPath(p)); err == nil {
			return f, nil
		}
	}
	if dataFS == nil {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return dataFS.Open(p)
}

// ReadFile 读取内容文件
func ReadFile(path string) ([]byte, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return io.ReadAll(f)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配内容文件（覆盖目录与嵌入文件合并、去重）
func Glob(pattern string) ([]string, error) {
	p, err := resolve(pattern)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	if overlayFS != nil {
		matches, err := fs.Glob(overlayFS, overlayPath(p))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			full := "data/" + m
			seen[full] = true
			out = append(out, full)
		}
	}
	if dataFS != nil {
		matches, err := fs.Glob(dataFS, p)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// ReadDir 读取目录内容，覆盖目录存在该目录时只读取覆盖目录
func ReadDir(path string) ([]fs.DirEntry, error) {
	p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	if overlayFS != nil {
		if entries, err := fs.ReadDir(overlayFS, overlayPath(p)); err == nil {
			return entries, nil
		}
	}
	if dataFS == nil {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}
	return fs.ReadDir(dataFS, p)
}

// Stat 获取文件信息
func Stat(path string) (fs.FileInfo, error) {
	file, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return file.Stat()
}
