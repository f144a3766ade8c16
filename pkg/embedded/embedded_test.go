package embedded

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/strings.txt":        {Data: []byte("[GAME_SAVED]\nSaved\n")},
		"data/scenes/office.yaml": {Data: []byte("scenes: {}\n")},
		"data/scenes/harbor.yaml": {Data: []byte("scenes: {}\n")},
		"data/scenes/notes.md":    {Data: []byte("# notes\n")},
	}
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	initialized = false
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
	initialized = false
}

// TestNotInitialized 测试未初始化时的错误
func TestNotInitialized(t *testing.T) {
	initialized = false

	if _, err := Open("data/strings.txt"); err != errNotInitialized {
		t.Errorf("Open: got %v, want errNotInitialized", err)
	}
	if _, err := ReadFile("data/strings.txt"); err != errNotInitialized {
		t.Errorf("ReadFile: got %v, want errNotInitialized", err)
	}
	if Exists("data/strings.txt") {
		t.Error("Exists should be false before Init()")
	}
}

// TestReadFile 测试读取与路径标准化
func TestReadFile(t *testing.T) {
	Init(testFS())
	defer func() { initialized = false }()

	for _, path := range []string{"data/strings.txt", "./data/strings.txt"} {
		data, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q) error: %v", path, err)
		}
		if string(data) != "[GAME_SAVED]\nSaved\n" {
			t.Errorf("ReadFile(%q): got %q", path, data)
		}
	}

	if _, err := ReadFile("assets/bg.png"); err == nil {
		t.Error("Expected error for unknown prefix")
	}
	if _, err := ReadFile("data/missing.txt"); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := ReadFile("data/scenes"); err == nil {
		t.Error("Expected error when reading a directory")
	}
}

// TestGlobAndReadDir 测试目录枚举
func TestGlobAndReadDir(t *testing.T) {
	Init(testFS())
	defer func() { initialized = false }()

	matches, err := Glob("data/scenes/*.yaml")
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Glob: got %v, want 2 yaml files", matches)
	}

	entries, err := ReadDir("data/scenes")
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("ReadDir: got %d entries, want 3", len(entries))
	}

	info, err := Stat("data/strings.txt")
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if info.IsDir() {
		t.Error("Stat: strings.txt reported as directory")
	}
}

// TestOverlay 测试磁盘覆盖目录优先于嵌入内容
func TestOverlay(t *testing.T) {
	Init(testFS())
	defer func() { initialized = false; overlayFS = nil }()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "scenes"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scenes", "office.yaml"), []byte("scenes: {override: {}}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scenes", "attic.yaml"), []byte("scenes: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Overlay(dir); err != nil {
		t.Fatalf("Overlay error: %v", err)
	}

	data, err := ReadFile("data/scenes/office.yaml")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "scenes: {override: {}}\n" {
		t.Errorf("overlay not preferred: got %q", data)
	}

	// 覆盖目录中没有的文件回退到嵌入内容
	if !Exists("data/strings.txt") {
		t.Error("embedded fallback missing")
	}

	matches, err := Glob("data/scenes/*.yaml")
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("Glob with overlay: got %v, want 3 unique files", matches)
	}

	if err := Overlay(filepath.Join(dir, "nope")); err == nil {
		t.Error("Expected error for missing overlay dir")
	}
	if err := Overlay(""); err != nil {
		t.Errorf("Overlay(\"\") error: %v", err)
	}
	if overlayFS != nil {
		t.Error("Overlay(\"\") should clear overlay")
	}
}
