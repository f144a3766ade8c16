package persistence

import (
	"errors"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "saves"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	sqliteStore, err := OpenSQLite(filepath.Join(dir, "saves.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}

	// gdata 依赖 HOME 目录
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg"))
	if gd, err := OpenGdata("casefile_test"); err == nil {
		stores["gdata"] = gd
	} else {
		t.Logf("gdata backend unavailable: %v", err)
	}
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Read("slot"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Read on empty slot: got %v, want ErrNotFound", err)
			}

			if err := store.Write("slot", []byte("first")); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := store.Write("slot", []byte("second")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := store.Read("slot")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if string(got) != "second" {
				t.Errorf("Read: got %q, want %q", got, "second")
			}

			if err := store.Delete("slot"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Read("slot"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Read after delete: got %v, want ErrNotFound", err)
			}
			if err := store.Delete("slot"); err != nil {
				t.Errorf("second Delete should be a no-op, got %v", err)
			}
		})
	}
}

func TestStoreRejectsBadSlotNames(t *testing.T) {
	store := NewMemoryStore()
	for _, slot := range []string{"", "  ", "../escape", "a/b"} {
		if err := store.Write(slot, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", slot)
		}
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open memory: got %T", s)
	}

	s, err = Open(Options{Backend: "FILE", Dir: dir})
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open file: got %T", s)
	}

	if _, err := Open(Options{Backend: "floppy"}); err == nil {
		t.Error("Open with unknown backend should fail")
	}
}
