package core

import (
	"path/filepath"
	"testing"

	"inventorycore/internal/infra/persistence/memory"
	"inventorycore/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("INVENTORYCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenPersistentStoreDefaultsToSQLite(t *testing.T) {
	t.Setenv("INVENTORYCORE_STORAGE_DRIVER", "")
	t.Setenv("INVENTORYCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	store, err := OpenPersistentStore(NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	st, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenPersistentStoreRejectsUnknownDriver(t *testing.T) {
	t.Setenv("INVENTORYCORE_STORAGE_DRIVER", "tape")
	if _, err := OpenPersistentStore(NewRulesEngine()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
