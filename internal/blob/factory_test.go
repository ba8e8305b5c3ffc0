package blob_test

import (
	"context"
	"testing"

	"inventorycore/internal/blob"
)

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv("INVENTORYCORE_BLOB_DRIVER", "")
	t.Setenv("INVENTORYCORE_BLOB_FS_ROOT", t.TempDir())
	store, err := blob.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != blob.DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("INVENTORYCORE_BLOB_DRIVER", "memory")
	store, err := blob.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != blob.DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("INVENTORYCORE_BLOB_DRIVER", "tape")
	if _, err := blob.Open(context.Background()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("INVENTORYCORE_BLOB_DRIVER", "s3")
	t.Setenv("INVENTORYCORE_BLOB_S3_BUCKET", "")
	if _, err := blob.Open(context.Background()); err == nil {
		t.Fatal("expected missing bucket error")
	}
}
