package s3_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"inventorycore/internal/blob/core"
	s3store "inventorycore/internal/infra/blob/s3"
)

func TestMockRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := s3store.NewMockForTests()

	if store.Driver() != core.DriverS3 {
		t.Fatalf("expected s3 driver, got %s", store.Driver())
	}

	if _, err := store.Put(ctx, "backups/a.json", strings.NewReader(`{"x":1}`), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "backups/a.json", strings.NewReader("dup"), core.PutOptions{}); err == nil {
		t.Fatal("expected duplicate put to fail")
	}

	info, rc, err := store.Get(ctx, "backups/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"x":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if info.Size != int64(len(`{"x":1}`)) {
		t.Fatalf("unexpected size %d", info.Size)
	}

	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatal("expected head of missing key to fail")
	}
}

func TestMockListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := s3store.NewMockForTests()
	for _, key := range []string{"backups/b", "backups/a", "other/c"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "backups/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "backups/a" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	if existed, err := store.Delete(ctx, "backups/a"); err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, _, err := store.Get(ctx, "backups/a"); err == nil {
		t.Fatal("expected get after delete to fail")
	}
}

func TestPresignRejectsNonGet(t *testing.T) {
	store := s3store.NewMockForTests()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{Method: "PUT"}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := s3store.New(context.Background(), s3store.Config{}); err == nil {
		t.Fatal("expected missing bucket error")
	}
}
