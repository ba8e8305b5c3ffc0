package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"inventorycore/internal/blob/core"
	"inventorycore/internal/infra/blob/memory"
)

func TestRoundTripAndCreateOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	if _, err := store.Put(ctx, "backups/a.json", strings.NewReader(`{}`), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "backups/a.json", strings.NewReader(`{}`), core.PutOptions{}); err == nil {
		t.Fatal("expected duplicate put to fail")
	}

	info, rc, err := store.Get(ctx, "backups/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "{}" || info.ContentType != "application/json" {
		t.Fatalf("unexpected blob: body=%q info=%+v", body, info)
	}

	existed, err := store.Delete(ctx, "backups/a.json")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "backups/a.json"); err == nil {
		t.Fatal("expected head after delete to fail")
	}
}

func TestListOrderedByKey(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, key := range []string{"b", "a", "c/x"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].Key != "a" || infos[2].Key != "c/x" {
		t.Fatalf("unexpected order: %+v", infos)
	}
}

func TestPresignUnsupported(t *testing.T) {
	store := memory.New()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
