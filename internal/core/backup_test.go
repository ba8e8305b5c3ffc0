package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"inventorycore/internal/blob"
)

func TestExportImportJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(NewDefaultRulesEngine())
	loc, mat := seedInventory(t, svc)
	if _, _, err := svc.RecordPurchase(ctx, PurchaseBill{
		BillNo:     "PB-001",
		LocationID: loc.ID,
		Supplier:   "Acme Traders",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 5, Rate: 12}},
	}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	data, err := svc.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), `"materialStocks"`) {
		t.Fatalf("export missing collection keys: %s", data)
	}
	if !strings.HasPrefix(string(data), "{\n  ") {
		t.Fatal("export must be two-space indented")
	}

	restored := NewInMemoryService(NewDefaultRulesEngine())
	if err := restored.ImportJSON(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := restored.Store().View(ctx, func(view TransactionView) error {
		m, ok := view.FindMaterial(mat.ID)
		if !ok {
			t.Fatal("imported material missing")
		}
		if m.Quantity != 5 || m.Total != 60 {
			t.Fatalf("unexpected imported material: %+v", m)
		}
		if len(view.PurchaseBills()) != 1 || len(view.LedgerEntries()) != 1 {
			t.Fatal("imported collections incomplete")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestImportJSONParseFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	svc := NewInMemoryService(NewDefaultRulesEngine(), WithMetricsRecorder(metrics))
	_, mat := seedInventory(t, svc)

	if err := svc.ImportJSON(ctx, []byte("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
	if !metrics.has("import_state", false) {
		t.Fatal("expected failed import to be observed")
	}

	if err := svc.Store().View(ctx, func(view TransactionView) error {
		if _, ok := view.FindMaterial(mat.ID); !ok {
			t.Fatal("failed import must not clear existing state")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestBackupKeyUsesISODate(t *testing.T) {
	at := time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC)
	if got := BackupKey(at); got != "inventory-backup-2026-08-30.json" {
		t.Fatalf("unexpected backup key %q", got)
	}
}

func TestBackupAndRestoreThroughBlobStore(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()

	svc := NewInMemoryService(NewDefaultRulesEngine())
	loc, mat := seedInventory(t, svc)
	if _, _, err := svc.RecordPurchase(ctx, PurchaseBill{
		BillNo:     "PB-001",
		LocationID: loc.ID,
		Supplier:   "Acme Traders",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 5, Rate: 12}},
	}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	info, err := svc.Backup(ctx, store)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", info.ContentType)
	}

	// A same-day second backup replaces the previous object.
	if _, err := svc.Backup(ctx, store); err != nil {
		t.Fatalf("second backup: %v", err)
	}
	infos, err := store.List(ctx, "inventory-backup-")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected one backup object, got %d", len(infos))
	}

	restored := NewInMemoryService(NewDefaultRulesEngine())
	if err := restored.Restore(ctx, store, info.Key); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := restored.Store().View(ctx, func(view TransactionView) error {
		if len(view.PurchaseBills()) != 1 {
			t.Fatal("restored state missing purchase bill")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRestoreMissingKeyFails(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	if err := svc.Restore(context.Background(), blob.NewMemory(), "inventory-backup-1999-01-01.json"); err == nil {
		t.Fatal("expected error for missing backup object")
	}
}
