package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"inventorycore/internal/infra/persistence/sqlite"
	"inventorycore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "inventory.db")

	store, err := sqlite.NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.AddLocation(domain.Location{ID: "loc-a", Name: "Main Warehouse"}); err != nil {
			return err
		}
		if _, err := tx.AddMaterial(domain.Material{ID: "mat-1", Name: "Cement", Unit: "kg", Quantity: 10, Rate: 50}); err != nil {
			return err
		}
		_, err := tx.AddPurchaseBill(domain.PurchaseBill{
			ID:         "pb-1",
			LocationID: "loc-a",
			Supplier:   "Acme",
			Items:      []domain.BillItem{{MaterialID: "mat-1", Quantity: 40, Rate: 55}},
		})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := sqlite.NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if err := reopened.View(ctx, func(view domain.TransactionView) error {
		mat, ok := view.FindMaterial("mat-1")
		if !ok {
			t.Fatal("expected material to survive reopen")
		}
		if mat.Quantity != 50 || mat.Rate != 55 {
			t.Fatalf("unexpected hydrated material: %+v", mat)
		}
		stock, ok := view.FindMaterialStock("mat-1")
		if !ok {
			t.Fatal("expected stock record to survive reopen")
		}
		if got := stock.QuantityAt("loc-a"); got != 40 {
			t.Fatalf("expected 40 at loc-a after reopen, got %v", got)
		}
		if _, ok := view.FindPurchaseBill("pb-1"); !ok {
			t.Fatal("expected bill to survive reopen")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestImportStateWritesThrough(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory.db")

	store, err := sqlite.NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	snapshot := domain.Snapshot{
		Materials: []domain.Material{{ID: "mat-1", Name: "Sand", Quantity: 3, Rate: 2, Total: 6}},
	}
	if err := store.ImportState(ctx, snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := sqlite.NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	out, err := reopened.ExportState(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(out.Materials) != 1 || out.Materials[0].Name != "Sand" {
		t.Fatalf("expected imported state to persist, got %+v", out.Materials)
	}
}
