package core

import (
	"context"
	"testing"
)

func seedInventory(t *testing.T, svc *Service) (Location, Material) {
	t.Helper()
	ctx := context.Background()
	loc, _, err := svc.CreateLocation(ctx, Location{ID: "loc-main", Name: "Main Warehouse"})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	mat, _, err := svc.CreateMaterial(ctx, Material{ID: "mat-cement", Name: "Cement", Unit: "bag", Quantity: 0, Rate: 10})
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	return loc, mat
}

func TestServiceRecordPurchaseAppendsCompanionLedgerEntry(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(NewDefaultRulesEngine())
	loc, mat := seedInventory(t, svc)

	bill, _, err := svc.RecordPurchase(ctx, PurchaseBill{
		BillNo:     "PB-001",
		Date:       "2026-08-01",
		LocationID: loc.ID,
		Supplier:   "Acme Traders",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 5, Rate: 12}},
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if bill.TotalAmount != 60 {
		t.Fatalf("expected bill total 60, got %v", bill.TotalAmount)
	}

	if err := svc.Store().View(ctx, func(view TransactionView) error {
		updated, ok := view.FindMaterial(mat.ID)
		if !ok {
			t.Fatal("material missing")
		}
		if updated.Quantity != 5 || updated.Rate != 12 || updated.Total != 60 {
			t.Fatalf("unexpected material after purchase: %+v", updated)
		}
		stock, ok := view.FindMaterialStock(mat.ID)
		if !ok {
			t.Fatal("stock record missing")
		}
		if got := stock.QuantityAt(loc.ID); got != 5 {
			t.Fatalf("expected 5 at %s, got %v", loc.ID, got)
		}

		entries := view.LedgerEntries()
		if len(entries) != 1 {
			t.Fatalf("expected one ledger entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry.Type != LedgerPurchase {
			t.Fatalf("expected purchase ledger type, got %s", entry.Type)
		}
		if entry.Description != "Purchase Bill PB-001" {
			t.Fatalf("unexpected description %q", entry.Description)
		}
		if entry.Amount != 60 || entry.PartyName != "Acme Traders" || entry.BillNo != "PB-001" {
			t.Fatalf("unexpected companion entry: %+v", entry)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestServiceRecordSaleAppendsCompanionLedgerEntry(t *testing.T) {
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

	if _, _, err := svc.RecordSale(ctx, SalesBill{
		BillNo:     "SB-001",
		LocationID: loc.ID,
		Customer:   "Builder Ltd",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 2, Rate: 15}},
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if err := svc.Store().View(ctx, func(view TransactionView) error {
		updated, _ := view.FindMaterial(mat.ID)
		if updated.Quantity != 3 {
			t.Fatalf("expected quantity 3 after sale, got %v", updated.Quantity)
		}
		if updated.Rate != 12 {
			t.Fatalf("sales must not change rate, got %v", updated.Rate)
		}
		if updated.Total != 36 {
			t.Fatalf("expected total 36, got %v", updated.Total)
		}

		entries := view.LedgerEntries()
		if len(entries) != 2 {
			t.Fatalf("expected two ledger entries, got %d", len(entries))
		}
		sale := entries[1]
		if sale.Type != LedgerSales || sale.Description != "Sales Bill SB-001" || sale.PartyName != "Builder Ltd" {
			t.Fatalf("unexpected sales entry: %+v", sale)
		}
		if sale.Amount != 30 {
			t.Fatalf("expected amount 30, got %v", sale.Amount)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestServiceDeletePurchaseBillKeepsLedgerEntry(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(NewDefaultRulesEngine())
	loc, mat := seedInventory(t, svc)

	bill, _, err := svc.RecordPurchase(ctx, PurchaseBill{
		BillNo:     "PB-001",
		LocationID: loc.ID,
		Supplier:   "Acme Traders",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 5, Rate: 12}},
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	deleted, _, err := svc.DeletePurchaseBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("delete purchase bill: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report true")
	}

	if err := svc.Store().View(ctx, func(view TransactionView) error {
		if len(view.PurchaseBills()) != 0 {
			t.Fatal("expected bill removed")
		}
		updated, _ := view.FindMaterial(mat.ID)
		if updated.Quantity != 0 {
			t.Fatalf("expected quantity compensated to 0, got %v", updated.Quantity)
		}
		if len(view.LedgerEntries()) != 1 {
			t.Fatal("companion ledger entry must survive bill deletion")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestServicePaymentClampAndStatusFlow(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(NewRulesEngine())

	recv, _, err := svc.CreateReceivable(ctx, ReceivableBill{BillNo: "R-1", Customer: "Builder Ltd", Amount: 1000, DueDate: "2026-09-30"})
	if err != nil {
		t.Fatalf("create receivable: %v", err)
	}
	if recv.Status != PaymentPending {
		t.Fatalf("expected pending, got %s", recv.Status)
	}

	recv, found, _, err := svc.ReceivePayment(ctx, recv.ID, 400)
	if err != nil || !found {
		t.Fatalf("receive payment: found=%v err=%v", found, err)
	}
	if recv.Status != PaymentPartiallyPaid || recv.AmountPaid != 400 {
		t.Fatalf("expected partially_paid at 400, got %s %v", recv.Status, recv.AmountPaid)
	}

	recv, _, _, err = svc.ReceivePayment(ctx, recv.ID, 1000)
	if err != nil {
		t.Fatalf("receive payment: %v", err)
	}
	if recv.Status != PaymentFullyPaid || recv.AmountPaid != 1000 {
		t.Fatalf("expected overpayment clamped to fully_paid at 1000, got %s %v", recv.Status, recv.AmountPaid)
	}

	pay, _, err := svc.CreatePayable(ctx, PayableBill{BillNo: "P-1", Supplier: "Acme Traders", Amount: 500, DueDate: "2026-09-30"})
	if err != nil {
		t.Fatalf("create payable: %v", err)
	}
	pay, found, _, err = svc.MakePayment(ctx, pay.ID, 500)
	if err != nil || !found {
		t.Fatalf("make payment: found=%v err=%v", found, err)
	}
	if pay.Status != PaymentFullyPaid {
		t.Fatalf("expected fully_paid, got %s", pay.Status)
	}

	if _, found, _, err := svc.MakePayment(ctx, "missing", 10); err != nil || found {
		t.Fatalf("payment on unknown bill must be a silent no-op, found=%v err=%v", found, err)
	}
}

func TestServiceTransferStock(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(NewDefaultRulesEngine())
	loc, mat := seedInventory(t, svc)

	if _, _, err := svc.RecordPurchase(ctx, PurchaseBill{
		BillNo:     "PB-001",
		LocationID: loc.ID,
		Supplier:   "Acme Traders",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 3, Rate: 12}},
	}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	_, found, _, err := svc.TransferStock(ctx, StockTransfer{
		MaterialID:     mat.ID,
		FromLocationID: loc.ID,
		ToLocationID:   "loc-site",
		Quantity:       2,
	})
	if err != nil || !found {
		t.Fatalf("transfer: found=%v err=%v", found, err)
	}

	from, err := svc.StockByLocation(ctx, mat.ID, loc.ID)
	if err != nil {
		t.Fatalf("stock by location: %v", err)
	}
	to, err := svc.StockByLocation(ctx, mat.ID, "loc-site")
	if err != nil {
		t.Fatalf("stock by location: %v", err)
	}
	if from != 1 || to != 2 {
		t.Fatalf("expected 1/2 split after transfer, got %v/%v", from, to)
	}
}

func TestServiceSummary(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(NewDefaultRulesEngine())
	loc, mat := seedInventory(t, svc)

	if _, _, err := svc.RecordPurchase(ctx, PurchaseBill{
		BillNo:     "PB-001",
		LocationID: loc.ID,
		Supplier:   "Acme Traders",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 10, Rate: 12}},
	}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if _, _, err := svc.RecordSale(ctx, SalesBill{
		BillNo:     "SB-001",
		LocationID: loc.ID,
		Customer:   "Builder Ltd",
		Items:      []BillItem{{MaterialID: mat.ID, Quantity: 4, Rate: 20}},
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if _, _, err := svc.CreateLedgerEntry(ctx, LedgerEntry{Type: LedgerExpense, Description: "Transport", Amount: 15}); err != nil {
		t.Fatalf("create ledger entry: %v", err)
	}
	recv, _, err := svc.CreateReceivable(ctx, ReceivableBill{BillNo: "R-1", Customer: "Builder Ltd", Amount: 80})
	if err != nil {
		t.Fatalf("create receivable: %v", err)
	}
	if _, _, _, err := svc.ReceivePayment(ctx, recv.ID, 30); err != nil {
		t.Fatalf("receive payment: %v", err)
	}
	if _, _, err := svc.CreatePayable(ctx, PayableBill{BillNo: "P-1", Supplier: "Acme Traders", Amount: 120, AmountPaid: 20}); err != nil {
		t.Fatalf("create payable: %v", err)
	}

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalIncome != 80 {
		t.Fatalf("expected income 80 (sales ledger), got %v", sum.TotalIncome)
	}
	if sum.TotalExpense != 135 {
		t.Fatalf("expected expense 135 (purchase 120 + expense 15), got %v", sum.TotalExpense)
	}
	if sum.Balance != -55 {
		t.Fatalf("expected balance -55, got %v", sum.Balance)
	}
	if sum.TotalPurchases != 120 || sum.TotalSales != 80 {
		t.Fatalf("expected purchases 120 / sales 80, got %v/%v", sum.TotalPurchases, sum.TotalSales)
	}
	if sum.AmountReceived != 30 || sum.OutstandingReceivable != 50 {
		t.Fatalf("expected received 30 / outstanding 50, got %v/%v", sum.AmountReceived, sum.OutstandingReceivable)
	}
	if sum.AmountPaid != 20 || sum.OutstandingPayable != 100 {
		t.Fatalf("expected paid 20 / outstanding 100, got %v/%v", sum.AmountPaid, sum.OutstandingPayable)
	}
	// 6 bags on hand at the purchase rate of 12.
	if sum.StockOnHand != 6 || sum.StockValue != 72 {
		t.Fatalf("expected 6 on hand worth 72, got %v/%v", sum.StockOnHand, sum.StockValue)
	}
}
