package domain

import "context"

// Transaction exposes the mutation surface available inside
// PersistentStore.RunInTransaction. Mutators that target a missing entity
// return their zero value and false instead of an error; the transaction
// still commits.
type Transaction interface {
	TransactionView

	AddLocation(loc Location) (Location, error)
	UpdateLocation(id string, mutate func(*Location)) (Location, bool)
	// DeleteLocation removes the location and cascades: stock held at the
	// location folds back into each material's aggregate quantity, and the
	// location's reference is stripped from every stock distribution.
	DeleteLocation(id string) bool

	AddMaterial(mat Material) (Material, error)
	UpdateMaterial(id string, mutate func(*Material)) (Material, bool)
	DeleteMaterial(id string) bool

	// SetStockLocation forces a material's quantity at one location to an
	// absolute value, creating the stock record or location entry as needed,
	// and re-derives the material's aggregate quantity and total value.
	SetStockLocation(materialID, locationID string, quantity float64)
	// RecordStockTransfer moves quantity between two locations of one
	// material. The source entry is decremented with a floor of zero; the
	// destination gains the full requested quantity, created when absent.
	// A transfer log record is always appended. Returns false when the
	// material has no stock record.
	RecordStockTransfer(transfer StockTransfer) (StockTransfer, bool)

	// AddPurchaseBill records the bill and applies its stock effects:
	// material quantities increase, rates update to the purchase rate, and
	// stock lands at the bill's location when one is set.
	AddPurchaseBill(bill PurchaseBill) (PurchaseBill, error)
	// DeletePurchaseBill removes the bill and compensates its stock effects.
	DeletePurchaseBill(id string) bool

	AddSalesBill(bill SalesBill) (SalesBill, error)
	DeleteSalesBill(id string) bool

	AddLedgerEntry(entry LedgerEntry) (LedgerEntry, error)
	DeleteLedgerEntry(id string) bool

	AddReceivableBill(bill ReceivableBill) (ReceivableBill, error)
	UpdateReceivableBill(id string, mutate func(*ReceivableBill)) (ReceivableBill, bool)
	DeleteReceivableBill(id string) bool
	// RecordReceivablePayment applies a payment amount to the bill, clamping
	// the resulting paid amount to [0, bill amount] and re-deriving status.
	RecordReceivablePayment(id string, amount float64) (ReceivableBill, bool)

	AddPayableBill(bill PayableBill) (PayableBill, error)
	UpdatePayableBill(id string, mutate func(*PayableBill)) (PayableBill, bool)
	DeletePayableBill(id string) bool
	RecordPayablePayment(id string, amount float64) (PayableBill, bool)
}

// TransactionView provides read access to staged state within a transaction
// and to committed state within View.
type TransactionView interface {
	RuleView

	PurchaseBills() []PurchaseBill
	SalesBills() []SalesBill
	StockTransfers() []StockTransfer
	LedgerEntries() []LedgerEntry
	ReceivableBills() []ReceivableBill
	PayableBills() []PayableBill

	// StockByLocation reports the quantity of a material held at a location.
	// Missing stock records or location entries report zero.
	StockByLocation(materialID, locationID string) float64

	FindLocation(id string) (Location, bool)
	FindPurchaseBill(id string) (PurchaseBill, bool)
	FindSalesBill(id string) (SalesBill, bool)
	FindLedgerEntry(id string) (LedgerEntry, bool)
	FindReceivableBill(id string) (ReceivableBill, bool)
	FindPayableBill(id string) (PayableBill, bool)
}

// PersistentStore abstracts transactional storage for the domain state.
type PersistentStore interface {
	// RunInTransaction executes fn against a cloned state. On success the
	// clone replaces the committed state atomically; on error or blocking
	// rule violation the clone is discarded.
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error)
	// View runs fn against a read-only snapshot of committed state.
	View(ctx context.Context, fn func(view TransactionView) error) error
	// ExportState returns a deep copy of the committed state.
	ExportState(ctx context.Context) (Snapshot, error)
	// ImportState replaces the committed state wholesale.
	ImportState(ctx context.Context, snapshot Snapshot) error
}
