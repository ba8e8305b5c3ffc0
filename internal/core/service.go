package core

import (
	"context"
	"fmt"
	"time"

	"inventorycore/internal/infra/persistence/memory"
)

// Service exposes higher-level transactional operations over a persistent
// store. Every operation runs in a single transaction and is reported to the
// configured metrics recorder and tracer.
type Service struct {
	store   PersistentStore
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithMetricsRecorder installs a metrics recorder observing every operation.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer installs a tracer spanning every operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		metrics: NoopMetricsRecorder{},
		tracer:  NoopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// run executes fn in one transaction and reports the outcome.
func (s *Service) run(ctx context.Context, operation string, fn func(tx Transaction) error) (Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	res, err := s.store.RunInTransaction(ctx, fn)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	return res, err
}

// CreateLocation persists a new warehouse location.
func (s *Service) CreateLocation(ctx context.Context, loc Location) (Location, Result, error) {
	var created Location
	res, err := s.run(ctx, "create_location", func(tx Transaction) error {
		var err error
		created, err = tx.AddLocation(loc)
		return err
	})
	return created, res, err
}

// UpdateLocation mutates a location using the provided mutator. The bool
// reports whether the location existed.
func (s *Service) UpdateLocation(ctx context.Context, id string, mutate func(*Location)) (Location, bool, Result, error) {
	var (
		updated Location
		found   bool
	)
	res, err := s.run(ctx, "update_location", func(tx Transaction) error {
		updated, found = tx.UpdateLocation(id, mutate)
		return nil
	})
	return updated, found, res, err
}

// DeleteLocation removes a location. Stock held at the location folds back
// into each material's untracked quantity.
func (s *Service) DeleteLocation(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_location", func(tx Transaction) error {
		deleted = tx.DeleteLocation(id)
		return nil
	})
	return deleted, res, err
}

// CreateMaterial persists a new material. The stored total is recomputed
// from quantity and rate.
func (s *Service) CreateMaterial(ctx context.Context, mat Material) (Material, Result, error) {
	var created Material
	res, err := s.run(ctx, "create_material", func(tx Transaction) error {
		var err error
		created, err = tx.AddMaterial(mat)
		return err
	})
	return created, res, err
}

// UpdateMaterial mutates a material using the provided mutator. Fields are
// merged as given; the total is not re-derived.
func (s *Service) UpdateMaterial(ctx context.Context, id string, mutate func(*Material)) (Material, bool, Result, error) {
	var (
		updated Material
		found   bool
	)
	res, err := s.run(ctx, "update_material", func(tx Transaction) error {
		updated, found = tx.UpdateMaterial(id, mutate)
		return nil
	})
	return updated, found, res, err
}

// DeleteMaterial removes a material and its stock distribution.
func (s *Service) DeleteMaterial(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_material", func(tx Transaction) error {
		deleted = tx.DeleteMaterial(id)
		return nil
	})
	return deleted, res, err
}

// SetStockLocation forces a material's quantity at one location to an
// absolute value and re-derives the aggregates.
func (s *Service) SetStockLocation(ctx context.Context, materialID, locationID string, quantity float64) (Result, error) {
	return s.run(ctx, "set_stock_location", func(tx Transaction) error {
		tx.SetStockLocation(materialID, locationID, quantity)
		return nil
	})
}

// StockByLocation reports the quantity of a material held at a location.
func (s *Service) StockByLocation(ctx context.Context, materialID, locationID string) (float64, error) {
	var qty float64
	err := s.store.View(ctx, func(view TransactionView) error {
		qty = view.StockByLocation(materialID, locationID)
		return nil
	})
	return qty, err
}

// TransferStock moves stock of one material between two locations. The moved
// quantity is clamped to what the source holds; the bool reports whether the
// material had a stock record at all.
func (s *Service) TransferStock(ctx context.Context, transfer StockTransfer) (StockTransfer, bool, Result, error) {
	var (
		recorded StockTransfer
		found    bool
	)
	res, err := s.run(ctx, "transfer_stock", func(tx Transaction) error {
		recorded, found = tx.RecordStockTransfer(transfer)
		return nil
	})
	return recorded, found, res, err
}

// RecordPurchase appends a purchase bill together with its companion ledger
// entry in one transaction. The bill increments material quantities, updates
// rates, and lands stock at the bill's location when one is set.
func (s *Service) RecordPurchase(ctx context.Context, bill PurchaseBill) (PurchaseBill, Result, error) {
	var created PurchaseBill
	res, err := s.run(ctx, "record_purchase", func(tx Transaction) error {
		var err error
		created, err = tx.AddPurchaseBill(bill)
		if err != nil {
			return err
		}
		_, err = tx.AddLedgerEntry(LedgerEntry{
			Date:        created.Date,
			Type:        LedgerPurchase,
			Description: fmt.Sprintf("Purchase Bill %s", created.BillNo),
			Amount:      created.TotalAmount,
			PartyName:   created.Supplier,
			BillNo:      created.BillNo,
			LocationID:  created.LocationID,
		})
		return err
	})
	return created, res, err
}

// DeletePurchaseBill removes a purchase bill and compensates its stock
// effects. The companion ledger entry stays: the ledger is an append-only
// log of financial events, and the deletion itself is not re-journaled.
func (s *Service) DeletePurchaseBill(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_purchase_bill", func(tx Transaction) error {
		deleted = tx.DeletePurchaseBill(id)
		return nil
	})
	return deleted, res, err
}

// RecordSale appends a sales bill together with its companion ledger entry
// in one transaction. The bill draws material quantities down; rates are
// untouched.
func (s *Service) RecordSale(ctx context.Context, bill SalesBill) (SalesBill, Result, error) {
	var created SalesBill
	res, err := s.run(ctx, "record_sale", func(tx Transaction) error {
		var err error
		created, err = tx.AddSalesBill(bill)
		if err != nil {
			return err
		}
		_, err = tx.AddLedgerEntry(LedgerEntry{
			Date:        created.Date,
			Type:        LedgerSales,
			Description: fmt.Sprintf("Sales Bill %s", created.BillNo),
			Amount:      created.TotalAmount,
			PartyName:   created.Customer,
			BillNo:      created.BillNo,
			LocationID:  created.LocationID,
		})
		return err
	})
	return created, res, err
}

// DeleteSalesBill removes a sales bill and restores the quantities it drew
// down. The companion ledger entry stays.
func (s *Service) DeleteSalesBill(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_sales_bill", func(tx Transaction) error {
		deleted = tx.DeleteSalesBill(id)
		return nil
	})
	return deleted, res, err
}

// CreateLedgerEntry appends a manual ledger entry (expense or income lines
// that have no bill behind them).
func (s *Service) CreateLedgerEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, Result, error) {
	var created LedgerEntry
	res, err := s.run(ctx, "create_ledger_entry", func(tx Transaction) error {
		var err error
		created, err = tx.AddLedgerEntry(entry)
		return err
	})
	return created, res, err
}

// DeleteLedgerEntry removes a ledger entry by id.
func (s *Service) DeleteLedgerEntry(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_ledger_entry", func(tx Transaction) error {
		deleted = tx.DeleteLedgerEntry(id)
		return nil
	})
	return deleted, res, err
}

// CreateReceivable persists a new receivable bill with a derived payment
// status.
func (s *Service) CreateReceivable(ctx context.Context, bill ReceivableBill) (ReceivableBill, Result, error) {
	var created ReceivableBill
	res, err := s.run(ctx, "create_receivable", func(tx Transaction) error {
		var err error
		created, err = tx.AddReceivableBill(bill)
		return err
	})
	return created, res, err
}

// UpdateReceivable mutates a receivable bill. Paid amount and status are
// re-clamped and re-derived after the mutator runs.
func (s *Service) UpdateReceivable(ctx context.Context, id string, mutate func(*ReceivableBill)) (ReceivableBill, bool, Result, error) {
	var (
		updated ReceivableBill
		found   bool
	)
	res, err := s.run(ctx, "update_receivable", func(tx Transaction) error {
		updated, found = tx.UpdateReceivableBill(id, mutate)
		return nil
	})
	return updated, found, res, err
}

// DeleteReceivable removes a receivable bill by id.
func (s *Service) DeleteReceivable(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_receivable", func(tx Transaction) error {
		deleted = tx.DeleteReceivableBill(id)
		return nil
	})
	return deleted, res, err
}

// ReceivePayment applies a payment to a receivable bill, clamping the paid
// amount to the bill total and re-deriving the status.
func (s *Service) ReceivePayment(ctx context.Context, id string, amount float64) (ReceivableBill, bool, Result, error) {
	var (
		updated ReceivableBill
		found   bool
	)
	res, err := s.run(ctx, "receive_payment", func(tx Transaction) error {
		updated, found = tx.RecordReceivablePayment(id, amount)
		return nil
	})
	return updated, found, res, err
}

// CreatePayable persists a new payable bill with a derived payment status.
func (s *Service) CreatePayable(ctx context.Context, bill PayableBill) (PayableBill, Result, error) {
	var created PayableBill
	res, err := s.run(ctx, "create_payable", func(tx Transaction) error {
		var err error
		created, err = tx.AddPayableBill(bill)
		return err
	})
	return created, res, err
}

// UpdatePayable mutates a payable bill.
func (s *Service) UpdatePayable(ctx context.Context, id string, mutate func(*PayableBill)) (PayableBill, bool, Result, error) {
	var (
		updated PayableBill
		found   bool
	)
	res, err := s.run(ctx, "update_payable", func(tx Transaction) error {
		updated, found = tx.UpdatePayableBill(id, mutate)
		return nil
	})
	return updated, found, res, err
}

// DeletePayable removes a payable bill by id.
func (s *Service) DeletePayable(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	res, err := s.run(ctx, "delete_payable", func(tx Transaction) error {
		deleted = tx.DeletePayableBill(id)
		return nil
	})
	return deleted, res, err
}

// MakePayment applies a payment to a payable bill, clamping the paid amount
// to the bill total and re-deriving the status.
func (s *Service) MakePayment(ctx context.Context, id string, amount float64) (PayableBill, bool, Result, error) {
	var (
		updated PayableBill
		found   bool
	)
	res, err := s.run(ctx, "make_payment", func(tx Transaction) error {
		updated, found = tx.RecordPayablePayment(id, amount)
		return nil
	})
	return updated, found, res, err
}

// Summary aggregates the dashboard totals across all collections.
type Summary struct {
	TotalIncome           float64 `json:"totalIncome"`
	TotalExpense          float64 `json:"totalExpense"`
	Balance               float64 `json:"balance"`
	TotalPurchases        float64 `json:"totalPurchases"`
	TotalSales            float64 `json:"totalSales"`
	AmountReceived        float64 `json:"amountReceived"`
	AmountPaid            float64 `json:"amountPaid"`
	OutstandingReceivable float64 `json:"outstandingReceivable"`
	OutstandingPayable    float64 `json:"outstandingPayable"`
	StockValue            float64 `json:"stockValue"`
	StockOnHand           float64 `json:"stockOnHand"`
}

// Summary computes dashboard totals from a single read snapshot. Income
// counts sales and income ledger entries, expense counts purchase and
// expense entries; balance is their difference.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, entry := range view.LedgerEntries() {
			switch entry.Type {
			case LedgerSales, LedgerIncome:
				sum.TotalIncome += entry.Amount
			case LedgerPurchase, LedgerExpense:
				sum.TotalExpense += entry.Amount
			}
		}
		for _, bill := range view.PurchaseBills() {
			sum.TotalPurchases += bill.TotalAmount
		}
		for _, bill := range view.SalesBills() {
			sum.TotalSales += bill.TotalAmount
		}
		for _, bill := range view.ReceivableBills() {
			sum.AmountReceived += bill.AmountPaid
			sum.OutstandingReceivable += bill.Amount - bill.AmountPaid
		}
		for _, bill := range view.PayableBills() {
			sum.AmountPaid += bill.AmountPaid
			sum.OutstandingPayable += bill.Amount - bill.AmountPaid
		}
		for _, mat := range view.Materials() {
			sum.StockValue += mat.Total
			sum.StockOnHand += mat.Quantity
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	sum.Balance = sum.TotalIncome - sum.TotalExpense
	return sum, nil
}
