// Package memory provides the in-memory transactional store that implements
// the inventory mutation engine. It is the reference implementation used by
// tests and ephemeral environments, and the substrate the durable stores
// snapshot from.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"inventorycore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var (
	_ domain.PersistentStore = (*Store)(nil)
	_ domain.Transaction     = (*transaction)(nil)
	_ domain.TransactionView = (*transactionView)(nil)
)

type (
	// Location aliases domain.Location for in-memory persistence operations.
	Location = domain.Location
	// Material aliases domain.Material.
	Material = domain.Material
	// MaterialStock aliases domain.MaterialStock.
	MaterialStock = domain.MaterialStock
	// StockLocation aliases domain.StockLocation.
	StockLocation = domain.StockLocation
	// PurchaseBill aliases domain.PurchaseBill.
	PurchaseBill = domain.PurchaseBill
	// SalesBill aliases domain.SalesBill.
	SalesBill = domain.SalesBill
	// StockTransfer aliases domain.StockTransfer.
	StockTransfer = domain.StockTransfer
	// LedgerEntry aliases domain.LedgerEntry.
	LedgerEntry = domain.LedgerEntry
	// ReceivableBill aliases domain.ReceivableBill.
	ReceivableBill = domain.ReceivableBill
	// PayableBill aliases domain.PayableBill.
	PayableBill = domain.PayableBill
	// Snapshot aliases domain.Snapshot used for export and durable persistence.
	Snapshot = domain.Snapshot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState holds every collection as an ordered slice. Order is
// load-bearing: exports must reproduce the sequence entries were recorded
// in, and lookups resolve duplicate identifiers by first match.
type memoryState struct {
	locations       []Location
	materials       []Material
	materialStocks  []MaterialStock
	purchaseBills   []PurchaseBill
	salesBills      []SalesBill
	stockTransfers  []StockTransfer
	ledgerEntries   []LedgerEntry
	receivableBills []ReceivableBill
	payableBills    []PayableBill
}

func cloneLocation(l Location) Location { return l }
func cloneMaterial(m Material) Material { return m }

func cloneMaterialStock(ms MaterialStock) MaterialStock {
	cp := ms
	cp.Locations = append([]StockLocation(nil), ms.Locations...)
	return cp
}

func clonePurchaseBill(b PurchaseBill) PurchaseBill {
	cp := b
	cp.Items = append([]domain.BillItem(nil), b.Items...)
	return cp
}

func cloneSalesBill(b SalesBill) SalesBill {
	cp := b
	cp.Items = append([]domain.BillItem(nil), b.Items...)
	return cp
}

func cloneStockTransfer(t StockTransfer) StockTransfer { return t }
func cloneLedgerEntry(e LedgerEntry) LedgerEntry       { return e }
func cloneReceivableBill(b ReceivableBill) ReceivableBill {
	return b
}
func clonePayableBill(b PayableBill) PayableBill { return b }

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		locations:       make([]Location, 0, len(s.locations)),
		materials:       make([]Material, 0, len(s.materials)),
		materialStocks:  make([]MaterialStock, 0, len(s.materialStocks)),
		purchaseBills:   make([]PurchaseBill, 0, len(s.purchaseBills)),
		salesBills:      make([]SalesBill, 0, len(s.salesBills)),
		stockTransfers:  make([]StockTransfer, 0, len(s.stockTransfers)),
		ledgerEntries:   make([]LedgerEntry, 0, len(s.ledgerEntries)),
		receivableBills: make([]ReceivableBill, 0, len(s.receivableBills)),
		payableBills:    make([]PayableBill, 0, len(s.payableBills)),
	}
	for _, v := range s.locations {
		cloned.locations = append(cloned.locations, cloneLocation(v))
	}
	for _, v := range s.materials {
		cloned.materials = append(cloned.materials, cloneMaterial(v))
	}
	for _, v := range s.materialStocks {
		cloned.materialStocks = append(cloned.materialStocks, cloneMaterialStock(v))
	}
	for _, v := range s.purchaseBills {
		cloned.purchaseBills = append(cloned.purchaseBills, clonePurchaseBill(v))
	}
	for _, v := range s.salesBills {
		cloned.salesBills = append(cloned.salesBills, cloneSalesBill(v))
	}
	for _, v := range s.stockTransfers {
		cloned.stockTransfers = append(cloned.stockTransfers, cloneStockTransfer(v))
	}
	for _, v := range s.ledgerEntries {
		cloned.ledgerEntries = append(cloned.ledgerEntries, cloneLedgerEntry(v))
	}
	for _, v := range s.receivableBills {
		cloned.receivableBills = append(cloned.receivableBills, cloneReceivableBill(v))
	}
	for _, v := range s.payableBills {
		cloned.payableBills = append(cloned.payableBills, clonePayableBill(v))
	}
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cloned := state.clone()
	return Snapshot{
		Locations:       cloned.locations,
		Materials:       cloned.materials,
		MaterialStocks:  cloned.materialStocks,
		PurchaseBills:   cloned.purchaseBills,
		SalesBills:      cloned.salesBills,
		StockTransfers:  cloned.stockTransfers,
		LedgerEntries:   cloned.ledgerEntries,
		ReceivableBills: cloned.receivableBills,
		PayableBills:    cloned.payableBills,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := memoryState{
		locations:       append([]Location(nil), s.Locations...),
		materials:       append([]Material(nil), s.Materials...),
		purchaseBills:   make([]PurchaseBill, 0, len(s.PurchaseBills)),
		salesBills:      make([]SalesBill, 0, len(s.SalesBills)),
		stockTransfers:  append([]StockTransfer(nil), s.StockTransfers...),
		ledgerEntries:   append([]LedgerEntry(nil), s.LedgerEntries...),
		receivableBills: append([]ReceivableBill(nil), s.ReceivableBills...),
		payableBills:    append([]PayableBill(nil), s.PayableBills...),
	}
	state.materialStocks = make([]MaterialStock, 0, len(s.MaterialStocks))
	for _, ms := range s.MaterialStocks {
		state.materialStocks = append(state.materialStocks, cloneMaterialStock(ms))
	}
	for _, b := range s.PurchaseBills {
		state.purchaseBills = append(state.purchaseBills, clonePurchaseBill(b))
	}
	for _, b := range s.SalesBills {
		state.salesBills = append(state.salesBills, cloneSalesBill(b))
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from durable storage or user
// supplied import files: nil collections become empty slices so exports
// always emit arrays, and denormalized payment statuses are re-derived from
// the amounts they summarize.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Locations == nil {
		snapshot.Locations = []Location{}
	}
	if snapshot.Materials == nil {
		snapshot.Materials = []Material{}
	}
	if snapshot.MaterialStocks == nil {
		snapshot.MaterialStocks = []MaterialStock{}
	}
	if snapshot.PurchaseBills == nil {
		snapshot.PurchaseBills = []PurchaseBill{}
	}
	if snapshot.SalesBills == nil {
		snapshot.SalesBills = []SalesBill{}
	}
	if snapshot.StockTransfers == nil {
		snapshot.StockTransfers = []StockTransfer{}
	}
	if snapshot.LedgerEntries == nil {
		snapshot.LedgerEntries = []LedgerEntry{}
	}
	if snapshot.ReceivableBills == nil {
		snapshot.ReceivableBills = []ReceivableBill{}
	}
	if snapshot.PayableBills == nil {
		snapshot.PayableBills = []PayableBill{}
	}

	for i, ms := range snapshot.MaterialStocks {
		if ms.Locations == nil {
			ms.Locations = []StockLocation{}
		}
		snapshot.MaterialStocks[i] = ms
	}
	for i, bill := range snapshot.ReceivableBills {
		bill.AmountPaid = clampPaid(bill.AmountPaid, bill.Amount)
		bill.Status = domain.DerivePaymentStatus(bill.AmountPaid, bill.Amount)
		snapshot.ReceivableBills[i] = bill
	}
	for i, bill := range snapshot.PayableBills {
		bill.AmountPaid = clampPaid(bill.AmountPaid, bill.Amount)
		bill.Status = domain.DerivePaymentStatus(bill.AmountPaid, bill.Amount)
		snapshot.PayableBills[i] = bill
	}
	return snapshot
}

// Store provides an in-memory transactional store for the inventory domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state), nil
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(_ context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
	return nil
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(view TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

// First-match lookups. Duplicate identifiers can enter the store through
// imports; earlier entries shadow later ones.

func (s *memoryState) locationIndex(id string) int {
	for i, l := range s.locations {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryState) materialIndex(id string) int {
	for i, m := range s.materials {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryState) materialStockIndex(materialID string) int {
	for i, ms := range s.materialStocks {
		if ms.MaterialID == materialID {
			return i
		}
	}
	return -1
}

func (s *memoryState) purchaseBillIndex(id string) int {
	for i, b := range s.purchaseBills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryState) salesBillIndex(id string) int {
	for i, b := range s.salesBills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryState) ledgerEntryIndex(id string) int {
	for i, e := range s.ledgerEntries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryState) receivableBillIndex(id string) int {
	for i, b := range s.receivableBills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryState) payableBillIndex(id string) int {
	for i, b := range s.payableBills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// transactionView exposes a read-only snapshot of state to rules and readers.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) *transactionView {
	return &transactionView{state: state}
}

// Locations returns all locations in recorded order.
func (v *transactionView) Locations() []Location {
	out := make([]Location, 0, len(v.state.locations))
	for _, l := range v.state.locations {
		out = append(out, cloneLocation(l))
	}
	return out
}

// Materials returns all materials in recorded order.
func (v *transactionView) Materials() []Material {
	out := make([]Material, 0, len(v.state.materials))
	for _, m := range v.state.materials {
		out = append(out, cloneMaterial(m))
	}
	return out
}

// MaterialStocks returns all stock distributions in recorded order.
func (v *transactionView) MaterialStocks() []MaterialStock {
	out := make([]MaterialStock, 0, len(v.state.materialStocks))
	for _, ms := range v.state.materialStocks {
		out = append(out, cloneMaterialStock(ms))
	}
	return out
}

// PurchaseBills returns all purchase bills in recorded order.
func (v *transactionView) PurchaseBills() []PurchaseBill {
	out := make([]PurchaseBill, 0, len(v.state.purchaseBills))
	for _, b := range v.state.purchaseBills {
		out = append(out, clonePurchaseBill(b))
	}
	return out
}

// SalesBills returns all sales bills in recorded order.
func (v *transactionView) SalesBills() []SalesBill {
	out := make([]SalesBill, 0, len(v.state.salesBills))
	for _, b := range v.state.salesBills {
		out = append(out, cloneSalesBill(b))
	}
	return out
}

// StockTransfers returns the transfer log in recorded order.
func (v *transactionView) StockTransfers() []StockTransfer {
	out := make([]StockTransfer, 0, len(v.state.stockTransfers))
	for _, t := range v.state.stockTransfers {
		out = append(out, cloneStockTransfer(t))
	}
	return out
}

// LedgerEntries returns the ledger in recorded order.
func (v *transactionView) LedgerEntries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(v.state.ledgerEntries))
	for _, e := range v.state.ledgerEntries {
		out = append(out, cloneLedgerEntry(e))
	}
	return out
}

// ReceivableBills returns all receivable bills in recorded order.
func (v *transactionView) ReceivableBills() []ReceivableBill {
	out := make([]ReceivableBill, 0, len(v.state.receivableBills))
	for _, b := range v.state.receivableBills {
		out = append(out, cloneReceivableBill(b))
	}
	return out
}

// PayableBills returns all payable bills in recorded order.
func (v *transactionView) PayableBills() []PayableBill {
	out := make([]PayableBill, 0, len(v.state.payableBills))
	for _, b := range v.state.payableBills {
		out = append(out, clonePayableBill(b))
	}
	return out
}

// StockByLocation reports the quantity of a material held at a location.
// Missing stock records or location entries report zero.
func (v *transactionView) StockByLocation(materialID, locationID string) float64 {
	if i := v.state.materialStockIndex(materialID); i >= 0 {
		return v.state.materialStocks[i].QuantityAt(locationID)
	}
	return 0
}

// FindLocation retrieves a location by ID.
func (v *transactionView) FindLocation(id string) (Location, bool) {
	if i := v.state.locationIndex(id); i >= 0 {
		return cloneLocation(v.state.locations[i]), true
	}
	return Location{}, false
}

// FindMaterial retrieves a material by ID.
func (v *transactionView) FindMaterial(id string) (Material, bool) {
	if i := v.state.materialIndex(id); i >= 0 {
		return cloneMaterial(v.state.materials[i]), true
	}
	return Material{}, false
}

// FindMaterialStock retrieves the stock distribution of a material.
func (v *transactionView) FindMaterialStock(materialID string) (MaterialStock, bool) {
	if i := v.state.materialStockIndex(materialID); i >= 0 {
		return cloneMaterialStock(v.state.materialStocks[i]), true
	}
	return MaterialStock{}, false
}

// FindPurchaseBill retrieves a purchase bill by ID.
func (v *transactionView) FindPurchaseBill(id string) (PurchaseBill, bool) {
	if i := v.state.purchaseBillIndex(id); i >= 0 {
		return clonePurchaseBill(v.state.purchaseBills[i]), true
	}
	return PurchaseBill{}, false
}

// FindSalesBill retrieves a sales bill by ID.
func (v *transactionView) FindSalesBill(id string) (SalesBill, bool) {
	if i := v.state.salesBillIndex(id); i >= 0 {
		return cloneSalesBill(v.state.salesBills[i]), true
	}
	return SalesBill{}, false
}

// FindLedgerEntry retrieves a ledger entry by ID.
func (v *transactionView) FindLedgerEntry(id string) (LedgerEntry, bool) {
	if i := v.state.ledgerEntryIndex(id); i >= 0 {
		return cloneLedgerEntry(v.state.ledgerEntries[i]), true
	}
	return LedgerEntry{}, false
}

// FindReceivableBill retrieves a receivable bill by ID.
func (v *transactionView) FindReceivableBill(id string) (ReceivableBill, bool) {
	if i := v.state.receivableBillIndex(id); i >= 0 {
		return cloneReceivableBill(v.state.receivableBills[i]), true
	}
	return ReceivableBill{}, false
}

// FindPayableBill retrieves a payable bill by ID.
func (v *transactionView) FindPayableBill(id string) (PayableBill, bool) {
	if i := v.state.payableBillIndex(id); i >= 0 {
		return clonePayableBill(v.state.payableBills[i]), true
	}
	return PayableBill{}, false
}

// transaction applies mutations to a cloned state. Commit swaps the clone in
// wholesale once fn and the rules engine both succeed.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) view() *transactionView { return newTransactionView(&tx.state) }

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) today() string { return tx.now.Format("2006-01-02") }

func (tx *transaction) Locations() []Location               { return tx.view().Locations() }
func (tx *transaction) Materials() []Material               { return tx.view().Materials() }
func (tx *transaction) MaterialStocks() []MaterialStock     { return tx.view().MaterialStocks() }
func (tx *transaction) PurchaseBills() []PurchaseBill       { return tx.view().PurchaseBills() }
func (tx *transaction) SalesBills() []SalesBill             { return tx.view().SalesBills() }
func (tx *transaction) StockTransfers() []StockTransfer     { return tx.view().StockTransfers() }
func (tx *transaction) LedgerEntries() []LedgerEntry        { return tx.view().LedgerEntries() }
func (tx *transaction) ReceivableBills() []ReceivableBill   { return tx.view().ReceivableBills() }
func (tx *transaction) PayableBills() []PayableBill         { return tx.view().PayableBills() }
func (tx *transaction) FindLocation(id string) (Location, bool) {
	return tx.view().FindLocation(id)
}
func (tx *transaction) FindMaterial(id string) (Material, bool) {
	return tx.view().FindMaterial(id)
}
func (tx *transaction) FindMaterialStock(materialID string) (MaterialStock, bool) {
	return tx.view().FindMaterialStock(materialID)
}
func (tx *transaction) FindPurchaseBill(id string) (PurchaseBill, bool) {
	return tx.view().FindPurchaseBill(id)
}
func (tx *transaction) FindSalesBill(id string) (SalesBill, bool) {
	return tx.view().FindSalesBill(id)
}
func (tx *transaction) FindLedgerEntry(id string) (LedgerEntry, bool) {
	return tx.view().FindLedgerEntry(id)
}
func (tx *transaction) FindReceivableBill(id string) (ReceivableBill, bool) {
	return tx.view().FindReceivableBill(id)
}
func (tx *transaction) FindPayableBill(id string) (PayableBill, bool) {
	return tx.view().FindPayableBill(id)
}

func (tx *transaction) StockByLocation(materialID, locationID string) float64 {
	return tx.view().StockByLocation(materialID, locationID)
}

// AddLocation stores a new location.
func (tx *transaction) AddLocation(loc Location) (Location, error) {
	if loc.ID == "" {
		loc.ID = tx.store.newID()
	}
	if loc.CreatedAt == "" {
		loc.CreatedAt = tx.today()
	}
	tx.state.locations = append(tx.state.locations, cloneLocation(loc))
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionCreate, After: cloneLocation(loc)})
	return cloneLocation(loc), nil
}

// UpdateLocation mutates the named location. Missing IDs are a silent no-op.
func (tx *transaction) UpdateLocation(id string, mutate func(*Location)) (Location, bool) {
	i := tx.state.locationIndex(id)
	if i < 0 {
		return Location{}, false
	}
	current := cloneLocation(tx.state.locations[i])
	before := cloneLocation(current)
	if mutate != nil {
		mutate(&current)
	}
	current.ID = id
	tx.state.locations[i] = cloneLocation(current)
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionUpdate, Before: before, After: cloneLocation(current)})
	return cloneLocation(current), true
}

// DeleteLocation removes a location and strips it from every stock
// distribution. The quantity held there stays inside each material's
// TotalQuantity as untracked stock rather than vanishing.
func (tx *transaction) DeleteLocation(id string) bool {
	i := tx.state.locationIndex(id)
	if i < 0 {
		return false
	}
	removed := cloneLocation(tx.state.locations[i])
	tx.state.locations = append(tx.state.locations[:i], tx.state.locations[i+1:]...)

	for si, ms := range tx.state.materialStocks {
		filtered := make([]StockLocation, 0, len(ms.Locations))
		changed := false
		for _, sl := range ms.Locations {
			if sl.LocationID == id {
				changed = true
				continue
			}
			filtered = append(filtered, sl)
		}
		if !changed {
			continue
		}
		before := cloneMaterialStock(ms)
		ms.Locations = filtered
		tx.state.materialStocks[si] = cloneMaterialStock(ms)
		tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionUpdate, Before: before, After: cloneMaterialStock(ms)})
	}

	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionDelete, Before: removed})
	return true
}

// AddMaterial stores a new material with its derived total value.
func (tx *transaction) AddMaterial(mat Material) (Material, error) {
	if mat.ID == "" {
		mat.ID = tx.store.newID()
	}
	mat.Total = mat.Quantity * mat.Rate
	tx.state.materials = append(tx.state.materials, cloneMaterial(mat))
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionCreate, After: cloneMaterial(mat)})
	return cloneMaterial(mat), nil
}

// UpdateMaterial merges the mutated fields verbatim. The total is not
// re-derived; drift between total and quantity*rate is surfaced by the
// material_total rule instead of being silently corrected.
func (tx *transaction) UpdateMaterial(id string, mutate func(*Material)) (Material, bool) {
	i := tx.state.materialIndex(id)
	if i < 0 {
		return Material{}, false
	}
	current := cloneMaterial(tx.state.materials[i])
	before := cloneMaterial(current)
	if mutate != nil {
		mutate(&current)
	}
	current.ID = id
	tx.state.materials[i] = cloneMaterial(current)
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionUpdate, Before: before, After: cloneMaterial(current)})
	return cloneMaterial(current), true
}

// DeleteMaterial removes a material and its stock distribution record.
func (tx *transaction) DeleteMaterial(id string) bool {
	i := tx.state.materialIndex(id)
	if i < 0 {
		return false
	}
	removed := cloneMaterial(tx.state.materials[i])
	tx.state.materials = append(tx.state.materials[:i], tx.state.materials[i+1:]...)

	if si := tx.state.materialStockIndex(id); si >= 0 {
		removedStock := cloneMaterialStock(tx.state.materialStocks[si])
		tx.state.materialStocks = append(tx.state.materialStocks[:si], tx.state.materialStocks[si+1:]...)
		tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionDelete, Before: removedStock})
	}

	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionDelete, Before: removed})
	return true
}

// upsertStockEntry adjusts (or absolutely sets) one location entry on a stock
// record and returns the updated record.
func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func upsertStockEntry(ms *MaterialStock, locationID string, delta float64) {
	for i, sl := range ms.Locations {
		if sl.LocationID == locationID {
			ms.Locations[i].Quantity += delta
			return
		}
	}
	ms.Locations = append(ms.Locations, StockLocation{LocationID: locationID, Quantity: delta})
}

// applyStockDelta applies a signed quantity change for a material, routed to
// a location when the bill names one. Records with location entries always
// re-derive TotalQuantity from the location sum; only entry-less records
// treat TotalQuantity as an additive counter. Decrements clamp at zero: a
// draw larger than the held quantity empties the entry instead of going
// negative, and a draw against an absent entry pins a zero entry in place.
// A negative delta for a material with no stock record is a no-op rather
// than a record creation.
func (tx *transaction) applyStockDelta(materialID, locationID string, delta float64) {
	i := tx.state.materialStockIndex(materialID)
	if i < 0 {
		if delta < 0 {
			return
		}
		ms := MaterialStock{
			ID:         tx.store.newID(),
			MaterialID: materialID,
			Locations:  []StockLocation{},
		}
		if locationID != "" {
			ms.Locations = append(ms.Locations, StockLocation{LocationID: locationID, Quantity: delta})
			ms.TotalQuantity = ms.LocationSum()
		} else {
			ms.TotalQuantity = delta
		}
		tx.state.materialStocks = append(tx.state.materialStocks, cloneMaterialStock(ms))
		tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionCreate, After: cloneMaterialStock(ms)})
		return
	}

	ms := cloneMaterialStock(tx.state.materialStocks[i])
	before := cloneMaterialStock(ms)
	if locationID != "" {
		found := false
		for li, sl := range ms.Locations {
			if sl.LocationID == locationID {
				ms.Locations[li].Quantity = floorZero(sl.Quantity + delta)
				found = true
				break
			}
		}
		if !found {
			ms.Locations = append(ms.Locations, StockLocation{LocationID: locationID, Quantity: floorZero(delta)})
		}
	}
	if len(ms.Locations) == 0 {
		ms.TotalQuantity = floorZero(ms.TotalQuantity + delta)
	} else {
		ms.TotalQuantity = ms.LocationSum()
	}
	tx.state.materialStocks[i] = cloneMaterialStock(ms)
	tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionUpdate, Before: before, After: cloneMaterialStock(ms)})
}

func (tx *transaction) adjustMaterial(materialID string, quantityDelta float64, rate float64, applyRate bool) {
	i := tx.state.materialIndex(materialID)
	if i < 0 {
		return
	}
	current := cloneMaterial(tx.state.materials[i])
	before := cloneMaterial(current)
	current.Quantity = floorZero(current.Quantity + quantityDelta)
	if applyRate {
		current.Rate = rate
	}
	current.Total = current.Quantity * current.Rate
	tx.state.materials[i] = cloneMaterial(current)
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionUpdate, Before: before, After: cloneMaterial(current)})
}

// AddPurchaseBill records a purchase and applies its inventory effects:
// each line increases the material's quantity, updates its rate to the
// purchase rate when the line carries a non-zero one, and routes stock to
// the bill's location when one is set.
func (tx *transaction) AddPurchaseBill(bill PurchaseBill) (PurchaseBill, error) {
	if bill.ID == "" {
		bill.ID = tx.store.newID()
	}
	if bill.Date == "" {
		bill.Date = tx.today()
	}
	var total float64
	for i := range bill.Items {
		bill.Items[i].Amount = bill.Items[i].Quantity * bill.Items[i].Rate
		total += bill.Items[i].Amount
	}
	bill.TotalAmount = total

	for _, item := range bill.Items {
		tx.adjustMaterial(item.MaterialID, item.Quantity, item.Rate, item.Rate != 0)
		tx.applyStockDelta(item.MaterialID, bill.LocationID, item.Quantity)
	}

	tx.state.purchaseBills = append(tx.state.purchaseBills, clonePurchaseBill(bill))
	tx.recordChange(Change{Entity: domain.EntityPurchaseBill, Action: domain.ActionCreate, After: clonePurchaseBill(bill)})
	return clonePurchaseBill(bill), nil
}

// DeletePurchaseBill removes a purchase bill and reverses its inventory
// effects. Material rates are left at their last purchase value. Bills
// recorded without a location never compensate stock records: the quantity
// they contributed stays in TotalQuantity. Missing IDs are a silent no-op.
func (tx *transaction) DeletePurchaseBill(id string) bool {
	i := tx.state.purchaseBillIndex(id)
	if i < 0 {
		return false
	}
	bill := clonePurchaseBill(tx.state.purchaseBills[i])
	tx.state.purchaseBills = append(tx.state.purchaseBills[:i], tx.state.purchaseBills[i+1:]...)

	for _, item := range bill.Items {
		tx.adjustMaterial(item.MaterialID, -item.Quantity, 0, false)
		if bill.LocationID != "" {
			tx.applyStockDelta(item.MaterialID, bill.LocationID, -item.Quantity)
		}
	}

	tx.recordChange(Change{Entity: domain.EntityPurchaseBill, Action: domain.ActionDelete, Before: bill})
	return true
}

// AddSalesBill records a sale and applies its inventory effects: each line
// decreases the material's quantity without touching its rate, and draws
// stock from the bill's location when one is set. Every decrement clamps at
// zero; overselling empties the aggregates rather than going negative.
func (tx *transaction) AddSalesBill(bill SalesBill) (SalesBill, error) {
	if bill.ID == "" {
		bill.ID = tx.store.newID()
	}
	if bill.Date == "" {
		bill.Date = tx.today()
	}
	var total float64
	for i := range bill.Items {
		bill.Items[i].Amount = bill.Items[i].Quantity * bill.Items[i].Rate
		total += bill.Items[i].Amount
	}
	bill.TotalAmount = total

	for _, item := range bill.Items {
		tx.adjustMaterial(item.MaterialID, -item.Quantity, 0, false)
		tx.applyStockDelta(item.MaterialID, bill.LocationID, -item.Quantity)
	}

	tx.state.salesBills = append(tx.state.salesBills, cloneSalesBill(bill))
	tx.recordChange(Change{Entity: domain.EntitySalesBill, Action: domain.ActionCreate, After: cloneSalesBill(bill)})
	return cloneSalesBill(bill), nil
}

// DeleteSalesBill removes a sales bill and restores the quantities it sold.
// Bills recorded without a location never compensate stock records. Missing
// IDs are a silent no-op.
func (tx *transaction) DeleteSalesBill(id string) bool {
	i := tx.state.salesBillIndex(id)
	if i < 0 {
		return false
	}
	bill := cloneSalesBill(tx.state.salesBills[i])
	tx.state.salesBills = append(tx.state.salesBills[:i], tx.state.salesBills[i+1:]...)

	for _, item := range bill.Items {
		tx.adjustMaterial(item.MaterialID, item.Quantity, 0, false)
		if bill.LocationID != "" {
			tx.applyStockDelta(item.MaterialID, bill.LocationID, item.Quantity)
		}
	}

	tx.recordChange(Change{Entity: domain.EntitySalesBill, Action: domain.ActionDelete, Before: bill})
	return true
}

// SetStockLocation forces a material's quantity at one location to an
// absolute value and re-derives the record's total from the resulting
// distribution. The material aggregate is left untouched.
func (tx *transaction) SetStockLocation(materialID, locationID string, quantity float64) {
	i := tx.state.materialStockIndex(materialID)
	if i < 0 {
		ms := MaterialStock{
			ID:         tx.store.newID(),
			MaterialID: materialID,
			Locations:  []StockLocation{{LocationID: locationID, Quantity: quantity}},
		}
		ms.TotalQuantity = ms.LocationSum()
		tx.state.materialStocks = append(tx.state.materialStocks, cloneMaterialStock(ms))
		tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionCreate, After: cloneMaterialStock(ms)})
		return
	}

	ms := cloneMaterialStock(tx.state.materialStocks[i])
	before := cloneMaterialStock(ms)
	found := false
	for li, sl := range ms.Locations {
		if sl.LocationID == locationID {
			ms.Locations[li].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		ms.Locations = append(ms.Locations, StockLocation{LocationID: locationID, Quantity: quantity})
	}
	ms.TotalQuantity = ms.LocationSum()
	tx.state.materialStocks[i] = cloneMaterialStock(ms)
	tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionUpdate, Before: before, After: cloneMaterialStock(ms)})
}

// RecordStockTransfer moves quantity between two locations of a material.
// The source entry is decremented with a floor of zero while the destination
// gains the full requested quantity (created when absent); the log records
// the requested amount regardless of clamping. Materials without a stock
// record are a silent no-op with no log entry.
func (tx *transaction) RecordStockTransfer(transfer StockTransfer) (StockTransfer, bool) {
	i := tx.state.materialStockIndex(transfer.MaterialID)
	if i < 0 {
		return StockTransfer{}, false
	}
	if transfer.ID == "" {
		transfer.ID = tx.store.newID()
	}
	if transfer.Date == "" {
		transfer.Date = tx.today()
	}

	ms := cloneMaterialStock(tx.state.materialStocks[i])
	before := cloneMaterialStock(ms)

	// The source entry is drained but never driven negative; excess beyond
	// availability is lost rather than rejected. The destination receives
	// the full requested quantity regardless of the source clamp.
	for li, sl := range ms.Locations {
		if sl.LocationID == transfer.FromLocationID {
			next := sl.Quantity - transfer.Quantity
			if next < 0 {
				next = 0
			}
			ms.Locations[li].Quantity = next
		}
	}
	if transfer.ToLocationID != transfer.FromLocationID {
		upsertStockEntry(&ms, transfer.ToLocationID, transfer.Quantity)
	}
	ms.TotalQuantity = ms.LocationSum()
	tx.state.materialStocks[i] = cloneMaterialStock(ms)
	tx.recordChange(Change{Entity: domain.EntityMaterialStock, Action: domain.ActionUpdate, Before: before, After: cloneMaterialStock(ms)})

	tx.state.stockTransfers = append(tx.state.stockTransfers, cloneStockTransfer(transfer))
	tx.recordChange(Change{Entity: domain.EntityStockTransfer, Action: domain.ActionCreate, After: cloneStockTransfer(transfer)})
	return cloneStockTransfer(transfer), true
}

// AddLedgerEntry appends a ledger entry. The ledger is append-only; entries
// are never updated in place.
func (tx *transaction) AddLedgerEntry(entry LedgerEntry) (LedgerEntry, error) {
	if entry.ID == "" {
		entry.ID = tx.store.newID()
	}
	if entry.Date == "" {
		entry.Date = tx.today()
	}
	if entry.Type == "" {
		return LedgerEntry{}, fmt.Errorf("ledger entry requires a type")
	}
	tx.state.ledgerEntries = append(tx.state.ledgerEntries, cloneLedgerEntry(entry))
	tx.recordChange(Change{Entity: domain.EntityLedgerEntry, Action: domain.ActionCreate, After: cloneLedgerEntry(entry)})
	return cloneLedgerEntry(entry), nil
}

// DeleteLedgerEntry removes a ledger entry. Missing IDs are a silent no-op.
func (tx *transaction) DeleteLedgerEntry(id string) bool {
	i := tx.state.ledgerEntryIndex(id)
	if i < 0 {
		return false
	}
	removed := cloneLedgerEntry(tx.state.ledgerEntries[i])
	tx.state.ledgerEntries = append(tx.state.ledgerEntries[:i], tx.state.ledgerEntries[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityLedgerEntry, Action: domain.ActionDelete, Before: removed})
	return true
}

func clampPaid(paid, amount float64) float64 {
	if paid < 0 {
		paid = 0
	}
	if paid > amount {
		paid = amount
	}
	return paid
}

// AddReceivableBill stores a receivable with its status derived from the
// clamped paid amount.
func (tx *transaction) AddReceivableBill(bill ReceivableBill) (ReceivableBill, error) {
	if bill.ID == "" {
		bill.ID = tx.store.newID()
	}
	if bill.Date == "" {
		bill.Date = tx.today()
	}
	bill.AmountPaid = clampPaid(bill.AmountPaid, bill.Amount)
	bill.Status = domain.DerivePaymentStatus(bill.AmountPaid, bill.Amount)
	tx.state.receivableBills = append(tx.state.receivableBills, cloneReceivableBill(bill))
	tx.recordChange(Change{Entity: domain.EntityReceivableBill, Action: domain.ActionCreate, After: cloneReceivableBill(bill)})
	return cloneReceivableBill(bill), nil
}

// UpdateReceivableBill mutates a receivable and re-derives its status.
func (tx *transaction) UpdateReceivableBill(id string, mutate func(*ReceivableBill)) (ReceivableBill, bool) {
	i := tx.state.receivableBillIndex(id)
	if i < 0 {
		return ReceivableBill{}, false
	}
	current := cloneReceivableBill(tx.state.receivableBills[i])
	before := cloneReceivableBill(current)
	if mutate != nil {
		mutate(&current)
	}
	current.ID = id
	current.AmountPaid = clampPaid(current.AmountPaid, current.Amount)
	current.Status = domain.DerivePaymentStatus(current.AmountPaid, current.Amount)
	tx.state.receivableBills[i] = cloneReceivableBill(current)
	tx.recordChange(Change{Entity: domain.EntityReceivableBill, Action: domain.ActionUpdate, Before: before, After: cloneReceivableBill(current)})
	return cloneReceivableBill(current), true
}

// DeleteReceivableBill removes a receivable. Missing IDs are a silent no-op.
func (tx *transaction) DeleteReceivableBill(id string) bool {
	i := tx.state.receivableBillIndex(id)
	if i < 0 {
		return false
	}
	removed := cloneReceivableBill(tx.state.receivableBills[i])
	tx.state.receivableBills = append(tx.state.receivableBills[:i], tx.state.receivableBills[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityReceivableBill, Action: domain.ActionDelete, Before: removed})
	return true
}

// RecordReceivablePayment applies a payment to a receivable. The resulting
// paid amount is clamped to the bill total before the status is derived, so
// an overpayment lands on fully_paid and a refund below zero on pending.
func (tx *transaction) RecordReceivablePayment(id string, amount float64) (ReceivableBill, bool) {
	return tx.UpdateReceivableBill(id, func(bill *ReceivableBill) {
		bill.AmountPaid += amount
	})
}

// AddPayableBill stores a payable with its status derived from the clamped
// paid amount.
func (tx *transaction) AddPayableBill(bill PayableBill) (PayableBill, error) {
	if bill.ID == "" {
		bill.ID = tx.store.newID()
	}
	if bill.Date == "" {
		bill.Date = tx.today()
	}
	bill.AmountPaid = clampPaid(bill.AmountPaid, bill.Amount)
	bill.Status = domain.DerivePaymentStatus(bill.AmountPaid, bill.Amount)
	tx.state.payableBills = append(tx.state.payableBills, clonePayableBill(bill))
	tx.recordChange(Change{Entity: domain.EntityPayableBill, Action: domain.ActionCreate, After: clonePayableBill(bill)})
	return clonePayableBill(bill), nil
}

// UpdatePayableBill mutates a payable and re-derives its status.
func (tx *transaction) UpdatePayableBill(id string, mutate func(*PayableBill)) (PayableBill, bool) {
	i := tx.state.payableBillIndex(id)
	if i < 0 {
		return PayableBill{}, false
	}
	current := clonePayableBill(tx.state.payableBills[i])
	before := clonePayableBill(current)
	if mutate != nil {
		mutate(&current)
	}
	current.ID = id
	current.AmountPaid = clampPaid(current.AmountPaid, current.Amount)
	current.Status = domain.DerivePaymentStatus(current.AmountPaid, current.Amount)
	tx.state.payableBills[i] = clonePayableBill(current)
	tx.recordChange(Change{Entity: domain.EntityPayableBill, Action: domain.ActionUpdate, Before: before, After: clonePayableBill(current)})
	return clonePayableBill(current), true
}

// DeletePayableBill removes a payable. Missing IDs are a silent no-op.
func (tx *transaction) DeletePayableBill(id string) bool {
	i := tx.state.payableBillIndex(id)
	if i < 0 {
		return false
	}
	removed := clonePayableBill(tx.state.payableBills[i])
	tx.state.payableBills = append(tx.state.payableBills[:i], tx.state.payableBills[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityPayableBill, Action: domain.ActionDelete, Before: removed})
	return true
}

// RecordPayablePayment applies a payment to a payable with the same clamp
// and status derivation as the receivable side.
func (tx *transaction) RecordPayablePayment(id string, amount float64) (PayableBill, bool) {
	return tx.UpdatePayableBill(id, func(bill *PayableBill) {
		bill.AmountPaid += amount
	})
}
