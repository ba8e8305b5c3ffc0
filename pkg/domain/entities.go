// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by inventorycore.
package domain

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityLocation identifies a warehouse location record.
	EntityLocation EntityType = "location"
	// EntityMaterial identifies a material record.
	EntityMaterial EntityType = "material"
	// EntityMaterialStock identifies a per-material stock distribution record.
	EntityMaterialStock EntityType = "material_stock"
	// EntityPurchaseBill identifies a purchase bill record.
	EntityPurchaseBill EntityType = "purchase_bill"
	// EntitySalesBill identifies a sales bill record.
	EntitySalesBill EntityType = "sales_bill"
	// EntityStockTransfer identifies a stock transfer record.
	EntityStockTransfer EntityType = "stock_transfer"
	// EntityLedgerEntry identifies a ledger entry record.
	EntityLedgerEntry EntityType = "ledger_entry"
	// EntityReceivableBill identifies a receivable bill record.
	EntityReceivableBill EntityType = "receivable_bill"
	// EntityPayableBill identifies a payable bill record.
	EntityPayableBill EntityType = "payable_bill"
)

// LedgerType classifies a ledger entry as one of the four recognised
// financial event kinds.
type LedgerType string

// Ledger entry types. Sales and income count toward income totals,
// purchase and expense toward expense totals.
const (
	LedgerPurchase LedgerType = "purchase"
	LedgerSales    LedgerType = "sales"
	LedgerExpense  LedgerType = "expense"
	LedgerIncome   LedgerType = "income"
)

// PaymentStatus tracks how much of a receivable or payable bill has been
// settled. It is stored denormalized and kept in sync by every mutator.
type PaymentStatus string

// Payment statuses derived from amountPaid versus amount.
const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentFullyPaid     PaymentStatus = "fully_paid"
)

// DerivePaymentStatus classifies a settled amount against the bill total.
// The clamp happens before classification: callers pass an amountPaid that
// is already bounded to [0, amount].
func DerivePaymentStatus(amountPaid, amount float64) PaymentStatus {
	switch {
	case amountPaid <= 0:
		return PaymentPending
	case amountPaid >= amount:
		return PaymentFullyPaid
	default:
		return PaymentPartiallyPaid
	}
}

// Location is a physical storage or warehouse site.
type Location struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
}

// Material is a trackable stock-keeping unit. Total is denormalized and
// recomputed by every mutation touching quantity or rate; a stale value is
// never trusted.
type Material struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Total    float64 `json:"total"`
}

// StockLocation is one material's quantity held at a single location.
type StockLocation struct {
	LocationID string  `json:"locationId"`
	Quantity   float64 `json:"quantity"`
}

// MaterialStock is the distribution of a material's quantity across zero or
// more locations. When Locations is non-empty, TotalQuantity equals the sum
// of the entries; when it is empty the stock is untracked by location and
// TotalQuantity is maintained as a standalone additive counter.
type MaterialStock struct {
	ID            string          `json:"id"`
	MaterialID    string          `json:"materialId"`
	Locations     []StockLocation `json:"locations"`
	TotalQuantity float64         `json:"totalQuantity"`
}

// Distributed reports whether the stock is tracked per location.
func (ms MaterialStock) Distributed() bool { return len(ms.Locations) > 0 }

// LocationSum returns the sum of all per-location quantities.
func (ms MaterialStock) LocationSum() float64 {
	var sum float64
	for _, sl := range ms.Locations {
		sum += sl.Quantity
	}
	return sum
}

// QuantityAt returns the quantity held at the given location, or 0 when no
// entry exists.
func (ms MaterialStock) QuantityAt(locationID string) float64 {
	for _, sl := range ms.Locations {
		if sl.LocationID == locationID {
			return sl.Quantity
		}
	}
	return 0
}

// BillItem is a single line on a purchase or sales bill. Amount is always
// quantity times rate, computed when the bill is recorded.
type BillItem struct {
	MaterialID string  `json:"materialId"`
	Quantity   float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	Amount     float64 `json:"amount"`
}

// PurchaseBill is an immutable record of a purchase transaction. Bills have
// no partial-edit operation; the only mutation after creation is deletion,
// which compensates the stock effects.
type PurchaseBill struct {
	ID          string     `json:"id"`
	BillNo      string     `json:"billNo"`
	Date        string     `json:"date"`
	LocationID  string     `json:"locationId,omitempty"`
	Supplier    string     `json:"supplier"`
	Items       []BillItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	Notes       string     `json:"notes"`
}

// SalesBill is an immutable record of a sale transaction.
type SalesBill struct {
	ID          string     `json:"id"`
	BillNo      string     `json:"billNo"`
	Date        string     `json:"date"`
	LocationID  string     `json:"locationId,omitempty"`
	Customer    string     `json:"customer"`
	Items       []BillItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	Notes       string     `json:"notes"`
}

// StockTransfer is an immutable log record of quantity moved between two
// locations of the same material.
type StockTransfer struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	MaterialID     string  `json:"materialId"`
	FromLocationID string  `json:"fromLocationId"`
	ToLocationID   string  `json:"toLocationId"`
	Quantity       float64 `json:"quantity"`
	Notes          string  `json:"notes"`
}

// LedgerEntry is a flat append-only record of a financial event. Entries are
// never updated in place.
type LedgerEntry struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Type        LedgerType `json:"type"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	PartyName   string     `json:"partyName"`
	BillNo      string     `json:"billNo,omitempty"`
	LocationID  string     `json:"locationId,omitempty"`
}

// ReceivableBill tracks an amount owed to the business with partial-payment
// status. AmountPaid is clamped to [0, Amount]; Status is derived from it.
type ReceivableBill struct {
	ID         string        `json:"id"`
	BillNo     string        `json:"billNo"`
	Date       string        `json:"date"`
	Customer   string        `json:"customer"`
	Amount     float64       `json:"amount"`
	DueDate    string        `json:"dueDate"`
	Status     PaymentStatus `json:"status"`
	AmountPaid float64       `json:"amountPaid"`
	Notes      string        `json:"notes"`
}

// PayableBill tracks an amount owed by the business.
type PayableBill struct {
	ID         string        `json:"id"`
	BillNo     string        `json:"billNo"`
	Date       string        `json:"date"`
	Supplier   string        `json:"supplier"`
	Amount     float64       `json:"amount"`
	DueDate    string        `json:"dueDate"`
	Status     PaymentStatus `json:"status"`
	AmountPaid float64       `json:"amountPaid"`
	Notes      string        `json:"notes"`
}

// Snapshot captures the full store state. It is both the persistence bucket
// payload shape and the export/import file format: one JSON object holding
// the nine collections as arrays, order preserved.
type Snapshot struct {
	Locations       []Location       `json:"locations"`
	Materials       []Material       `json:"materials"`
	MaterialStocks  []MaterialStock  `json:"materialStocks"`
	PurchaseBills   []PurchaseBill   `json:"purchaseBills"`
	SalesBills      []SalesBill      `json:"salesBills"`
	StockTransfers  []StockTransfer  `json:"stockTransfers"`
	LedgerEntries   []LedgerEntry    `json:"ledgerEntries"`
	ReceivableBills []ReceivableBill `json:"receivableBills"`
	PayableBills    []PayableBill    `json:"payableBills"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities. Inventory mutators are defined to never fail,
// so the built-in consistency rules emit warn severity only; block remains
// available to custom rules.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn reports a violation but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
