package core

import "inventorycore/pkg/domain"

type (
	EntityType         = domain.EntityType
	LedgerType         = domain.LedgerType
	PaymentStatus      = domain.PaymentStatus
	Severity           = domain.Severity
	Location           = domain.Location
	Material           = domain.Material
	StockLocation      = domain.StockLocation
	MaterialStock      = domain.MaterialStock
	BillItem           = domain.BillItem
	PurchaseBill       = domain.PurchaseBill
	SalesBill          = domain.SalesBill
	StockTransfer      = domain.StockTransfer
	LedgerEntry        = domain.LedgerEntry
	ReceivableBill     = domain.ReceivableBill
	PayableBill        = domain.PayableBill
	Snapshot           = domain.Snapshot
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityLocation       = domain.EntityLocation
	EntityMaterial       = domain.EntityMaterial
	EntityMaterialStock  = domain.EntityMaterialStock
	EntityPurchaseBill   = domain.EntityPurchaseBill
	EntitySalesBill      = domain.EntitySalesBill
	EntityStockTransfer  = domain.EntityStockTransfer
	EntityLedgerEntry    = domain.EntityLedgerEntry
	EntityReceivableBill = domain.EntityReceivableBill
	EntityPayableBill    = domain.EntityPayableBill
)

const (
	LedgerPurchase = domain.LedgerPurchase
	LedgerSales    = domain.LedgerSales
	LedgerExpense  = domain.LedgerExpense
	LedgerIncome   = domain.LedgerIncome
)

const (
	PaymentPending       = domain.PaymentPending
	PaymentPartiallyPaid = domain.PaymentPartiallyPaid
	PaymentFullyPaid     = domain.PaymentFullyPaid
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
