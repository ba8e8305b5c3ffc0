package core

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreCollector exposes store-level gauges to a Prometheus registry. Every
// scrape reads one consistent snapshot through View, so the reported series
// never mix state from two commits.
type StoreCollector struct {
	store PersistentStore

	collectionSize *prometheus.Desc
	stockValue     *prometheus.Desc
	stockOnHand    *prometheus.Desc
	ledgerTotal    *prometheus.Desc
	outstanding    *prometheus.Desc
}

var _ prometheus.Collector = (*StoreCollector)(nil)

// NewStoreCollector builds a collector over the supplied store. Register it
// with a prometheus.Registry to scrape inventory gauges.
func NewStoreCollector(store PersistentStore) *StoreCollector {
	return &StoreCollector{
		store: store,
		collectionSize: prometheus.NewDesc(
			"inventorycore_collection_size",
			"Number of records held per collection.",
			[]string{"collection"}, nil,
		),
		stockValue: prometheus.NewDesc(
			"inventorycore_stock_value",
			"Summed material totals (inventory value).",
			nil, nil,
		),
		stockOnHand: prometheus.NewDesc(
			"inventorycore_stock_on_hand",
			"Summed material quantities on hand.",
			nil, nil,
		),
		ledgerTotal: prometheus.NewDesc(
			"inventorycore_ledger_amount_total",
			"Summed ledger amounts by entry type.",
			[]string{"type"}, nil,
		),
		outstanding: prometheus.NewDesc(
			"inventorycore_outstanding_amount",
			"Unpaid amount across receivable and payable bills.",
			[]string{"side"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.collectionSize
	ch <- c.stockValue
	ch <- c.stockOnHand
	ch <- c.ledgerTotal
	ch <- c.outstanding
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	_ = c.store.View(context.Background(), func(view TransactionView) error {
		sizes := map[string]int{
			"locations":        len(view.Locations()),
			"materials":        len(view.Materials()),
			"material_stocks":  len(view.MaterialStocks()),
			"purchase_bills":   len(view.PurchaseBills()),
			"sales_bills":      len(view.SalesBills()),
			"stock_transfers":  len(view.StockTransfers()),
			"ledger_entries":   len(view.LedgerEntries()),
			"receivable_bills": len(view.ReceivableBills()),
			"payable_bills":    len(view.PayableBills()),
		}
		for collection, size := range sizes {
			ch <- prometheus.MustNewConstMetric(c.collectionSize, prometheus.GaugeValue, float64(size), collection)
		}

		var value, onHand float64
		for _, mat := range view.Materials() {
			value += mat.Total
			onHand += mat.Quantity
		}
		ch <- prometheus.MustNewConstMetric(c.stockValue, prometheus.GaugeValue, value)
		ch <- prometheus.MustNewConstMetric(c.stockOnHand, prometheus.GaugeValue, onHand)

		ledger := map[LedgerType]float64{
			LedgerPurchase: 0,
			LedgerSales:    0,
			LedgerExpense:  0,
			LedgerIncome:   0,
		}
		for _, entry := range view.LedgerEntries() {
			ledger[entry.Type] += entry.Amount
		}
		for typ, total := range ledger {
			ch <- prometheus.MustNewConstMetric(c.ledgerTotal, prometheus.GaugeValue, total, string(typ))
		}

		var receivable, payable float64
		for _, bill := range view.ReceivableBills() {
			receivable += bill.Amount - bill.AmountPaid
		}
		for _, bill := range view.PayableBills() {
			payable += bill.Amount - bill.AmountPaid
		}
		ch <- prometheus.MustNewConstMetric(c.outstanding, prometheus.GaugeValue, receivable, "receivable")
		ch <- prometheus.MustNewConstMetric(c.outstanding, prometheus.GaugeValue, payable, "payable")
		return nil
	})
}
