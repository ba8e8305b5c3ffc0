package core

import (
	"context"
	"fmt"
	"math"

	"inventorycore/pkg/domain"
)

// NewStockDistributionRule returns the rule checking location-tracked stock
// records: the aggregated total must equal the sum of the per-location
// entries and no entry may be negative. Records with no location entries run
// their total as a standalone counter and are not checked.
func NewStockDistributionRule() domain.Rule {
	return stockDistributionRule{}
}

type stockDistributionRule struct{}

func (stockDistributionRule) Name() string { return "stock_distribution" }

func (stockDistributionRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, stock := range view.MaterialStocks() {
		if !stock.Distributed() {
			continue
		}
		sum := stock.LocationSum()
		if math.Abs(stock.TotalQuantity-sum) > aggregateTolerance {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "stock_distribution",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("stock for material %s totals %.4f but location entries sum to %.4f", stock.MaterialID, stock.TotalQuantity, sum),
				Entity:   domain.EntityMaterialStock,
				EntityID: stock.ID,
			})
		}
		for _, entry := range stock.Locations {
			if entry.Quantity < 0 {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "stock_distribution",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("stock for material %s is negative (%.4f) at location %s", stock.MaterialID, entry.Quantity, entry.LocationID),
					Entity:   domain.EntityMaterialStock,
					EntityID: stock.ID,
				})
			}
		}
	}
	return res, nil
}
