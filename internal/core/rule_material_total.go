package core

import (
	"context"
	"fmt"
	"math"

	"inventorycore/pkg/domain"
)

// aggregateTolerance absorbs float drift accumulated by repeated
// increment/decrement cycles on the denormalized totals.
const aggregateTolerance = 1e-6

// NewMaterialTotalRule returns the rule checking that every material's stored
// total equals quantity times rate.
func NewMaterialTotalRule() domain.Rule {
	return materialTotalRule{}
}

type materialTotalRule struct{}

func (materialTotalRule) Name() string { return "material_total" }

func (materialTotalRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, mat := range view.Materials() {
		expected := mat.Quantity * mat.Rate
		if math.Abs(mat.Total-expected) > aggregateTolerance {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "material_total",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("material %s (%s) total %.4f drifted from quantity*rate %.4f", mat.Name, mat.ID, mat.Total, expected),
				Entity:   domain.EntityMaterial,
				EntityID: mat.ID,
			})
		}
	}
	return res, nil
}
