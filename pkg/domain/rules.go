package domain

import "context"

// Rule defines a named evaluation executed against staged changes inside a
// transaction before commit.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RuleView exposes committed plus staged state to rule evaluation.
type RuleView interface {
	Materials() []Material
	MaterialStocks() []MaterialStock
	Locations() []Location
	FindMaterial(id string) (Material, bool)
	FindMaterialStock(materialID string) (MaterialStock, bool)
}

// RulesEngine evaluates registered rules sequentially in registration order.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine { return &RulesEngine{} }

// Register adds a rule to the evaluation chain.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate runs all rules and aggregates their results. Evaluation stops at
// the first rule returning an error.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var aggregate Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return aggregate, err
		}
		aggregate.Merge(res)
	}
	return aggregate, nil
}
