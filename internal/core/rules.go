package core

import "inventorycore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in consistency
// checks. The built-in rules warn, never block: inventory mutators are
// defined to succeed, and the rules surface drift in the denormalized
// aggregates rather than rejecting it.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewMaterialTotalRule())
	engine.Register(NewStockDistributionRule())
	return engine
}
