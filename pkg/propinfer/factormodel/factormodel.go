// Package factormodel defines the FactorModel external contract (spec.md
// §6/§4) and a couple of reference implementations used by tests and the
// REPL driver. The inference core (pkg/propinfer/inferencer) depends only
// on the Model interface; it never imports a concrete implementation.
package factormodel

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
)

// FactorContext carries one ground factor per premise group feeding a node,
// together with the caller's proposed truth assignment for each premise
// group — one probability per entry, same index order (spec.md §6).
type FactorContext struct {
	Factor        []model.PropositionInferenceFactor
	Probabilities []float64
}

// Prediction is the result of scoring a FactorContext: the marginal
// probability that the factor's conclusion is true given the premise
// assignment.
type Prediction struct {
	Marginal float64
}

// Model is the pluggable factor-scoring contract. Given a FactorContext, it
// returns P(conclusion=true | premise assignment). A log-linear model, a
// lookup table, or a constant are all valid implementations — the engine
// makes no assumption about Model beyond this contract (spec.md §9).
type Model interface {
	Predict(ctx FactorContext) (Prediction, error)
}

// Constant always returns the same marginal, regardless of context. Used by
// the root-only, "no-evidence neutrality", evidence-override, reinit,
// marginal-sum and incremental tests in pkg/propinfer/inferencer, and as the
// REPL driver's default; the conjunction and disjunction scenarios there use
// test-local models instead.
type Constant struct {
	Marginal float64
}

// Predict implements Model.
func (c Constant) Predict(ctx FactorContext) (Prediction, error) {
	return Prediction{Marginal: c.Marginal}, nil
}

// Table is a deterministic lookup keyed by the first premise factor's
// template FeatureString plus the premise truth assignment encoded as a bitmask (bit i = premise i is
// true). Missing entries default to 0.5, matching an uninformative prior
// rather than erroring, since tests typically only specify the
// combinations they care about.
type Table struct {
	entries map[string]float64
}

// NewTable builds an empty lookup table.
func NewTable() *Table {
	return &Table{entries: make(map[string]float64)}
}

// Set records the marginal for a given factor template and premise
// assignment bitmask.
func (t *Table) Set(factorKey string, assignment uint64, marginal float64) {
	t.entries[tableKey(factorKey, assignment)] = marginal
}

// Predict implements Model.
func (t *Table) Predict(ctx FactorContext) (Prediction, error) {
	if len(ctx.Factor) == 0 {
		return Prediction{Marginal: 0.5}, nil
	}
	key := ctx.Factor[0].Inference.FeatureString()
	var mask uint64
	for i, p := range ctx.Probabilities {
		if p >= 0.5 {
			mask |= 1 << uint(i)
		}
	}
	if m, ok := t.entries[tableKey(key, mask)]; ok {
		return Prediction{Marginal: m}, nil
	}
	return Prediction{Marginal: 0.5}, nil
}

func tableKey(factorKey string, assignment uint64) string {
	return fmt.Sprintf("%s#%d", factorKey, assignment)
}
