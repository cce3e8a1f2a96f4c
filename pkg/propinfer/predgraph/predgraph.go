// Package predgraph defines the PredicateGraph external contract (spec.md
// §6) and a simple in-memory reference implementation, StaticGraph, loaded
// from a YAML rule file. The inference core depends only on the Graph
// interface; predgraph/prologgraph provides a second, unification-based
// adapter behind the same interface.
package predgraph

import "github.com/cognicore/propinfer/pkg/propinfer/model"

// Graph is the consumed PredicateGraph contract: storage for quantified
// implications, queried backward from a target predicate.
type Graph interface {
	// BackwardFactors returns the PredicateInferenceFactors whose
	// conclusion unifies with pred by function name and role shape.
	BackwardFactors(pred model.Predicate) ([]model.PredicateInferenceFactor, error)

	// AllImplications enumerates every stored factor (used by training;
	// the inference core itself only calls BackwardFactors).
	AllImplications() ([]model.PredicateInferenceFactor, error)
}
