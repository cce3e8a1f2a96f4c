// Package prologgraph is a PredicateGraph adapter backed by an embedded
// ichiban/prolog interpreter. Quantified implications are asserted as
// Prolog facts relating a factor's numeric ID to its conclusion's function
// name; BackwardFactors runs a unification query against those facts to
// find candidate factors, then confirms the finer-grained role-shape match
// in Go (role names and arity aren't naturally first-class Prolog terms
// without a much larger term-encoding layer, which would buy nothing over
// spec.md §4.1's plain SameShape check). This gives the "quantified rule
// store" called for in spec.md §3 a genuine unification engine for the
// coarse filter instead of a hand-rolled string scan.
package prologgraph

import (
	"fmt"
	"strings"

	"github.com/ichiban/prolog"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
)

// Graph is a PredicateGraph backed by a Prolog interpreter holding one
// factor(ID, Function) clause per stored implication.
type Graph struct {
	interp  *prolog.Interpreter
	factors map[int]model.PredicateInferenceFactor
	nextID  int
}

// New creates an empty graph with a fresh interpreter.
func New() *Graph {
	return &Graph{
		interp:  prolog.New(nil, nil),
		factors: make(map[int]model.PredicateInferenceFactor),
	}
}

// Assert adds a quantified implication to the graph, asserting a
// corresponding factor/2 clause in the interpreter.
func (g *Graph) Assert(factor model.PredicateInferenceFactor) error {
	id := g.nextID
	g.nextID++
	g.factors[id] = factor

	clause := fmt.Sprintf("factor(%d, %s).", id, atomize(factor.Conclusion.Function))
	if err := g.interp.Exec(clause); err != nil {
		return fmt.Errorf("assert factor clause: %w", err)
	}
	return nil
}

// BackwardFactors implements predgraph.Graph.
func (g *Graph) BackwardFactors(pred model.Predicate) ([]model.PredicateInferenceFactor, error) {
	sols, err := g.interp.Query(fmt.Sprintf("factor(Id, %s).", atomize(pred.Function)))
	if err != nil {
		return nil, fmt.Errorf("query backward factors: %w", err)
	}
	defer sols.Close()

	var matches []model.PredicateInferenceFactor
	for sols.Next() {
		var row struct {
			Id int
		}
		if err := sols.Scan(&row); err != nil {
			return nil, fmt.Errorf("scan backward factor solution: %w", err)
		}
		factor, ok := g.factors[row.Id]
		if !ok {
			continue
		}
		if factor.Conclusion.SameShape(pred) {
			matches = append(matches, factor)
		}
	}
	return matches, nil
}

// AllImplications implements predgraph.Graph.
func (g *Graph) AllImplications() ([]model.PredicateInferenceFactor, error) {
	out := make([]model.PredicateInferenceFactor, 0, len(g.factors))
	for _, f := range g.factors {
		out = append(out, f)
	}
	return out, nil
}

// atomize turns an arbitrary predicate function name into a valid Prolog
// atom, quoting it if it doesn't already start with a lowercase letter
// (function names from the domain, like "is_a", usually do; EXISTENCE does
// not, so it needs quoting).
func atomize(function string) string {
	if function == "" {
		return "''"
	}
	r := rune(function[0])
	if r >= 'a' && r <= 'z' && !strings.ContainsAny(function, " '") {
		return function
	}
	return "'" + strings.ReplaceAll(function, "'", "\\'") + "'"
}
