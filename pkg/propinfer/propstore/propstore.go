// Package propstore holds the four belief-store mappings the Inferencer
// rewrites on every pass: pi-value, lambda-value, pi-message, and
// lambda-message, each keyed by node identity (and, for messages, by the
// directed edge between two nodes) (spec.md §4.3).
package propstore

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

// Store is not safe for concurrent use; a single Inferencer owns one Store
// exclusively for the duration of a pass (spec.md §5).
type Store struct {
	pi        map[string][2]float64
	lambda    map[string][2]float64
	piMsg     map[string][2]float64
	lambdaMsg map[string][2]float64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		pi:        make(map[string][2]float64),
		lambda:    make(map[string][2]float64),
		piMsg:     make(map[string][2]float64),
		lambdaMsg: make(map[string][2]float64),
	}
}

// Reset clears every mapping, equivalent to discarding the Store and
// starting over (used by Inferencer.Initialize).
func (s *Store) Reset() {
	s.pi = make(map[string][2]float64)
	s.lambda = make(map[string][2]float64)
	s.piMsg = make(map[string][2]float64)
	s.lambdaMsg = make(map[string][2]float64)
}

func edgeKey(from, to propgraph.Node) string {
	return from.Key() + "=>" + to.Key()
}

// SetPi records pi(n,0) and pi(n,1).
func (s *Store) SetPi(n propgraph.Node, v0, v1 float64) {
	s.pi[n.Key()] = [2]float64{v0, v1}
}

// Pi returns pi(n,0) and pi(n,1).
func (s *Store) Pi(n propgraph.Node) (v0, v1 float64, err error) {
	vals, ok := s.pi[n.Key()]
	if !ok {
		return 0, 0, fmt.Errorf("pi(%s): %w", n.Key(), internalerr.ErrMissingBelief)
	}
	return vals[0], vals[1], nil
}

// PiValue returns pi(n,v) for a single outcome v (0 or 1).
func (s *Store) PiValue(n propgraph.Node, v int) (float64, error) {
	v0, v1, err := s.Pi(n)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return v0, nil
	}
	return v1, nil
}

// SetLambda records lambda(n,0) and lambda(n,1).
func (s *Store) SetLambda(n propgraph.Node, v0, v1 float64) {
	s.lambda[n.Key()] = [2]float64{v0, v1}
}

// Lambda returns lambda(n,0) and lambda(n,1).
func (s *Store) Lambda(n propgraph.Node) (v0, v1 float64, err error) {
	vals, ok := s.lambda[n.Key()]
	if !ok {
		return 0, 0, fmt.Errorf("lambda(%s): %w", n.Key(), internalerr.ErrMissingBelief)
	}
	return vals[0], vals[1], nil
}

// LambdaValue returns lambda(n,v) for a single outcome v (0 or 1).
func (s *Store) LambdaValue(n propgraph.Node, v int) (float64, error) {
	v0, v1, err := s.Lambda(n)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return v0, nil
	}
	return v1, nil
}

// SetPiMessageValue records pi-message(from->to, v).
func (s *Store) SetPiMessageValue(from, to propgraph.Node, v int, val float64) {
	key := edgeKey(from, to)
	vals := s.piMsg[key]
	vals[v] = val
	s.piMsg[key] = vals
}

// PiMessageValue returns pi-message(from->to, v).
func (s *Store) PiMessageValue(from, to propgraph.Node, v int) (float64, error) {
	vals, ok := s.piMsg[edgeKey(from, to)]
	if !ok {
		return 0, fmt.Errorf("pi-message(%s -> %s): %w", from.Key(), to.Key(), internalerr.ErrMissingBelief)
	}
	return vals[v], nil
}

// SetLambdaMessageValue records lambda-message(from->to, v).
func (s *Store) SetLambdaMessageValue(from, to propgraph.Node, v int, val float64) {
	key := edgeKey(from, to)
	vals := s.lambdaMsg[key]
	vals[v] = val
	s.lambdaMsg[key] = vals
}

// LambdaMessageValue returns lambda-message(from->to, v).
func (s *Store) LambdaMessageValue(from, to propgraph.Node, v int) (float64, error) {
	vals, ok := s.lambdaMsg[edgeKey(from, to)]
	if !ok {
		return 0, fmt.Errorf("lambda-message(%s -> %s): %w", from.Key(), to.Key(), internalerr.ErrMissingBelief)
	}
	return vals[v], nil
}
