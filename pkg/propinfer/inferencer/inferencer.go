// Package inferencer implements the π/λ belief-propagation engine (spec.md
// §4.4–§4.9): initialization, the forward π-pass, the backward λ-pass,
// marginal readout, and incremental re-propagation, driven off a
// propgraph.Graph and a propstore.Store. This is deliberately the largest
// package in the module — the engine is "the hard part" the rest of the
// repository exists to support.
package inferencer

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/propinfer/pkg/propinfer/belief"
	"github.com/cognicore/propinfer/pkg/propinfer/factormodel"
	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
	"github.com/cognicore/propinfer/pkg/propinfer/propstore"
)

// Marginal is a readout result for a node, Single or Group (spec.md §4.7). Degenerate is
// true when both potentials were zero at normalization time; P1/P0 are then
// meaningless and callers should treat the result as "contradictory
// evidence" rather than a real probability (internalerr.ErrDegenerateMarginal
// is reported alongside, not silently swallowed).
type Marginal struct {
	P0, P1     float64
	Degenerate bool
}

// Inferencer runs belief propagation for one target over a shared,
// read-only propgraph.Graph. It is not safe for concurrent use; construct
// one Inferencer per target per goroutine (spec.md §5).
type Inferencer struct {
	RunID string

	graph    *propgraph.Graph
	model    factormodel.Model
	evidence belief.Table
	store    *propstore.Store

	bfsOrder        []propgraph.Node
	reverseBFSOrder []propgraph.Node

	state  State
	logger *log.Logger
}

// New constructs an Inferencer over graph, scoring premise assignments with
// model and reading evidence from table. The Inferencer starts
// StateUninitialized; call Initialize (directly, or via RunFullPass) before
// any pass.
func New(graph *propgraph.Graph, fm factormodel.Model, table belief.Table) *Inferencer {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()

	return &Inferencer{
		RunID:           id,
		graph:           graph,
		model:           fm,
		evidence:        table,
		store:           propstore.New(),
		bfsOrder:        propgraph.BFSOrder(graph),
		reverseBFSOrder: propgraph.ReverseBFSOrder(graph),
		state:           StateUninitialized,
		logger:          log.New(os.Stderr, fmt.Sprintf("inferencer[%s]: ", id), log.LstdFlags),
	}
}

// State returns the Inferencer's current lifecycle state.
func (inf *Inferencer) State() State { return inf.state }

func (inf *Inferencer) requireState(want State) error {
	if inf.state != want {
		return fmt.Errorf("require state %s, have %s: %w", want, inf.state, internalerr.ErrInvalidState)
	}
	return nil
}

// Initialize implements spec.md §4.4: every node's λ is set to 1, every
// backward λ-message is set to 1, and every root's π is pinned to (0,1).
func (inf *Inferencer) Initialize() error {
	inf.store.Reset()

	for _, n := range inf.graph.AllNodes() {
		inf.store.SetLambda(n, 1, 1)
		for _, parent := range inf.graph.Backward(n) {
			inf.store.SetLambdaMessageValue(n, parent, 0, 1)
			inf.store.SetLambdaMessageValue(n, parent, 1, 1)
		}
	}

	for _, r := range inf.graph.Roots() {
		inf.store.SetPi(propgraph.SingleNode(r), 0, 1)
	}

	inf.logger.Printf("initialized: %d nodes, %d roots", len(inf.graph.AllNodes()), len(inf.graph.Roots()))
	inf.state = StateInitialized
	return nil
}

// RunFullPass runs Initialize, the π-pass, the λ-pass, and marginal readout
// in sequence, returning a completed marginal table. It corresponds to a
// full "reinit then pass" cycle rather than the incremental path in §4.8.
func (inf *Inferencer) RunFullPass() (map[string]Marginal, error) {
	if err := inf.Initialize(); err != nil {
		return nil, err
	}
	if err := inf.PiPass(); err != nil {
		return nil, err
	}
	if err := inf.LambdaPass(); err != nil {
		return nil, err
	}
	return inf.ComputeMarginals()
}

// Reinit discards all belief-store state and re-initializes, matching the
// REPL driver's "reinit" command (spec.md §6). The Inferencer returns to
// StateInitialized; a pass must be rerun before marginals are valid again.
func (inf *Inferencer) Reinit() error {
	return inf.Initialize()
}

// isObserved reports whether node carries evidence, and its probability if
// so. Only Single nodes can be observed.
func (inf *Inferencer) isObserved(n propgraph.Node) (float64, bool) {
	if !n.IsSingle() {
		return 0, false
	}
	return inf.evidence.GetPropositionProbability(n.Single)
}

// MarginalFor returns the readout for a target proposition. Valid only once
// ComputeMarginals has run (StateMarginalsReady).
func (inf *Inferencer) MarginalFor(p model.Proposition) (Marginal, error) {
	if err := inf.requireState(StateMarginalsReady); err != nil {
		return Marginal{}, err
	}
	return inf.marginalForNode(propgraph.SingleNode(p))
}

// marginalForNode reads the belief-store potentials for n and normalizes
// them into a Marginal. An observed Single is special-cased to report its
// evidence directly: piComputeNode and lambdaComputeNode both pin an
// observed node's π and λ to (1-p,p) so that its outgoing messages carry
// the evidence to the rest of the graph, but combining those two pinned
// values at the node's own location would square the evidence
// (p²/(p²+(1-p)²)) instead of reproducing it, breaking the evidence
// pinning law in spec.md §8. The node's belief IS the evidence, so its
// readout bypasses the π·λ combine entirely.
func (inf *Inferencer) marginalForNode(n propgraph.Node) (Marginal, error) {
	if p, ok := inf.isObserved(n); ok {
		return Marginal{P0: 1 - p, P1: p}, nil
	}
	pi0, pi1, err := inf.store.Pi(n)
	if err != nil {
		return Marginal{}, err
	}
	lambda0, lambda1, err := inf.store.Lambda(n)
	if err != nil {
		return Marginal{}, err
	}
	return normalize(pi0, pi1, lambda0, lambda1), nil
}

func normalize(pi0, pi1, lambda0, lambda1 float64) Marginal {
	potential0 := pi0 * lambda0
	potential1 := pi1 * lambda1
	norm := potential0 + potential1
	if norm == 0 {
		return Marginal{Degenerate: true}
	}
	return Marginal{P0: potential0 / norm, P1: potential1 / norm}
}
