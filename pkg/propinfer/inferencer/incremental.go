package inferencer

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

// UpdateEvidence implements spec.md §4.8's incremental path: overwrite π and
// λ at the changed Single directly from the evidence table, then redo
// π-propagation forward from it (restricted to descendants) and
// λ-propagation backward from it (restricted to ancestors), rather than
// reinitializing the whole graph. The evidence itself must already have
// been written to the BeliefTable by the caller; UpdateEvidence only reacts
// to it. Requires a prior RunFullPass (or Initialize+PiPass+LambdaPass+
// ComputeMarginals), i.e. StateMarginalsReady, so the belief store has
// values to patch.
func (inf *Inferencer) UpdateEvidence(changed model.Proposition) (map[string]Marginal, error) {
	if err := inf.requireState(StateMarginalsReady); err != nil {
		return nil, err
	}

	p, ok := inf.evidence.GetPropositionProbability(changed)
	if !ok {
		return nil, fmt.Errorf("UpdateEvidence: %s has no evidence to propagate", changed.HashString())
	}

	n := propgraph.SingleNode(changed)
	inf.store.SetPi(n, 1-p, p)
	inf.store.SetLambda(n, 1-p, p)

	descendants := inf.reachable(n, inf.graph.Forward)
	forwardOrder := filterOrder(inf.bfsOrder, descendants)
	if err := inf.piPassOver(forwardOrder); err != nil {
		return nil, fmt.Errorf("incremental pi-propagation: %w", err)
	}

	ancestors := inf.reachable(n, inf.graph.Backward)
	backwardOrder := filterOrder(inf.reverseBFSOrder, ancestors)
	if err := inf.lambdaPassOver(backwardOrder); err != nil {
		return nil, fmt.Errorf("incremental lambda-propagation: %w", err)
	}

	inf.state = StateLambdaPassed
	return inf.ComputeMarginals()
}

// reachable returns every node reachable from start (inclusive) by
// repeatedly following next, keyed by Node.Key.
func (inf *Inferencer) reachable(start propgraph.Node, next func(propgraph.Node) []propgraph.Node) map[string]bool {
	seen := map[string]bool{start.Key(): true}
	queue := []propgraph.Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range next(n) {
			if !seen[nb.Key()] {
				seen[nb.Key()] = true
				queue = append(queue, nb)
			}
		}
	}
	return seen
}

func filterOrder(order []propgraph.Node, keep map[string]bool) []propgraph.Node {
	out := make([]propgraph.Node, 0, len(order))
	for _, n := range order {
		if keep[n.Key()] {
			out = append(out, n)
		}
	}
	return out
}
