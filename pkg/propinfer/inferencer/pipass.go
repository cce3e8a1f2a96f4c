package inferencer

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

// PiPass runs the forward π-pass over the full BFS order (spec.md §4.5). It
// requires Initialize to have run first.
func (inf *Inferencer) PiPass() error {
	if err := inf.requireState(StateInitialized); err != nil {
		return err
	}
	if err := inf.piPassOver(inf.bfsOrder); err != nil {
		return err
	}
	inf.state = StatePiPassed
	return nil
}

// piPassOver computes π(n,·) and emits π-messages for every node in order,
// shared by the full pass and the incremental forward re-propagation
// (spec.md §4.8).
func (inf *Inferencer) piPassOver(order []propgraph.Node) error {
	for _, n := range order {
		if err := inf.piComputeNode(n); err != nil {
			return fmt.Errorf("pi-pass at %s: %w", n, err)
		}
		if err := inf.piSendMessages(n); err != nil {
			return fmt.Errorf("pi-pass at %s: %w", n, err)
		}
	}
	return nil
}

func (inf *Inferencer) piComputeNode(n propgraph.Node) error {
	if n.IsSingle() {
		if p, ok := inf.isObserved(n); ok {
			inf.store.SetPi(n, 1-p, p)
			return nil
		}
		if inf.graph.IsRoot(n.Single) {
			return nil // pinned during Initialize
		}
	}

	parents := inf.graph.Backward(n)
	k := len(parents)
	var sumTrue, sumFalse float64
	for _, combo := range combinations(k) {
		product := 1.0
		for i, parent := range parents {
			msg, err := inf.store.PiMessageValue(parent, n, combo[i])
			if err != nil {
				return err
			}
			product *= msg
		}
		trueProb, err := inf.localTrueProbability(n, parents, combo)
		if err != nil {
			return fmt.Errorf("%w: %v", internalerr.ErrFactorModel, err)
		}
		sumTrue += trueProb * product
		sumFalse += (1 - trueProb) * product
	}
	inf.store.SetPi(n, sumFalse, sumTrue)
	return nil
}

// piSendMessages implements spec.md §4.5 step B: for each child of n and
// each outcome, the outgoing π-message is π(n,v) times the leave-one-out
// product of incoming λ-messages from n's other children.
func (inf *Inferencer) piSendMessages(n propgraph.Node) error {
	children := inf.graph.Forward(n)
	pi0, pi1, err := inf.store.Pi(n)
	if err != nil {
		return err
	}
	piv := [2]float64{pi0, pi1}

	for _, child := range children {
		for v := 0; v < 2; v++ {
			product := 1.0
			for _, other := range children {
				if other.Key() == child.Key() {
					continue
				}
				lm, err := inf.store.LambdaMessageValue(other, n, v)
				if err != nil {
					return err
				}
				product *= lm
			}
			inf.store.SetPiMessageValue(n, child, v, piv[v]*product)
		}
	}
	return nil
}
