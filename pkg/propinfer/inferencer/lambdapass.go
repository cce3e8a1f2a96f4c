package inferencer

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

// LambdaPass runs the backward λ-pass over the reverse BFS order (spec.md
// §4.6). It requires the π-pass to have completed first.
func (inf *Inferencer) LambdaPass() error {
	if err := inf.requireState(StatePiPassed); err != nil {
		return err
	}
	if err := inf.lambdaPassOver(inf.reverseBFSOrder); err != nil {
		return err
	}
	inf.state = StateLambdaPassed
	return nil
}

// lambdaPassOver computes λ(n,·) and sends λ-messages to n's parents for
// every node in order; shared by the full pass and the incremental backward
// re-propagation (spec.md §4.8).
func (inf *Inferencer) lambdaPassOver(order []propgraph.Node) error {
	for _, n := range order {
		if err := inf.lambdaComputeNode(n); err != nil {
			return fmt.Errorf("lambda-pass at %s: %w", n, err)
		}
		if err := inf.lambdaSendMessages(n); err != nil {
			return fmt.Errorf("lambda-pass at %s: %w", n, err)
		}
	}
	return nil
}

func (inf *Inferencer) lambdaComputeNode(n propgraph.Node) error {
	if n.IsSingle() {
		if p, ok := inf.isObserved(n); ok {
			inf.store.SetLambda(n, 1-p, p)
			return nil
		}
	}

	children := inf.graph.Forward(n)
	var lambda [2]float64
	for v := 0; v < 2; v++ {
		product := 1.0
		for _, c := range children {
			lm, err := inf.store.LambdaMessageValue(c, n, v)
			if err != nil {
				return err
			}
			product *= lm
		}
		lambda[v] = product
	}
	inf.store.SetLambda(n, lambda[0], lambda[1])
	return nil
}

// lambdaSendMessages implements spec.md §4.6's backward message equation:
// the standard Pearl λ-message formula, marginalizing over n's own outcome
// (weighted by n's λ) and over n's other parents' combinations (weighted by
// their incoming π-messages), for each parent p and each value of p.
func (inf *Inferencer) lambdaSendMessages(n propgraph.Node) error {
	parents := inf.graph.Backward(n)
	k := len(parents)
	if k == 0 {
		return nil
	}

	lambda0, lambda1, err := inf.store.Lambda(n)
	if err != nil {
		return err
	}
	lambda := [2]float64{lambda0, lambda1}

	sumTrue := make([]float64, k)
	sumFalse := make([]float64, k)

	for _, combo := range combinations(k) {
		trueProb, err := inf.localTrueProbability(n, parents, combo)
		if err != nil {
			return err
		}
		localProb := [2]float64{1 - trueProb, trueProb}

		otherProduct := make([]float64, k)
		for j := range parents {
			product := 1.0
			for i, parent := range parents {
				if i == j {
					continue
				}
				msg, err := inf.store.PiMessageValue(parent, n, combo[i])
				if err != nil {
					return err
				}
				product *= msg
			}
			otherProduct[j] = product
		}

		for x := 0; x < 2; x++ {
			weighted := lambda[x] * localProb[x]
			if weighted == 0 {
				continue
			}
			for j := range parents {
				contribution := weighted * otherProduct[j]
				if combo[j] == 1 {
					sumTrue[j] += contribution
				} else {
					sumFalse[j] += contribution
				}
			}
		}
	}

	for j, parent := range parents {
		inf.store.SetLambdaMessageValue(n, parent, 1, sumTrue[j])
		inf.store.SetLambdaMessageValue(n, parent, 0, sumFalse[j])
	}
	return nil
}
