package inferencer

import (
	"github.com/cognicore/propinfer/pkg/propinfer/factormodel"
	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

// combinations returns every Boolean assignment over k parents, as bitmask
// index i meaning parent i is true (spec.md §4.5 "enumerate 2^k
// combinations"). combo[i] is 0 or 1.
func combinations(k int) [][]int {
	total := 1 << uint(k)
	out := make([][]int, total)
	for mask := 0; mask < total; mask++ {
		combo := make([]int, k)
		for i := 0; i < k; i++ {
			if mask&(1<<uint(i)) != 0 {
				combo[i] = 1
			}
		}
		out[mask] = combo
	}
	return out
}

// buildFactorContext assembles the FactorContext for a combination over
// parents (Group nodes backing a Single conclusion): one factor and
// probability per parent, in parent order (spec.md §4.5 step A).
func buildFactorContext(graph *propgraph.Graph, parents []propgraph.Node, combo []int) factormodel.FactorContext {
	factors := make([]model.PropositionInferenceFactor, len(parents))
	probs := make([]float64, len(parents))
	for i, p := range parents {
		f, _ := graph.FactorFor(p.Group)
		factors[i] = f
		probs[i] = float64(combo[i])
	}
	return factormodel.FactorContext{Factor: factors, Probabilities: probs}
}

// localTrueProbability returns P(node=true | combo over parents), the
// "local_factor" referenced throughout spec.md §4.5/§4.6: for a Single node
// this queries the FactorModel with the joint assignment; for a Group node
// it is the deterministic AND indicator over the combination.
func (inf *Inferencer) localTrueProbability(node propgraph.Node, parents []propgraph.Node, combo []int) (float64, error) {
	if node.IsGroup() {
		for _, v := range combo {
			if v == 0 {
				return 0, nil
			}
		}
		return 1, nil
	}

	ctx := buildFactorContext(inf.graph, parents, combo)
	pred, err := inf.model.Predict(ctx)
	if err != nil {
		return 0, err
	}
	return pred.Marginal, nil
}
