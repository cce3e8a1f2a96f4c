package inferencer

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
)

// ComputeMarginals implements spec.md §4.7: for every node (Single or
// Group), the potential at each outcome is π(n,v)·λ(n,v), normalized to a
// probability. Groups get a readout alongside Singles because the belief
// store carries π and λ for every node regardless of kind, and a
// contradiction between evidence and a deterministic-AND group surfaces as
// a degenerate marginal at the group itself, not just at the proposition
// that ultimately depends on it. A node whose potentials are both zero is
// reported as Marginal.Degenerate in the returned map; ComputeMarginals then
// also returns an error wrapping internalerr.ErrDegenerateMarginal that
// lists the keys of the degenerate nodes, alongside the full map, and the
// state still advances to StateMarginalsReady.
func (inf *Inferencer) ComputeMarginals() (map[string]Marginal, error) {
	if err := inf.requireState(StateLambdaPassed); err != nil {
		return nil, err
	}

	out := make(map[string]Marginal)
	var degenerate []string
	for _, n := range inf.bfsOrder {
		m, err := inf.marginalForNode(n)
		if err != nil {
			return nil, err
		}
		out[n.Key()] = m
		if m.Degenerate {
			degenerate = append(degenerate, n.Key())
		}
	}

	inf.state = StateMarginalsReady
	if len(degenerate) > 0 {
		return out, fmt.Errorf("%v: %w", degenerate, internalerr.ErrDegenerateMarginal)
	}
	return out, nil
}
