// Package loglinear is a predict-only log-linear FactorModel, grounded in
// the original source's model/maxent.rs (ExponentialModel). Training (the
// SGD loop over gold vs. expected features in maxent.rs) is out of scope
// for this repository per spec.md §1 — only Predict is implemented; weights
// are loaded from a file produced by an external trainer.
package loglinear

import (
	"math"

	"github.com/cognicore/propinfer/pkg/propinfer/config"
	"github.com/cognicore/propinfer/pkg/propinfer/factormodel"
)

// Model scores a FactorContext as a two-class log-linear model: one
// potential per class label, each the exponential of a weighted sum of
// features, normalized to a marginal. Mirrors maxent.rs's
// compute_potential/dot_product, generalized from a single backlink to the
// full premise list a FactorContext carries.
type Model struct {
	weights *config.WeightFile
}

// New builds a Model from a loaded weight file (see
// pkg/propinfer/config.LoadWeights).
func New(weights *config.WeightFile) *Model {
	return &Model{weights: weights}
}

// Predict implements factormodel.Model.
func (m *Model) Predict(ctx factormodel.FactorContext) (factormodel.Prediction, error) {
	potentials := [2]float64{0, 0}
	for classLabel := 0; classLabel < 2; classLabel++ {
		weights := m.weights.ForClass(classLabel)
		var dot float64
		for i, f := range ctx.Factor {
			prob := ctx.Probabilities[i]
			feature := f.Inference.FeatureString()
			dot += weights[positiveFeature(feature)] * prob
			dot += weights[negativeFeature(feature)] * (1 - prob)
		}
		potentials[classLabel] = math.Exp(dot)
	}

	norm := potentials[0] + potentials[1]
	if norm == 0 {
		return factormodel.Prediction{Marginal: 0.5}, nil
	}
	return factormodel.Prediction{Marginal: potentials[1] / norm}, nil
}

func positiveFeature(feature string) string { return feature + "+" }
func negativeFeature(feature string) string { return feature + "-" }
