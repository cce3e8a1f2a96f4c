package inferencer

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/propinfer/pkg/propinfer/belief"
	"github.com/cognicore/propinfer/pkg/propinfer/factormodel"
	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/predgraph"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

const testDomain model.Domain = "Person"

func existenceProp(t *testing.T, id string) model.Proposition {
	t.Helper()
	return model.MustProposition(model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewConstant(testDomain, id)},
	}))
}

func isAProp(t *testing.T, fn, id string) model.Proposition {
	t.Helper()
	return model.MustProposition(model.NewPredicate(fn, []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewConstant(testDomain, id)},
	}))
}

// chainFactor builds a template R(x) -> T(x), one existence premise.
func chainFactor(conclusionFn string) model.PredicateInferenceFactor {
	v := model.NewVariable(testDomain)
	premise := model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{{RoleName: "x", Argument: v}})
	conclusion := model.NewPredicate(conclusionFn, []model.LabeledArgument{{RoleName: "x", Argument: v}})
	roleMap := model.NewRoleMap(map[string]string{"x": "x"})
	return model.PredicateInferenceFactor{
		Premise:    model.NewPredicateGroup([]model.Predicate{premise}),
		RoleMaps:   model.NewGroupRoleMap([]model.RoleMap{roleMap}),
		Conclusion: conclusion,
	}
}

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// Scenario 1: root-only target, no evidence. Expect P(R=1) = 1.0.
func TestScenarioRootOnly(t *testing.T) {
	pg, err := predgraph.NewStaticGraph(nil)
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := existenceProp(t, "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inf := New(g, factormodel.Constant{Marginal: 0}, belief.NewMemTable())
	marginals, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("RunFullPass: %v", err)
	}
	m := marginals[propgraph.SingleNode(target).Key()]
	if !approxEqual(m.P1, 1.0, 1e-9) {
		t.Errorf("expected P(R=1)=1.0, got %v", m.P1)
	}
}

// Scenario 2: single factor, no evidence. FactorModel returns 0.7 for the
// true premise combination. Expect P(T=1) ~ 0.7.
func TestScenarioSingleFactorNoEvidence(t *testing.T) {
	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{chainFactor("is_a")})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := isAProp(t, "is_a", "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inf := New(g, factormodel.Constant{Marginal: 0.7}, belief.NewMemTable())
	marginals, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("RunFullPass: %v", err)
	}
	m := marginals[propgraph.SingleNode(target).Key()]
	if !approxEqual(m.P1, 0.7, 1e-6) {
		t.Errorf("expected P(T=1)~=0.7, got %v", m.P1)
	}
}

// Scenario 3: evidence overrides the prior computed in scenario 2.
func TestScenarioEvidenceOverridesPrior(t *testing.T) {
	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{chainFactor("is_a")})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := isAProp(t, "is_a", "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	table := belief.NewMemTable()
	inf := New(g, factormodel.Constant{Marginal: 0.7}, table)
	if _, err := inf.RunFullPass(); err != nil {
		t.Fatalf("first RunFullPass: %v", err)
	}

	if err := table.StorePropositionProbability(target, 0.1); err != nil {
		t.Fatalf("store evidence: %v", err)
	}

	marginals, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("second RunFullPass: %v", err)
	}
	m := marginals[propgraph.SingleNode(target).Key()]
	if !approxEqual(m.P1, 0.1, 1e-9) {
		t.Errorf("expected evidence pinning P(T=1)=0.1, got %v", m.P1)
	}
}

// Scenario 4: conjunction. Two roots, one group {R1,R2} concluding T.
// Model returns 0.9 when both premises true, 0 otherwise. With no evidence
// (roots pinned true), expect P(T=1) ~ 0.9.
func TestScenarioConjunction(t *testing.T) {
	v1 := model.NewVariable(testDomain)
	v2 := model.NewVariable(testDomain)
	premise := model.NewPredicateGroup([]model.Predicate{
		model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{{RoleName: "x", Argument: v1}}),
		model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{{RoleName: "x", Argument: v2}}),
	})
	conclusion := model.NewPredicate("pair", []model.LabeledArgument{
		{RoleName: "a", Argument: v1}, {RoleName: "b", Argument: v2},
	})
	roleMaps := model.NewGroupRoleMap([]model.RoleMap{
		model.NewRoleMap(map[string]string{"x": "a"}),
		model.NewRoleMap(map[string]string{"x": "b"}),
	})
	factor := model.PredicateInferenceFactor{Premise: premise, RoleMaps: roleMaps, Conclusion: conclusion}

	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{factor})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := model.MustProposition(model.NewPredicate("pair", []model.LabeledArgument{
		{RoleName: "a", Argument: model.NewConstant(testDomain, "r1")},
		{RoleName: "b", Argument: model.NewConstant(testDomain, "r2")},
	}))
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	fm := conjunctionModel{trueProb: 0.9}
	inf := New(g, fm, belief.NewMemTable())
	marginals, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("RunFullPass: %v", err)
	}
	m := marginals[propgraph.SingleNode(target).Key()]
	if !approxEqual(m.P1, 0.9, 1e-6) {
		t.Errorf("expected P(T=1)~=0.9, got %v", m.P1)
	}
}

// conjunctionModel returns trueProb if every premise probability is 1, else 0.
type conjunctionModel struct{ trueProb float64 }

func (m conjunctionModel) Predict(ctx factormodel.FactorContext) (factormodel.Prediction, error) {
	for _, p := range ctx.Probabilities {
		if p != 1.0 {
			return factormodel.Prediction{Marginal: 0}, nil
		}
	}
	return factormodel.Prediction{Marginal: m.trueProb}, nil
}

// noisyOrModel combines however many of its context's premises are true via
// the standard noisy-OR formula, each contributing the same per-factor
// weight: P(true) = 1 - Π(1-weight) over the true premises. Used for
// scenario 5, where two independently-sufficient premise groups both
// support the same conclusion and should combine disjunctively rather than
// conjunctively (contrast conjunctionModel above).
type noisyOrModel struct{ weight float64 }

func (m noisyOrModel) Predict(ctx factormodel.FactorContext) (factormodel.Prediction, error) {
	failProb := 1.0
	anyTrue := false
	for _, p := range ctx.Probabilities {
		if p == 1.0 {
			anyTrue = true
			failProb *= 1 - m.weight
		}
	}
	if !anyTrue {
		return factormodel.Prediction{Marginal: 0}, nil
	}
	return factormodel.Prediction{Marginal: 1 - failProb}, nil
}

// Scenario 5: disjunctive factors. Two separate groups {R1} and {R2} both
// concluding T, model returns 0.5 for each. Expect P(T=1) ~ 0.75, combined
// via the leave-one-out π-message product: since R1 and R2 are both
// pinned-true existence roots, the only premise combination with nonzero
// weight is "both groups true", at which point the noisy-OR model's
// combined marginal (1 - 0.5*0.5 = 0.75) becomes the whole answer.
func TestScenarioDisjunctiveFactors(t *testing.T) {
	va, vb := model.NewVariable(testDomain), model.NewVariable(testDomain)
	conclusionShape := func(a, b model.Argument) model.Predicate {
		return model.NewPredicate("pair", []model.LabeledArgument{
			{RoleName: "a", Argument: a}, {RoleName: "b", Argument: b},
		})
	}

	factor1 := model.PredicateInferenceFactor{
		Premise: model.NewPredicateGroup([]model.Predicate{
			model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{{RoleName: "x", Argument: va}}),
		}),
		RoleMaps:   model.NewGroupRoleMap([]model.RoleMap{model.NewRoleMap(map[string]string{"x": "a"})}),
		Conclusion: conclusionShape(va, vb),
	}
	factor2 := model.PredicateInferenceFactor{
		Premise: model.NewPredicateGroup([]model.Predicate{
			model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{{RoleName: "x", Argument: vb}}),
		}),
		RoleMaps:   model.NewGroupRoleMap([]model.RoleMap{model.NewRoleMap(map[string]string{"x": "b"})}),
		Conclusion: conclusionShape(va, vb),
	}

	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{factor1, factor2})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := model.MustProposition(conclusionShape(
		model.NewConstant(testDomain, "r1"), model.NewConstant(testDomain, "r2")))
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inf := New(g, noisyOrModel{weight: 0.5}, belief.NewMemTable())
	marginals, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("RunFullPass: %v", err)
	}
	m := marginals[propgraph.SingleNode(target).Key()]
	if !approxEqual(m.P1, 0.75, 1e-6) {
		t.Errorf("expected P(T=1)~=0.75, got %v", m.P1)
	}
}

// Scenario 6: degenerate marginal. Evidence contradicts a deterministic AND
// group: pin R1=0 while a group requiring {R1} to be true is the only path
// to T. Expect a DegenerateMarginal error from ComputeMarginals.
func TestScenarioDegenerate(t *testing.T) {
	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{chainFactor("is_a")})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := isAProp(t, "is_a", "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	table := belief.NewMemTable()
	root := existenceProp(t, "r")
	if err := table.StorePropositionProbability(root, 0); err != nil {
		t.Fatalf("store root evidence: %v", err)
	}
	// degenerateModel treats its single premise as a hard gate: true only
	// when the premise is true. Evidencing the conclusion T as definitely
	// true while its only supporting root R is evidenced definitely false
	// is the contradiction spec.md §8 scenario 6 describes: the group
	// standing between them ends up with both potentials at zero.
	if err := table.StorePropositionProbability(target, 1); err != nil {
		t.Fatalf("store target evidence: %v", err)
	}

	inf := New(g, degenerateModel{}, table)
	if err := inf.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := inf.PiPass(); err != nil {
		t.Fatalf("PiPass: %v", err)
	}
	if err := inf.LambdaPass(); err != nil {
		t.Fatalf("LambdaPass: %v", err)
	}
	_, err = inf.ComputeMarginals()
	if !errors.Is(err, internalerr.ErrDegenerateMarginal) {
		t.Fatalf("expected ErrDegenerateMarginal, got %v", err)
	}
}

// degenerateModel is a hard gate: it returns 1 when every premise is true
// and 0 otherwise. With the conclusion evidenced true and its only premise
// pinned false, the group between them gets π=(1,0) from the premise and
// λ=(0,1) from the conclusion, so both of its potentials go to zero.
type degenerateModel struct{}

func (degenerateModel) Predict(ctx factormodel.FactorContext) (factormodel.Prediction, error) {
	for _, p := range ctx.Probabilities {
		if p < 1 {
			return factormodel.Prediction{Marginal: 0}, nil
		}
	}
	return factormodel.Prediction{Marginal: 1}, nil
}

// Law: re-initialize idempotence. Reinit followed by a full pass produces
// the same marginals as the original RunFullPass.
func TestLawReinitIdempotence(t *testing.T) {
	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{chainFactor("is_a")})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := isAProp(t, "is_a", "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inf := New(g, factormodel.Constant{Marginal: 0.42}, belief.NewMemTable())
	first, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("first RunFullPass: %v", err)
	}

	if err := inf.Reinit(); err != nil {
		t.Fatalf("Reinit: %v", err)
	}
	if err := inf.PiPass(); err != nil {
		t.Fatalf("PiPass: %v", err)
	}
	if err := inf.LambdaPass(); err != nil {
		t.Fatalf("LambdaPass: %v", err)
	}
	second, err := inf.ComputeMarginals()
	if err != nil {
		t.Fatalf("ComputeMarginals: %v", err)
	}

	key := propgraph.SingleNode(target).Key()
	if !approxEqual(first[key].P1, second[key].P1, 1e-12) {
		t.Errorf("reinit marginal mismatch: %v vs %v", first[key].P1, second[key].P1)
	}
}

// Invariant: every node's marginal (Singles and Groups) has P1 in [0,1] and
// P0+P1 = 1 within tolerance.
func TestInvariantMarginalsSumToOne(t *testing.T) {
	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{chainFactor("is_a")})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := isAProp(t, "is_a", "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inf := New(g, factormodel.Constant{Marginal: 0.3}, belief.NewMemTable())
	marginals, err := inf.RunFullPass()
	if err != nil {
		t.Fatalf("RunFullPass: %v", err)
	}
	for key, m := range marginals {
		if m.Degenerate {
			continue
		}
		if m.P1 < 0 || m.P1 > 1 {
			t.Errorf("%s: P1 out of range: %v", key, m.P1)
		}
		if !approxEqual(m.P0+m.P1, 1.0, 1e-9) {
			t.Errorf("%s: P0+P1 != 1: %v + %v", key, m.P0, m.P1)
		}
	}
}

// Invariant: incremental UpdateEvidence pins the changed Single's marginal
// to the newly observed probability without requiring a full reinit.
func TestIncrementalUpdateEvidencePinning(t *testing.T) {
	pg, err := predgraph.NewStaticGraph([]model.PredicateInferenceFactor{chainFactor("is_a")})
	if err != nil {
		t.Fatalf("NewStaticGraph: %v", err)
	}
	target := isAProp(t, "is_a", "r")
	g, err := propgraph.Build(pg, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	table := belief.NewMemTable()
	inf := New(g, factormodel.Constant{Marginal: 0.7}, table)
	if _, err := inf.RunFullPass(); err != nil {
		t.Fatalf("RunFullPass: %v", err)
	}

	if err := table.StorePropositionProbability(target, 0.25); err != nil {
		t.Fatalf("store evidence: %v", err)
	}
	marginals, err := inf.UpdateEvidence(target)
	if err != nil {
		t.Fatalf("UpdateEvidence: %v", err)
	}
	m := marginals[propgraph.SingleNode(target).Key()]
	if !approxEqual(m.P1, 0.25, 1e-9) {
		t.Errorf("expected incremental pinning to 0.25, got %v", m.P1)
	}
}
