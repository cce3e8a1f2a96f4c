package prologgraph

import (
	"testing"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
)

func TestGraphAssertAndBackwardFactors(t *testing.T) {
	g := New()

	premise := model.NewPredicate(model.EXISTENCE, []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewVariable("Person")},
	})
	conclusion := model.NewPredicate("is_a", []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewVariable("Person")},
	})
	factor := model.PredicateInferenceFactor{
		Premise:    model.NewPredicateGroup([]model.Predicate{premise}),
		RoleMaps:   model.NewGroupRoleMap([]model.RoleMap{model.NewRoleMap(map[string]string{"x": "x"})}),
		Conclusion: conclusion,
	}
	if err := g.Assert(factor); err != nil {
		t.Fatalf("Assert: %v", err)
	}

	query := model.NewPredicate("is_a", []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewConstant("Person", "bert")},
	})
	matches, err := g.BackwardFactors(query)
	if err != nil {
		t.Fatalf("BackwardFactors: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	unrelated := model.NewPredicate("used_for", []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewConstant("Person", "bert")},
	})
	noMatches, err := g.BackwardFactors(unrelated)
	if err != nil {
		t.Fatalf("BackwardFactors: %v", err)
	}
	if len(noMatches) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(noMatches))
	}
}

func TestGraphAllImplications(t *testing.T) {
	g := New()
	conclusion := model.NewPredicate("is_a", []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewVariable("Person")},
	})
	factor := model.PredicateInferenceFactor{Conclusion: conclusion}
	if err := g.Assert(factor); err != nil {
		t.Fatalf("Assert: %v", err)
	}

	all, err := g.AllImplications()
	if err != nil {
		t.Fatalf("AllImplications: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 implication, got %d", len(all))
	}
}
