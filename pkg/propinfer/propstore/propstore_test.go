package propstore

import (
	"errors"
	"testing"

	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
)

func testSingle(id string) propgraph.Node {
	p := model.MustProposition(model.NewPredicate("is_a", []model.LabeledArgument{
		{RoleName: "x", Argument: model.NewConstant("Person", id)},
	}))
	return propgraph.SingleNode(p)
}

func TestStorePiAndLambda(t *testing.T) {
	s := New()
	n := testSingle("bert")

	if _, _, err := s.Pi(n); !errors.Is(err, internalerr.ErrMissingBelief) {
		t.Fatalf("expected ErrMissingBelief before write, got %v", err)
	}

	s.SetPi(n, 0.3, 0.7)
	v0, v1, err := s.Pi(n)
	if err != nil {
		t.Fatalf("Pi: %v", err)
	}
	if v0 != 0.3 || v1 != 0.7 {
		t.Errorf("got (%v,%v), want (0.3,0.7)", v0, v1)
	}

	got, err := s.PiValue(n, 1)
	if err != nil {
		t.Fatalf("PiValue: %v", err)
	}
	if got != 0.7 {
		t.Errorf("PiValue(n,1) = %v, want 0.7", got)
	}

	s.SetLambda(n, 1, 1)
	lv, err := s.LambdaValue(n, 0)
	if err != nil {
		t.Fatalf("LambdaValue: %v", err)
	}
	if lv != 1 {
		t.Errorf("LambdaValue(n,0) = %v, want 1", lv)
	}
}

func TestStoreMessages(t *testing.T) {
	s := New()
	a := testSingle("a")
	b := testSingle("b")

	s.SetPiMessageValue(a, b, 1, 0.6)
	s.SetPiMessageValue(a, b, 0, 0.4)
	got, err := s.PiMessageValue(a, b, 1)
	if err != nil {
		t.Fatalf("PiMessageValue: %v", err)
	}
	if got != 0.6 {
		t.Errorf("got %v, want 0.6", got)
	}

	if _, err := s.PiMessageValue(b, a, 1); !errors.Is(err, internalerr.ErrMissingBelief) {
		t.Fatalf("expected ErrMissingBelief for reverse edge, got %v", err)
	}

	s.SetLambdaMessageValue(b, a, 0, 0.25)
	lm, err := s.LambdaMessageValue(b, a, 0)
	if err != nil {
		t.Fatalf("LambdaMessageValue: %v", err)
	}
	if lm != 0.25 {
		t.Errorf("got %v, want 0.25", lm)
	}
}

func TestStoreReset(t *testing.T) {
	s := New()
	n := testSingle("bert")
	s.SetPi(n, 0, 1)
	s.Reset()
	if _, _, err := s.Pi(n); !errors.Is(err, internalerr.ErrMissingBelief) {
		t.Fatalf("expected ErrMissingBelief after reset, got %v", err)
	}
}
