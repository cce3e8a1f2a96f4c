package predgraph

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
)

// DefaultCacheSize bounds the backward-factor LRU cache a StaticGraph keeps
// per instance. spec.md §4.1 asks for factor graphs produced for a given
// Single to be "cached per run"; a bounded LRU here gives that for
// long-lived graphs without unbounded memory growth.
const DefaultCacheSize = 4096

// StaticGraph is an in-memory PredicateGraph populated ahead of time (from
// a YAML file via LoadStaticGraph, or programmatically via NewStaticGraph).
// It is read-only after construction, matching spec.md §9's
// shared-immutable-graph guidance.
type StaticGraph struct {
	factors []model.PredicateInferenceFactor
	cache   *lru.Cache[string, []model.PredicateInferenceFactor]
}

// NewStaticGraph builds a graph from an explicit factor list.
func NewStaticGraph(factors []model.PredicateInferenceFactor) (*StaticGraph, error) {
	cache, err := lru.New[string, []model.PredicateInferenceFactor](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("allocate backward-factor cache: %w", err)
	}
	return &StaticGraph{factors: factors, cache: cache}, nil
}

// BackwardFactors implements Graph. Results are memoized by the queried
// predicate's shape key so repeated expansion of the same Single during a
// single PropositionGraph build does not rescan the factor list.
func (g *StaticGraph) BackwardFactors(pred model.Predicate) ([]model.PredicateInferenceFactor, error) {
	key := shapeKey(pred)
	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}

	var matches []model.PredicateInferenceFactor
	for _, f := range g.factors {
		if f.Conclusion.SameShape(pred) {
			matches = append(matches, f)
		}
	}
	g.cache.Add(key, matches)
	return matches, nil
}

// AllImplications implements Graph.
func (g *StaticGraph) AllImplications() ([]model.PredicateInferenceFactor, error) {
	out := make([]model.PredicateInferenceFactor, len(g.factors))
	copy(out, g.factors)
	return out, nil
}

func shapeKey(pred model.Predicate) string {
	names := pred.RoleNames()
	sorted := append([]string(nil), names...)
	// RoleNames preserves declaration order; the shape key needs to be
	// order-independent since SameShape compares role-name sets.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	key := pred.Function
	for _, n := range sorted {
		key += "|" + n
	}
	return key
}

// --- YAML rule file loading -------------------------------------------------

type yamlArgument struct {
	Role   string `yaml:"role"`
	Domain string `yaml:"domain"`
	Value  string `yaml:"value,omitempty"` // present => Constant, absent => Variable
}

type yamlPredicate struct {
	Function string         `yaml:"function"`
	Roles    []yamlArgument `yaml:"roles"`
}

type yamlFactor struct {
	Premise    []yamlPredicate    `yaml:"premise"`
	RoleMaps   []map[string]string `yaml:"role_maps"`
	Conclusion yamlPredicate      `yaml:"conclusion"`
}

type yamlDocument struct {
	Factors []yamlFactor `yaml:"factors"`
}

// LoadStaticGraph reads a YAML rule file shaped like:
//
//	factors:
//	  - premise:
//	      - function: EXISTENCE
//	        roles:
//	          - {role: x, domain: Person}
//	    role_maps:
//	      - {x: x}
//	    conclusion:
//	      function: is_a
//	      roles:
//	        - {role: x, domain: Person}
func LoadStaticGraph(path string) (*StaticGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}

	factors := make([]model.PredicateInferenceFactor, 0, len(doc.Factors))
	for _, yf := range doc.Factors {
		premiseTerms := make([]model.Predicate, len(yf.Premise))
		for i, yp := range yf.Premise {
			premiseTerms[i] = toPredicate(yp)
		}
		roleMaps := make([]model.RoleMap, len(yf.RoleMaps))
		for i, rm := range yf.RoleMaps {
			roleMaps[i] = model.NewRoleMap(rm)
		}
		factors = append(factors, model.PredicateInferenceFactor{
			Premise:    model.NewPredicateGroup(premiseTerms),
			RoleMaps:   model.NewGroupRoleMap(roleMaps),
			Conclusion: toPredicate(yf.Conclusion),
		})
	}

	return NewStaticGraph(factors)
}

func toPredicate(yp yamlPredicate) model.Predicate {
	roles := make([]model.LabeledArgument, len(yp.Roles))
	for i, ya := range yp.Roles {
		var arg model.Argument
		if ya.Value != "" {
			arg = model.NewConstant(model.Domain(ya.Domain), ya.Value)
		} else {
			arg = model.NewVariable(model.Domain(ya.Domain))
		}
		roles[i] = model.LabeledArgument{RoleName: ya.Role, Argument: arg}
	}
	return model.NewPredicate(yp.Function, roles)
}
