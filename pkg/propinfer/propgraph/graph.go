// Package propgraph builds the bipartite proposition graph (spec.md §3,
// §4.1, §4.2) by expanding a target proposition backward through a
// predgraph.Graph. The resulting Graph is read-only once built and shared
// by an inferencer.Inferencer (spec.md §5, §9: "shared-immutable graphs").
package propgraph

import (
	"fmt"

	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/predgraph"
)

// NodeKind tags a proposition-graph vertex as a Single or a Group.
type NodeKind int

const (
	NodeSingle NodeKind = iota
	NodeGroup
)

// Node is the bipartite graph's tagged-union vertex type: Single(Proposition)
// or Group(PropositionGroup). Dispatch on Kind rather than modeling this as
// an interface or inheritance hierarchy (spec.md §9).
type Node struct {
	Kind   NodeKind
	Single model.Proposition
	Group  model.PropositionGroup
}

// SingleNode wraps a Proposition as a graph node.
func SingleNode(p model.Proposition) Node { return Node{Kind: NodeSingle, Single: p} }

// GroupNode wraps a PropositionGroup as a graph node.
func GroupNode(g model.PropositionGroup) Node { return Node{Kind: NodeGroup, Group: g} }

// IsSingle reports whether this node wraps a Proposition.
func (n Node) IsSingle() bool { return n.Kind == NodeSingle }

// IsGroup reports whether this node wraps a PropositionGroup.
func (n Node) IsGroup() bool { return n.Kind == NodeGroup }

// Key is the node's identity used for map keys and visited-sets: the kind
// tag plus the wrapped value's own hash string, since a Single's hash and a
// Group's hash are drawn from different formats and could otherwise
// collide.
func (n Node) Key() string {
	if n.Kind == NodeSingle {
		return "S:" + n.Single.HashString()
	}
	return "G:" + n.Group.HashString()
}

func (n Node) String() string {
	if n.Kind == NodeSingle {
		return n.Single.String()
	}
	return n.Group.String()
}

// DefaultMaxFanIn bounds 2^k combination enumeration at a node with k
// parents (spec.md §9: "Implementations should reject graphs with k above
// a configured cap (default 6)").
const DefaultMaxFanIn = 6

// Graph is the constructed bipartite proposition graph.
type Graph struct {
	PredicateGraph predgraph.Graph

	singles map[string]model.Proposition
	groups  map[string]model.PropositionGroup

	singleForward  map[string][]string // single key -> group keys (premises it feeds)
	singleBackward map[string][]string // single key -> group keys (factors concluding it)
	groupForward   map[string]string   // group key -> single key (the conclusion it proves)
	groupFactor    map[string]model.PropositionInferenceFactor

	rootKeys []string
	roots    map[string]model.Proposition

	nodeOrder []Node
	seenNode  map[string]bool

	target   model.Proposition
	maxFanIn int
}

// Target returns the proposition the graph was built for.
func (g *Graph) Target() model.Proposition { return g.target }

// Roots returns the existence-root Singles, in discovery order.
func (g *Graph) Roots() []model.Proposition {
	out := make([]model.Proposition, len(g.rootKeys))
	for i, k := range g.rootKeys {
		out[i] = g.roots[k]
	}
	return out
}

// IsRoot reports whether p is one of the graph's existence roots.
func (g *Graph) IsRoot(p model.Proposition) bool {
	_, ok := g.roots[p.HashString()]
	return ok
}

// AllNodes returns every Single and Group reached during construction, in
// discovery order.
func (g *Graph) AllNodes() []Node {
	out := make([]Node, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// Forward returns a node's children: for a Single, the Groups it feeds as a
// premise term; for a Group, the single conclusion it proves (at most one).
func (g *Graph) Forward(n Node) []Node {
	if n.IsSingle() {
		keys := g.singleForward[n.Single.HashString()]
		out := make([]Node, len(keys))
		for i, k := range keys {
			out[i] = GroupNode(g.groups[k])
		}
		return out
	}
	key, ok := g.groupForward[n.Group.HashString()]
	if !ok {
		return nil
	}
	return []Node{SingleNode(g.singles[key])}
}

// Backward returns a node's parents: for a Single, the Groups whose factor
// concludes it; for a Group, its premise Single terms, in the order stored
// on the PropositionGroup (spec.md §4.5 "group_backward").
func (g *Graph) Backward(n Node) []Node {
	if n.IsGroup() {
		out := make([]Node, len(n.Group.Terms))
		for i, t := range n.Group.Terms {
			out[i] = SingleNode(t)
		}
		return out
	}
	keys := g.singleBackward[n.Single.HashString()]
	out := make([]Node, len(keys))
	for i, k := range keys {
		out[i] = GroupNode(g.groups[k])
	}
	return out
}

// FactorFor returns the ground PropositionInferenceFactor that instantiated
// a Group node (its premise, conclusion, and originating template).
func (g *Graph) FactorFor(group model.PropositionGroup) (model.PropositionInferenceFactor, bool) {
	f, ok := g.groupFactor[group.HashString()]
	return f, ok
}

func (g *Graph) recordNode(n Node) {
	key := n.Key()
	if g.seenNode[key] {
		return
	}
	g.seenNode[key] = true
	g.nodeOrder = append(g.nodeOrder, n)
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	maxFanIn int
}

// WithMaxFanIn overrides the default fan-in cap (DefaultMaxFanIn).
func WithMaxFanIn(n int) Option {
	return func(c *buildConfig) { c.maxFanIn = n }
}

// Build expands target backward through pg into a PropositionGraph
// (spec.md §4.1). Construction fails with internalerr.ErrUnresolvableProposition
// if backward expansion reaches a non-existence Single with no factors (or
// detects a cycle), and with internalerr.ErrInconsistentRoleMap if a
// factor's role maps cannot fully ground a premise.
func Build(pg predgraph.Graph, target model.Proposition, opts ...Option) (*Graph, error) {
	cfg := buildConfig{maxFanIn: DefaultMaxFanIn}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		PredicateGraph: pg,
		singles:        make(map[string]model.Proposition),
		groups:         make(map[string]model.PropositionGroup),
		singleForward:  make(map[string][]string),
		singleBackward: make(map[string][]string),
		groupForward:   make(map[string]string),
		groupFactor:    make(map[string]model.PropositionInferenceFactor),
		roots:          make(map[string]model.Proposition),
		seenNode:       make(map[string]bool),
		target:         target,
		maxFanIn:       cfg.maxFanIn,
	}

	visiting := make(map[string]bool) // on the current DFS path
	visited := make(map[string]bool)  // fully expanded already

	var expand func(s model.Proposition) error
	expand = func(s model.Proposition) error {
		key := s.HashString()
		if visited[key] {
			return nil
		}
		if visiting[key] {
			return fmt.Errorf("cycle detected re-entering %s: %w", key, internalerr.ErrUnresolvableProposition)
		}
		visiting[key] = true
		defer delete(visiting, key)

		g.singles[key] = s
		g.recordNode(SingleNode(s))

		templates, err := pg.BackwardFactors(s.Predicate())
		if err != nil {
			return fmt.Errorf("backward factors for %s: %w", key, err)
		}

		if len(templates) == 0 {
			if !s.IsExistenceRoot() {
				return fmt.Errorf("%s: %w", key, internalerr.ErrUnresolvableProposition)
			}
			if _, already := g.roots[key]; !already {
				g.rootKeys = append(g.rootKeys, key)
			}
			g.roots[key] = s
			visited[key] = true
			return nil
		}

		for _, template := range templates {
			instance, err := Instantiate(template, s)
			if err != nil {
				return err
			}
			if len(instance.Premise.Terms) > cfg.maxFanIn {
				return fmt.Errorf("group %s has %d premises (cap %d): %w",
					instance.Premise.HashString(), len(instance.Premise.Terms), cfg.maxFanIn, internalerr.ErrFanInExceeded)
			}

			groupKey := instance.Premise.HashString()
			g.groups[groupKey] = instance.Premise
			g.recordNode(GroupNode(instance.Premise))
			g.groupFactor[groupKey] = instance
			g.groupForward[groupKey] = key
			g.singleBackward[key] = appendUnique(g.singleBackward[key], groupKey)

			for _, term := range instance.Premise.Terms {
				termKey := term.HashString()
				g.singleForward[termKey] = appendUnique(g.singleForward[termKey], groupKey)
				if err := expand(term); err != nil {
					return err
				}
			}
		}

		if len(g.singleBackward[key]) > cfg.maxFanIn {
			return fmt.Errorf("proposition %s has %d backward factors (cap %d): %w",
				key, len(g.singleBackward[key]), cfg.maxFanIn, internalerr.ErrFanInExceeded)
		}

		visited[key] = true
		return nil
	}

	if err := expand(target); err != nil {
		return nil, err
	}
	return g, nil
}

// Instantiate substitutes a ground conclusion's constants through a
// PredicateInferenceFactor template's role maps, producing a ground
// PropositionInferenceFactor (spec.md §4.1 step 1; §3 PropositionInferenceFactor).
// It fails with internalerr.ErrInconsistentRoleMap if the substitution
// cannot fully ground every premise role.
func Instantiate(factor model.PredicateInferenceFactor, conclusion model.Proposition) (model.PropositionInferenceFactor, error) {
	concPred := conclusion.Predicate()
	if !factor.Conclusion.SameShape(concPred) {
		return model.PropositionInferenceFactor{}, fmt.Errorf(
			"factor conclusion shape does not match %s: %w", concPred.HashString(), internalerr.ErrInconsistentRoleMap)
	}
	if len(factor.RoleMaps.Maps) != len(factor.Premise.Terms) {
		return model.PropositionInferenceFactor{}, fmt.Errorf(
			"role map count %d does not match premise term count %d: %w",
			len(factor.RoleMaps.Maps), len(factor.Premise.Terms), internalerr.ErrInconsistentRoleMap)
	}

	concVals := make(map[string]model.Argument, len(concPred.Roles))
	for _, la := range concPred.Roles {
		concVals[la.RoleName] = la.Argument
	}

	terms := make([]model.Proposition, len(factor.Premise.Terms))
	for i, premiseTerm := range factor.Premise.Terms {
		roleMap := factor.RoleMaps.Maps[i]
		groundRoles := make([]model.LabeledArgument, 0, len(premiseTerm.Roles))
		for _, la := range premiseTerm.Roles {
			concRole, ok := roleMap.Get(la.RoleName)
			if !ok {
				return model.PropositionInferenceFactor{}, fmt.Errorf(
					"premise role %s has no conclusion mapping in term %d: %w", la.RoleName, i, internalerr.ErrInconsistentRoleMap)
			}
			val, ok := concVals[concRole]
			if !ok {
				return model.PropositionInferenceFactor{}, fmt.Errorf(
					"conclusion role %s referenced by premise role %s not found: %w", concRole, la.RoleName, internalerr.ErrInconsistentRoleMap)
			}
			groundRoles = append(groundRoles, model.LabeledArgument{RoleName: la.RoleName, Argument: val})
		}

		groundPred := model.NewPredicate(premiseTerm.Function, groundRoles)
		prop, err := model.NewProposition(groundPred)
		if err != nil {
			return model.PropositionInferenceFactor{}, fmt.Errorf("instantiate premise term %d: %w", i, err)
		}
		terms[i] = prop
	}

	return model.PropositionInferenceFactor{
		Premise:    model.NewPropositionGroup(terms),
		Conclusion: conclusion,
		Inference:  factor,
	}, nil
}
