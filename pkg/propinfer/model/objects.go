// Package model holds the immutable value types of the predicate/proposition
// layer: arguments, predicates, propositions, groups, and factors (spec §3).
// Nothing in this package touches storage, scoring, or message passing —
// those are the responsibility of predgraph, factormodel, and propgraph/
// inferencer respectively.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/propinfer/pkg/propinfer/internalerr"
)

// Domain is a closed enumeration of entity types. Unlike the original
// source's fixed Jack|Jill|Verb enum, Domain is an opaque, comparable
// label: pkg/propinfer/config can load a list of domain names, but Domain
// values are not checked against it anywhere in this module.
type Domain string

// EXISTENCE is the reserved predicate function name for root facts.
const EXISTENCE = "EXISTENCE"

// CLASS_LABELS is the Boolean outcome universe: 0 = false, 1 = true.
var CLASS_LABELS = [2]int{0, 1}

// Entity names a concrete member of a Domain. The inference core never
// touches Entity directly (a Constant argument only carries the bare ID);
// NewConstantFromEntity builds a Constant from one, using the entity's Name
// as the ID. No package maps a Constant back to an Entity.
type Entity struct {
	Domain Domain
	Name   string
}

// NewConstantFromEntity builds a Constant argument bound to e.
func NewConstantFromEntity(e Entity) Argument {
	return NewConstant(e.Domain, e.Name)
}

// ArgumentKind tags an Argument as bound to a concrete entity or left
// quantified.
type ArgumentKind int

const (
	ArgConstant ArgumentKind = iota
	ArgVariable
)

// Argument is either a Constant(domain, entity_id) or a Variable(domain).
type Argument struct {
	Kind     ArgumentKind
	Domain   Domain
	EntityID string // only meaningful when Kind == ArgConstant
}

// NewConstant builds a Constant argument.
func NewConstant(domain Domain, entityID string) Argument {
	return Argument{Kind: ArgConstant, Domain: domain, EntityID: entityID}
}

// NewVariable builds a Variable argument.
func NewVariable(domain Domain) Argument {
	return Argument{Kind: ArgVariable, Domain: domain}
}

// IsConstant reports whether the argument is bound.
func (a Argument) IsConstant() bool { return a.Kind == ArgConstant }

// IsVariable reports whether the argument is quantified.
func (a Argument) IsVariable() bool { return a.Kind == ArgVariable }

// HashString returns the canonical identity string used for equality and
// map keys throughout the package.
func (a Argument) HashString() string {
	if a.Kind == ArgConstant {
		return a.EntityID
	}
	return fmt.Sprintf("?%s", a.Domain)
}

// Quantify converts a Constant into the corresponding Variable, leaving a
// Variable unchanged. Used when turning a ground fact back into a template.
func (a Argument) Quantify() Argument {
	if a.Kind == ArgVariable {
		return a
	}
	return NewVariable(a.Domain)
}

func (a Argument) String() string {
	switch a.Kind {
	case ArgConstant:
		return fmt.Sprintf("Constant(%s,%s)", a.Domain, a.EntityID)
	default:
		return fmt.Sprintf("Variable(%s)", a.Domain)
	}
}

// LabeledArgument binds an argument to the predicate role it fills.
// Predicates bind arguments by role name, not position.
type LabeledArgument struct {
	RoleName string
	Argument Argument
}

// HashString is role_name=argument_hash.
func (la LabeledArgument) HashString() string {
	return fmt.Sprintf("%s=%s", la.RoleName, la.Argument.HashString())
}

// Quantify returns a copy with the argument converted to a Variable.
func (la LabeledArgument) Quantify() LabeledArgument {
	return LabeledArgument{RoleName: la.RoleName, Argument: la.Argument.Quantify()}
}

// Predicate is (function_name, set of LabeledArgument). Roles are stored in
// the order supplied at construction; identity of two labeled-argument
// lists (HashString) is judged by role agreement, not positional order.
type Predicate struct {
	Function string
	Roles    []LabeledArgument
}

// NewPredicate constructs a predicate from a function name and its roles.
func NewPredicate(function string, roles []LabeledArgument) Predicate {
	return Predicate{Function: function, Roles: roles}
}

// HashString canonicalizes the predicate: function name plus its roles'
// hash strings, sorted so that the same roles supplied in a different order
// yield the same identity (PredicateGroup likewise sorts whole terms).
func (p Predicate) HashString() string {
	parts := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		parts[i] = r.HashString()
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s[%s]", p.Function, strings.Join(parts, ","))
}

// RoleNames returns the predicate's role names in declaration order.
func (p Predicate) RoleNames() []string {
	names := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		names[i] = r.RoleName
	}
	return names
}

// RoleValue looks up the argument bound to a role name.
func (p Predicate) RoleValue(roleName string) (Argument, bool) {
	for _, r := range p.Roles {
		if r.RoleName == roleName {
			return r.Argument, true
		}
	}
	return Argument{}, false
}

// IsFact reports whether every argument is a Constant.
func (p Predicate) IsFact() bool {
	for _, r := range p.Roles {
		if !r.Argument.IsConstant() {
			return false
		}
	}
	return true
}

// SameShape reports whether p and other share a function name and role-name
// set, irrespective of argument bindings — the "unifies by function and
// role shape" test used during backward expansion (spec §4.1 step 1).
func (p Predicate) SameShape(other Predicate) bool {
	if p.Function != other.Function || len(p.Roles) != len(other.Roles) {
		return false
	}
	mine := make(map[string]struct{}, len(p.Roles))
	for _, r := range p.Roles {
		mine[r.RoleName] = struct{}{}
	}
	for _, r := range other.Roles {
		if _, ok := mine[r.RoleName]; !ok {
			return false
		}
	}
	return true
}

// Proposition is a newtype wrapper over a fact Predicate: a fully ground
// predicate, and thus a Boolean random variable in the model.
type Proposition struct {
	predicate Predicate
}

// NewProposition lifts a Predicate into a Proposition. Fails with
// internalerr.ErrNotGround if any argument is a Variable.
func NewProposition(p Predicate) (Proposition, error) {
	if !p.IsFact() {
		return Proposition{}, fmt.Errorf("%s: %w", p.HashString(), internalerr.ErrNotGround)
	}
	return Proposition{predicate: p}, nil
}

// MustProposition is NewProposition but panics on failure; reserved for
// callers (tests, fixtures) that already know the predicate is ground.
func MustProposition(p Predicate) Proposition {
	prop, err := NewProposition(p)
	if err != nil {
		panic(err)
	}
	return prop
}

// Predicate returns the wrapped ground predicate.
func (p Proposition) Predicate() Predicate { return p.predicate }

// HashString is the identity used for map keys and visited-sets.
func (p Proposition) HashString() string { return p.predicate.HashString() }

func (p Proposition) String() string { return p.HashString() }

// IsExistenceRoot reports whether this proposition carries the reserved
// EXISTENCE function, the shape roots are required to have (spec §3
// invariant 4).
func (p Proposition) IsExistenceRoot() bool { return p.predicate.Function == EXISTENCE }

// PredicateGroup is an ordered-but-hash-canonicalized multiset of
// predicates forming the conjunctive premise of a factor template.
type PredicateGroup struct {
	Terms []Predicate
}

// NewPredicateGroup builds a group from its member predicates.
func NewPredicateGroup(terms []Predicate) PredicateGroup {
	return PredicateGroup{Terms: terms}
}

// HashString sorts member hash strings and joins them, so two groups with
// the same members in different orders compare equal.
func (g PredicateGroup) HashString() string {
	return canonicalJoin(g.Terms, func(p Predicate) string { return p.HashString() })
}

// PropositionGroup is the ground counterpart of PredicateGroup: the
// conjunctive premise of a ground factor instance.
type PropositionGroup struct {
	Terms []Proposition
}

// NewPropositionGroup builds a group from its member propositions.
func NewPropositionGroup(terms []Proposition) PropositionGroup {
	return PropositionGroup{Terms: terms}
}

// HashString sorts member hash strings and joins them.
func (g PropositionGroup) HashString() string {
	return canonicalJoin(g.Terms, func(p Proposition) string { return p.predicate.HashString() })
}

func (g PropositionGroup) String() string { return g.HashString() }

func canonicalJoin[T any](items []T, keyOf func(T) string) string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = keyOf(it)
	}
	sort.Strings(keys)
	return strings.Join(keys, ";")
}

// RoleMap maps a single premise term's role names to the conclusion's role
// names, used only during predicate→proposition factor instantiation.
type RoleMap struct {
	entries map[string]string
}

// NewRoleMap builds a RoleMap from premise-role → conclusion-role pairs.
func NewRoleMap(entries map[string]string) RoleMap {
	cp := make(map[string]string, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return RoleMap{entries: cp}
}

// Get returns the conclusion role name that premiseRole maps to.
func (rm RoleMap) Get(premiseRole string) (string, bool) {
	v, ok := rm.entries[premiseRole]
	return v, ok
}

func (rm RoleMap) String() string {
	keys := make([]string, 0, len(rm.entries))
	for k := range rm.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, rm.entries[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// GroupRoleMap holds one RoleMap per premise term, in the same order as the
// factor's PredicateGroup.Terms.
type GroupRoleMap struct {
	Maps []RoleMap
}

// NewGroupRoleMap builds a GroupRoleMap from its per-term maps.
func NewGroupRoleMap(maps []RoleMap) GroupRoleMap {
	return GroupRoleMap{Maps: maps}
}

func (g GroupRoleMap) String() string {
	parts := make([]string, len(g.Maps))
	for i, m := range g.Maps {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PredicateInferenceFactor is a quantified implication template:
// premise ∧ role_maps ⊢ conclusion.
type PredicateInferenceFactor struct {
	Premise    PredicateGroup
	RoleMaps   GroupRoleMap
	Conclusion Predicate
}

// UniqueKey identifies this factor template for feature naming (log-linear
// scoring) and for training-time bookkeeping (out of scope here, but the
// key is still useful as a stable cache/feature identifier).
func (f PredicateInferenceFactor) UniqueKey() string {
	return fmt.Sprintf("%s->%s%s", f.Premise.HashString(), f.Conclusion.HashString(), f.RoleMaps.String())
}

// FeatureString is the feature name used by a log-linear FactorModel,
// independent of which concrete conclusion a ground instance proves.
func (f PredicateInferenceFactor) FeatureString() string {
	return f.Premise.HashString() + f.RoleMaps.String()
}

// PropositionInferenceFactor is a ground instance of a
// PredicateInferenceFactor: premise and conclusion are fully ground, having
// been produced by substituting the conclusion's constants through the
// factor's role maps (spec §4.1).
type PropositionInferenceFactor struct {
	Premise    PropositionGroup
	Conclusion Proposition
	Inference  PredicateInferenceFactor
}
