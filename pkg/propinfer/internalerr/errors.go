// Package internalerr collects the sentinel errors shared across propinfer.
package internalerr

import "errors"

// Sentinel errors for common cases.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// NotGround: attempt to lift a non-ground Predicate into a Proposition.
	ErrNotGround = errors.New("predicate is not ground")

	// UnresolvableProposition: backward expansion reached a non-existence
	// Single with no backward factors.
	ErrUnresolvableProposition = errors.New("unresolvable proposition")

	// InconsistentRoleMap: substitution could not fully ground a premise.
	ErrInconsistentRoleMap = errors.New("inconsistent role map")

	// MissingBelief: a belief-table read returned None where a value was
	// required. Should not occur if the inference passes are followed in
	// order; indicates a programmer error.
	ErrMissingBelief = errors.New("missing belief value")

	// DegenerateMarginal: both potentials were zero at marginal readout.
	ErrDegenerateMarginal = errors.New("degenerate marginal")

	// FactorModelError: opaque wrap of an error from the external scoring
	// model. Wrap the underlying error with %w when returning it.
	ErrFactorModel = errors.New("factor model error")

	// ErrFanInExceeded: a node's parent count exceeds the configured fan-in
	// cap, making 2^k enumeration infeasible.
	ErrFanInExceeded = errors.New("factor fan-in exceeds configured cap")

	// ErrInvalidState: an operation was attempted while the Inferencer was
	// in a state that does not permit it (spec.md §4.9).
	ErrInvalidState = errors.New("invalid inferencer state")
)
