// Package belief defines the BeliefTable external contract (spec.md §6)
// and an in-memory reference implementation, MemTable. The inference core
// depends only on the Table interface's read side; belief/sqlitebelief
// provides a persisted second adapter behind the same interface.
package belief

import (
	"sync"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
)

// Table is the consumed BeliefTable contract: evidence mapping a
// proposition to an observed probability in [0, 1]. A missing entry means
// unobserved.
type Table interface {
	// GetPropositionProbability returns the observed probability for p, or
	// ok=false if p is unobserved.
	GetPropositionProbability(p model.Proposition) (prob float64, ok bool)
}

// MutableTable is the driver-facing mutation interface (spec.md §6: "used
// only by the driver").
type MutableTable interface {
	Table
	StorePropositionProbability(p model.Proposition, prob float64) error
}

// MemTable is a mutex-guarded in-memory BeliefTable, mirroring the
// teacher's store/memstore mutex-map style.
type MemTable struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewMemTable creates an empty in-memory belief table.
func NewMemTable() *MemTable {
	return &MemTable{values: make(map[string]float64)}
}

// GetPropositionProbability implements Table.
func (t *MemTable) GetPropositionProbability(p model.Proposition) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[p.HashString()]
	return v, ok
}

// StorePropositionProbability implements MutableTable.
func (t *MemTable) StorePropositionProbability(p model.Proposition, prob float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[p.HashString()] = prob
	return nil
}

// Clear removes all evidence. The REPL driver's "reinit" command does not
// call it; that command only re-initializes the Inferencer (see
// pkg/propinfer/inferencer).
func (t *MemTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = make(map[string]float64)
}
