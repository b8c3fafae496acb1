package traffic

import (
	"sort"
	"sync"
	"time"
)

// DefaultMaxTargets is the number of aircraft tracked when no limit is
// configured. EFB displays get noisy past this point.
const DefaultMaxTargets = 63

// Table manages the set of tracked aircraft
type Table struct {
	targets map[uint32]*Target
	limit   int
	mu      sync.RWMutex
}

// NewTable creates a new traffic table
func NewTable(limit int) *Table {
	if limit <= 0 {
		limit = DefaultMaxTargets
	}
	return &Table{
		targets: make(map[uint32]*Target),
		limit:   limit,
	}
}

// Upsert merges a report into the table, creating the target if needed.
// Returns false when the table is full and the address is not already
// tracked; the report is dropped in that case.
func (tb *Table) Upsert(icao uint32, u Update) (*Target, bool) {
	tb.mu.Lock()

	target, exists := tb.targets[icao]
	if !exists {
		if len(tb.targets) >= tb.limit {
			tb.mu.Unlock()
			return nil, false
		}
		target = NewTarget(icao)
		tb.targets[icao] = target
	}
	tb.mu.Unlock()

	target.Apply(u)
	return target, true
}

// Get retrieves a target by ICAO address
func (tb *Table) Get(icao uint32) (*Target, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	target, exists := tb.targets[icao]
	return target, exists
}

// Remove deletes a target from the table
func (tb *Table) Remove(icao uint32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.targets, icao)
}

// Count returns the number of tracked targets
func (tb *Table) Count() int {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return len(tb.targets)
}

// Active returns snapshots of all tracked targets ordered by ICAO
// address, which keeps broadcast order stable between cycles.
func (tb *Table) Active() []TargetSnapshot {
	tb.mu.RLock()
	targets := make([]*Target, 0, len(tb.targets))
	for _, t := range tb.targets {
		targets = append(targets, t)
	}
	tb.mu.RUnlock()

	snapshots := make([]TargetSnapshot, 0, len(targets))
	for _, t := range targets {
		snapshots = append(snapshots, t.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ICAO < snapshots[j].ICAO
	})
	return snapshots
}

// CleanupStale removes targets unseen for longer than the timeout and
// returns the dropped addresses in ascending order.
func (tb *Table) CleanupStale(timeout time.Duration) []uint32 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	var removed []uint32
	for icao, target := range tb.targets {
		if target.IsStale(timeout) {
			delete(tb.targets, icao)
			removed = append(removed, icao)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}
