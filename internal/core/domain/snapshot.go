package domain

import (
	"sort"
	"time"
)

// SnapshotPhase distinguishes the two captures of a reconciliation run.
type SnapshotPhase string

const (
	PhasePre  SnapshotPhase = "pre"
	PhasePost SnapshotPhase = "post"
)

// Snapshot is a complete, immutable capture of one device at one point in
// time: the raw texts plus the derived per-interface classifications.
// Snapshots are never mutated after capture; downstream stages only read.
type Snapshot struct {
	ID              string                         `json:"id"`
	RunID           string                         `json:"run_id"`
	DeviceName      string                         `json:"device"`
	Phase           SnapshotPhase                  `json:"phase"`
	Timestamp       time.Time                      `json:"timestamp"`
	ConfigText      string                         `json:"-"`
	MACTableText    string                         `json:"-"`
	Classifications map[string]ClassificationState `json:"classifications"`
}

// ByState returns the interface IDs in the given state, sorted by port
// number so reports are stable.
func (s Snapshot) ByState(state ClassificationState) []string {
	var ids []string
	for id, st := range s.Classifications {
		if st == state {
			ids = append(ids, id)
		}
	}
	SortByPort(ids)
	return ids
}

// NonCompliant is shorthand for the configuration target set.
func (s Snapshot) NonCompliant() []string {
	return s.ByState(StateNonCompliant)
}

// StateCounts tallies classifications per state.
func (s Snapshot) StateCounts() map[ClassificationState]int {
	counts := make(map[ClassificationState]int)
	for _, st := range s.Classifications {
		counts[st]++
	}
	return counts
}

// SortByPort orders canonical interface IDs by port number, with any
// unparseable IDs last in lexical order.
func SortByPort(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ni, iok := InterfaceNumber(ids[i])
		nj, jok := InterfaceNumber(ids[j])
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return ids[i] < ids[j]
	})
}
