// Package reconcile compares pre/post classification snapshots and scores
// the run.
package reconcile

import "github.com/nxfleet/profilesync/internal/core/domain"

// Analyze computes the per-interface transition outcome between two
// classification snapshots of the same device.
//
// The analysis operates over the interfaces that were NON_COMPLIANT in the
// pre snapshot (the configuration target set). Regressions -- interfaces
// compliant pre but NON_COMPLIANT post -- should never occur, since the
// pipeline never removes profiles, but they are detected rather than
// assumed impossible.
func Analyze(deviceName string, pre, post map[string]domain.ClassificationState) domain.ReconciliationOutcome {
	outcome := domain.ReconciliationOutcome{DeviceName: deviceName}

	for id, preState := range pre {
		postState, seen := post[id]
		switch {
		case preState == domain.StateNonCompliant:
			outcome.PreNonCompliant++
			if seen && postState != domain.StateNonCompliant {
				outcome.NewlyCompliant = append(outcome.NewlyCompliant, id)
			} else {
				outcome.StillNonCompliant = append(outcome.StillNonCompliant, id)
			}
		case seen && postState == domain.StateNonCompliant:
			outcome.Regressed = append(outcome.Regressed, id)
		}
	}

	domain.SortByPort(outcome.NewlyCompliant)
	domain.SortByPort(outcome.StillNonCompliant)
	domain.SortByPort(outcome.Regressed)

	if outcome.PreNonCompliant == 0 {
		// Nothing needed reconciling; a no-op run is a fully successful one.
		outcome.SuccessRate = 100.0
	} else {
		outcome.SuccessRate = 100.0 * float64(len(outcome.NewlyCompliant)) / float64(outcome.PreNonCompliant)
	}
	return outcome
}
