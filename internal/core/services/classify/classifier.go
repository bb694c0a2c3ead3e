// Package classify assigns every target interface to exactly one policy
// state for a snapshot.
package classify

import "github.com/nxfleet/profilesync/internal/core/domain"

// Classify evaluates the fixed precedence over every interface in the
// policy's target range:
//
//  1. L3 interface            -> L3_SKIPPED
//  2. target profile present  -> ALREADY_COMPLIANT
//  3. other profile present   -> OTHER_PROFILE_PRESENT
//  4. otherwise               -> NON_COMPLIANT
//
// The order is load-bearing: L3 exclusion dominates profile checks even
// when a stale inherit statement is also present on the block. Interfaces
// with no config block at all classify NON_COMPLIANT.
func Classify(facts map[string]domain.InterfaceFact, policy domain.Policy) map[string]domain.ClassificationState {
	states := make(map[string]domain.ClassificationState, policy.LastPort-policy.FirstPort+1)
	for _, id := range policy.InterfaceIDs() {
		states[id] = classifyOne(facts[id], policy.Profile)
	}
	return states
}

func classifyOne(fact domain.InterfaceFact, targetProfile string) domain.ClassificationState {
	switch {
	case fact.IsLayer3:
		return domain.StateL3Skipped
	case fact.InheritedProfile == targetProfile:
		return domain.StateCompliant
	case fact.InheritedProfile != "":
		return domain.StateOtherProfile
	default:
		return domain.StateNonCompliant
	}
}
