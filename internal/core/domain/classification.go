package domain

import "fmt"

// ClassificationState is the policy state of one target interface in one
// snapshot. States are mutually exclusive; every target interface gets
// exactly one.
type ClassificationState string

const (
	// StateL3Skipped marks a routed interface. L3 interfaces are
	// authoritative exclusions and are never proposed for configuration.
	StateL3Skipped ClassificationState = "L3_SKIPPED"
	// StateCompliant marks an interface already inheriting the target profile.
	StateCompliant ClassificationState = "ALREADY_COMPLIANT"
	// StateOtherProfile marks an interface carrying a different profile.
	// Treated as handled, not as a failure.
	StateOtherProfile ClassificationState = "OTHER_PROFILE_PRESENT"
	// StateNonCompliant marks an L2-eligible interface missing the profile.
	StateNonCompliant ClassificationState = "NON_COMPLIANT"
)

// Policy describes the target state being reconciled: a profile name and an
// inclusive, contiguous port range on one physical module.
type Policy struct {
	Profile   string `json:"profile"`
	Module    int    `json:"module"`
	FirstPort int    `json:"first_port"`
	LastPort  int    `json:"last_port"`
}

// Prefix returns the canonical interface-name prefix for the policy's
// module, e.g. "Ethernet1/".
func (p Policy) Prefix() string {
	return fmt.Sprintf("Ethernet%d/", p.Module)
}

// InterfaceID renders the canonical ID for one port of the policy's module.
func (p Policy) InterfaceID(port int) string {
	return fmt.Sprintf("Ethernet%d/%d", p.Module, port)
}

// InterfaceIDs enumerates the full target universe in ascending port order.
func (p Policy) InterfaceIDs() []string {
	if p.LastPort < p.FirstPort {
		return nil
	}
	ids := make([]string, 0, p.LastPort-p.FirstPort+1)
	for port := p.FirstPort; port <= p.LastPort; port++ {
		ids = append(ids, p.InterfaceID(port))
	}
	return ids
}

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	if p.Profile == "" {
		return fmt.Errorf("policy: profile name is empty")
	}
	if p.Module <= 0 {
		return fmt.Errorf("policy: module %d out of range", p.Module)
	}
	if p.FirstPort <= 0 || p.LastPort < p.FirstPort {
		return fmt.Errorf("policy: invalid port range %d-%d", p.FirstPort, p.LastPort)
	}
	return nil
}
