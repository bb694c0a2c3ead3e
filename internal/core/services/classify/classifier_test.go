package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

var testPolicy = domain.Policy{Profile: "BAREMETAL", Module: 1, FirstPort: 2, LastPort: 8}

func fact(id, profile string, l3 bool) domain.InterfaceFact {
	return domain.InterfaceFact{InterfaceID: id, InheritedProfile: profile, IsLayer3: l3}
}

func TestClassifyStates(t *testing.T) {
	facts := map[string]domain.InterfaceFact{
		"Ethernet1/2": fact("Ethernet1/2", "BAREMETAL", false),
		"Ethernet1/3": fact("Ethernet1/3", "STORAGE", false),
		"Ethernet1/4": fact("Ethernet1/4", "", false),
		"Ethernet1/5": fact("Ethernet1/5", "", true),
		// Ethernet1/6 has no block at all.
		"Ethernet1/7": fact("Ethernet1/7", "", true),
		"Ethernet1/8": fact("Ethernet1/8", "BAREMETAL", false),
	}

	states := Classify(facts, testPolicy)

	require.Len(t, states, 7)
	assert.Equal(t, domain.StateCompliant, states["Ethernet1/2"])
	assert.Equal(t, domain.StateOtherProfile, states["Ethernet1/3"])
	assert.Equal(t, domain.StateNonCompliant, states["Ethernet1/4"])
	assert.Equal(t, domain.StateL3Skipped, states["Ethernet1/5"])
	assert.Equal(t, domain.StateNonCompliant, states["Ethernet1/6"])
	assert.Equal(t, domain.StateL3Skipped, states["Ethernet1/7"])
	assert.Equal(t, domain.StateCompliant, states["Ethernet1/8"])
}

func TestClassifyL3DominatesProfile(t *testing.T) {
	// An L3 interface with a stale matching inherit statement must still be
	// skipped, never reported compliant.
	facts := map[string]domain.InterfaceFact{
		"Ethernet1/2": fact("Ethernet1/2", "BAREMETAL", true),
		"Ethernet1/3": fact("Ethernet1/3", "STORAGE", true),
	}

	states := Classify(facts, testPolicy)

	assert.Equal(t, domain.StateL3Skipped, states["Ethernet1/2"])
	assert.Equal(t, domain.StateL3Skipped, states["Ethernet1/3"])
}

func TestClassifyAbsentInterfacesNonCompliant(t *testing.T) {
	states := Classify(nil, testPolicy)

	require.Len(t, states, 7)
	for id, state := range states {
		assert.Equal(t, domain.StateNonCompliant, state, id)
	}
}

func TestClassifyIgnoresInterfacesOutsideRange(t *testing.T) {
	facts := map[string]domain.InterfaceFact{
		"Ethernet1/1":  fact("Ethernet1/1", "", false),
		"Ethernet1/47": fact("Ethernet1/47", "", false),
		"Ethernet2/2":  fact("Ethernet2/2", "", false),
	}

	states := Classify(facts, testPolicy)

	assert.NotContains(t, states, "Ethernet1/1")
	assert.NotContains(t, states, "Ethernet1/47")
	assert.NotContains(t, states, "Ethernet2/2")
}

func TestClassifyL3WithIPAddressScenario(t *testing.T) {
	// A block with "ip address 10.0.0.1/30" and no inherit classifies as
	// L3_SKIPPED regardless of the missing target profile.
	facts := map[string]domain.InterfaceFact{
		"Ethernet1/7": fact("Ethernet1/7", "", true),
	}

	states := Classify(facts, testPolicy)

	assert.Equal(t, domain.StateL3Skipped, states["Ethernet1/7"])
}
