// Package confparse extracts per-interface structural facts from raw
// "show running-config interface" output.
//
// The text is a sequence of blocks, each opened by an "interface <name>"
// header. Parsing is a two-state machine: outside any block, or inside the
// block of one tracked interface. Facts on lines that follow an untracked
// header (mgmt0, Vlan, port-channel, ...) are discarded rather than
// attributed to a previously tracked interface.
package confparse

import (
	"strings"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

const (
	interfaceKeyword = "interface "
	inheritKeyword   = "inherit port-profile "
)

// Parse walks the config text and returns one InterfaceFact per tracked
// interface. Later blocks for the same interface overwrite earlier ones.
func Parse(raw string) map[string]domain.InterfaceFact {
	facts := make(map[string]domain.InterfaceFact)

	// current is the interface the cursor sits in; empty means NoInterface.
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "!") {
			continue
		}

		if name, ok := headerName(trimmed); ok {
			id, tracked := domain.CanonicalInterfaceID(name)
			if !tracked {
				current = ""
				continue
			}
			current = id
			facts[id] = domain.InterfaceFact{InterfaceID: id}
			continue
		}

		if current == "" {
			// Statement outside any tracked block; tolerated and ignored.
			continue
		}

		fact := facts[current]
		if profile, ok := inheritedProfile(trimmed); ok {
			// Last inherit statement wins if a block carries several.
			fact.InheritedProfile = profile
		}
		if isLayer3Statement(trimmed) {
			fact.IsLayer3 = true
		}
		facts[current] = fact
	}

	return facts
}

// headerName matches "interface <name>" lines, case-insensitive.
func headerName(trimmed string) (string, bool) {
	if len(trimmed) <= len(interfaceKeyword) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(interfaceKeyword)], interfaceKeyword) {
		return "", false
	}
	return strings.TrimSpace(trimmed[len(interfaceKeyword):]), true
}

// inheritedProfile matches "inherit port-profile <name>" lines.
func inheritedProfile(trimmed string) (string, bool) {
	if len(trimmed) <= len(inheritKeyword) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(inheritKeyword)], inheritKeyword) {
		return "", false
	}
	name := strings.TrimSpace(trimmed[len(inheritKeyword):])
	if name == "" {
		return "", false
	}
	return name, true
}

// isLayer3Statement applies the best-effort textual heuristic for routed
// interfaces: an IP/IPv6 address assignment, an explicit "no switchport",
// or a "routed" marker anywhere on the line. One match is sufficient.
func isLayer3Statement(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "ip address "):
		return true
	case strings.HasPrefix(lower, "ipv6 address "):
		return true
	case lower == "no switchport":
		return true
	case strings.Contains(lower, "routed"):
		return true
	}
	return false
}
