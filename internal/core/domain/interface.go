package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ifaceNamePattern accepts the short and long forms of a physical Ethernet
// interface name, e.g. "Eth1/12" or "Ethernet1/12", case-insensitive.
var ifaceNamePattern = regexp.MustCompile(`(?i)^eth(?:ernet)?(\d+)/(\d+)$`)

// InterfaceFact holds the structural facts extracted from one interface
// block of a running-config snapshot.
type InterfaceFact struct {
	InterfaceID      string `json:"interface_id"`
	InheritedProfile string `json:"inherited_profile,omitempty"`
	IsLayer3         bool   `json:"is_layer3"`
}

// CanonicalInterfaceID normalizes an interface name to its canonical long
// form ("Ethernet<module>/<port>"). The second return value reports whether
// the name matched the tracked physical-interface syntax at all; management,
// VLAN and port-channel interfaces do not.
func CanonicalInterfaceID(name string) (string, bool) {
	m := ifaceNamePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return "", false
	}
	module, err1 := strconv.Atoi(m[1])
	port, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return "", false
	}
	return fmt.Sprintf("Ethernet%d/%d", module, port), true
}

// InterfaceNumber extracts the port number from a canonical interface ID.
func InterfaceNumber(id string) (int, bool) {
	idx := strings.LastIndex(id, "/")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
