// Package commands builds the literal NX-OS command sequences pushed by a
// reconciliation run. The sequences are opaque to the rest of the core.
package commands

import "fmt"

const (
	showInterfaceConfig = "show running-config interface"
	showMACTable        = "show mac address-table"
)

// CaptureConfigCommand is the capture command for interface configuration.
func CaptureConfigCommand() string { return showInterfaceConfig }

// CaptureMACTableCommand is the capture command for the MAC address table.
func CaptureMACTableCommand() string { return showMACTable }

// ProfileDefinition returns the commands that (re)define the ethernet
// port-profile. Defining an existing profile is a no-op on the device, so
// this block is safe to push on every run.
func ProfileDefinition(profile string) []string {
	return []string{
		fmt.Sprintf("port-profile type ethernet %s", profile),
		"mtu 9000",
		"no snmp trap link-status",
		"spanning-tree port type edge trunk",
		"state enabled",
		"exit",
	}
}

// InterfaceAssignments returns one interface/inherit/exit triple per target
// interface. Callers pass only the NON_COMPLIANT set; L3 and other-profile
// interfaces must never appear here.
func InterfaceAssignments(interfaceIDs []string, profile string) []string {
	cmds := make([]string, 0, 3*len(interfaceIDs))
	for _, id := range interfaceIDs {
		cmds = append(cmds,
			fmt.Sprintf("interface %s", id),
			fmt.Sprintf("inherit port-profile %s", profile),
			"exit",
		)
	}
	return cmds
}
