package ports

import (
	"context"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

// CommandRunner is the remote command execution collaborator. The core
// never talks to a device directly; it consumes already-resolved text from
// this boundary and hands back opaque command sequences.
type CommandRunner interface {
	// CaptureConfig retrieves the running interface configuration.
	CaptureConfig(ctx context.Context, dev domain.Device) (string, error)
	// CaptureMACTable retrieves the MAC address table. Empty output is a
	// valid, non-fatal result (an unpopulated table), not an error.
	CaptureMACTable(ctx context.Context, dev domain.Device) (string, error)
	// ApplyCommands pushes a literal configuration command sequence.
	ApplyCommands(ctx context.Context, dev domain.Device, commands []string) error
}

// RunStore persists run history: snapshots and outcomes keyed by run ID.
type RunStore interface {
	SaveRun(ctx context.Context, report domain.FleetReport) error
	ListRuns(ctx context.Context) ([]domain.FleetReport, error)
	GetRun(ctx context.Context, runID string) (domain.FleetReport, error)
	Close() error
}

// ReportSink writes the per-device evidence (diff text, outcome JSON) and
// the fleet summary. File naming and serialization belong to the adapter.
type ReportSink interface {
	WriteDeviceReport(report domain.DeviceReport) error
	WriteFleetSummary(report domain.FleetReport) error
}
