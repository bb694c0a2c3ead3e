package domain

import "time"

// ReconciliationOutcome compares the pre and post classifications of one
// device, restricted to the interfaces that were NON_COMPLIANT pre-change.
// Computed once after both snapshots exist; never mutated afterward.
type ReconciliationOutcome struct {
	DeviceName        string   `json:"device"`
	PreNonCompliant   int      `json:"pre_non_compliant"`
	NewlyCompliant    []string `json:"newly_compliant"`
	StillNonCompliant []string `json:"still_non_compliant"`
	// Regressed lists interfaces that were compliant pre-change but classify
	// NON_COMPLIANT post-change. The pipeline never removes profiles, so a
	// non-empty set flags a real defect.
	Regressed   []string `json:"regressed"`
	SuccessRate float64  `json:"success_rate"`
}

// HasRegression reports whether any interface lost compliance.
func (o ReconciliationOutcome) HasRegression() bool {
	return len(o.Regressed) > 0
}

// DeviceReport aggregates everything the run produced for one device.
// Err is set when the device could not complete a phase (capture failure);
// partial evidence captured before the failure is retained.
type DeviceReport struct {
	Device     Device                 `json:"device"`
	Pre        *Snapshot              `json:"pre,omitempty"`
	Post       *Snapshot              `json:"post,omitempty"`
	ConfigDiff *DiffResult            `json:"config_diff,omitempty"`
	MACDiff    *DiffResult            `json:"mac_diff,omitempty"`
	Outcome    *ReconciliationOutcome `json:"outcome,omitempty"`
	Applied    bool                   `json:"applied"`
	Err        string                 `json:"error,omitempty"`
}

// Failed reports whether the device finished the pipeline.
func (r DeviceReport) Failed() bool { return r.Err != "" }

// FleetReport is the run-level aggregate across all devices.
type FleetReport struct {
	RunID    string         `json:"run_id"`
	Policy   Policy         `json:"policy"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Devices  []DeviceReport `json:"devices"`
}

// FleetSuccessRate averages the success rate over devices that produced an
// outcome. Devices that failed a capture are excluded, not counted as zero.
func (f FleetReport) FleetSuccessRate() float64 {
	var sum float64
	var n int
	for _, d := range f.Devices {
		if d.Outcome != nil {
			sum += d.Outcome.SuccessRate
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
