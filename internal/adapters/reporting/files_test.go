package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

var testPolicy = domain.Policy{Profile: "BAREMETAL", Module: 1, FirstPort: 2, LastPort: 46}

func newTestSink(t *testing.T) (*FileSink, string) {
	t.Helper()
	dir := t.TempDir()
	sink, err := NewFileSink(dir, testPolicy)
	require.NoError(t, err)
	return sink, dir
}

func TestWriteDeviceReport(t *testing.T) {
	sink, dir := newTestSink(t)

	report := domain.DeviceReport{
		Device:     domain.Device{Name: "leaf-101", Host: "10.1.0.101"},
		Applied:    true,
		ConfigDiff: &domain.DiffResult{UnifiedText: "--- pre\n+++ post\n+  inherit port-profile BAREMETAL\n"},
		MACDiff:    &domain.DiffResult{IsEmpty: true},
		Outcome: &domain.ReconciliationOutcome{
			DeviceName:      "leaf-101",
			PreNonCompliant: 3,
			NewlyCompliant:  []string{"Ethernet1/2", "Ethernet1/3", "Ethernet1/4"},
			SuccessRate:     100.0,
		},
	}

	require.NoError(t, sink.WriteDeviceReport(report))

	diffData, err := os.ReadFile(filepath.Join(dir, "leaf-101_config.diff"))
	require.NoError(t, err)
	assert.Contains(t, string(diffData), "+  inherit port-profile BAREMETAL")

	// Empty MAC diff writes no file.
	_, err = os.Stat(filepath.Join(dir, "leaf-101_mac.diff"))
	assert.True(t, os.IsNotExist(err))

	outData, err := os.ReadFile(filepath.Join(dir, "leaf-101_outcome.json"))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(outData, &doc))
	assert.Equal(t, "leaf-101", doc["device"])
	assert.Equal(t, 100.0, doc["success_rate"])
	assert.Equal(t, true, doc["config_changed"])
	assert.Equal(t, false, doc["mac_table_changed"])
	// Condensed ranges appear alongside the explicit list.
	assert.Equal(t, []interface{}{"Ethernet1/2-4"}, doc["newly_compliant_ranges"])
}

func TestWriteDeviceReportFailedDevice(t *testing.T) {
	sink, dir := newTestSink(t)

	report := domain.DeviceReport{
		Device: domain.Device{Name: "leaf-102"},
		Err:    "capture config (pre): connection refused",
	}

	require.NoError(t, sink.WriteDeviceReport(report))

	outData, err := os.ReadFile(filepath.Join(dir, "leaf-102_outcome.json"))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(outData, &doc))
	assert.Contains(t, doc["error"], "connection refused")
}

func TestWriteFleetSummary(t *testing.T) {
	sink, dir := newTestSink(t)

	report := domain.FleetReport{
		RunID:    "run-abc",
		Policy:   testPolicy,
		Started:  time.Now().Add(-time.Minute),
		Finished: time.Now(),
		Devices: []domain.DeviceReport{
			{
				Device: domain.Device{Name: "leaf-101"},
				Outcome: &domain.ReconciliationOutcome{
					DeviceName:      "leaf-101",
					PreNonCompliant: 2,
					NewlyCompliant:  []string{"Ethernet1/2", "Ethernet1/3"},
					SuccessRate:     100.0,
				},
			},
			{Device: domain.Device{Name: "leaf-102"}, Err: "unreachable"},
		},
	}

	require.NoError(t, sink.WriteFleetSummary(report))

	jsonData, err := os.ReadFile(filepath.Join(dir, "fleet_report.json"))
	require.NoError(t, err)
	var decoded domain.FleetReport
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	assert.Equal(t, "run-abc", decoded.RunID)

	pdfData, err := os.ReadFile(filepath.Join(dir, "fleet_summary.pdf"))
	require.NoError(t, err)
	assert.True(t, len(pdfData) > 4)
	assert.Equal(t, "%PDF", string(pdfData[:4]))
}

func TestExportFleetSummaryStatuses(t *testing.T) {
	exporter := NewPDFExporter()

	report := domain.FleetReport{
		RunID:    "run-xyz",
		Policy:   testPolicy,
		Started:  time.Now(),
		Finished: time.Now(),
		Devices: []domain.DeviceReport{
			{Device: domain.Device{Name: "ok"}, Outcome: &domain.ReconciliationOutcome{SuccessRate: 100}},
			{Device: domain.Device{Name: "partial"}, Outcome: &domain.ReconciliationOutcome{
				PreNonCompliant:   2,
				StillNonCompliant: []string{"Ethernet1/5"},
				SuccessRate:       50,
			}},
			{Device: domain.Device{Name: "regressed"}, Outcome: &domain.ReconciliationOutcome{
				Regressed:   []string{"Ethernet1/9"},
				SuccessRate: 100,
			}},
			{Device: domain.Device{Name: "failed"}, Err: "boom"},
		},
	}

	data, err := exporter.ExportFleetSummary(report)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
