package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

func newTestAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	adapter, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func sampleReport() domain.FleetReport {
	now := time.Now().Truncate(time.Second)
	return domain.FleetReport{
		RunID:    "run-abc",
		Policy:   domain.Policy{Profile: "BAREMETAL", Module: 1, FirstPort: 2, LastPort: 46},
		Started:  now.Add(-time.Minute),
		Finished: now,
		Devices: []domain.DeviceReport{
			{
				Device:  domain.Device{Name: "leaf-101", Host: "10.1.0.101"},
				Applied: true,
				Pre: &domain.Snapshot{
					ID:         "snap-pre",
					RunID:      "run-abc",
					DeviceName: "leaf-101",
					Phase:      domain.PhasePre,
					Timestamp:  now.Add(-time.Minute),
					ConfigText: "interface Ethernet1/2\n  switchport\n",
					Classifications: map[string]domain.ClassificationState{
						"Ethernet1/2": domain.StateNonCompliant,
					},
				},
				Post: &domain.Snapshot{
					ID:         "snap-post",
					RunID:      "run-abc",
					DeviceName: "leaf-101",
					Phase:      domain.PhasePost,
					Timestamp:  now,
					ConfigText: "interface Ethernet1/2\n  inherit port-profile BAREMETAL\n",
					Classifications: map[string]domain.ClassificationState{
						"Ethernet1/2": domain.StateCompliant,
					},
				},
				ConfigDiff: &domain.DiffResult{UnifiedText: "--- pre\n+++ post\n", IsEmpty: false},
				MACDiff:    &domain.DiffResult{IsEmpty: true},
				Outcome: &domain.ReconciliationOutcome{
					DeviceName:      "leaf-101",
					PreNonCompliant: 1,
					NewlyCompliant:  []string{"Ethernet1/2"},
					SuccessRate:     100.0,
				},
			},
			{
				Device: domain.Device{Name: "leaf-102", Host: "10.1.0.102"},
				Err:    "capture config (pre): connection refused",
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.SaveRun(ctx, sampleReport()))

	got, err := adapter.GetRun(ctx, "run-abc")
	require.NoError(t, err)

	assert.Equal(t, "run-abc", got.RunID)
	assert.Equal(t, "BAREMETAL", got.Policy.Profile)
	assert.Equal(t, 2, got.Policy.FirstPort)
	require.Len(t, got.Devices, 2)

	dev := got.Devices[0]
	assert.Equal(t, "leaf-101", dev.Device.Name)
	assert.True(t, dev.Applied)
	require.NotNil(t, dev.Outcome)
	assert.Equal(t, []string{"Ethernet1/2"}, dev.Outcome.NewlyCompliant)
	assert.Equal(t, 100.0, dev.Outcome.SuccessRate)

	require.NotNil(t, dev.Pre)
	assert.Equal(t, domain.PhasePre, dev.Pre.Phase)
	assert.Equal(t, "interface Ethernet1/2\n  switchport\n", dev.Pre.ConfigText)
	assert.Equal(t, domain.StateNonCompliant, dev.Pre.Classifications["Ethernet1/2"])
	require.NotNil(t, dev.Post)
	assert.Equal(t, domain.StateCompliant, dev.Post.Classifications["Ethernet1/2"])

	failed := got.Devices[1]
	assert.True(t, failed.Failed())
	assert.Nil(t, failed.Outcome)
	assert.Nil(t, failed.Pre)
}

func TestListRunsNewestFirst(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	older := sampleReport()
	older.RunID = "run-old"
	older.Started = time.Now().Add(-2 * time.Hour)
	require.NoError(t, adapter.SaveRun(ctx, older))

	newer := sampleReport()
	newer.RunID = "run-new"
	newer.Started = time.Now()
	require.NoError(t, adapter.SaveRun(ctx, newer))

	runs, err := adapter.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-old", runs[1].RunID)

	// Listing omits raw snapshot texts.
	assert.Nil(t, runs[0].Devices[0].Pre)
}

func TestGetRunNotFound(t *testing.T) {
	adapter := newTestAdapter(t)

	_, err := adapter.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSaveRunIsIdempotentPerSnapshot(t *testing.T) {
	// Re-saving a run must not duplicate snapshots (Save upserts by ID).
	adapter := newTestAdapter(t)
	ctx := context.Background()
	report := sampleReport()

	require.NoError(t, adapter.SaveRun(ctx, report))
	require.NoError(t, adapter.SaveRun(ctx, report))

	got, err := adapter.GetRun(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, got.Devices, 2)
	require.NotNil(t, got.Devices[0].Pre)
	assert.Equal(t, "snap-pre", got.Devices[0].Pre.ID)
}
