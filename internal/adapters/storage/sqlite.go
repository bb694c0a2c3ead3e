// Package storage persists run history using GORM and SQLite.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

// SQLiteAdapter implements ports.RunStore.
type SQLiteAdapter struct {
	db *gorm.DB
}

// RunModel is the GORM model for one fleet run.
type RunModel struct {
	RunID     string `gorm:"primaryKey"`
	Profile   string
	Module    int
	FirstPort int
	LastPort  int
	Started   time.Time `gorm:"index"`
	Finished  time.Time
}

// DeviceReportModel stores the per-device result of a run. Interface sets
// and classifications are JSON-encoded; SQLite has no array columns and the
// sets are only read back whole.
type DeviceReportModel struct {
	ID                uint   `gorm:"primaryKey"`
	RunID             string `gorm:"index"`
	DeviceName        string `gorm:"index"`
	Host              string
	Applied           bool
	Err               string
	HasOutcome        bool
	PreNonCompliant   int
	NewlyCompliant    string // JSON []string
	StillNonCompliant string // JSON []string
	Regressed         string // JSON []string
	SuccessRate       float64
	ConfigDiffText    string
	ConfigDiffEmpty   bool
	MACDiffText       string
	MACDiffEmpty      bool
}

// SnapshotModel stores one captured snapshot with its raw texts.
type SnapshotModel struct {
	ID              string `gorm:"primaryKey"`
	RunID           string `gorm:"index"`
	DeviceName      string `gorm:"index"`
	Phase           string
	Timestamp       time.Time
	ConfigText      string
	MACTableText    string
	Classifications string // JSON map[string]string
}

// NewSQLiteAdapter initializes the database and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		log.Printf("Warning: could not enable gorm tracing: %v", err)
	}

	if err := db.AutoMigrate(&RunModel{}, &DeviceReportModel{}, &SnapshotModel{}); err != nil {
		return nil, err
	}

	return &SQLiteAdapter{db: db}, nil
}

// SaveRun persists a fleet report with its device reports and snapshots.
func (a *SQLiteAdapter) SaveRun(ctx context.Context, report domain.FleetReport) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := RunModel{
			RunID:     report.RunID,
			Profile:   report.Policy.Profile,
			Module:    report.Policy.Module,
			FirstPort: report.Policy.FirstPort,
			LastPort:  report.Policy.LastPort,
			Started:   report.Started,
			Finished:  report.Finished,
		}
		if err := tx.Save(&run).Error; err != nil {
			return err
		}

		// Re-saving a run replaces its device rows instead of duplicating.
		if err := tx.Where("run_id = ?", report.RunID).Delete(&DeviceReportModel{}).Error; err != nil {
			return err
		}

		for _, dev := range report.Devices {
			model := toReportModel(report.RunID, dev)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			for _, snap := range []*domain.Snapshot{dev.Pre, dev.Post} {
				if snap == nil {
					continue
				}
				sm, err := toSnapshotModel(*snap)
				if err != nil {
					return err
				}
				if err := tx.Save(&sm).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ListRuns returns all runs, newest first, with device reports but without
// raw snapshot texts.
func (a *SQLiteAdapter) ListRuns(ctx context.Context) ([]domain.FleetReport, error) {
	var runs []RunModel
	if err := a.db.WithContext(ctx).Order("started desc").Find(&runs).Error; err != nil {
		return nil, err
	}

	reports := make([]domain.FleetReport, 0, len(runs))
	for _, run := range runs {
		report, err := a.loadRun(ctx, run, false)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// GetRun returns one run with snapshots attached.
func (a *SQLiteAdapter) GetRun(ctx context.Context, runID string) (domain.FleetReport, error) {
	var run RunModel
	if err := a.db.WithContext(ctx).First(&run, "run_id = ?", runID).Error; err != nil {
		return domain.FleetReport{}, fmt.Errorf("run %s: %w", runID, err)
	}
	return a.loadRun(ctx, run, true)
}

// Close releases the underlying database handle.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (a *SQLiteAdapter) loadRun(ctx context.Context, run RunModel, withSnapshots bool) (domain.FleetReport, error) {
	report := domain.FleetReport{
		RunID: run.RunID,
		Policy: domain.Policy{
			Profile:   run.Profile,
			Module:    run.Module,
			FirstPort: run.FirstPort,
			LastPort:  run.LastPort,
		},
		Started:  run.Started,
		Finished: run.Finished,
	}

	var models []DeviceReportModel
	if err := a.db.WithContext(ctx).Where("run_id = ?", run.RunID).Order("id").Find(&models).Error; err != nil {
		return report, err
	}

	for _, model := range models {
		dev, err := fromReportModel(model)
		if err != nil {
			return report, err
		}
		if withSnapshots {
			if err := a.attachSnapshots(ctx, run.RunID, &dev); err != nil {
				return report, err
			}
		}
		report.Devices = append(report.Devices, dev)
	}
	return report, nil
}

func (a *SQLiteAdapter) attachSnapshots(ctx context.Context, runID string, dev *domain.DeviceReport) error {
	var snaps []SnapshotModel
	err := a.db.WithContext(ctx).
		Where("run_id = ? AND device_name = ?", runID, dev.Device.Name).
		Find(&snaps).Error
	if err != nil {
		return err
	}
	for _, sm := range snaps {
		snap, err := fromSnapshotModel(sm)
		if err != nil {
			return err
		}
		switch snap.Phase {
		case domain.PhasePre:
			dev.Pre = &snap
		case domain.PhasePost:
			dev.Post = &snap
		}
	}
	return nil
}

func toReportModel(runID string, dev domain.DeviceReport) DeviceReportModel {
	model := DeviceReportModel{
		RunID:      runID,
		DeviceName: dev.Device.Name,
		Host:       dev.Device.Host,
		Applied:    dev.Applied,
		Err:        dev.Err,
	}
	if dev.Outcome != nil {
		model.HasOutcome = true
		model.PreNonCompliant = dev.Outcome.PreNonCompliant
		model.NewlyCompliant = encodeStrings(dev.Outcome.NewlyCompliant)
		model.StillNonCompliant = encodeStrings(dev.Outcome.StillNonCompliant)
		model.Regressed = encodeStrings(dev.Outcome.Regressed)
		model.SuccessRate = dev.Outcome.SuccessRate
	}
	if dev.ConfigDiff != nil {
		model.ConfigDiffText = dev.ConfigDiff.UnifiedText
		model.ConfigDiffEmpty = dev.ConfigDiff.IsEmpty
	}
	if dev.MACDiff != nil {
		model.MACDiffText = dev.MACDiff.UnifiedText
		model.MACDiffEmpty = dev.MACDiff.IsEmpty
	}
	return model
}

func fromReportModel(model DeviceReportModel) (domain.DeviceReport, error) {
	dev := domain.DeviceReport{
		Device:  domain.Device{Name: model.DeviceName, Host: model.Host},
		Applied: model.Applied,
		Err:     model.Err,
	}
	if model.HasOutcome {
		outcome := domain.ReconciliationOutcome{
			DeviceName:      model.DeviceName,
			PreNonCompliant: model.PreNonCompliant,
			SuccessRate:     model.SuccessRate,
		}
		var err error
		if outcome.NewlyCompliant, err = decodeStrings(model.NewlyCompliant); err != nil {
			return dev, err
		}
		if outcome.StillNonCompliant, err = decodeStrings(model.StillNonCompliant); err != nil {
			return dev, err
		}
		if outcome.Regressed, err = decodeStrings(model.Regressed); err != nil {
			return dev, err
		}
		dev.Outcome = &outcome
	}
	if model.ConfigDiffText != "" || model.ConfigDiffEmpty {
		dev.ConfigDiff = &domain.DiffResult{UnifiedText: model.ConfigDiffText, IsEmpty: model.ConfigDiffEmpty}
	}
	if model.MACDiffText != "" || model.MACDiffEmpty {
		dev.MACDiff = &domain.DiffResult{UnifiedText: model.MACDiffText, IsEmpty: model.MACDiffEmpty}
	}
	return dev, nil
}

func toSnapshotModel(snap domain.Snapshot) (SnapshotModel, error) {
	classifications, err := json.Marshal(snap.Classifications)
	if err != nil {
		return SnapshotModel{}, err
	}
	return SnapshotModel{
		ID:              snap.ID,
		RunID:           snap.RunID,
		DeviceName:      snap.DeviceName,
		Phase:           string(snap.Phase),
		Timestamp:       snap.Timestamp,
		ConfigText:      snap.ConfigText,
		MACTableText:    snap.MACTableText,
		Classifications: string(classifications),
	}, nil
}

func fromSnapshotModel(model SnapshotModel) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		ID:           model.ID,
		RunID:        model.RunID,
		DeviceName:   model.DeviceName,
		Phase:        domain.SnapshotPhase(model.Phase),
		Timestamp:    model.Timestamp,
		ConfigText:   model.ConfigText,
		MACTableText: model.MACTableText,
	}
	if model.Classifications != "" {
		if err := json.Unmarshal([]byte(model.Classifications), &snap.Classifications); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeStrings(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil, fmt.Errorf("decode interface list: %w", err)
	}
	return values, nil
}
