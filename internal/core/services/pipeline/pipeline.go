// Package pipeline sequences the reconciliation workflow for a fleet of
// devices: capture -> parse -> classify -> configure -> capture -> classify
// -> diff -> analyze. The pipeline is fixed; it is not a general scheduler.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nxfleet/profilesync/internal/core/domain"
	"github.com/nxfleet/profilesync/internal/core/ports"
	"github.com/nxfleet/profilesync/internal/core/services/classify"
	"github.com/nxfleet/profilesync/internal/core/services/commands"
	"github.com/nxfleet/profilesync/internal/core/services/confparse"
	"github.com/nxfleet/profilesync/internal/core/services/difftext"
	"github.com/nxfleet/profilesync/internal/core/services/reconcile"
	"github.com/nxfleet/profilesync/internal/telemetry"
)

// Pipeline runs the reconciliation workflow. Devices are independent; the
// per-device path holds no shared mutable state, so fleet runs fan out
// freely across workers.
type Pipeline struct {
	runner ports.CommandRunner
	policy domain.Policy
	dryRun bool
	tracer trace.Tracer
}

// New builds a pipeline for one policy. dryRun skips the configure step but
// still captures, classifies and reports both phases.
func New(runner ports.CommandRunner, policy domain.Policy, dryRun bool) *Pipeline {
	return &Pipeline{
		runner: runner,
		policy: policy,
		dryRun: dryRun,
		tracer: otel.Tracer("profilesync/pipeline"),
	}
}

// RunFleet reconciles every device with a bounded worker pool and returns
// the run-level report. Device order in the report follows the inventory.
func (p *Pipeline) RunFleet(ctx context.Context, devices []domain.Device, workers int) domain.FleetReport {
	report := domain.FleetReport{
		RunID:   uuid.New().String(),
		Policy:  p.policy,
		Started: time.Now(),
		Devices: make([]domain.DeviceReport, len(devices)),
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(devices) {
		workers = len(devices)
	}

	slog.Info("Starting fleet reconciliation",
		"run_id", report.RunID,
		"devices", len(devices),
		"workers", workers,
		"profile", p.policy.Profile,
		"dry_run", p.dryRun)

	type job struct {
		idx int
		dev domain.Device
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				report.Devices[j.idx] = p.RunDevice(ctx, report.RunID, j.dev)
			}
		}()
	}

	for i, dev := range devices {
		jobs <- job{idx: i, dev: dev}
	}
	close(jobs)
	wg.Wait()

	report.Finished = time.Now()
	slog.Info("Fleet reconciliation finished",
		"run_id", report.RunID,
		"elapsed", report.Finished.Sub(report.Started).Round(time.Millisecond),
		"fleet_success_rate", fmt.Sprintf("%.1f%%", report.FleetSuccessRate()))
	return report
}

// RunDevice executes the full pipeline for one device. Failures are
// device-scoped: the error lands on the report and never aborts the fleet.
func (p *Pipeline) RunDevice(ctx context.Context, runID string, dev domain.Device) domain.DeviceReport {
	ctx, span := p.tracer.Start(ctx, "pipeline.RunDevice",
		trace.WithAttributes(attribute.String("device", dev.Name)))
	defer span.End()

	report := domain.DeviceReport{Device: dev}

	pre, err := p.captureSnapshot(ctx, runID, dev, domain.PhasePre)
	if err != nil {
		return p.fail(report, domain.PhasePre, err)
	}
	report.Pre = pre

	targets := pre.NonCompliant()
	slog.Info("Pre-change classification",
		"device", dev.Name,
		"non_compliant", len(targets),
		"l3_skipped", len(pre.ByState(domain.StateL3Skipped)),
		"already_compliant", len(pre.ByState(domain.StateCompliant)),
		"other_profile", len(pre.ByState(domain.StateOtherProfile)))

	if !p.dryRun && len(targets) > 0 {
		if err := p.configure(ctx, dev, targets); err != nil {
			report.Err = fmt.Sprintf("apply commands: %v", err)
			telemetry.DevicesProcessed.WithLabelValues("failed").Inc()
			return report
		}
		report.Applied = true
	}

	post, err := p.captureSnapshot(ctx, runID, dev, domain.PhasePost)
	if err != nil {
		return p.fail(report, domain.PhasePost, err)
	}
	report.Post = post

	report.ConfigDiff = p.configDiff(dev, pre, post)
	report.MACDiff = p.macDiff(dev, pre, post)

	outcome := reconcile.Analyze(dev.Name, pre.Classifications, post.Classifications)
	report.Outcome = &outcome

	telemetry.SuccessRate.WithLabelValues(dev.Name).Set(outcome.SuccessRate)
	if outcome.HasRegression() {
		telemetry.Regressions.WithLabelValues(dev.Name).Add(float64(len(outcome.Regressed)))
		slog.Error("Compliance regression detected",
			"device", dev.Name,
			"interfaces", outcome.Regressed)
	}
	telemetry.DevicesProcessed.WithLabelValues("ok").Inc()

	slog.Info("Device reconciled",
		"device", dev.Name,
		"newly_compliant", len(outcome.NewlyCompliant),
		"still_non_compliant", len(outcome.StillNonCompliant),
		"success_rate", fmt.Sprintf("%.1f%%", outcome.SuccessRate))
	return report
}

// captureSnapshot retrieves the raw texts and derives classifications.
//
// A config capture failure means no snapshot for the phase; empty text is a
// valid "nothing configured" signal and must never stand in for a failed
// capture. A MAC table failure is tolerated: the table is evidence, not an
// input to classification.
func (p *Pipeline) captureSnapshot(ctx context.Context, runID string, dev domain.Device, phase domain.SnapshotPhase) (*domain.Snapshot, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.captureSnapshot",
		trace.WithAttributes(
			attribute.String("device", dev.Name),
			attribute.String("phase", string(phase))))
	defer span.End()

	configText, err := p.runner.CaptureConfig(ctx, dev)
	if err != nil {
		telemetry.CaptureFailures.WithLabelValues(dev.Name, string(phase)).Inc()
		return nil, fmt.Errorf("capture config (%s): %w", phase, err)
	}

	macText, err := p.runner.CaptureMACTable(ctx, dev)
	if err != nil {
		slog.Warn("MAC table capture failed, continuing without it",
			"device", dev.Name, "phase", phase, "error", err)
		macText = ""
	}

	states := classify.Classify(confparse.Parse(configText), p.policy)
	for _, st := range states {
		telemetry.InterfacesClassified.WithLabelValues(string(st)).Inc()
	}

	return &domain.Snapshot{
		ID:              uuid.New().String(),
		RunID:           runID,
		DeviceName:      dev.Name,
		Phase:           phase,
		Timestamp:       time.Now(),
		ConfigText:      configText,
		MACTableText:    macText,
		Classifications: states,
	}, nil
}

func (p *Pipeline) configure(ctx context.Context, dev domain.Device, targets []string) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.configure",
		trace.WithAttributes(
			attribute.String("device", dev.Name),
			attribute.Int("interfaces", len(targets))))
	defer span.End()

	start := time.Now()
	cmds := commands.ProfileDefinition(p.policy.Profile)
	cmds = append(cmds, commands.InterfaceAssignments(targets, p.policy.Profile)...)
	if err := p.runner.ApplyCommands(ctx, dev, cmds); err != nil {
		return err
	}
	telemetry.ConfigPushes.WithLabelValues(dev.Name).Inc()
	slog.Info("Configuration applied",
		"device", dev.Name,
		"commands", len(cmds),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// configDiff compares the comment-filtered config texts. Filtering both
// sides first keeps timestamp banners out of the drift signal.
func (p *Pipeline) configDiff(dev domain.Device, pre, post *domain.Snapshot) *domain.DiffResult {
	d := difftext.Diff(
		difftext.FilterComments(pre.ConfigText),
		difftext.FilterComments(post.ConfigText),
		fmt.Sprintf("%s config (pre)", dev.Name),
		fmt.Sprintf("%s config (post)", dev.Name),
	)
	return &d
}

func (p *Pipeline) macDiff(dev domain.Device, pre, post *domain.Snapshot) *domain.DiffResult {
	d := difftext.DiffTables(
		pre.MACTableText,
		post.MACTableText,
		fmt.Sprintf("%s mac-table (pre)", dev.Name),
		fmt.Sprintf("%s mac-table (post)", dev.Name),
	)
	return &d
}

func (p *Pipeline) fail(report domain.DeviceReport, phase domain.SnapshotPhase, err error) domain.DeviceReport {
	report.Err = err.Error()
	telemetry.DevicesProcessed.WithLabelValues("failed").Inc()
	slog.Error("Device pipeline failed",
		"device", report.Device.Name, "phase", phase, "error", err)
	return report
}
