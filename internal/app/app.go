// Package app wires the application components together.
package app

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/nxfleet/profilesync/internal/adapters/inventory"
	"github.com/nxfleet/profilesync/internal/adapters/reporting"
	"github.com/nxfleet/profilesync/internal/adapters/sshrunner"
	"github.com/nxfleet/profilesync/internal/adapters/storage"
	"github.com/nxfleet/profilesync/internal/adapters/web"
	"github.com/nxfleet/profilesync/internal/config"
	"github.com/nxfleet/profilesync/internal/core/domain"
	"github.com/nxfleet/profilesync/internal/core/ports"
	"github.com/nxfleet/profilesync/internal/core/services/pipeline"
	"github.com/nxfleet/profilesync/internal/telemetry"
)

// Application holds the bootstrapped components of one profilesync process.
type Application struct {
	Config    *config.Config
	Policy    domain.Policy
	Devices   []domain.Device
	Store     ports.RunStore
	Sink      ports.ReportSink
	Pipeline  *pipeline.Pipeline
	WebServer *web.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	app.Policy = domain.Policy{
		Profile:   app.Config.Profile,
		Module:    app.Config.Module,
		FirstPort: app.Config.FirstPort,
		LastPort:  app.Config.LastPort,
	}
	if err := app.Policy.Validate(); err != nil {
		return err
	}

	devices, err := inventory.Load(app.Config.InventoryPath)
	if err != nil {
		return err
	}
	app.Devices = devices

	store, err := app.initStorage()
	if err != nil {
		return err
	}
	app.Store = store

	sink, err := reporting.NewFileSink(app.Config.ReportDir, app.Policy)
	if err != nil {
		return err
	}
	app.Sink = sink

	creds, err := app.resolveCredentials()
	if err != nil {
		return err
	}

	runner := sshrunner.New(creds, time.Duration(app.Config.SSHTimeout)*time.Second)
	app.Pipeline = pipeline.New(runner, app.Policy, app.Config.DryRun)
	app.WebServer = web.NewServer(app.Config.Addr, app.Store)

	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if dir := filepath.Dir(app.Config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init run store: %w", err)
	}
	return store, nil
}

// resolveCredentials takes the shared fleet login from config/env, falling
// back to an interactive prompt the way the field tooling always has.
func (app *Application) resolveCredentials() (domain.Credentials, error) {
	creds := domain.Credentials{
		Username: app.Config.Username,
		Password: app.Config.Password,
	}

	reader := bufio.NewReader(os.Stdin)
	if creds.Username == "" {
		fmt.Print("SSH Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return creds, fmt.Errorf("read username: %w", err)
		}
		creds.Username = strings.TrimSpace(line)
	}
	if creds.Password == "" {
		fmt.Print("SSH Password: ")
		secret, err := terminal.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = string(secret)
	}

	if creds.Username == "" || creds.Password == "" {
		return creds, fmt.Errorf("missing SSH credentials")
	}
	return creds, nil
}

// Run executes the reconciliation and persists/writes all evidence. With
// -serve the status server keeps running afterward until cancelled.
func (app *Application) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	if app.Config.Serve {
		go func() {
			log.Printf("Status server listening on %s", app.Config.Addr)
			serveErr <- app.WebServer.Run(ctx)
		}()
	}

	report := app.Pipeline.RunFleet(ctx, app.Devices, app.Config.Workers)

	if err := app.Store.SaveRun(ctx, report); err != nil {
		slog.Error("Failed to persist run", "run_id", report.RunID, "error", err)
	}

	for _, dev := range report.Devices {
		if err := app.Sink.WriteDeviceReport(dev); err != nil {
			slog.Error("Failed to write device report", "device", dev.Device.Name, "error", err)
		}
	}
	if err := app.Sink.WriteFleetSummary(report); err != nil {
		slog.Error("Failed to write fleet summary", "run_id", report.RunID, "error", err)
	}

	app.logSummary(report)

	if app.Config.Serve {
		return <-serveErr
	}
	return nil
}

func (app *Application) logSummary(report domain.FleetReport) {
	var failed, regressed int
	for _, dev := range report.Devices {
		if dev.Failed() {
			failed++
		}
		if dev.Outcome != nil && dev.Outcome.HasRegression() {
			regressed++
		}
	}
	slog.Info("Run complete",
		"run_id", report.RunID,
		"devices", len(report.Devices),
		"failed", failed,
		"with_regressions", regressed,
		"fleet_success_rate", fmt.Sprintf("%.1f%%", report.FleetSuccessRate()))
}

// Close releases held resources.
func (app *Application) Close() {
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			log.Printf("Warning: closing run store: %v", err)
		}
	}
}
