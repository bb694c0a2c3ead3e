// Package reporting writes run evidence to disk: unified diff files,
// outcome JSON and the fleet summary PDF.
package reporting

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nxfleet/profilesync/internal/core/domain"
	"github.com/nxfleet/profilesync/internal/core/services/ranges"
)

// FileSink implements ports.ReportSink on a local directory.
type FileSink struct {
	dir    string
	policy domain.Policy
	pdf    *PDFExporter
}

// NewFileSink creates the report directory if needed.
func NewFileSink(dir string, policy domain.Policy) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &FileSink{dir: dir, policy: policy, pdf: NewPDFExporter()}, nil
}

// deviceOutcome is the JSON document written per device. Interface sets are
// rendered both explicit and condensed for auditability.
type deviceOutcome struct {
	Device            string   `json:"device"`
	Applied           bool     `json:"applied"`
	Error             string   `json:"error,omitempty"`
	PreNonCompliant   int      `json:"pre_non_compliant"`
	NewlyCompliant    []string `json:"newly_compliant,omitempty"`
	StillNonCompliant []string `json:"still_non_compliant,omitempty"`
	Regressed         []string `json:"regressed,omitempty"`
	NewlyRanges       []string `json:"newly_compliant_ranges,omitempty"`
	StillRanges       []string `json:"still_non_compliant_ranges,omitempty"`
	SuccessRate       float64  `json:"success_rate"`
	ConfigChanged     bool     `json:"config_changed"`
	MACTableChanged   bool     `json:"mac_table_changed"`
}

// WriteDeviceReport emits the diff files and outcome JSON for one device.
// Empty diffs produce no file; a zero-length diff on disk reads as a change.
func (s *FileSink) WriteDeviceReport(report domain.DeviceReport) error {
	name := report.Device.Name

	if d := report.ConfigDiff; d != nil && !d.IsEmpty {
		if err := s.writeFile(name+"_config.diff", []byte(d.UnifiedText)); err != nil {
			return err
		}
	}
	if d := report.MACDiff; d != nil && !d.IsEmpty {
		if err := s.writeFile(name+"_mac.diff", []byte(d.UnifiedText)); err != nil {
			return err
		}
	}

	doc := deviceOutcome{
		Device:  name,
		Applied: report.Applied,
		Error:   report.Err,
	}
	if o := report.Outcome; o != nil {
		prefix := s.policy.Prefix()
		doc.PreNonCompliant = o.PreNonCompliant
		doc.NewlyCompliant = o.NewlyCompliant
		doc.StillNonCompliant = o.StillNonCompliant
		doc.Regressed = o.Regressed
		doc.NewlyRanges = ranges.Condense(o.NewlyCompliant, prefix)
		doc.StillRanges = ranges.Condense(o.StillNonCompliant, prefix)
		doc.SuccessRate = o.SuccessRate
	}
	if report.ConfigDiff != nil {
		doc.ConfigChanged = !report.ConfigDiff.IsEmpty
	}
	if report.MACDiff != nil {
		doc.MACTableChanged = !report.MACDiff.IsEmpty
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outcome for %s: %w", name, err)
	}
	return s.writeFile(name+"_outcome.json", data)
}

// WriteFleetSummary emits the run-level JSON and the PDF summary.
func (s *FileSink) WriteFleetSummary(report domain.FleetReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fleet report: %w", err)
	}
	if err := s.writeFile("fleet_report.json", data); err != nil {
		return err
	}

	pdfBytes, err := s.pdf.ExportFleetSummary(report)
	if err != nil {
		// The PDF is a convenience artifact; the JSON is the record.
		log.Printf("Warning: could not render PDF summary: %v", err)
		return nil
	}
	return s.writeFile("fleet_summary.pdf", pdfBytes)
}

func (s *FileSink) writeFile(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
