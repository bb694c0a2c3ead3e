package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

// PDFExporter renders the fleet compliance summary as a PDF.
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportFleetSummary generates a one-page-per-fleet compliance report.
func (e *PDFExporter) ExportFleetSummary(report domain.FleetReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addPolicy(pdf, report)
	e.addDeviceTable(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report domain.FleetReport) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Port-Profile Compliance Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Run: %s", report.RunID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Started: %s    Finished: %s",
		report.Started.Format("2006-01-02 15:04:05"),
		report.Finished.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (e *PDFExporter) addPolicy(pdf *gofpdf.Fpdf, report domain.FleetReport) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Target Policy", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	policy := report.Policy
	pdf.CellFormat(0, 6, fmt.Sprintf("Profile: %s", policy.Profile), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Interfaces: %s - %s",
		policy.InterfaceID(policy.FirstPort), policy.InterfaceID(policy.LastPort)), "", 1, "L", false, 0, "")

	rate := report.FleetSuccessRate()
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 14)
	if rate >= 99.9 {
		pdf.SetTextColor(0, 128, 0)
	} else if rate >= 80 {
		pdf.SetTextColor(200, 130, 0)
	} else {
		pdf.SetTextColor(180, 0, 0)
	}
	pdf.CellFormat(0, 10, fmt.Sprintf("Fleet success rate: %.1f%%", rate), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (e *PDFExporter) addDeviceTable(pdf *gofpdf.Fpdf, report domain.FleetReport) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Devices", "", 1, "L", false, 0, "")

	headers := []string{"Device", "Targets", "Fixed", "Remaining", "Regressed", "Rate", "Status"}
	widths := []float64{42, 22, 20, 26, 26, 20, 34}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 235, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(40, 40, 40)
	for _, dev := range report.Devices {
		row := e.deviceRow(dev)
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (e *PDFExporter) deviceRow(dev domain.DeviceReport) []string {
	if dev.Failed() {
		return []string{dev.Device.Name, "-", "-", "-", "-", "-", "FAILED"}
	}
	if dev.Outcome == nil {
		return []string{dev.Device.Name, "-", "-", "-", "-", "-", "NO OUTCOME"}
	}
	o := dev.Outcome
	status := "OK"
	if o.HasRegression() {
		status = "REGRESSION"
	} else if len(o.StillNonCompliant) > 0 {
		status = "PARTIAL"
	}
	return []string{
		dev.Device.Name,
		fmt.Sprintf("%d", o.PreNonCompliant),
		fmt.Sprintf("%d", len(o.NewlyCompliant)),
		fmt.Sprintf("%d", len(o.StillNonCompliant)),
		fmt.Sprintf("%d", len(o.Regressed)),
		fmt.Sprintf("%.1f%%", o.SuccessRate),
		status,
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report domain.FleetReport) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 6, fmt.Sprintf("profilesync - %d device(s)", len(report.Devices)), "", 0, "C", false, 0, "")
}
