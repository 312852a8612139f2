package analytics

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WriteReportPDF renders the snapshot as a one-page team report and
// streams it to w.
func WriteReportPDF(w io.Writer, teamName string, snap Snapshot, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Team Performance Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Team: %s", teamName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	ov := snap.TeamOverview
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Overview")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Goals: %d total, %d active, %d completed", ov.TotalGoals, ov.ActiveGoals, ov.CompletedGoals))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Employees with goals: %d", ov.TotalEmployees))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Completion rate: %.1f%%   Average progress: %.1f%%", ov.CompletionRate, ov.AvgProgress))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Performance score: %.1f", ov.PerformanceScore))
	pdf.Ln(10)

	dist := snap.StatusDistribution
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Goal Status")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("On track: %d   At risk: %d   Off track: %d", dist.OnTrack, dist.AtRisk, dist.OffTrack))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Employee Performance")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(55, 7, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Goals", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Done", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 7, "Avg progress", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Score", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range snap.EmployeePerformance {
		pdf.CellFormat(55, 7, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", row.GoalsAssigned), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", row.GoalsCompleted), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%.1f%%", row.AverageProgress), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f", row.PerformanceScore), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Monthly Trend")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, p := range snap.PerformanceTrends {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d completed (%.1f%%), %.1f%% average progress", p.Month, p.GoalsCompleted, p.CompletionRate, p.AverageProgress))
		pdf.Ln(6)
	}

	return pdf.Output(w)
}
