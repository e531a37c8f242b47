package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"crmmvp/internal/models"
)

// Generator is mocked in handler tests.
type Generator interface {
	TaskReport(w io.Writer, data TaskReportData) error
}

// ReportGenerator renders reports with gofpdf. With an empty FontPath the
// core Helvetica font is used and text is translated to cp1252.
type ReportGenerator struct {
	FontPath string
	fontName string
}

type TaskReportData struct {
	UserName    string
	GeneratedAt time.Time
	Tasks       []models.Task
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &ReportGenerator{FontPath: fontPath, fontName: name}
}

func (g *ReportGenerator) TaskReport(w io.Writer, data TaskReportData) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Task report", false)
	pdf.SetAuthor("crmmvp", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	g.addFont(pdf)
	tr := g.translator(pdf)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "TASK REPORT", "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "User", tr(data.UserName))
	g.kvLine(pdf, "Generated", data.GeneratedAt.Format("02.01.2006 15:04"))
	g.kvLine(pdf, "Tasks", fmt.Sprintf("%d", len(data.Tasks)))
	counts := map[models.TaskStatus]int{}
	pending := 0
	for _, t := range data.Tasks {
		counts[t.Status]++
		if t.TransferPending() {
			pending++
		}
	}
	g.kvLine(pdf, "Open / closed / deleted", fmt.Sprintf("%d / %d / %d",
		counts[models.StatusOpen], counts[models.StatusClosed], counts[models.StatusDeleted]))
	g.kvLine(pdf, "Pending transfers", fmt.Sprintf("%d", pending))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Tasks")
	cols := []struct {
		title string
		width float64
	}{
		{"Created", 28}, {"Type", 28}, {"Priority", 22}, {"Status", 22},
		{"Theme", 70}, {"Client", 50}, {"Date", 28}, {"Transfer", 19},
	}
	pdf.SetFont(g.fontName, "B", 10)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 9)
	for _, t := range data.Tasks {
		row := []string{
			t.CreatedAt.Format("02.01.2006"),
			string(t.Type),
			string(t.Priority),
			string(t.Status),
			tr(truncate(deref(t.Theme), 45)),
			tr(truncate(clientName(t), 30)),
			dateOrDash(t.Date),
			transferLabel(t),
		}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, row[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render task report: %w", err)
	}
	return nil
}

// === helpers ===

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

func (g *ReportGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 282, y)
	pdf.SetY(y + 2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clientName(t models.Task) string {
	if t.Client == nil {
		return ""
	}
	return t.Client.Name
}

func dateOrDash(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Format("02.01.2006")
}

func transferLabel(t models.Task) string {
	if !t.InTransfer() || t.TransferStatus == nil {
		return "-"
	}
	return string(*t.TransferStatus)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
