package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders farm reports to PDF files under RootDir.
type Generator interface {
	GenerateCostReport(data CostReportData) (string, error)
}

type ReportGenerator struct {
	RootDir  string // storage root, e.g. "./files"
	FontPath string // path to a TTF, e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
}

type CostReportData struct {
	FarmName string
	From     time.Time
	To       time.Time
	Currency string
	Totals   map[string]float64 // category -> amount
	Filename string             // base name only; generated when empty
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

func (g *ReportGenerator) GenerateCostReport(data CostReportData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("costs_%s_%s.pdf", data.From.Format("20060102"), data.To.Format("20060102"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Cost report — %s", data.FarmName), false)
	pdf.SetAuthor("Agroterra", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "COST REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("%s  |  %s — %s",
		data.FarmName,
		data.From.Format("02.01.2006"),
		data.To.Format("02.01.2006"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Expenses by category")

	// stable row order
	categories := make([]string, 0, len(data.Totals))
	for cat := range data.Totals {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var grand float64
	for _, cat := range categories {
		g.kvLine(pdf, cat, fmt.Sprintf("%.2f %s", data.Totals[cat], data.Currency))
		grand += data.Totals[cat]
	}
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(45, 7, "Total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%.2f %s", grand, data.Currency), "", 1, "L", false, 0, "")

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

// ===== helpers =====

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // keep it inside RootDir
	return filepath.Join(g.RootDir, filename), nil
}

func (g *ReportGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
