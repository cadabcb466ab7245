// Package pdfdoc renders the simple A4 documents the service hands out: payslips,
// receipts and monthly reports.
package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	margin    = 15.0
	lineSpace = 7.0
)

type Doc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// New starts a portrait A4 document with the company badge and a centered title.
func New(title, subtitle string) *Doc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	d := &Doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pageWidth, _ := pdf.GetPageSize()
	pdf.SetFillColor(114, 198, 239)
	pdf.Rect(pageWidth-margin-15, margin-7, 15, 15, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(pageWidth-margin-12, margin+2, "GDP")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")
	if subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, d.tr(subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	return d
}

func (d *Doc) Heading(text string) {
	d.pdf.Ln(2)
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.CellFormat(0, 8, d.tr(text), "B", 1, "L", false, 0, "")
	d.pdf.Ln(1)
}

func (d *Doc) Text(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 6, d.tr(text), "", "L", false)
}

// Row prints a label on the left and a value aligned right.
func (d *Doc) Row(label, value string) {
	d.row(label, value, false)
}

func (d *Doc) Total(label, value string) {
	d.row(label, value, true)
}

func (d *Doc) row(label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	d.pdf.SetFont("Helvetica", style, 10)
	pageWidth, _ := d.pdf.GetPageSize()
	width := pageWidth - 2*margin
	d.pdf.CellFormat(width*0.65, lineSpace, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(width*0.35, lineSpace, d.tr(value), "", 1, "R", false, 0, "")
}

// Table prints a header row and the given rows. widths are fractions of the printable width.
func (d *Doc) Table(headers []string, widths []float64, rows [][]string) {
	pageWidth, _ := d.pdf.GetPageSize()
	width := pageWidth - 2*margin
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		d.pdf.CellFormat(width*widths[i], lineSpace, d.tr(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			align := "L"
			if i > 0 && i == len(row)-1 {
				align = "R"
			}
			d.pdf.CellFormat(width*widths[i], lineSpace, d.tr(cell), "1", 0, align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d *Doc) Space() {
	d.pdf.Ln(lineSpace / 2)
}

func (d *Doc) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
